package summary

import (
	"fmt"

	"github.com/testbeacon/testbeacon/models"
)

const (
	cardColorGreen = "2EB886"
	cardColorRed   = "D63A3A"
)

// MessageCard is the legacy Office 365 connector card payload accepted by
// Microsoft Teams incoming webhooks.
type MessageCard struct {
	Type       string        `json:"@type"`
	Context    string        `json:"@context"`
	ThemeColor string        `json:"themeColor"`
	Summary    string        `json:"summary"`
	Sections   []CardSection `json:"sections"`
	Actions    []CardAction  `json:"potentialAction,omitempty"`
}

type CardSection struct {
	ActivityTitle string     `json:"activityTitle,omitempty"`
	Text          string     `json:"text,omitempty"`
	Facts         []CardFact `json:"facts,omitempty"`
	Markdown      bool       `json:"markdown"`
}

type CardFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CardAction struct {
	Type    string       `json:"@type"`
	Name    string       `json:"name"`
	Targets []CardTarget `json:"targets"`
}

type CardTarget struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

// Card renders the run summary as a Teams MessageCard: theme colour keyed to
// the failed count, a facts table, an optional failed-tests section, and an
// OpenUri action pointing at the HTML report.
func Card(agg models.RunAggregate, meta models.RunMeta, opts Options) MessageCard {
	opts = opts.normalized()

	color := cardColorGreen
	if agg.Failed > 0 {
		color = cardColorRed
	}

	card := MessageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: color,
		Summary:    Title(agg, meta),
		Sections: []CardSection{
			{
				ActivityTitle: Title(agg, meta),
				Markdown:      true,
				Facts: []CardFact{
					{Name: "Total", Value: fmt.Sprintf("%d", agg.Total)},
					{Name: "Passed", Value: fmt.Sprintf("%d", agg.Passed)},
					{Name: "Failed", Value: fmt.Sprintf("%d", agg.Failed)},
					{Name: "Skipped", Value: fmt.Sprintf("%d", agg.Skipped)},
					{Name: "Pass rate", Value: fmt.Sprintf("%.1f%%", agg.PassRate)},
					{Name: "Duration", Value: Duration(agg)},
				},
			},
		},
	}
	if rev := revision(meta); rev != "" {
		card.Sections[0].Facts = append(card.Sections[0].Facts,
			CardFact{Name: "Revision", Value: rev})
	}

	if fs := failures(agg, opts.MaxFailures); len(fs) > 0 {
		text := ""
		for i, f := range fs {
			line := f.Title
			if f.Error != "" {
				line += " — " + Truncate(f.Error, opts.TruncateLen)
			}
			text += fmt.Sprintf("%d. %s\n\n", i+1, line)
		}
		card.Sections = append(card.Sections, CardSection{
			ActivityTitle: "Failed tests",
			Text:          text,
			Markdown:      true,
		})
	}

	if meta.ReportURL != "" {
		card.Actions = append(card.Actions, CardAction{
			Type: "OpenUri",
			Name: "View report",
			Targets: []CardTarget{
				{OS: "default", URI: meta.ReportURL},
			},
		})
	}

	return card
}
