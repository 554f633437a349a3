package summary

import (
	"fmt"
	"strings"

	"github.com/testbeacon/testbeacon/models"
)

// BlockMessage is a Slack Block Kit message payload.
type BlockMessage struct {
	Text   string  `json:"text"` // fallback for notifications
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Type   string `json:"type"`
	Text   *Text  `json:"text,omitempty"`
	Fields []Text `json:"fields,omitempty"`
	Elems  []Text `json:"elements,omitempty"`
}

type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func plain(s string) *Text  { return &Text{Type: "plain_text", Text: s} }
func mrkdwn(s string) *Text { return &Text{Type: "mrkdwn", Text: s} }

// Blocks renders the run summary as a Block Kit message: header, metric
// fields, a numbered failed-tests section when failures exist, and a context
// footer with the duration and report link.
func Blocks(agg models.RunAggregate, meta models.RunMeta, opts Options) BlockMessage {
	opts = opts.normalized()

	msg := BlockMessage{
		Text: Title(agg, meta),
		Blocks: []Block{
			{Type: "header", Text: plain(Title(agg, meta))},
			{Type: "section", Fields: []Text{
				*mrkdwn(fmt.Sprintf("*Total:*\n%d", agg.Total)),
				*mrkdwn(fmt.Sprintf("*Passed:*\n%d", agg.Passed)),
				*mrkdwn(fmt.Sprintf("*Failed:*\n%d", agg.Failed)),
				*mrkdwn(fmt.Sprintf("*Skipped:*\n%d", agg.Skipped)),
				*mrkdwn(fmt.Sprintf("*Pass rate:*\n%.1f%%", agg.PassRate)),
				*mrkdwn(fmt.Sprintf("*Duration:*\n%s", Duration(agg))),
			}},
		},
	}

	if fs := failures(agg, opts.MaxFailures); len(fs) > 0 {
		var b strings.Builder
		b.WriteString("*Failed tests:*\n")
		for i, f := range fs {
			line := f.Title
			if f.Error != "" {
				line += " — " + Truncate(f.Error, opts.TruncateLen)
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, line)
		}
		if agg.Failed > len(fs) {
			fmt.Fprintf(&b, "…and %d more\n", agg.Failed-len(fs))
		}
		msg.Blocks = append(msg.Blocks,
			Block{Type: "divider"},
			Block{Type: "section", Text: mrkdwn(b.String())},
		)
	}

	footer := fmt.Sprintf("Finished in %s", Duration(agg))
	if rev := revision(meta); rev != "" {
		footer += " · " + rev
	}
	if meta.ReportURL != "" {
		footer += fmt.Sprintf(" · <%s|Full report>", meta.ReportURL)
	}
	msg.Blocks = append(msg.Blocks, Block{
		Type:  "context",
		Elems: []Text{*mrkdwn(footer)},
	})

	return msg
}

// OutcomeBlocks renders a single test completion as a compact message,
// used for per-test notifications (typically failures only).
func OutcomeBlocks(o models.TestOutcome, opts Options) BlockMessage {
	opts = opts.normalized()

	emoji := "✅"
	switch o.Status {
	case models.StatusFailed:
		emoji = "❌"
	case models.StatusSkipped:
		emoji = "⚠️"
	}
	head := fmt.Sprintf("%s %s", emoji, o.Title)

	body := fmt.Sprintf("*Status:* %s · *Duration:* %dms", o.Status, o.DurationMS)
	if o.Browser != "" {
		body += " · *Browser:* " + o.Browser
	}
	if o.Error != "" {
		body += "\n```" + Truncate(o.Error, opts.TruncateLen) + "```"
	}

	msg := BlockMessage{
		Text: head,
		Blocks: []Block{
			{Type: "header", Text: plain(head)},
			{Type: "section", Text: mrkdwn(body)},
		},
	}
	if o.File != "" {
		msg.Blocks = append(msg.Blocks, Block{
			Type:  "context",
			Elems: []Text{*mrkdwn(o.File)},
		})
	}
	return msg
}
