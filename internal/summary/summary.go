// Package summary builds channel-specific message payloads from a run
// aggregate. Builders are pure: same aggregate and options, same payload.
package summary

import (
	"fmt"
	"time"

	"github.com/testbeacon/testbeacon/models"
)

// Options tunes how a payload is rendered for one channel.
type Options struct {
	// MaxFailures bounds the failed-test list (default: 5).
	MaxFailures int
	// TruncateLen bounds per-failure error text (default: 100).
	TruncateLen int
}

func (o Options) normalized() Options {
	if o.MaxFailures <= 0 {
		o.MaxFailures = 5
	}
	if o.TruncateLen <= 0 {
		o.TruncateLen = 100
	}
	return o
}

// HeaderEmoji picks the summary emoji: all green, skips only, or failures.
func HeaderEmoji(agg models.RunAggregate) string {
	switch {
	case agg.Failed > 0:
		return "❌"
	case agg.Skipped > 0:
		return "⚠️"
	default:
		return "✅"
	}
}

// Title renders the one-line headline used by header blocks and fallbacks.
func Title(agg models.RunAggregate, meta models.RunMeta) string {
	suite := meta.Suite
	if suite == "" {
		suite = "e2e"
	}
	if agg.Failed > 0 {
		return fmt.Sprintf("%s %s: %d of %d tests failed", HeaderEmoji(agg), suite, agg.Failed, agg.Total)
	}
	return fmt.Sprintf("%s %s: %d tests passed", HeaderEmoji(agg), suite, agg.Passed)
}

// Duration formats the wall-clock elapsed time for display.
func Duration(agg models.RunAggregate) string {
	d := time.Duration(agg.ElapsedMS) * time.Millisecond
	if d == 0 {
		d = time.Duration(agg.DurationMS) * time.Millisecond
	}
	return d.Round(100 * time.Millisecond).String()
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// failures returns at most max failure details from the aggregate.
// The collector already caps the list, but a channel may be configured
// tighter than the collector.
func failures(agg models.RunAggregate, max int) []models.FailureDetail {
	if len(agg.Failures) <= max {
		return agg.Failures
	}
	return agg.Failures[:max]
}

// revision renders "branch@shortsha" for footers and facts.
func revision(meta models.RunMeta) string {
	if meta.Commit == "" {
		return meta.Branch
	}
	sha := meta.Commit
	if len(sha) > 8 {
		sha = sha[:8]
	}
	if meta.Branch == "" {
		return sha
	}
	return meta.Branch + "@" + sha
}
