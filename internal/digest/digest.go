// Package digest aggregates stored runs over a time window and delivers a
// scheduled roll-up through the notification channels.
package digest

import (
	"fmt"
	"time"

	"github.com/testbeacon/testbeacon/models"
)

// Build folds a window of stored runs into a single aggregate suitable for
// the notification pipeline. Each run with failures contributes one entry to
// the failure list so the digest names the suites that need attention.
func Build(runs []models.Run, window time.Duration) (models.RunAggregate, models.RunMeta) {
	var agg models.RunAggregate
	for _, r := range runs {
		agg.Total += r.Total
		agg.Passed += r.Passed
		agg.Failed += r.Failed
		agg.Skipped += r.Skipped
		agg.DurationMS += r.DurationMS
		agg.ElapsedMS += r.ElapsedMS

		if r.Failed > 0 {
			agg.Failures = append(agg.Failures, models.FailureDetail{
				Title: fmt.Sprintf("%s @ %s", r.Suite, shortRef(r)),
				File:  r.CompletedAt,
				Error: fmt.Sprintf("%d of %d tests failed (%.1f%% pass rate)", r.Failed, r.Total, r.PassRate),
			})
		}
	}
	if agg.Total > 0 {
		agg.PassRate = float64(agg.Passed) / float64(agg.Total) * 100
	}
	if n := len(runs); n > 0 {
		agg.StartedAt = runs[0].CompletedAt
		agg.CompletedAt = runs[n-1].CompletedAt
	}

	meta := models.RunMeta{
		Suite: fmt.Sprintf("digest: %d runs over %s", len(runs), formatWindow(window)),
	}
	return agg, meta
}

func shortRef(r models.Run) string {
	ref := r.Branch
	if ref == "" {
		ref = "unknown"
	}
	if len(r.Commit) >= 8 {
		ref += " (" + r.Commit[:8] + ")"
	}
	return ref
}

func formatWindow(window time.Duration) string {
	if h := int(window.Hours()); h >= 24 && h%24 == 0 {
		days := h / 24
		if days == 1 {
			return "24h"
		}
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(window.Hours()))
}
