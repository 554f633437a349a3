// Package collector accumulates per-test completion events into a run
// aggregate. Intake never fails: a malformed event is logged and counted on
// whatever fields it carries, so the collector can sit inside a runner hook
// without ever disturbing the run.
package collector

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/testbeacon/testbeacon/models"
)

// DefaultMaxFailures bounds the failure-detail list kept per run.
const DefaultMaxFailures = 5

// Options tunes a Collector.
type Options struct {
	// MaxFailures caps the failure-detail list (default: 5). The first N
	// failures are kept; later ones only increment the counter.
	MaxFailures int
}

// Collector ingests TestOutcomes for one run and produces a RunAggregate.
// It is safe for concurrent intake, though runners normally deliver events
// sequentially.
type Collector struct {
	mu          sync.Mutex
	started     time.Time
	maxFailures int
	agg         models.RunAggregate
	outcomes    []models.TestOutcome
}

// New creates a Collector and records the run start time.
func New(opts Options) *Collector {
	maxf := opts.MaxFailures
	if maxf <= 0 {
		maxf = DefaultMaxFailures
	}
	now := time.Now()
	return &Collector{
		started:     now,
		maxFailures: maxf,
		agg: models.RunAggregate{
			StartedAt: now.UTC().Format(time.RFC3339),
		},
	}
}

// Intake records one test completion. Unknown statuses are logged and counted
// as skipped so the total always equals passed+failed+skipped.
func (c *Collector) Intake(o models.TestOutcome) {
	o.Error = firstLine(o.Error)
	if o.Timestamp == "" {
		o.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	switch o.Status {
	case models.StatusPassed, models.StatusFailed, models.StatusSkipped:
	default:
		slog.Warn("collector: unrecognised status, counting as skipped",
			"test", o.Title, "status", o.Status)
		o.Status = models.StatusSkipped
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.agg.Total++
	c.agg.DurationMS += o.DurationMS
	switch o.Status {
	case models.StatusPassed:
		c.agg.Passed++
	case models.StatusFailed:
		c.agg.Failed++
		if len(c.agg.Failures) < c.maxFailures {
			c.agg.Failures = append(c.agg.Failures, models.FailureDetail{
				Title:      o.Title,
				File:       o.File,
				Error:      o.Error,
				DurationMS: o.DurationMS,
				Screenshot: o.Screenshot,
			})
		}
	case models.StatusSkipped:
		c.agg.Skipped++
	}
	c.outcomes = append(c.outcomes, o)
}

// Finalize computes the wall-clock elapsed time and pass rate and returns a
// snapshot of the aggregate. The collector may keep receiving events after
// Finalize, but the returned snapshot never changes.
func (c *Collector) Finalize() models.RunAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.agg.ElapsedMS = time.Since(c.started).Milliseconds()
	c.agg.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	if c.agg.Total > 0 {
		c.agg.PassRate = float64(c.agg.Passed) / float64(c.agg.Total) * 100
	} else {
		c.agg.PassRate = 0
	}

	snap := c.agg
	snap.Failures = make([]models.FailureDetail, len(c.agg.Failures))
	copy(snap.Failures, c.agg.Failures)
	return snap
}

// Outcomes returns a copy of every outcome recorded so far.
func (c *Collector) Outcomes() []models.TestOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.TestOutcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// firstLine keeps only the first line of a multi-line error message.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
