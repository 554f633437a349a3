package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/notify"
	"github.com/testbeacon/testbeacon/internal/store"
)

// Scheduler fires the digest on a cron expression. Summaries are built from
// run history within the configured window and sent through the dispatcher.
type Scheduler struct {
	cfg        config.DigestConfig
	store      *store.RunStore
	dispatcher *notify.Dispatcher
	cron       *cron.Cron
	now        func() time.Time
}

// NewScheduler wires the digest against run history and the dispatcher.
func NewScheduler(cfg config.DigestConfig, st *store.RunStore, d *notify.Dispatcher) *Scheduler {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 9 * * *"
	}
	if cfg.WindowHours <= 0 {
		cfg.WindowHours = 24
	}
	return &Scheduler{
		cfg:        cfg,
		store:      st,
		dispatcher: d,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start registers the schedule and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if err := s.Fire(context.Background()); err != nil {
			slog.Warn("digest: firing failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	slog.Info("digest scheduler started",
		"schedule", s.cfg.Schedule, "window_hours", s.cfg.WindowHours)
	return nil
}

// Stop halts the cron runner gracefully.
func (s *Scheduler) Stop() { s.cron.Stop() }

// Fire builds and sends the digest now, regardless of schedule.
// An empty window is not an error; there is simply nothing to report.
func (s *Scheduler) Fire(ctx context.Context) error {
	window := time.Duration(s.cfg.WindowHours) * time.Hour
	cutoff := s.now().Add(-window)

	runs, err := s.store.RunsSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("loading runs for digest: %w", err)
	}
	if len(runs) == 0 {
		slog.Info("digest: no runs in window, skipping", "window_hours", s.cfg.WindowHours)
		return nil
	}

	agg, meta := Build(runs, window)
	deliveries := s.dispatcher.NotifySummary(ctx, agg, meta)
	for _, d := range deliveries {
		slog.Info("digest delivery", "channel", d.Channel, "state", d.State)
	}
	return nil
}
