// Package listener is the long-running ingest daemon. Runner hooks POST
// events to it while a suite executes; completing a run finalizes the
// aggregate, persists it and fans out notifications.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/testbeacon/testbeacon/internal/collector"
	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/gitmeta"
	"github.com/testbeacon/testbeacon/internal/notify"
	"github.com/testbeacon/testbeacon/internal/store"
	"github.com/testbeacon/testbeacon/models"
)

// Server accepts test events over localhost HTTP and turns completed runs
// into stored history plus notifications.
type Server struct {
	cfg        *config.Config
	dispatcher *notify.Dispatcher
	store      *store.RunStore

	mu        sync.Mutex
	active    map[string]*activeRun // suite → in-flight collector
	startedAt time.Time
}

type activeRun struct {
	collector *collector.Collector
	startedAt time.Time
}

// New creates a listener Server. store may be nil when history is disabled.
func New(cfg *config.Config, d *notify.Dispatcher, st *store.RunStore) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: d,
		store:      st,
		active:     map[string]*activeRun{},
		startedAt:  time.Now(),
	}
}

// Start binds the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	port := s.cfg.Listener.Port
	if port == 0 {
		port = 6580
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: buildHandler(s),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listener: accepting events", "addr", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// intake records one test event for suite, creating the run on first sight.
func (s *Server) intake(suite string, o models.TestOutcome) {
	s.mu.Lock()
	run, ok := s.active[suite]
	if !ok {
		run = &activeRun{
			collector: collector.New(collector.Options{}),
			startedAt: time.Now(),
		}
		s.active[suite] = run
		slog.Info("listener: run started", "suite", suite)
	}
	s.mu.Unlock()

	run.collector.Intake(o)

	// Per-test sends must not stall the runner hook behind a slow channel.
	// The dispatcher logs failures itself, so nothing waits on the result.
	go s.dispatcher.NotifyOutcome(context.Background(), o)
}

// complete finalizes the active run for suite, persists it and notifies.
func (s *Server) complete(ctx context.Context, suite, reportURL string) (*models.Run, []notify.Delivery, error) {
	s.mu.Lock()
	run, ok := s.active[suite]
	delete(s.active, suite)
	s.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("no active run for suite %q", suite)
	}

	agg := run.collector.Finalize()
	meta := s.runMeta(suite, reportURL)

	var saved models.Run
	if s.store != nil {
		id, err := s.store.SaveRun(ctx, agg, meta, run.collector.Outcomes())
		if err != nil {
			// History is secondary to getting the notification out.
			slog.Error("listener: persisting run failed", "suite", suite, "error", err)
		} else {
			saved.ID = id
		}
	}
	saved.Suite = suite
	saved.Branch = meta.Branch
	saved.Commit = meta.Commit
	saved.CI = meta.CI
	saved.Total = agg.Total
	saved.Passed = agg.Passed
	saved.Failed = agg.Failed
	saved.Skipped = agg.Skipped
	saved.PassRate = agg.PassRate
	saved.DurationMS = agg.DurationMS
	saved.ElapsedMS = agg.ElapsedMS
	saved.ReportURL = meta.ReportURL
	saved.StartedAt = agg.StartedAt
	saved.CompletedAt = agg.CompletedAt

	deliveries := s.dispatcher.NotifySummary(ctx, agg, meta)
	return &saved, deliveries, nil
}

func (s *Server) runMeta(suite, reportURL string) models.RunMeta {
	git := gitmeta.Detect(s.cfg.Report.ProjectPath)
	if reportURL == "" {
		reportURL = s.cfg.Report.ReportURL
	}
	return models.RunMeta{
		Suite:     suite,
		Branch:    git.Branch,
		Commit:    git.Commit,
		Dirty:     git.Dirty,
		CI:        false, // the daemon itself runs outside CI
		ReportURL: reportURL,
	}
}

func (s *Server) activeSuites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	suites := make([]string, 0, len(s.active))
	for suite := range s.active {
		suites = append(suites, suite)
	}
	return suites
}
