// Package store persists run history on top of the database layer.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/testbeacon/testbeacon/internal/database"
	"github.com/testbeacon/testbeacon/models"
)

// RunStore reads and writes run history.
type RunStore struct {
	db database.DB
}

// New wraps db in a RunStore.
func New(db database.DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun persists an aggregate with its outcomes and returns the run ID.
func (s *RunStore) SaveRun(ctx context.Context, agg models.RunAggregate, meta models.RunMeta, outcomes []models.TestOutcome) (int64, error) {
	run := models.Run{
		Suite:       meta.Suite,
		Branch:      meta.Branch,
		Commit:      meta.Commit,
		CI:          meta.CI,
		Total:       agg.Total,
		Passed:      agg.Passed,
		Failed:      agg.Failed,
		Skipped:     agg.Skipped,
		PassRate:    agg.PassRate,
		DurationMS:  agg.DurationMS,
		ElapsedMS:   agg.ElapsedMS,
		ReportURL:   meta.ReportURL,
		StartedAt:   agg.StartedAt,
		CompletedAt: agg.CompletedAt,
	}

	runID, err := s.db.Insert(ctx, "runs", run)
	if err != nil {
		return 0, fmt.Errorf("saving run: %w", err)
	}

	for _, o := range outcomes {
		rec := models.RunOutcome{
			RunID:      runID,
			Title:      o.Title,
			File:       o.File,
			Status:     string(o.Status),
			DurationMS: o.DurationMS,
			Error:      o.Error,
			Browser:    o.Browser,
			Screenshot: o.Screenshot,
			Trace:      o.Trace,
			Timestamp:  o.Timestamp,
		}
		if _, err := s.db.Insert(ctx, "outcomes", rec); err != nil {
			return 0, fmt.Errorf("saving outcome %q: %w", o.Title, err)
		}
	}
	return runID, nil
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(ctx context.Context, id int64) (*models.Run, error) {
	var run models.Run
	err := s.db.Get(ctx, &run,
		`SELECT id, suite, branch, commit_sha, ci, total, passed, failed, skipped,
		        pass_rate, duration_ms, elapsed_ms, report_url, started_at, completed_at
		   FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("loading run %d: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first. A non-empty suite
// restricts the list to that suite.
func (s *RunStore) ListRuns(ctx context.Context, suite string, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []models.Run
	var err error
	if suite != "" {
		err = s.db.Select(ctx, &runs,
			`SELECT * FROM runs WHERE suite = ? ORDER BY id DESC LIMIT ?`, suite, limit)
	} else {
		err = s.db.Select(ctx, &runs,
			`SELECT * FROM runs ORDER BY id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// RunsSince returns all runs completed at or after cutoff, oldest first.
func (s *RunStore) RunsSince(ctx context.Context, cutoff time.Time) ([]models.Run, error) {
	var runs []models.Run
	err := s.db.Select(ctx, &runs,
		`SELECT * FROM runs WHERE completed_at >= ? ORDER BY id ASC`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing runs since %s: %w", cutoff, err)
	}
	return runs, nil
}

// OutcomesForRun returns every stored outcome for a run.
func (s *RunStore) OutcomesForRun(ctx context.Context, runID int64) ([]models.RunOutcome, error) {
	var outcomes []models.RunOutcome
	err := s.db.Select(ctx, &outcomes,
		`SELECT * FROM outcomes WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading outcomes for run %d: %w", runID, err)
	}
	return outcomes, nil
}

// FailuresForRun returns only the failed outcomes for a run.
func (s *RunStore) FailuresForRun(ctx context.Context, runID int64) ([]models.RunOutcome, error) {
	var outcomes []models.RunOutcome
	err := s.db.Select(ctx, &outcomes,
		`SELECT * FROM outcomes WHERE run_id = ? AND status = ? ORDER BY id ASC`,
		runID, string(models.StatusFailed))
	if err != nil {
		return nil, fmt.Errorf("loading failures for run %d: %w", runID, err)
	}
	return outcomes, nil
}
