package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/database"
	"github.com/testbeacon/testbeacon/models"
)

func testStore(t *testing.T) *RunStore {
	t.Helper()
	db, err := database.NewSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return New(db)
}

func sampleAggregate() (models.RunAggregate, models.RunMeta, []models.TestOutcome) {
	agg := models.RunAggregate{
		Total: 3, Passed: 2, Failed: 1,
		PassRate:    66.67,
		DurationMS:  5400,
		ElapsedMS:   3000,
		StartedAt:   "2026-08-29T10:00:00Z",
		CompletedAt: "2026-08-29T10:00:03Z",
	}
	meta := models.RunMeta{
		Suite:     "shop",
		Branch:    "main",
		Commit:    "abcdef1234567890",
		CI:        true,
		ReportURL: "https://ci.example.com/report",
	}
	outcomes := []models.TestOutcome{
		{Title: "login works", File: "auth.spec.ts", Status: models.StatusPassed, DurationMS: 1200},
		{Title: "cart updates", File: "shop.spec.ts", Status: models.StatusPassed, DurationMS: 1800},
		{Title: "checkout completes", File: "shop.spec.ts", Status: models.StatusFailed, DurationMS: 2400, Error: "timeout"},
	}
	return agg, meta, outcomes
}

func TestSaveAndGetRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	agg, meta, outcomes := sampleAggregate()
	id, err := s.SaveRun(ctx, agg, meta, outcomes)
	if err != nil {
		t.Fatalf("saving run: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero run ID")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("loading run: %v", err)
	}
	if run.Suite != "shop" || run.Total != 3 || run.Failed != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Commit != "abcdef1234567890" {
		t.Fatalf("commit not persisted: %q", run.Commit)
	}
	if !run.CI {
		t.Fatal("ci flag not persisted")
	}
}

func TestOutcomesForRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	agg, meta, outcomes := sampleAggregate()
	id, err := s.SaveRun(ctx, agg, meta, outcomes)
	if err != nil {
		t.Fatalf("saving run: %v", err)
	}

	got, err := s.OutcomesForRun(ctx, id)
	if err != nil {
		t.Fatalf("loading outcomes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	if got[2].Error != "timeout" {
		t.Fatalf("error text not persisted: %+v", got[2])
	}

	failures, err := s.FailuresForRun(ctx, id)
	if err != nil {
		t.Fatalf("loading failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Title != "checkout completes" {
		t.Fatalf("unexpected failures: %+v", failures)
	}
}

func TestListRunsNewestFirstAndSuiteFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	agg, meta, _ := sampleAggregate()
	if _, err := s.SaveRun(ctx, agg, meta, nil); err != nil {
		t.Fatal(err)
	}
	meta.Suite = "admin"
	second, err := s.SaveRun(ctx, agg, meta, nil)
	if err != nil {
		t.Fatal(err)
	}

	all, err := s.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(all) != 2 || all[0].ID != second {
		t.Fatalf("expected newest first, got %+v", all)
	}

	admin, err := s.ListRuns(ctx, "admin", 10)
	if err != nil {
		t.Fatalf("listing admin runs: %v", err)
	}
	if len(admin) != 1 || admin[0].Suite != "admin" {
		t.Fatalf("suite filter broken: %+v", admin)
	}
}

func TestRunsSinceCutoff(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	agg, meta, _ := sampleAggregate()
	agg.CompletedAt = "2026-08-20T00:00:00Z"
	if _, err := s.SaveRun(ctx, agg, meta, nil); err != nil {
		t.Fatal(err)
	}
	agg.CompletedAt = "2026-08-29T00:00:00Z"
	if _, err := s.SaveRun(ctx, agg, meta, nil); err != nil {
		t.Fatal(err)
	}

	cutoff := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	recent, err := s.RunsSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("listing recent runs: %v", err)
	}
	if len(recent) != 1 || recent[0].CompletedAt != "2026-08-29T00:00:00Z" {
		t.Fatalf("cutoff filter broken: %+v", recent)
	}
}
