package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/database"
	"github.com/testbeacon/testbeacon/internal/store"
	"github.com/testbeacon/testbeacon/models"
)

func TestWorkbookWritesRunsAndFailures(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	st := store.New(db)

	agg := models.RunAggregate{Total: 2, Passed: 1, Failed: 1, PassRate: 50, CompletedAt: "2026-08-29T10:00:00Z"}
	meta := models.RunMeta{Suite: "shop", Branch: "main", Commit: "abcdef1234567890"}
	outcomes := []models.TestOutcome{
		{Title: "login works", Status: models.StatusPassed},
		{Title: "checkout completes", File: "shop.spec.ts", Status: models.StatusFailed, Error: "timeout"},
	}
	if _, err := st.SaveRun(ctx, agg, meta, outcomes); err != nil {
		t.Fatalf("saving run: %v", err)
	}

	runs, err := st.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Workbook(ctx, st, runs, out); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	suite, err := f.GetCellValue("Runs", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if suite != "shop" {
		t.Fatalf("expected suite in B2, got %q", suite)
	}

	title, err := f.GetCellValue("Failures", "C2")
	if err != nil {
		t.Fatal(err)
	}
	if title != "checkout completes" {
		t.Fatalf("expected failed test in failures sheet, got %q", title)
	}
}
