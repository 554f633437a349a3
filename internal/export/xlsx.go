// Package export writes run history to an Excel workbook for people who
// track flaky suites in spreadsheets.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/testbeacon/testbeacon/internal/store"
	"github.com/testbeacon/testbeacon/models"
)

var runHeader = []interface{}{
	"Run ID", "Suite", "Branch", "Commit", "CI",
	"Total", "Passed", "Failed", "Skipped", "Pass rate (%)",
	"Duration (ms)", "Completed at",
}

var failureHeader = []interface{}{
	"Run ID", "Suite", "Test", "File", "Error", "Duration (ms)",
}

// Workbook writes runs (and their failed outcomes) to an xlsx file at path.
// Two sheets are produced: "Runs" with one row per run and "Failures" with
// one row per failed test.
func Workbook(ctx context.Context, st *store.RunStore, runs []models.Run, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const runsSheet = "Runs"
	const failSheet = "Failures"

	f.SetSheetName("Sheet1", runsSheet)
	if _, err := f.NewSheet(failSheet); err != nil {
		return fmt.Errorf("creating failures sheet: %w", err)
	}

	if err := f.SetSheetRow(runsSheet, "A1", &runHeader); err != nil {
		return fmt.Errorf("writing runs header: %w", err)
	}
	if err := f.SetSheetRow(failSheet, "A1", &failureHeader); err != nil {
		return fmt.Errorf("writing failures header: %w", err)
	}

	failRow := 2
	for i, r := range runs {
		row := []interface{}{
			r.ID, r.Suite, r.Branch, shortCommit(r.Commit), r.CI,
			r.Total, r.Passed, r.Failed, r.Skipped, r.PassRate,
			r.DurationMS, r.CompletedAt,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(runsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing run %d: %w", r.ID, err)
		}

		if r.Failed == 0 {
			continue
		}
		failures, err := st.FailuresForRun(ctx, r.ID)
		if err != nil {
			return err
		}
		for _, o := range failures {
			row := []interface{}{r.ID, r.Suite, o.Title, o.File, o.Error, o.DurationMS}
			cell := fmt.Sprintf("A%d", failRow)
			if err := f.SetSheetRow(failSheet, cell, &row); err != nil {
				return fmt.Errorf("writing failure row: %w", err)
			}
			failRow++
		}
	}

	// Readable defaults for the text-heavy columns.
	_ = f.SetColWidth(runsSheet, "B", "D", 18)
	_ = f.SetColWidth(failSheet, "C", "E", 40)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func shortCommit(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
