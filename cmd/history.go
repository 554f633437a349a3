package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

var (
	historySuite string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored runs, or show one run in detail",
	Long: `Without arguments, lists the most recent runs. With a run ID, prints
that run's per-test outcomes.

Examples:
  testbeacon history
  testbeacon history --suite shop --limit 50
  testbeacon history 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySuite, "suite", "", "only show runs of this suite")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		return showRun(ctx, st, id)
	}

	runs, err := st.ListRuns(ctx, historySuite, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs stored yet.")
		return nil
	}

	fmt.Printf("%-5s %-14s %-12s %-8s %7s %7s %7s %8s  %s\n",
		"ID", "SUITE", "BRANCH", "STATUS", "PASSED", "FAILED", "SKIPPED", "RATE", "COMPLETED")
	for _, r := range runs {
		fmt.Printf("%-5d %-14s %-12s %-8s %7d %7d %7d %7.1f%%  %s\n",
			r.ID, clip(r.Suite, 14), clip(r.Branch, 12), runStatus(r),
			r.Passed, r.Failed, r.Skipped, r.PassRate, r.CompletedAt)
	}
	return nil
}

func showRun(ctx context.Context, st runReader, id int64) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return err
	}
	outcomes, err := st.OutcomesForRun(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Run #%d  %s", run.ID, run.Suite)
	if run.Branch != "" {
		fmt.Printf("  %s", run.Branch)
		if len(run.Commit) >= 8 {
			fmt.Printf("@%s", run.Commit[:8])
		}
	}
	fmt.Println()
	fmt.Printf("%d total, %d passed, %d failed, %d skipped (%.1f%% pass rate)\n\n",
		run.Total, run.Passed, run.Failed, run.Skipped, run.PassRate)

	for _, o := range outcomes {
		mark := "✓"
		switch o.Status {
		case string(models.StatusFailed):
			mark = "✗"
		case string(models.StatusSkipped):
			mark = "-"
		}
		fmt.Printf("  %s %-50s %6dms", mark, clip(o.Title, 50), o.DurationMS)
		if o.Error != "" {
			fmt.Printf("  %s", clip(o.Error, 60))
		}
		fmt.Println()
	}
	return nil
}

// runReader is the slice of the store history needs; it keeps showRun testable.
type runReader interface {
	GetRun(ctx context.Context, id int64) (*models.Run, error)
	OutcomesForRun(ctx context.Context, runID int64) ([]models.RunOutcome, error)
}

func runStatus(r models.Run) string {
	switch {
	case r.Total == 0:
		return "empty"
	case r.Failed > 0:
		return "failed"
	default:
		return "passed"
	}
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}
