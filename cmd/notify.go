package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

var notifyRunID int64

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Re-send the summary of a stored run",
	Long: `Sends the run-end summary of a stored run through every configured
channel. Without --run the latest stored run is used.

Useful for verifying channel credentials and for re-sending a summary
that was missed while a webhook was down.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().Int64Var(&notifyRunID, "run", 0, "run ID to send (default: latest)")
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}
	if !dispatcher.IsAnyConfigured() {
		return fmt.Errorf("no notification channels configured; run 'testbeacon config init'")
	}

	db, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var run *models.Run
	if notifyRunID > 0 {
		run, err = st.GetRun(ctx, notifyRunID)
		if err != nil {
			return err
		}
	} else {
		runs, err := st.ListRuns(ctx, "", 1)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs stored yet; ingest one with 'testbeacon report'")
		}
		run = &runs[0]
	}

	failures, err := st.FailuresForRun(ctx, run.ID)
	if err != nil {
		return err
	}

	agg := models.RunAggregate{
		Total:       run.Total,
		Passed:      run.Passed,
		Failed:      run.Failed,
		Skipped:     run.Skipped,
		PassRate:    run.PassRate,
		DurationMS:  run.DurationMS,
		ElapsedMS:   run.ElapsedMS,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
	for _, f := range failures {
		agg.Failures = append(agg.Failures, models.FailureDetail{
			Title: f.Title,
			File:  f.File,
			Error: f.Error,
		})
	}
	meta := models.RunMeta{
		Suite:     run.Suite,
		Branch:    run.Branch,
		Commit:    run.Commit,
		CI:        run.CI,
		ReportURL: run.ReportURL,
	}

	fmt.Printf("Sending summary of run #%d (%s)...\n", run.ID, run.Suite)
	printDeliveries(dispatcher.NotifySummary(ctx, agg, meta))
	return nil
}
