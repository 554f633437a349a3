package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/export"
)

var (
	exportOut   string
	exportSuite string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to an Excel workbook",
	Long: `Writes stored runs and their failed tests to an .xlsx file with two
sheets: Runs (one row per run) and Failures (one row per failed test).

Examples:
  testbeacon export --out runs.xlsx
  testbeacon export --out shop.xlsx --suite shop --limit 100`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "testbeacon.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportSuite, "suite", "", "only export runs of this suite")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 100, "maximum number of runs to export")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	runs, err := st.ListRuns(ctx, exportSuite, exportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs stored yet; nothing to export")
	}

	if err := export.Workbook(ctx, st, runs, exportOut); err != nil {
		return err
	}
	fmt.Printf("Exported %d runs to %s\n", len(runs), exportOut)
	return nil
}
