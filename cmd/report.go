package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/ci"
	"github.com/testbeacon/testbeacon/internal/collector"
	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/gitmeta"
	"github.com/testbeacon/testbeacon/internal/ingest"
	"github.com/testbeacon/testbeacon/internal/notify"
	"github.com/testbeacon/testbeacon/models"
)

var (
	reportInput  string
	reportFormat string
	reportSuite  string
	reportURL    string
	reportNoSave bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Ingest a result file, store the run, and send notifications",
	Long: `Reads test results from a file (or stdin), builds the run summary and
delivers it to every configured channel whose preferences match.

Input formats:
  jsonl   one JSON event per line, as written by runner hooks (default)
  junit   a JUnit XML report

Examples:
  testbeacon report --input results.jsonl
  testbeacon report --input junit.xml --format junit
  playwright-hooks | testbeacon report --input -`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "-",
		"result file to ingest, or - for stdin")
	reportCmd.Flags().StringVar(&reportFormat, "format", "",
		"input format: jsonl|junit (default: by file extension)")
	reportCmd.Flags().StringVar(&reportSuite, "suite", "",
		"suite name attached to the run (overrides config)")
	reportCmd.Flags().StringVar(&reportURL, "report-url", "",
		"link to the full HTML report included in notifications")
	reportCmd.Flags().BoolVar(&reportNoSave, "no-save", false,
		"skip writing the run to local history")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}

	c := collector.New(collector.Options{MaxFailures: collectorCap(cfg.Notify)})
	n, err := ingestInput(c)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("No test outcomes found in input; nothing to report.")
		return nil
	}

	agg := c.Finalize()
	meta := reportMeta(cfg)

	fmt.Printf("Run: %s  %d total, %d passed, %d failed, %d skipped (%.1f%% pass rate)\n",
		meta.Suite, agg.Total, agg.Passed, agg.Failed, agg.Skipped, agg.PassRate)

	if !reportNoSave {
		db, st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := st.SaveRun(ctx, agg, meta, c.Outcomes())
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		fmt.Printf("Saved as run #%d\n", id)
	}

	if !dispatcher.IsAnyConfigured() {
		fmt.Println("No notification channels configured; run 'testbeacon config init'.")
		return nil
	}

	deliveries := dispatcher.NotifySummary(ctx, agg, meta)
	printDeliveries(deliveries)
	return nil
}

// ingestInput feeds the configured input into c and returns the outcome count.
func ingestInput(c *collector.Collector) (int, error) {
	var r io.Reader
	if reportInput == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(reportInput)
		if err != nil {
			return 0, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	format := reportFormat
	if format == "" {
		if strings.HasSuffix(reportInput, ".xml") {
			format = "junit"
		} else {
			format = "jsonl"
		}
	}

	switch format {
	case "jsonl":
		return ingest.Events(r, c)
	case "junit":
		return ingest.JUnit(r, c)
	default:
		return 0, fmt.Errorf("unknown input format %q (supported: jsonl, junit)", format)
	}
}

func reportMeta(cfg *config.Config) models.RunMeta {
	suite := reportSuite
	if suite == "" {
		suite = cfg.Suite
	}
	url := reportURL
	if url == "" {
		url = cfg.Report.ReportURL
	}

	git := gitmeta.Detect(cfg.Report.ProjectPath)
	return models.RunMeta{
		Suite:     suite,
		Branch:    git.Branch,
		Commit:    git.Commit,
		Dirty:     git.Dirty,
		CI:        ci.IsCI(),
		ReportURL: url,
	}
}

func printDeliveries(deliveries []notify.Delivery) {
	for _, d := range deliveries {
		switch d.State {
		case notify.StateSent:
			fmt.Printf("  %-10s sent\n", d.Channel)
		case notify.StateFilteredOut:
			fmt.Printf("  %-10s skipped (preferences)\n", d.Channel)
		case notify.StateFailed:
			fmt.Printf("  %-10s FAILED: %v\n", d.Channel, d.Err)
		}
	}
}
