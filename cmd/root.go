package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "testbeacon",
	Short: "Aggregate e2e test results and notify your team",
	Long: `testbeacon collects end-to-end test outcomes, builds run summaries
and delivers them to Slack, Microsoft Teams, generic webhooks and
GitHub/GitLab commit statuses — with full run history kept locally.

Get started:
  testbeacon config init   Interactive setup wizard
  testbeacon doctor        Verify channels, database and git metadata
  testbeacon report        Ingest a result file and send the summary
  testbeacon listen        Start the ingest daemon for live runner hooks
  testbeacon history       Browse stored runs
  testbeacon ui            Launch the terminal UI`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.testbeacon/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		reportCmd,
		listenCmd,
		historyCmd,
		notifyCmd,
		exportCmd,
		uiCmd,
		configCmd,
		doctorCmd,
	)
}

func initConfig() {
	// Local .env lets CI jobs drop credentials next to the checkout.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}
}
