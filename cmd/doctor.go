package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/ci"
	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/database"
	"github.com/testbeacon/testbeacon/internal/gitmeta"
	"github.com/testbeacon/testbeacon/internal/notify"
	"github.com/testbeacon/testbeacon/internal/routing"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify channels, database, and git metadata",
	Long: `Checks that the database can be reached, every enabled notification
channel has complete credentials, and git metadata is readable from the
configured project path.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	allOK := true

	fmt.Println("=== testbeacon doctor ===")
	fmt.Println()

	// Check database
	fmt.Print("Database ................. ")
	db, err := database.New(cfg.Database)
	if err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		} else {
			fmt.Printf("OK (%s: %s)\n", db.Driver(), cfg.Database.Path)
		}
		db.Close()
	}

	// Check channel configuration
	fmt.Print("Channel config ........... ")
	if err := cfg.Notify.Validate(); err != nil {
		var chErr *config.ChannelError
		if errors.As(err, &chErr) {
			fmt.Printf("FAIL (%s: %s)\n", chErr.Channel, chErr.Reason)
		} else {
			fmt.Printf("FAIL (%s)\n", err)
		}
		allOK = false
	} else {
		d, err := notify.NewDispatcher(cfg.Notify)
		switch {
		case err != nil:
			fmt.Printf("FAIL (%s)\n", err)
			allOK = false
		case !d.IsAnyConfigured():
			fmt.Println("WARN (no channels enabled — run 'testbeacon config init')")
		default:
			fmt.Printf("OK (%v)\n", d.Channels())
		}
	}

	// Check routing rules
	fmt.Print("Routing rules ............ ")
	if cfg.Report.RoutingFile == "" {
		fmt.Println("none (all channels receive all suites)")
	} else if router, err := routing.Load(cfg.Report.RoutingFile); err != nil {
		fmt.Printf("FAIL (%s)\n", err)
		allOK = false
	} else {
		fmt.Printf("OK (%d rules)\n", router.Len())
	}

	// Check git metadata
	fmt.Print("Git metadata ............. ")
	git := gitmeta.Detect(cfg.Report.ProjectPath)
	if git.Commit == "" {
		fmt.Printf("WARN (no repository at %s — runs will have no branch/commit)\n",
			cfg.Report.ProjectPath)
	} else {
		short := git.Commit
		if len(short) > 8 {
			short = short[:8]
		}
		fmt.Printf("OK (%s@%s)\n", git.Branch, short)
	}

	// CI environment
	fmt.Print("CI environment ........... ")
	if ci.IsCI() {
		fmt.Printf("detected (%s)\n", ci.Provider())
	} else {
		fmt.Println("not detected (ci_only channels stay quiet here)")
	}

	fmt.Println()
	if !allOK {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("All checks passed.")
	return nil
}
