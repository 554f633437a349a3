package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/digest"
	"github.com/testbeacon/testbeacon/internal/listener"
)

var listenPort int

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start the ingest daemon",
	Long: `Starts the testbeacon listener: a long-running daemon that accepts test
events from runner hooks over localhost HTTP (default: http://127.0.0.1:6580),
stores completed runs and fans out notifications.

When the digest is enabled in config, a cron schedule additionally delivers a
periodic roll-up of all stored runs in the window.

Quick API reference:
  GET  /health              liveness check
  GET  /api/status          active suites and configured channels
  POST /api/events          one event per request ({"event":"test",...})
  POST /api/runs/complete   finalize a suite's run and notify
  GET  /api/runs            stored run history`,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().IntVar(&listenPort, "port", 0,
		"HTTP port to listen on (default 6580, overrides config)")
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down listener gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listenPort > 0 {
		cfg.Listener.Port = listenPort
	}

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}

	db, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Digest.Enabled {
		sched := digest.NewScheduler(cfg.Digest, st, dispatcher)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	return listener.New(cfg, dispatcher, st).Start(ctx)
}
