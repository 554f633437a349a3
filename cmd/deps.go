package cmd

import (
	"context"
	"fmt"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/database"
	"github.com/testbeacon/testbeacon/internal/notify"
	"github.com/testbeacon/testbeacon/internal/routing"
	"github.com/testbeacon/testbeacon/internal/store"
)

// buildDispatcher creates the notification dispatcher, attaching routing
// rules when a routing file is configured.
func buildDispatcher(cfg *config.Config) (*notify.Dispatcher, error) {
	d, err := notify.NewDispatcher(cfg.Notify)
	if err != nil {
		return nil, fmt.Errorf("configuring notification channels: %w", err)
	}
	if cfg.Report.RoutingFile != "" {
		router, err := routing.Load(cfg.Report.RoutingFile)
		if err != nil {
			return nil, fmt.Errorf("loading routing rules: %w", err)
		}
		d.SetRouter(router)
	}
	return d, nil
}

// openStore opens the run-history database and applies migrations.
// The caller owns the returned DB and must Close it.
func openStore(ctx context.Context, cfg *config.Config) (database.DB, *store.RunStore, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, store.New(db), nil
}

// collectorCap returns the failure-list capacity needed to serve the most
// generous channel policy.
func collectorCap(cfg config.NotifyConfig) int {
	limit := config.DefaultMaxFailures
	for _, policy := range []config.ChannelPolicy{
		cfg.Slack.ChannelPolicy,
		cfg.Teams.ChannelPolicy,
		cfg.Webhook.ChannelPolicy,
		cfg.GitHub.ChannelPolicy,
		cfg.GitLab.ChannelPolicy,
	} {
		if policy.Enabled && policy.MaxFailures > limit {
			limit = policy.MaxFailures
		}
	}
	return limit
}
