package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/summary"
	"github.com/testbeacon/testbeacon/models"
)

// TeamsChannel posts MessageCard payloads to a Microsoft Teams incoming
// webhook.
type TeamsChannel struct {
	cfg    config.TeamsConfig
	client *http.Client
}

// NewTeams creates a TeamsChannel from cfg.
func NewTeams(cfg config.TeamsConfig) *TeamsChannel {
	cfg.Normalize()
	return &TeamsChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (t *TeamsChannel) Name() string       { return "teams" }
func (t *TeamsChannel) IsConfigured() bool { return t.cfg.Enabled && t.cfg.WebhookURL != "" }

func (t *TeamsChannel) SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error {
	card := summary.Card(agg, meta, t.opts())
	return t.post(ctx, card)
}

func (t *TeamsChannel) SendOutcome(ctx context.Context, o models.TestOutcome) error {
	// A single outcome is rendered as a one-test aggregate card.
	agg := models.RunAggregate{Total: 1, DurationMS: o.DurationMS, ElapsedMS: o.DurationMS}
	switch o.Status {
	case models.StatusPassed:
		agg.Passed, agg.PassRate = 1, 100
	case models.StatusFailed:
		agg.Failed = 1
		agg.Failures = []models.FailureDetail{{
			Title: o.Title, File: o.File, Error: o.Error,
			DurationMS: o.DurationMS, Screenshot: o.Screenshot,
		}}
	case models.StatusSkipped:
		agg.Skipped = 1
	}
	card := summary.Card(agg, models.RunMeta{Suite: o.Title}, t.opts())
	return t.post(ctx, card)
}

func (t *TeamsChannel) opts() summary.Options {
	return summary.Options{MaxFailures: t.cfg.MaxFailures, TruncateLen: t.cfg.TruncateLen}
}

func (t *TeamsChannel) post(ctx context.Context, card summary.MessageCard) error {
	b, err := json.Marshal(card)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Teams connector URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("teams webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
