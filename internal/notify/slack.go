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

// SlackWebhook posts Block Kit messages to a Slack incoming webhook URL.
type SlackWebhook struct {
	cfg    config.SlackConfig
	client *http.Client
}

// NewSlackWebhook creates the webhook-method Slack channel.
func NewSlackWebhook(cfg config.SlackConfig) *SlackWebhook {
	cfg.Normalize()
	return &SlackWebhook{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SlackWebhook) Name() string       { return "slack" }
func (s *SlackWebhook) IsConfigured() bool { return s.cfg.Enabled && s.cfg.WebhookURL != "" }

func (s *SlackWebhook) SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error {
	msg := summary.Blocks(agg, meta, s.opts())
	return s.post(ctx, msg)
}

func (s *SlackWebhook) SendOutcome(ctx context.Context, o models.TestOutcome) error {
	msg := summary.OutcomeBlocks(o, s.opts())
	return s.post(ctx, msg)
}

func (s *SlackWebhook) opts() summary.Options {
	return summary.Options{MaxFailures: s.cfg.MaxFailures, TruncateLen: s.cfg.TruncateLen}
}

func (s *SlackWebhook) post(ctx context.Context, msg summary.BlockMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Slack incoming webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
