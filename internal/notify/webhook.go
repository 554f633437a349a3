package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

// WebhookChannel sends raw JSON run data to a generic HTTP endpoint with
// optional HMAC-SHA256 signing, for teams that feed results into their own
// dashboards.
type WebhookChannel struct {
	cfg    config.WebhookConfig
	client *http.Client
}

// NewWebhook creates a WebhookChannel from cfg.
func NewWebhook(cfg config.WebhookConfig) *WebhookChannel {
	cfg.Normalize()
	return &WebhookChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *WebhookChannel) Name() string       { return "webhook" }
func (w *WebhookChannel) IsConfigured() bool { return w.cfg.Enabled && w.cfg.URL != "" }

func (w *WebhookChannel) SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error {
	return w.post(ctx, map[string]any{
		"event":   "run.completed",
		"run":     agg,
		"meta":    meta,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *WebhookChannel) SendOutcome(ctx context.Context, o models.TestOutcome) error {
	return w.post(ctx, map[string]any{
		"event":   "test.completed",
		"test":    o,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *WebhookChannel) post(ctx context.Context, payload map[string]any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Secret != "" {
		mac := hmac.New(sha256.New, []byte(w.cfg.Secret))
		mac.Write(b)
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("X-Testbeacon-Signature", "sha256="+sig)
	}
	resp, err := w.client.Do(req) // #nosec G107 -- URL is a user-configured webhook endpoint
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
