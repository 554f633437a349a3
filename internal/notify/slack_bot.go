package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/summary"
	"github.com/testbeacon/testbeacon/models"
)

const slackAPIBase = "https://slack.com/api"

// SlackBot posts messages through the Slack Web API with a bot token.
// Unlike the webhook method it can also upload screenshot/trace files
// attached to failing tests.
type SlackBot struct {
	cfg     config.SlackConfig
	client  *http.Client
	apiBase string
}

// NewSlackBot creates the bot-method Slack channel.
func NewSlackBot(cfg config.SlackConfig) *SlackBot {
	cfg.Normalize()
	return &SlackBot{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		apiBase: slackAPIBase,
	}
}

func (s *SlackBot) Name() string       { return "slack" }
func (s *SlackBot) IsConfigured() bool { return s.cfg.Enabled && s.cfg.BotToken != "" && s.cfg.Channel != "" }

func (s *SlackBot) SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error {
	msg := summary.Blocks(agg, meta, s.opts())
	return s.postMessage(ctx, msg)
}

// SendOutcome posts the test message first; if that succeeds and uploads are
// enabled, it then uploads the referenced screenshot/trace files. An upload
// failure is logged but does not undo the successful message send.
func (s *SlackBot) SendOutcome(ctx context.Context, o models.TestOutcome) error {
	msg := summary.OutcomeBlocks(o, s.opts())
	if err := s.postMessage(ctx, msg); err != nil {
		return err
	}

	if s.cfg.UploadScreenshots && o.Screenshot != "" {
		s.uploadFile(ctx, o.Screenshot, o.Title+" (screenshot)")
	}
	if s.cfg.UploadTraces && o.Trace != "" {
		s.uploadFile(ctx, o.Trace, o.Title+" (trace)")
	}
	return nil
}

func (s *SlackBot) opts() summary.Options {
	return summary.Options{MaxFailures: s.cfg.MaxFailures, TruncateLen: s.cfg.TruncateLen}
}

// slackAPIResponse is the common envelope of Slack Web API responses.
type slackAPIResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *SlackBot) postMessage(ctx context.Context, msg summary.BlockMessage) error {
	payload := map[string]any{
		"channel": s.cfg.Channel,
		"text":    msg.Text,
		"blocks":  msg.Blocks,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/chat.postMessage", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.cfg.BotToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeSlackResponse(resp, "chat.postMessage")
}

// uploadFile sends one local file to the configured channel. Missing files
// are skipped with a warning; other failures are logged. Nothing propagates.
func (s *SlackBot) uploadFile(ctx context.Context, path, title string) {
	if _, err := os.Stat(path); err != nil {
		slog.Warn("slack: attachment missing on disk, skipping upload", "path", path)
		return
	}
	if err := s.doUpload(ctx, path, title); err != nil {
		slog.Warn("slack: file upload failed", "path", path, "error", err)
	}
}

func (s *SlackBot) doUpload(ctx context.Context, path, title string) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from the runner's own attachment list
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("channels", s.cfg.Channel)
	_ = w.WriteField("title", title)
	_ = w.WriteField("initial_comment", title)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/files.upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.cfg.BotToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeSlackResponse(resp, "files.upload")
}

func decodeSlackResponse(resp *http.Response, method string) error {
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack %s returned %d", method, resp.StatusCode)
	}
	var api slackAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("slack %s: decoding response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("slack %s: %s", method, api.Error)
	}
	return nil
}
