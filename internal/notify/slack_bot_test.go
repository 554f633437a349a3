package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

func slackBotConfig() config.SlackConfig {
	cfg := config.SlackConfig{
		Method:   "bot",
		BotToken: "xoxb-test",
		Channel:  "#e2e",
	}
	cfg.Enabled = true
	cfg.NotifyOnFail = true
	return cfg
}

// newBotAgainst points a SlackBot at a fake Slack API server.
func newBotAgainst(t *testing.T, handler http.Handler) (*SlackBot, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	bot := NewSlackBot(slackBotConfig())
	bot.apiBase = srv.URL
	return bot, srv
}

func TestSlackBotPostsMessageWithBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	bot, _ := newBotAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))

	err := bot.SendSummary(context.Background(), models.RunAggregate{Total: 1, Passed: 1, PassRate: 100}, models.RunMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer xoxb-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/chat.postMessage" {
		t.Fatalf("expected chat.postMessage, got %q", gotPath)
	}
}

func TestSlackBotAPIErrorEnvelope(t *testing.T) {
	bot, _ := newBotAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}))

	err := bot.SendSummary(context.Background(), models.RunAggregate{}, models.RunMeta{})
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected channel_not_found error, got %v", err)
	}
}

func TestSlackBotUploadsExistingScreenshot(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "checkout.png")
	if err := os.WriteFile(shot, []byte("png-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	var paths []string
	var uploadChannel, uploadTitle string
	bot, _ := newBotAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/files.upload" {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("expected multipart upload: %v", err)
			}
			uploadChannel = r.FormValue("channels")
			uploadTitle = r.FormValue("title")
			if _, _, err := r.FormFile("file"); err != nil {
				t.Errorf("expected file part: %v", err)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	bot.cfg.UploadScreenshots = true

	err := bot.SendOutcome(context.Background(), models.TestOutcome{
		Title:      "checkout completes",
		Status:     models.StatusFailed,
		Error:      "timeout",
		Screenshot: shot,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/chat.postMessage" || paths[1] != "/files.upload" {
		t.Fatalf("expected message then upload, got %v", paths)
	}
	if uploadChannel != "#e2e" {
		t.Fatalf("upload must target configured channel, got %q", uploadChannel)
	}
	if !strings.Contains(uploadTitle, "checkout completes") {
		t.Fatalf("upload title must name the test, got %q", uploadTitle)
	}
}

func TestSlackBotSkipsMissingScreenshot(t *testing.T) {
	var paths []string
	bot, _ := newBotAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	bot.cfg.UploadScreenshots = true

	err := bot.SendOutcome(context.Background(), models.TestOutcome{
		Title:      "checkout completes",
		Status:     models.StatusFailed,
		Screenshot: "/nonexistent/checkout.png",
	})
	if err != nil {
		t.Fatalf("missing attachment must not fail the send, got %v", err)
	}
	if len(paths) != 1 || paths[0] != "/chat.postMessage" {
		t.Fatalf("expected message only, got %v", paths)
	}
}

func TestSlackBotUploadFailureDoesNotUnwindSend(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "c.png")
	if err := os.WriteFile(shot, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	bot, _ := newBotAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files.upload" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	bot.cfg.UploadScreenshots = true

	err := bot.SendOutcome(context.Background(), models.TestOutcome{
		Title: "t", Status: models.StatusFailed, Screenshot: shot,
	})
	if err != nil {
		t.Fatalf("upload failure must not unwind the message send, got %v", err)
	}
}
