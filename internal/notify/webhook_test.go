package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

func TestWebhookSignsPayload(t *testing.T) {
	var body []byte
	var sig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		sig = r.Header.Get("X-Testbeacon-Signature")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := config.WebhookConfig{URL: srv.URL, Secret: "s3cret"}
	cfg.Enabled = true
	ch := NewWebhook(cfg)

	agg := models.RunAggregate{Total: 2, Passed: 2, PassRate: 100}
	if err := ch.SendSummary(context.Background(), agg, models.RunMeta{Suite: "shop"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if sig != want {
		t.Fatalf("signature mismatch: got %q want %q", sig, want)
	}

	var payload struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.Event != "run.completed" {
		t.Fatalf("expected run.completed event, got %q", payload.Event)
	}
}

func TestWebhookNoSecretNoSignature(t *testing.T) {
	var sig string
	var hasHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sig = r.Header.Get("X-Testbeacon-Signature")
		_, hasHeader = r.Header["X-Testbeacon-Signature"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.WebhookConfig{URL: srv.URL}
	cfg.Enabled = true
	ch := NewWebhook(cfg)

	if err := ch.SendOutcome(context.Background(), models.TestOutcome{Title: "t", Status: models.StatusFailed}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasHeader {
		t.Fatalf("no secret must mean no signature header, got %q", sig)
	}
}
