package config

import (
	"errors"
	"testing"
)

func TestValidateSlackWebhookMissingURL(t *testing.T) {
	n := NotifyConfig{}
	n.Slack.Enabled = true
	n.Slack.Method = "webhook"

	err := n.Validate()
	if err == nil {
		t.Fatal("expected error for enabled webhook channel without URL")
	}
	var cerr *ChannelError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ChannelError, got %T: %v", err, err)
	}
	if cerr.Channel != "slack" {
		t.Fatalf("expected channel slack, got %q", cerr.Channel)
	}
}

func TestValidateSlackBotMissingToken(t *testing.T) {
	n := NotifyConfig{}
	n.Slack.Enabled = true
	n.Slack.Method = "bot"
	n.Slack.Channel = "#e2e"

	if err := n.Validate(); err == nil {
		t.Fatal("expected error for bot method without token")
	}
}

func TestValidateDisabledSkipsCredentials(t *testing.T) {
	n := NotifyConfig{}
	n.Slack.Enabled = false
	n.Slack.Method = "bot" // no token, but disabled
	n.Teams.Enabled = false
	n.GitHub.Enabled = false

	if err := n.Validate(); err != nil {
		t.Fatalf("disabled channels must not be validated, got %v", err)
	}
}

func TestValidateEmptyMethodDefaultsToWebhook(t *testing.T) {
	n := NotifyConfig{}
	n.Slack.Enabled = true
	n.Slack.WebhookURL = "https://hooks.slack.example/T000/B000"

	if err := n.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUnknownMethod(t *testing.T) {
	n := NotifyConfig{}
	n.Slack.Enabled = true
	n.Slack.Method = "carrier-pigeon"

	if err := n.Validate(); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestValidateGitHubNeedsRepo(t *testing.T) {
	n := NotifyConfig{}
	n.GitHub.Enabled = true
	n.GitHub.Token = "ghp_x"

	if err := n.Validate(); err == nil {
		t.Fatal("expected error for github channel without repo")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	p := ChannelPolicy{}
	p.Normalize()
	if p.MaxFailures != DefaultMaxFailures {
		t.Fatalf("expected max_failures %d, got %d", DefaultMaxFailures, p.MaxFailures)
	}
	if p.TruncateLen != DefaultTruncateLen {
		t.Fatalf("expected truncate_len %d, got %d", DefaultTruncateLen, p.TruncateLen)
	}

	p = ChannelPolicy{MaxFailures: 10, TruncateLen: 200}
	p.Normalize()
	if p.MaxFailures != 10 || p.TruncateLen != 200 {
		t.Fatalf("explicit values must be kept, got %+v", p)
	}
}
