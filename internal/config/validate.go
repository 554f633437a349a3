package config

import "fmt"

const (
	DefaultMaxFailures = 5
	DefaultTruncateLen = 100
)

// ChannelError reports a channel that is enabled but missing the credentials
// its delivery method requires. It is raised at config validation time, before
// any test runs, so a broken channel never surfaces mid-run.
type ChannelError struct {
	Channel string
	Reason  string
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("notify.%s: %s", e.Channel, e.Reason)
}

// Validate checks every enabled notification channel eagerly.
// Disabled channels are never validated.
func (n *NotifyConfig) Validate() error {
	if n.Slack.Enabled {
		switch n.Slack.Method {
		case "webhook", "":
			if n.Slack.WebhookURL == "" {
				return &ChannelError{Channel: "slack", Reason: "method is webhook but webhook_url is empty"}
			}
		case "bot":
			if n.Slack.BotToken == "" {
				return &ChannelError{Channel: "slack", Reason: "method is bot but bot_token is empty"}
			}
			if n.Slack.Channel == "" {
				return &ChannelError{Channel: "slack", Reason: "method is bot but channel is empty"}
			}
		default:
			return &ChannelError{Channel: "slack", Reason: fmt.Sprintf("unknown method %q (supported: webhook, bot)", n.Slack.Method)}
		}
	}
	if n.Teams.Enabled && n.Teams.WebhookURL == "" {
		return &ChannelError{Channel: "teams", Reason: "webhook_url is empty"}
	}
	if n.Webhook.Enabled && n.Webhook.URL == "" {
		return &ChannelError{Channel: "webhook", Reason: "url is empty"}
	}
	if n.GitHub.Enabled {
		if n.GitHub.Token == "" {
			return &ChannelError{Channel: "github", Reason: "token is empty"}
		}
		if n.GitHub.Repo == "" {
			return &ChannelError{Channel: "github", Reason: "repo is empty (expected owner/name)"}
		}
	}
	if n.GitLab.Enabled {
		if n.GitLab.Token == "" {
			return &ChannelError{Channel: "gitlab", Reason: "token is empty"}
		}
		if n.GitLab.Project == "" {
			return &ChannelError{Channel: "gitlab", Reason: "project is empty"}
		}
	}
	return nil
}

// Normalize fills zero-valued policy knobs with their defaults.
func (p *ChannelPolicy) Normalize() {
	if p.MaxFailures <= 0 {
		p.MaxFailures = DefaultMaxFailures
	}
	if p.TruncateLen <= 0 {
		p.TruncateLen = DefaultTruncateLen
	}
}
