package notify

import (
	"context"
	"log/slog"

	"github.com/testbeacon/testbeacon/internal/ci"
	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/routing"
	"github.com/testbeacon/testbeacon/models"
)

// Dispatcher fans out events to all configured channels, applying each
// channel's notification policy first. Send errors are logged and swallowed.
type Dispatcher struct {
	channels []Channel
	policies map[string]config.ChannelPolicy
	router   *routing.Router

	// inCI is swappable in tests.
	inCI func() bool
}

// NewDispatcher validates cfg eagerly and creates a Dispatcher with every
// configured channel registered. A channel that is enabled but missing
// credentials fails construction here, before any test runs.
func NewDispatcher(cfg config.NotifyConfig) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		policies: map[string]config.ChannelPolicy{},
		inCI:     ci.IsCI,
	}

	channels := []struct {
		ch     Channel
		policy config.ChannelPolicy
	}{
		{newSlack(cfg.Slack), cfg.Slack.ChannelPolicy},
		{NewTeams(cfg.Teams), cfg.Teams.ChannelPolicy},
		{NewWebhook(cfg.Webhook), cfg.Webhook.ChannelPolicy},
		{NewGitHub(cfg.GitHub), cfg.GitHub.ChannelPolicy},
		{NewGitLab(cfg.GitLab), cfg.GitLab.ChannelPolicy},
	}
	for _, c := range channels {
		if c.ch == nil || !c.ch.IsConfigured() {
			continue
		}
		policy := c.policy
		policy.Normalize()
		d.channels = append(d.channels, c.ch)
		d.policies[c.ch.Name()] = policy
	}
	return d, nil
}

// newSlack picks the delivery strategy once, at construction.
func newSlack(cfg config.SlackConfig) Channel {
	if cfg.Method == "bot" {
		return NewSlackBot(cfg)
	}
	return NewSlackWebhook(cfg)
}

// SetRouter installs optional per-suite channel routing rules.
func (d *Dispatcher) SetRouter(r *routing.Router) { d.router = r }

// Channels returns the names of all active channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// IsAnyConfigured returns true if at least one channel is ready to send.
func (d *Dispatcher) IsAnyConfigured() bool { return len(d.channels) > 0 }

// NotifyOutcome sends a single test completion to every channel whose policy
// matches the outcome status. It never returns an error.
func (d *Dispatcher) NotifyOutcome(ctx context.Context, o models.TestOutcome) []Delivery {
	deliveries := make([]Delivery, 0, len(d.channels))
	for _, ch := range d.channels {
		policy := d.policies[ch.Name()]
		if !d.shouldSend(policy, o.Status) {
			deliveries = append(deliveries, Delivery{Channel: ch.Name(), State: StateFilteredOut})
			continue
		}
		deliveries = append(deliveries, d.deliver(ch, func() error {
			return ch.SendOutcome(ctx, o)
		}, "test", o.Title))
	}
	return deliveries
}

// NotifySummary sends the run-end summary. The caller is expected to wait for
// it before exiting so the message is not lost; the call itself still never
// fails.
func (d *Dispatcher) NotifySummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) []Delivery {
	status := SummaryStatus(agg)
	deliveries := make([]Delivery, 0, len(d.channels))
	for _, ch := range d.channels {
		policy := d.policies[ch.Name()]
		if !d.shouldSend(policy, status) {
			deliveries = append(deliveries, Delivery{Channel: ch.Name(), State: StateFilteredOut})
			continue
		}
		if d.router != nil && !d.router.Allowed(meta.Suite, ch.Name()) {
			deliveries = append(deliveries, Delivery{Channel: ch.Name(), State: StateFilteredOut})
			continue
		}
		deliveries = append(deliveries, d.deliver(ch, func() error {
			return ch.SendSummary(ctx, agg, meta)
		}, "summary", meta.Suite))
	}
	return deliveries
}

// deliver runs one send and folds the result into a Delivery, logging failures.
func (d *Dispatcher) deliver(ch Channel, send func() error, kind, subject string) Delivery {
	if err := send(); err != nil {
		slog.Warn("notify: channel send failed",
			"channel", ch.Name(), "kind", kind, "subject", subject, "error", err)
		return Delivery{Channel: ch.Name(), State: StateFailed, Err: err}
	}
	slog.Debug("notify: sent", "channel", ch.Name(), "kind", kind, "subject", subject)
	return Delivery{Channel: ch.Name(), State: StateSent}
}

// shouldSend applies the preference rules in order: enablement dominates,
// then CI gating, then the per-status flag.
func (d *Dispatcher) shouldSend(policy config.ChannelPolicy, status models.Status) bool {
	if !policy.Enabled {
		return false
	}
	if policy.CIOnly && !d.inCI() {
		return false
	}
	switch status {
	case models.StatusPassed:
		return policy.NotifyOnPass
	case models.StatusFailed:
		return policy.NotifyOnFail
	case models.StatusSkipped:
		return policy.NotifyOnSkip
	default:
		return false
	}
}

// SummaryStatus reduces a run aggregate to the status used for filtering:
// any failure makes the run a failure, skips alone make it skipped.
func SummaryStatus(agg models.RunAggregate) models.Status {
	switch {
	case agg.Failed > 0:
		return models.StatusFailed
	case agg.Skipped > 0 && agg.Passed == 0:
		return models.StatusSkipped
	default:
		return models.StatusPassed
	}
}
