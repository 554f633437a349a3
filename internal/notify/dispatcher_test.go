package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/internal/routing"
	"github.com/testbeacon/testbeacon/models"
)

// fakeChannel records sends and can be told to fail.
type fakeChannel struct {
	name      string
	summaries int
	outcomes  int
	fail      bool
}

func (f *fakeChannel) Name() string       { return f.name }
func (f *fakeChannel) IsConfigured() bool { return true }

func (f *fakeChannel) SendSummary(context.Context, models.RunAggregate, models.RunMeta) error {
	f.summaries++
	if f.fail {
		return errors.New("send failed")
	}
	return nil
}

func (f *fakeChannel) SendOutcome(context.Context, models.TestOutcome) error {
	f.outcomes++
	if f.fail {
		return errors.New("send failed")
	}
	return nil
}

func testDispatcher(policy config.ChannelPolicy, chs ...Channel) *Dispatcher {
	policy.Normalize()
	d := &Dispatcher{
		policies: map[string]config.ChannelPolicy{},
		inCI:     func() bool { return false },
	}
	for _, ch := range chs {
		d.channels = append(d.channels, ch)
		d.policies[ch.Name()] = policy
	}
	return d
}

func TestDisabledDominates(t *testing.T) {
	fake := &fakeChannel{name: "slack"}
	d := testDispatcher(config.ChannelPolicy{
		Enabled:      false,
		NotifyOnPass: true,
		NotifyOnFail: true,
		NotifyOnSkip: true,
	}, fake)

	for _, status := range []models.Status{models.StatusPassed, models.StatusFailed, models.StatusSkipped} {
		ds := d.NotifyOutcome(context.Background(), models.TestOutcome{Title: "t", Status: status})
		if ds[0].State != StateFilteredOut {
			t.Fatalf("disabled channel must filter %s, got %s", status, ds[0].State)
		}
	}
	if fake.outcomes != 0 {
		t.Fatalf("expected zero sends, got %d", fake.outcomes)
	}
}

func TestPassedEventFilteredByDefaultPolicy(t *testing.T) {
	fake := &fakeChannel{name: "slack"}
	d := testDispatcher(config.ChannelPolicy{Enabled: true, NotifyOnFail: true}, fake)

	d.NotifyOutcome(context.Background(), models.TestOutcome{Title: "ok", Status: models.StatusPassed})
	if fake.outcomes != 0 {
		t.Fatalf("notify_on_pass=false must suppress passed events, got %d sends", fake.outcomes)
	}

	d.NotifyOutcome(context.Background(), models.TestOutcome{Title: "bad", Status: models.StatusFailed})
	if fake.outcomes != 1 {
		t.Fatalf("failed event must be sent, got %d sends", fake.outcomes)
	}
}

func TestCIOnlyGating(t *testing.T) {
	fake := &fakeChannel{name: "slack"}
	d := testDispatcher(config.ChannelPolicy{Enabled: true, CIOnly: true, NotifyOnFail: true}, fake)

	ds := d.NotifyOutcome(context.Background(), models.TestOutcome{Status: models.StatusFailed})
	if ds[0].State != StateFilteredOut {
		t.Fatalf("ci_only outside CI must filter, got %s", ds[0].State)
	}

	d.inCI = func() bool { return true }
	ds = d.NotifyOutcome(context.Background(), models.TestOutcome{Status: models.StatusFailed})
	if ds[0].State != StateSent {
		t.Fatalf("ci_only inside CI must send, got %s", ds[0].State)
	}
}

func TestSendFailureIsAbsorbedAndReported(t *testing.T) {
	fake := &fakeChannel{name: "slack", fail: true}
	d := testDispatcher(config.ChannelPolicy{Enabled: true, NotifyOnFail: true}, fake)

	agg := models.RunAggregate{Total: 1, Failed: 1}
	ds := d.NotifySummary(context.Background(), agg, models.RunMeta{Suite: "e2e"})
	if ds[0].State != StateFailed {
		t.Fatalf("expected failed delivery state, got %s", ds[0].State)
	}
	if ds[0].Err == nil {
		t.Fatal("failed delivery must carry its error")
	}
}

func TestSummaryStatusReduction(t *testing.T) {
	cases := []struct {
		agg  models.RunAggregate
		want models.Status
	}{
		{models.RunAggregate{Total: 3, Passed: 3}, models.StatusPassed},
		{models.RunAggregate{Total: 3, Passed: 2, Failed: 1}, models.StatusFailed},
		{models.RunAggregate{Total: 2, Skipped: 2}, models.StatusSkipped},
		{models.RunAggregate{Total: 3, Passed: 1, Skipped: 2}, models.StatusPassed},
		{models.RunAggregate{}, models.StatusPassed},
	}
	for _, c := range cases {
		if got := SummaryStatus(c.agg); got != c.want {
			t.Fatalf("aggregate %+v: expected %s, got %s", c.agg, c.want, got)
		}
	}
}

func TestRouterRestrictsSummaryChannels(t *testing.T) {
	slack := &fakeChannel{name: "slack"}
	teams := &fakeChannel{name: "teams"}
	d := testDispatcher(config.ChannelPolicy{Enabled: true, NotifyOnFail: true}, slack, teams)

	r, err := routing.Parse([]byte("rules:\n  - suite: \"checkout\"\n    channels: [slack]\n"))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	d.SetRouter(r)

	agg := models.RunAggregate{Total: 1, Failed: 1}
	d.NotifySummary(context.Background(), agg, models.RunMeta{Suite: "checkout"})
	if slack.summaries != 1 || teams.summaries != 0 {
		t.Fatalf("routing must keep slack only: slack=%d teams=%d", slack.summaries, teams.summaries)
	}
}

func TestNewDispatcherRejectsBrokenConfig(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.Slack.Enabled = true
	cfg.Slack.Method = "bot" // no token

	if _, err := NewDispatcher(cfg); err == nil {
		t.Fatal("expected eager configuration error")
	}
}

func TestNewDispatcherSkipsUnconfiguredChannels(t *testing.T) {
	cfg := config.NotifyConfig{}
	cfg.Slack.Enabled = true
	cfg.Slack.WebhookURL = "https://hooks.slack.example/x"

	d, err := NewDispatcher(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chans := d.Channels()
	if len(chans) != 1 || chans[0] != "slack" {
		t.Fatalf("expected only slack active, got %v", chans)
	}
	if !d.IsAnyConfigured() {
		t.Fatal("expected IsAnyConfigured true")
	}
}
