package routing

import "testing"

const sampleRules = `
rules:
  - suite: "checkout-*"
    channels: [slack, teams]
  - suite: "smoke"
    channels: [slack]
`

func TestFirstMatchingRuleWins(t *testing.T) {
	r, err := Parse([]byte(sampleRules))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !r.Allowed("checkout-eu", "slack") || !r.Allowed("checkout-eu", "teams") {
		t.Fatal("checkout-* must route to slack and teams")
	}
	if r.Allowed("checkout-eu", "github") {
		t.Fatal("checkout-* must not route to github")
	}
	if r.Allowed("smoke", "teams") {
		t.Fatal("smoke must route only to slack")
	}
}

func TestUnmatchedSuiteGoesEverywhere(t *testing.T) {
	r, err := Parse([]byte(sampleRules))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !r.Allowed("nightly-regression", "github") {
		t.Fatal("suites matching no rule must reach all channels")
	}
}

func TestParseRejectsBadPattern(t *testing.T) {
	if _, err := Parse([]byte("rules:\n  - suite: \"[\"\n    channels: [slack]\n")); err == nil {
		t.Fatal("expected error for invalid glob pattern")
	}
	if _, err := Parse([]byte("rules:\n  - channels: [slack]\n")); err == nil {
		t.Fatal("expected error for rule without suite")
	}
}
