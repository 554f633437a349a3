package ci

import "testing"

func TestProviderDetection(t *testing.T) {
	// Clear the generic marker commonly set on CI machines running this suite.
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("JENKINS_URL", "")
	t.Setenv("BUILDKITE", "")
	t.Setenv("CIRCLECI", "")
	t.Setenv("TF_BUILD", "")

	if IsCI() {
		t.Fatalf("expected no CI detection, got provider %q", Provider())
	}

	t.Setenv("GITHUB_ACTIONS", "true")
	if got := Provider(); got != "github-actions" {
		t.Fatalf("expected github-actions, got %q", got)
	}

	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("CI", "true")
	if got := Provider(); got != "generic" {
		t.Fatalf("expected generic, got %q", got)
	}
	if !IsCI() {
		t.Fatal("expected IsCI true with CI=true")
	}

	t.Setenv("CI", "false")
	if IsCI() {
		t.Fatal("CI=false must not count as CI")
	}
}
