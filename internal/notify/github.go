package notify

import (
	"context"
	"fmt"
	"strings"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

// GitHubChannel reports the run result as a commit status on the tested
// revision, so the result shows up on pull requests next to CI checks.
// It is a summary-only channel: per-test events are not mirrored to GitHub.
type GitHubChannel struct {
	cfg    config.GitHubConfig
	client *gogithub.Client
	owner  string
	repo   string
}

// NewGitHub creates a GitHubChannel from cfg. Returns an unconfigured channel
// (dropped by the dispatcher) when credentials are absent or the repo slug is
// malformed.
func NewGitHub(cfg config.GitHubConfig) *GitHubChannel {
	cfg.Normalize()
	ch := &GitHubChannel{cfg: cfg}
	if cfg.Token == "" || cfg.Repo == "" {
		return ch
	}
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok {
		return ch
	}
	ch.owner, ch.repo = owner, repo

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := gogithub.NewClient(tc)

	// Support GitHub Enterprise by overriding the base URL.
	if cfg.Host != "" && cfg.Host != "github.com" {
		base := fmt.Sprintf("https://%s/api/v3/", cfg.Host)
		upload := fmt.Sprintf("https://%s/api/uploads/", cfg.Host)
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return &GitHubChannel{cfg: cfg}
		}
	}
	ch.client = client
	return ch
}

func (g *GitHubChannel) Name() string { return "github" }

func (g *GitHubChannel) IsConfigured() bool {
	return g.cfg.Enabled && g.client != nil
}

func (g *GitHubChannel) SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error {
	if meta.Commit == "" {
		return fmt.Errorf("github: run has no commit to report a status on")
	}

	state := "success"
	desc := fmt.Sprintf("%d passed", agg.Passed)
	if agg.Failed > 0 {
		state = "failure"
		desc = fmt.Sprintf("%d of %d failed", agg.Failed, agg.Total)
	}

	statusCtx := g.cfg.Context
	if statusCtx == "" {
		statusCtx = "testbeacon/e2e"
	}
	status := &gogithub.RepoStatus{
		State:       gogithub.String(state),
		Description: gogithub.String(desc),
		Context:     gogithub.String(statusCtx),
	}
	if meta.ReportURL != "" {
		status.TargetURL = gogithub.String(meta.ReportURL)
	}

	_, _, err := g.client.Repositories.CreateStatus(ctx, g.owner, g.repo, meta.Commit, status)
	if err != nil {
		return fmt.Errorf("github: setting commit status on %s: %w", meta.Commit, err)
	}
	return nil
}

// SendOutcome is a no-op: commit statuses only make sense at run granularity.
func (g *GitHubChannel) SendOutcome(context.Context, models.TestOutcome) error {
	return nil
}
