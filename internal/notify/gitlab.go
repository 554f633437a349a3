package notify

import (
	"context"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/testbeacon/testbeacon/internal/config"
	"github.com/testbeacon/testbeacon/models"
)

// GitLabChannel reports the run result as a commit status, mirroring the
// GitHub channel for GitLab-hosted suites. Summary-only.
type GitLabChannel struct {
	cfg    config.GitLabConfig
	client *gitlab.Client
}

// NewGitLab creates a GitLabChannel from cfg.
func NewGitLab(cfg config.GitLabConfig) *GitLabChannel {
	cfg.Normalize()
	ch := &GitLabChannel{cfg: cfg}
	if cfg.Token == "" || cfg.Project == "" {
		return ch
	}

	opts := []gitlab.ClientOptionFunc{}
	if cfg.Host != "" && cfg.Host != "gitlab.com" {
		opts = append(opts, gitlab.WithBaseURL(fmt.Sprintf("https://%s/api/v4", cfg.Host)))
	}
	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return &GitLabChannel{cfg: cfg}
	}
	ch.client = client
	return ch
}

func (g *GitLabChannel) Name() string { return "gitlab" }

func (g *GitLabChannel) IsConfigured() bool {
	return g.cfg.Enabled && g.client != nil
}

func (g *GitLabChannel) SendSummary(ctx context.Context, agg models.RunAggregate, meta models.RunMeta) error {
	if meta.Commit == "" {
		return fmt.Errorf("gitlab: run has no commit to report a status on")
	}

	state := gitlab.Success
	desc := fmt.Sprintf("%d passed", agg.Passed)
	if agg.Failed > 0 {
		state = gitlab.Failed
		desc = fmt.Sprintf("%d of %d failed", agg.Failed, agg.Total)
	}

	opt := &gitlab.SetCommitStatusOptions{
		State:       state,
		Name:        gitlab.Ptr("testbeacon/e2e"),
		Description: gitlab.Ptr(desc),
	}
	if meta.ReportURL != "" {
		opt.TargetURL = gitlab.Ptr(meta.ReportURL)
	}
	if meta.Branch != "" {
		opt.Ref = gitlab.Ptr(meta.Branch)
	}

	_, _, err := g.client.Commits.SetCommitStatus(g.cfg.Project, meta.Commit, opt, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("gitlab: setting commit status on %s: %w", meta.Commit, err)
	}
	return nil
}

// SendOutcome is a no-op: commit statuses only make sense at run granularity.
func (g *GitLabChannel) SendOutcome(context.Context, models.TestOutcome) error {
	return nil
}
