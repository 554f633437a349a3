package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/config"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#14B8A6"))

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#10B981"))

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280"))

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long: `Walks through enabling notification channels and writes the result to
~/.testbeacon/config.json. Re-running the wizard keeps existing values as
defaults, so it is safe to use for reconfiguration.`,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println(headerStyle.Render("\n  testbeacon setup"))
	fmt.Println(dimStyle.Render("  Pick the channels your team wants run summaries on.\n"))

	// --- Step 1: suite and channels ---
	suite := cfg.Suite
	var channels []string
	if cfg.Notify.Slack.Enabled {
		channels = append(channels, "slack")
	}
	if cfg.Notify.Teams.Enabled {
		channels = append(channels, "teams")
	}
	if cfg.Notify.Webhook.Enabled {
		channels = append(channels, "webhook")
	}
	if cfg.Notify.GitHub.Enabled {
		channels = append(channels, "github")
	}
	if cfg.Notify.GitLab.Enabled {
		channels = append(channels, "gitlab")
	}

	baseForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Suite name").
				Description("Label attached to runs ingested without an explicit --suite").
				Value(&suite),
			huh.NewMultiSelect[string]().
				Title("Notification channels").
				Options(
					huh.NewOption("Slack", "slack"),
					huh.NewOption("Microsoft Teams", "teams"),
					huh.NewOption("Generic webhook", "webhook"),
					huh.NewOption("GitHub commit status", "github"),
					huh.NewOption("GitLab commit status", "gitlab"),
				).
				Value(&channels),
		),
	)
	if err := baseForm.Run(); err != nil {
		return err
	}
	cfg.Suite = strings.TrimSpace(suite)

	enabled := map[string]bool{}
	for _, ch := range channels {
		enabled[ch] = true
	}
	cfg.Notify.Slack.Enabled = enabled["slack"]
	cfg.Notify.Teams.Enabled = enabled["teams"]
	cfg.Notify.Webhook.Enabled = enabled["webhook"]
	cfg.Notify.GitHub.Enabled = enabled["github"]
	cfg.Notify.GitLab.Enabled = enabled["gitlab"]

	// --- Step 2: per-channel credentials ---
	if enabled["slack"] {
		fmt.Println(headerStyle.Render("\n  Slack"))
		method := cfg.Notify.Slack.Method
		if method == "" {
			method = "webhook"
		}
		slackForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Delivery method").
					Options(
						huh.NewOption("Incoming webhook (simplest)", "webhook"),
						huh.NewOption("Bot token (supports screenshot upload)", "bot"),
					).
					Value(&method),
			),
		)
		if err := slackForm.Run(); err != nil {
			return err
		}
		cfg.Notify.Slack.Method = method

		if method == "bot" {
			botForm := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Bot token").Placeholder("xoxb-...").
					EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Slack.BotToken),
				huh.NewInput().Title("Channel").Placeholder("#e2e-results").
					Value(&cfg.Notify.Slack.Channel),
				huh.NewConfirm().Title("Upload failure screenshots?").
					Value(&cfg.Notify.Slack.UploadScreenshots),
				huh.NewConfirm().Title("Upload trace files?").
					Value(&cfg.Notify.Slack.UploadTraces),
			))
			if err := botForm.Run(); err != nil {
				return err
			}
		} else {
			hookForm := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Webhook URL").
					Placeholder("https://hooks.slack.com/services/...").
					EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Slack.WebhookURL),
			))
			if err := hookForm.Run(); err != nil {
				return err
			}
		}
	}

	if enabled["teams"] {
		fmt.Println(headerStyle.Render("\n  Microsoft Teams"))
		teamsForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Incoming webhook URL").
				Placeholder("https://outlook.office.com/webhook/...").
				EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Teams.WebhookURL),
		))
		if err := teamsForm.Run(); err != nil {
			return err
		}
	}

	if enabled["webhook"] {
		fmt.Println(headerStyle.Render("\n  Generic webhook"))
		hookForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Endpoint URL").
				Placeholder("https://internal.example.com/hooks/testbeacon").
				Value(&cfg.Notify.Webhook.URL),
			huh.NewInput().Title("HMAC signing secret (optional)").
				EchoMode(huh.EchoModePassword).Value(&cfg.Notify.Webhook.Secret),
		))
		if err := hookForm.Run(); err != nil {
			return err
		}
	}

	if enabled["github"] {
		fmt.Println(headerStyle.Render("\n  GitHub commit status"))
		ghForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Personal access token").Placeholder("ghp_...").
				EchoMode(huh.EchoModePassword).Value(&cfg.Notify.GitHub.Token),
			huh.NewInput().Title("Repository").Placeholder("owner/name").
				Value(&cfg.Notify.GitHub.Repo),
			huh.NewInput().Title("Host (blank for github.com)").
				Value(&cfg.Notify.GitHub.Host),
		))
		if err := ghForm.Run(); err != nil {
			return err
		}
	}

	if enabled["gitlab"] {
		fmt.Println(headerStyle.Render("\n  GitLab commit status"))
		glForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Access token").Placeholder("glpat-...").
				EchoMode(huh.EchoModePassword).Value(&cfg.Notify.GitLab.Token),
			huh.NewInput().Title("Project").Placeholder("group/project or numeric ID").
				Value(&cfg.Notify.GitLab.Project),
			huh.NewInput().Title("Host (blank for gitlab.com)").
				Value(&cfg.Notify.GitLab.Host),
		))
		if err := glForm.Run(); err != nil {
			return err
		}
	}

	// --- Step 3: shared preferences ---
	if len(channels) > 0 {
		fmt.Println(headerStyle.Render("\n  Preferences"))
		notifyOnPass := cfg.Notify.Slack.NotifyOnPass
		ciOnly := cfg.Notify.Slack.CIOnly
		prefForm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Also notify on fully green runs?").
				Description("Failures always notify; green runs are quiet by default.").
				Value(&notifyOnPass),
			huh.NewConfirm().
				Title("Only notify when running in CI?").
				Value(&ciOnly),
		))
		if err := prefForm.Run(); err != nil {
			return err
		}
		for _, policy := range []*config.ChannelPolicy{
			&cfg.Notify.Slack.ChannelPolicy,
			&cfg.Notify.Teams.ChannelPolicy,
			&cfg.Notify.Webhook.ChannelPolicy,
			&cfg.Notify.GitHub.ChannelPolicy,
			&cfg.Notify.GitLab.ChannelPolicy,
		} {
			policy.NotifyOnPass = notifyOnPass
			policy.NotifyOnFail = true
			policy.CIOnly = ciOnly
			policy.Normalize()
		}
	}

	if err := cfg.Notify.Validate(); err != nil {
		return fmt.Errorf("configuration incomplete: %w", err)
	}

	if err := config.Save(cfg, cfgFile); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	p, _ := config.ConfigPath(cfgFile)
	fmt.Println(successStyle.Render("\n  Configuration saved to " + p))
	fmt.Println(dimStyle.Render("  Verify everything with: testbeacon doctor\n"))
	return nil
}
