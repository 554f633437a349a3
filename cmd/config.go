package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/testbeacon/testbeacon/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and manage testbeacon configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration (secrets redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		// Redact secrets.
		if cfg.Notify.Slack.BotToken != "" {
			cfg.Notify.Slack.BotToken = "xoxb-***"
		}
		if cfg.Notify.Slack.WebhookURL != "" {
			cfg.Notify.Slack.WebhookURL = "https://hooks.slack.com/***"
		}
		if cfg.Notify.Teams.WebhookURL != "" {
			cfg.Notify.Teams.WebhookURL = "https://***.webhook.office.com/***"
		}
		if cfg.Notify.Webhook.Secret != "" {
			cfg.Notify.Webhook.Secret = "***"
		}
		if cfg.Notify.GitHub.Token != "" {
			cfg.Notify.GitHub.Token = "ghp-***"
		}
		if cfg.Notify.GitLab.Token != "" {
			cfg.Notify.GitLab.Token = "glpat-***"
		}
		if cfg.Database.DSN != "" {
			cfg.Database.DSN = "***"
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.ConfigPath(cfgFile)
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.ConfigPath(cfgFile)
		if err != nil {
			return err
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		c := exec.Command(editor, p)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configEditCmd, configInitCmd)
}
