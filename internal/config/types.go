package config

// Config is the root configuration structure for testbeacon.
// Serialised to ~/.testbeacon/config.json.
type Config struct {
	Suite    string         `mapstructure:"suite"    json:"suite"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Notify   NotifyConfig   `mapstructure:"notify"   json:"notify"`
	Listener ListenerConfig `mapstructure:"listener" json:"listener"`
	Digest   DigestConfig   `mapstructure:"digest"   json:"digest"`
	Report   ReportConfig   `mapstructure:"report"   json:"report"`
}

// DatabaseConfig controls the run-history storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// ReportConfig controls how runs are ingested and linked.
type ReportConfig struct {
	// ReportURL is the base link to the HTML report included in notifications.
	ReportURL string `mapstructure:"report_url" json:"report_url"`
	// ProjectPath is the suite working tree used for git metadata.
	ProjectPath string `mapstructure:"project_path" json:"project_path"`
	// RoutingFile is an optional YAML file with per-suite channel routing rules.
	RoutingFile string `mapstructure:"routing_file" json:"routing_file"`
}

// ListenerConfig controls the HTTP ingest daemon.
type ListenerConfig struct {
	// Port is the localhost port the listener binds (default: 6580).
	Port int `mapstructure:"port" json:"port"`
}

// DigestConfig controls cron-scheduled digest notifications.
type DigestConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Schedule is a cron expression (default: "0 9 * * *").
	Schedule string `mapstructure:"schedule" json:"schedule"`
	// WindowHours is how far back runs are aggregated (default: 24).
	WindowHours int `mapstructure:"window_hours" json:"window_hours"`
}

// NotifyConfig groups all notification channels.
type NotifyConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"   json:"slack"`
	Teams   TeamsConfig   `mapstructure:"teams"   json:"teams"`
	Webhook WebhookConfig `mapstructure:"webhook" json:"webhook"`
	GitHub  GitHubConfig  `mapstructure:"github"  json:"github"`
	GitLab  GitLabConfig  `mapstructure:"gitlab"  json:"gitlab"`
}

// ChannelPolicy is shared by every channel: enablement and per-status
// notification preferences. Enabled=false suppresses everything else.
type ChannelPolicy struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// CIOnly suppresses notifications when not running in a CI environment.
	CIOnly       bool `mapstructure:"ci_only"        json:"ci_only"`
	NotifyOnPass bool `mapstructure:"notify_on_pass" json:"notify_on_pass"`
	NotifyOnFail bool `mapstructure:"notify_on_fail" json:"notify_on_fail"`
	NotifyOnSkip bool `mapstructure:"notify_on_skip" json:"notify_on_skip"`
	// MaxFailures bounds the failed-test list in messages (default: 5).
	MaxFailures int `mapstructure:"max_failures" json:"max_failures"`
	// TruncateLen bounds per-failure error text in messages (default: 100).
	TruncateLen int `mapstructure:"truncate_len" json:"truncate_len"`
}

// SlackConfig configures the Slack channel. Two delivery methods exist:
// "webhook" posts to an incoming webhook URL, "bot" uses the Web API with a
// bot token and can additionally upload screenshot/trace files.
type SlackConfig struct {
	ChannelPolicy `mapstructure:",squash" json:",inline"`

	Method            string `mapstructure:"method"             json:"method"`
	WebhookURL        string `mapstructure:"webhook_url"        json:"webhook_url"`
	BotToken          string `mapstructure:"bot_token"          json:"bot_token"`
	Channel           string `mapstructure:"channel"            json:"channel"`
	UploadScreenshots bool   `mapstructure:"upload_screenshots" json:"upload_screenshots"`
	UploadTraces      bool   `mapstructure:"upload_traces"      json:"upload_traces"`
}

// TeamsConfig configures the Microsoft Teams MessageCard webhook channel.
type TeamsConfig struct {
	ChannelPolicy `mapstructure:",squash" json:",inline"`

	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
}

// WebhookConfig configures a generic JSON webhook with optional HMAC signing.
type WebhookConfig struct {
	ChannelPolicy `mapstructure:",squash" json:",inline"`

	URL    string `mapstructure:"url"    json:"url"`
	Secret string `mapstructure:"secret" json:"secret"`
}

// GitHubConfig configures the commit-status channel for GitHub.
type GitHubConfig struct {
	ChannelPolicy `mapstructure:",squash" json:",inline"`

	Token string `mapstructure:"token" json:"token"`
	// Host allows enterprise GitHub (e.g. github.mycompany.com).
	Host string `mapstructure:"host"  json:"host"`
	// Repo is "owner/name" of the repository receiving the status.
	Repo string `mapstructure:"repo"  json:"repo"`
	// Context is the status context label (default: "testbeacon/e2e").
	Context string `mapstructure:"context" json:"context"`
}

// GitLabConfig configures the commit-status channel for GitLab.
type GitLabConfig struct {
	ChannelPolicy `mapstructure:",squash" json:",inline"`

	Token string `mapstructure:"token" json:"token"`
	Host  string `mapstructure:"host"  json:"host"`
	// Project is the numeric ID or "group/project" path.
	Project string `mapstructure:"project" json:"project"`
}
