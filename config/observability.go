package config

import "time"

// MetricsConfig holds StatsD metrics configuration.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	Address string `env:"METRICS_STATSD_ADDR" envDefault:"localhost:8125"`
	Prefix  string `env:"METRICS_PREFIX" envDefault:"jobhub"`
}

// SlackConfig holds Slack webhook notification configuration. When the
// webhook URL is empty, Slack delivery is disabled and mutation outcomes
// only reach the log sink.
type SlackConfig struct {
	WebhookURL string        `env:"SLACK_WEBHOOK_URL"`
	Channel    string        `env:"SLACK_CHANNEL"`
	Username   string        `env:"SLACK_USERNAME" envDefault:"jobhub"`
	Timeout    time.Duration `env:"SLACK_TIMEOUT" envDefault:"5s"`
	RetryLimit int           `env:"SLACK_RETRY_LIMIT" envDefault:"2"`
	// MinSeverity limits delivery; "error" posts only failed mutations,
	// empty posts everything.
	MinSeverity string `env:"SLACK_MIN_SEVERITY" envDefault:"error"`
}

// Enabled reports whether Slack delivery is configured.
func (c *SlackConfig) Enabled() bool {
	return c.WebhookURL != ""
}

// ObservabilityConfig groups metrics and notification settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig
	Slack   SlackConfig
}
