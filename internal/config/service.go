package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
}

// GatewayConfig selects the PagBank environment and carries credentials.
type GatewayConfig struct {
	Environment string `yaml:"environment"` // sandbox or production
	Token       string `yaml:"token"`
	// NotificationURL is sent to the gateway as the webhook target for
	// charge/order status events.
	NotificationURL string `yaml:"notification_url"`
	// RedirectURL is where hosted checkouts send the customer afterwards.
	RedirectURL string `yaml:"redirect_url"`
}

// NotificationConfig drives status-change delivery to the client system.
type NotificationConfig struct {
	URL        string        `yaml:"url"`
	Enabled    bool          `yaml:"enabled"`
	RetryCount int           `yaml:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Timeout    time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	SystemKey string `yaml:"system_key"`
}
