package config

import (
	"os"
	"strings"
)

// AppConfig composes the portal's configuration from the domain files
// in this package. Values load from environment variables via
// github.com/caarlos0/env:
//   - auth.go: login provider and session settings
//   - database.go: Postgres, Redis, and collection cache
//   - http.go: HTTP server
//   - services.go: service selection and reaper tuning
//   - observability.go: metrics and notifications
type AppConfig struct {
	// IsDev enables development behavior (mock auth, seed data, relaxed
	// cookies). Set DEV=true or NODE_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP HTTPConfig

	// Services selects which services this process runs, comma-delimited.
	// Valid values: http, reaper.
	Services string `env:"SERVICES" envDefault:"http"`

	Reaper ReaperConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to values loaded from env; call it once
// after loading.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Cache.Sanitize()
	c.Reaper.Sanitize()

	c.detectDevMode()
}

// detectDevMode honors NODE_ENV as a fallback for IsDev since the
// frontend tooling in this stack sets it.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices parses the Services list.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled reports whether this process serves HTTP.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	return c.serviceEnabled(ServiceModeHTTP)
}

// IsReaperEnabled reports whether this process runs the posting reaper.
func (c *AppConfig) IsReaperEnabled() bool {
	return c.serviceEnabled(ServiceModeReaper)
}

func (c *AppConfig) serviceEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[mode]
}
