package config

import (
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents a runnable service within the process.
type ServiceMode string

const (
	// ServiceModeHTTP runs the API server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeReaper runs the posting reaper worker.
	ServiceModeReaper ServiceMode = "reaper"
)

// ParseServices parses a comma-delimited SERVICES value into a set of
// enabled service modes. Unknown modes are an error.
func ParseServices(raw string) (map[ServiceMode]bool, error) {
	enabled := make(map[ServiceMode]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		switch ServiceMode(name) {
		case ServiceModeHTTP, ServiceModeReaper:
			enabled[ServiceMode(name)] = true
		default:
			return nil, fmt.Errorf("unknown service %q (valid: http, reaper)", name)
		}
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no services enabled")
	}
	return enabled, nil
}

// ReaperConfig configures the posting reaper worker, which closes stale
// open postings and removes long-closed ones.
type ReaperConfig struct {
	// Interval between reaper sweeps.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1h"`
	// StaleOpenMaxAge is how long an open posting may go without an
	// update before the reaper closes it.
	StaleOpenMaxAge time.Duration `env:"REAPER_STALE_OPEN_MAX_AGE" envDefault:"720h"`
	// ClosedMaxAge is how long a closed posting is retained before deletion.
	ClosedMaxAge time.Duration `env:"REAPER_CLOSED_MAX_AGE" envDefault:"2160h"`
	// BatchSize limits rows touched per statement during a sweep.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"500"`
}

// Sanitize applies guardrails to reaper tuning values.
func (c *ReaperConfig) Sanitize() {
	if c.Interval < time.Minute {
		c.Interval = time.Hour
	}
	if c.StaleOpenMaxAge < time.Hour {
		c.StaleOpenMaxAge = 720 * time.Hour
	}
	if c.ClosedMaxAge < time.Hour {
		c.ClosedMaxAge = 2160 * time.Hour
	}
	if c.BatchSize < 1 || c.BatchSize > 10000 {
		c.BatchSize = 500
	}
}
