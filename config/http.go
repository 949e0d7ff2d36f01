package config

import "compress/gzip"

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain scopes the session cookie. Empty means host-only.
	CookieDomain string `env:"HTTP_COOKIE_DOMAIN"`

	// CompressionEnabled toggles gzip response compression.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"true"`

	// CompressionLevel is the gzip level (1-9). Out-of-range values are
	// clamped to gzip.DefaultCompression.
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"5"`
}

// Sanitize clamps compression settings to valid gzip levels.
func (c *HTTPConfig) Sanitize() {
	if c.CompressionLevel < gzip.BestSpeed || c.CompressionLevel > gzip.BestCompression {
		c.CompressionLevel = gzip.DefaultCompression
	}
}
