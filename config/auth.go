package config

import (
	"fmt"
	"strings"
)

// AuthMode selects the authentication provider implementation.
type AuthMode string

const (
	// AuthModeOAuth uses a real OIDC identity provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses the in-process mock provider (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler so the env library
// can parse AUTH_MODE values case-insensitively.
func (m *AuthMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "oauth", "oidc":
		*m = AuthModeOAuth
	case "mock", "dev":
		*m = AuthModeMock
	default:
		return fmt.Errorf("invalid auth mode %q (valid: oauth, mock)", string(text))
	}
	return nil
}

// OAuthConfig holds OIDC provider settings used when AuthMode is oauth.
type OAuthConfig struct {
	// DiscoveryURL is the OIDC issuer or its discovery document URL.
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// ClientID is the OAuth2 client identifier registered with the provider.
	ClientID string `env:"CLIENT_ID"`
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `env:"CLIENT_SECRET"`
	// RedirectURL is the callback URL registered with the provider.
	RedirectURL string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`
	// Scope is the space-delimited scope set requested during authorization.
	Scope string `env:"SCOPE" envDefault:"openid profile email groups"`
	// LogoutURL is the provider's end-session endpoint, when it has one.
	LogoutURL string `env:"LOGOUT_URL"`
}

// Validate returns an error when required OAuth settings are missing.
func (c *OAuthConfig) Validate() error {
	if c.DiscoveryURL == "" {
		return fmt.Errorf("OAUTH_DISCOVERY_URL is required in oauth mode")
	}
	if c.ClientID == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID is required in oauth mode")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_SECRET is required in oauth mode")
	}
	return nil
}

// DevAuthConfig configures the mock provider identity used in development.
type DevAuthConfig struct {
	// UserID of the identity returned by the mock provider.
	UserID string `env:"USER_ID" envDefault:"dev-user-1"`
	// Email of the mock identity.
	Email string `env:"EMAIL" envDefault:"dev@jobhub.local"`
	// FirstName of the mock identity.
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	// LastName of the mock identity.
	LastName string `env:"LAST_NAME" envDefault:"User"`
	// Groups claimed by the mock identity, used by the role mapper.
	Groups []string `env:"GROUPS" envDefault:"portal-candidates"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Mode selects oauth (real OIDC) or mock (development) auth.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	OAuth OAuthConfig   `envPrefix:"OAUTH_"`
	Dev   DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the directory group granting the admin role.
	AdminGroup string `env:"AUTH_ADMIN_GROUP,required"`
	// RecruiterGroup is the directory group granting the recruiter role.
	RecruiterGroup string `env:"AUTH_RECRUITER_GROUP,required"`

	// SessionTTLHours is the lifetime of a session in hours.
	SessionTTLHours int `env:"AUTH_SESSION_TTL_HOURS" envDefault:"12"`
}

// Validate checks mode-specific requirements.
func (c *AuthConfig) Validate() error {
	if c.Mode == AuthModeOAuth {
		return c.OAuth.Validate()
	}
	return nil
}
