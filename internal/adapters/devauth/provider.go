// Package devauth short-circuits the OAuth flow for local development:
// Begin redirects straight back to our own callback, and Exchange returns
// a fixed identity from config instead of talking to a provider.
package devauth

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Config is the identity the dev provider hands out. UserID and Email are
// required; names and Groups may be empty.
type Config struct {
	UserID          string
	FirstName       string
	LastName        string
	Email           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
type Provider struct {
	cfg Config
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	return &Provider{cfg: cfg}, nil
}

// Begin returns a local callback URL with fresh state and nonce. The
// callback handler validates state the same way it would for a real
// provider, so the dev flow exercises the same code path.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state := rand.Text()
	nonce := rand.Text()
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the code and returns the configured identity with a
// fresh expiry.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		UserID:    p.cfg.UserID,
		FirstName: p.cfg.FirstName,
		LastName:  p.cfg.LastName,
		Email:     p.cfg.Email,
		Groups:    append([]string(nil), p.cfg.Groups...),
		ExpiresAt: time.Now().Add(p.cfg.SessionDuration),
	}, nil
}
