// Package ports defines the interfaces (hexagonal ports) the auth
// service is wired against. Implementations live under
// internal/adapters; orchestration lives in internal/service.
package ports

import (
	"context"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
)

// BeginInput carries the inputs for initiating a login flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput carries the inputs for completing a login flow.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider runs the login flow against an identity provider.
type AuthProvider interface {
	// Begin returns the provider's authorization URL together with the
	// opaque state and nonce bound to this flow.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange redeems the authorization code, verifies state and
	// nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to an initial application role for
// first-time logins. Existing accounts keep their stored role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// UserDirectory reconciles an authenticated identity with the portal's
// user records. Ensure returns the authoritative account, creating it
// with the given initial role when the identity is new.
type UserDirectory interface {
	Ensure(ctx context.Context, identity domainauth.Identity, initialRole domainauth.Role) (*model.User, error)
	// Lookup returns the account for a user ID without creating it.
	Lookup(ctx context.Context, userID string) (*model.User, error)
}
