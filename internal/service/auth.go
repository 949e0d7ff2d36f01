package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	apperrors "github.com/jobhub/ui-api/internal/errors"
	"github.com/jobhub/ui-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	Users    ports.UserDirectory
}

// AuthService orchestrates authentication flows by coordinating the provider,
// role mapping, the user directory, and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	users    ports.UserDirectory
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		users:    opts.Users,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow: it exchanges the code for an
// identity, ensures a directory record exists, and persists a session stamped
// with the directory's authoritative role and blocked flag. The group mapping
// only decides the initial role for first-time accounts; returning accounts
// keep whatever role an admin may have assigned since.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	initialRole := s.roles.Map(identity.Groups)

	user, err := s.users.Ensure(ctx, identity, initialRole)
	if err != nil {
		return nil, fmt.Errorf("ensure user record: %w", err)
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		IsBlocked: user.IsBlocked,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{
		Session: session,
	}, nil
}

// GetSession retrieves a session by ID. Any failure along the way (missing
// session, store error, expiry) yields an authentication error so callers
// treat the request as anonymous rather than guessing.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "authentication required")
	}

	if session.Expired(time.Now()) {
		// Best-effort cleanup; the lookup result does not depend on it.
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, apperrors.Unauthenticated("session expired")
	}

	return &session, nil
}

// RefreshSession re-reads the directory record for the session's user and
// re-stamps role and blocked flag, persisting the updated session. Admin
// actions such as blocking take effect on the next refresh without forcing
// a re-login.
func (s *AuthService) RefreshSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Lookup(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user record: %w", err)
	}

	session.Role = user.Role
	session.IsBlocked = user.IsBlocked
	session.FirstName = user.FirstName
	session.LastName = user.LastName
	session.Email = user.Email

	if saveErr := s.sessions.Save(ctx, *session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return session, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// UUID session IDs are URL-safe and have good entropy
	return uuid.New().String()
}
