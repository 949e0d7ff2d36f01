package service

import (
	"context"
	"fmt"

	"github.com/jobhub/ui-api/internal/core"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
	"github.com/jobhub/ui-api/internal/ports"
)

// DebugLogger is a minimal logger interface for optional debug logging.
type DebugLogger interface {
	Debug(msg string, keyvals ...any)
}

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users  core.UserRepository
	Logger DebugLogger // optional
}

// UserService orchestrates account administration: listing, lookup, and
// blocking/unblocking accounts.
type UserService struct {
	users core.UserRepository
	log   DebugLogger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	return &UserService{
		users: opts.Users,
		log:   opts.Logger,
	}
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListByRole returns users of the given role with paging and search applied.
func (s *UserService) ListByRole(ctx context.Context, role domainauth.Role, opts model.UsersListOptions) ([]*model.User, error) {
	opts.Role = &role
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.users.List(ctx, &opts)
}

// SetBlocked flips the blocked flag on an account. Admins cannot block
// themselves; that would lock the last admin out with no recovery path.
func (s *UserService) SetBlocked(ctx context.Context, actorID, userID string, blocked bool) (*model.User, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}
	if blocked && actorID == userID {
		return nil, apperrors.Validation("You cannot block your own account.")
	}

	user, err := s.users.SetBlocked(ctx, userID, blocked)
	if err != nil {
		return nil, fmt.Errorf("set blocked: %w", err)
	}
	if s.log != nil {
		s.log.Debug("user blocked flag changed", "user_id", userID, "blocked", blocked, "actor_id", actorID)
	}
	return user, nil
}

// Delete removes an account and everything it owns. Admins cannot delete
// their own account.
func (s *UserService) Delete(ctx context.Context, actorID, userID string) error {
	if userID == "" {
		return apperrors.Validation("user ID is required")
	}
	if actorID == userID {
		return apperrors.Validation("You cannot delete your own account.")
	}

	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("User not found.")
	}
	if s.log != nil {
		s.log.Debug("user deleted", "user_id", userID, "actor_id", actorID)
	}
	return nil
}

// Ensure implements ports.UserDirectory on top of the repository so the
// auth flow can create accounts on first login.
func (s *UserService) Ensure(ctx context.Context, id domainauth.Identity, initialRole domainauth.Role) (*model.User, error) {
	u := &model.User{
		ID:        id.UserID,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     id.Email,
		Role:      initialRole,
	}
	user, err := s.users.Upsert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// Lookup implements ports.UserDirectory.
func (s *UserService) Lookup(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

var _ ports.UserDirectory = (*UserService)(nil)
