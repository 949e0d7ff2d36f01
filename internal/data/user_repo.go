// Package data provides PostgreSQL-backed repositories for the portal.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jobhub/ui-api/internal/data/database"
	"github.com/jobhub/ui-api/internal/data/pgxutil"
	"github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

const userColumns = "id, first_name, last_name, email, role, is_blocked, created_at, updated_at"

// UserRepo provides database operations for portal accounts.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: systemClock{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Upsert inserts the account on first login and refreshes identity fields on
// subsequent ones. Role and is_blocked are never overwritten for existing
// rows; they belong to admins, not to the login flow.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User) (*model.User, error) {
	if u == nil || u.ID == "" {
		return nil, apperrors.Validation("user ID is required")
	}

	now := r.timeProvider.Now().UTC()
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (id, first_name, last_name, email, role, is_blocked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
			ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name  = EXCLUDED.last_name,
				email      = EXCLUDED.email,
				updated_at = EXCLUDED.updated_at
			RETURNING `+userColumns,
			u.ID,
			strings.TrimSpace(u.FirstName),
			strings.TrimSpace(u.LastName),
			strings.ToLower(strings.TrimSpace(u.Email)),
			u.Role,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}

// GetByID retrieves an account by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves accounts with filtering, sorting, and pagination.
func (r *UserRepo) List(ctx context.Context, opts *model.UsersListOptions) ([]*model.User, error) {
	if opts == nil {
		opts = &model.UsersListOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)
	sortCol, sortDir := validateUserSortOptions(opts.Sort, opts.Dir)

	qopts := []database.ListQueryOption{
		database.WithColumns(strings.Split(userColumns, ", ")...),
		database.WithOrderBy(sortCol, sortDir),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Role != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("role", database.Equal, string(*opts.Role))))
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + strings.TrimSpace(*opts.Q) + "%"
		qopts = append(qopts, database.WithCondition(database.WhereRawCond(
			"(email ILIKE $1 OR first_name ILIKE $2 OR last_name ILIKE $3)", pattern, pattern, pattern,
		)))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("users", qopts...))

	var rowsOut []model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list users: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.User, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// SetBlocked flips the blocked flag and returns the updated account.
func (r *UserRepo) SetBlocked(ctx context.Context, id string, blocked bool) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE users SET is_blocked = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+userColumns,
			id, blocked, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes an account. Postings, applications, and bookmarks owned
// by the account cascade in the schema.
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", apperrors.MapDBError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountByRole returns the number of accounts holding the given role.
func (r *UserRepo) CountByRole(ctx context.Context, role auth.Role) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// CountBlocked returns the number of blocked accounts.
func (r *UserRepo) CountBlocked(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_blocked`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count blocked users: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// validateUserSortOptions validates and returns safe sort column and direction.
func validateUserSortOptions(sort, dir string) (string, string) {
	sortCol := "created_at"
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"email":      "email",
	}
	if validSort, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
		sortCol = validSort
	}

	sortDir := "DESC"
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		sortDir = "ASC"
	}
	return sortCol, sortDir
}
