package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jobhub/ui-api/internal/data/database"
	"github.com/jobhub/ui-api/internal/data/pgxutil"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

const jobColumns = "id, recruiter_id, title, company_name, description, location, type, category, salary_min, salary_max, status, created_at, updated_at"

// JobRepo provides database operations for job postings.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobRepo creates a new JobRepo with real time provider.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db, timeProvider: systemClock{}}
}

// NewJobRepoWithTimeProvider creates a new JobRepo with a custom time provider (useful for tests).
func NewJobRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *JobRepo {
	return &JobRepo{DB: db, timeProvider: tp}
}

// Create inserts a new posting, open by default.
func (r *JobRepo) Create(ctx context.Context, recruiterID string, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now().UTC()
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO jobs (
				recruiter_id, title, company_name, description, location, type, category,
				salary_min, salary_max, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'open', $10, $10)
			RETURNING `+jobColumns,
			recruiterID,
			strings.TrimSpace(req.Title),
			strings.TrimSpace(req.CompanyName),
			req.Description,
			strings.TrimSpace(req.Location),
			req.Type,
			strings.TrimSpace(req.Category),
			req.SalaryMin,
			req.SalaryMax,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}

// GetByID retrieves a posting by ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves postings with filtering, sorting, and pagination.
func (r *JobRepo) List(ctx context.Context, opts *model.JobsListOptions) ([]*model.Job, error) {
	if opts == nil {
		opts = &model.JobsListOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)
	sortCol, sortDir := validateJobSortOptions(opts.Sort, opts.Dir)

	qopts := []database.ListQueryOption{
		database.WithColumns(strings.Split(jobColumns, ", ")...),
		database.WithOrderBy(sortCol, sortDir),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if opts.Status != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("status", database.Equal, string(*opts.Status))))
	}
	if opts.Category != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("category", database.Equal, *opts.Category)))
	}
	if opts.Type != nil {
		qopts = append(qopts, database.WithCondition(database.WhereCond("type", database.Equal, string(*opts.Type))))
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		pattern := "%" + strings.TrimSpace(*opts.Q) + "%"
		qopts = append(qopts, database.WithCondition(database.WhereRawCond(
			"(title ILIKE $1 OR company_name ILIKE $2)", pattern, pattern,
		)))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("jobs", qopts...))

	var rowsOut []model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list jobs: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Job, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// ListByRecruiter retrieves all postings owned by a recruiter, newest first.
func (r *JobRepo) ListByRecruiter(ctx context.Context, recruiterID string) ([]*model.Job, error) {
	var rowsOut []model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC`,
			recruiterID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list jobs by recruiter: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Job, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a posting.
func (r *JobRepo) Update(ctx context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("update job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		if setClause == "" {
			rows, err := conn.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
			if err != nil {
				return err
			}
			defer rows.Close()
			var e error
			out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
			return e
		}
		args = append(args, id)
		query := "UPDATE jobs SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING " + jobColumns
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return e
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// SetStatus opens or closes a posting.
func (r *JobRepo) SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	var out model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE jobs SET status = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+jobColumns,
			id, status, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes a posting. Applications and bookmarks cascade in the schema.
func (r *JobRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", apperrors.MapDBError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete job rows affected: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of postings, optionally filtered by status.
func (r *JobRepo) Count(ctx context.Context, status *model.JobStatus) (int, error) {
	var count int
	var err error
	if status == nil {
		err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count)
	} else {
		err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE status = $1`, string(*status)).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// CountByRecruiter returns the number of postings owned by a recruiter,
// optionally filtered by status.
func (r *JobRepo) CountByRecruiter(ctx context.Context, recruiterID string, status *model.JobStatus) (int, error) {
	var count int
	var err error
	if status == nil {
		err = r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM jobs WHERE recruiter_id = $1`, recruiterID).Scan(&count)
	} else {
		err = r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM jobs WHERE recruiter_id = $1 AND status = $2`,
			recruiterID, string(*status)).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count jobs by recruiter: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating a posting.
func (r *JobRepo) buildUpdateClause(req *model.UpdateJobRequest) (string, []any) {
	setParts := make([]string, 0, 9)
	args := make([]any, 0, 10)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.CompanyName != nil {
		setParts = append(setParts, fmt.Sprintf("company_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.CompanyName))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.Location != nil {
		setParts = append(setParts, fmt.Sprintf("location = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Location))
	}
	if req.Type != nil {
		setParts = append(setParts, fmt.Sprintf("type = $%d", nextIdx()))
		args = append(args, *req.Type)
	}
	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Category))
	}
	if req.SalaryMin != nil {
		setParts = append(setParts, fmt.Sprintf("salary_min = $%d", nextIdx()))
		args = append(args, *req.SalaryMin)
	}
	if req.SalaryMax != nil {
		setParts = append(setParts, fmt.Sprintf("salary_max = $%d", nextIdx()))
		args = append(args, *req.SalaryMax)
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, *req.Status)
	}

	if len(setParts) == 0 {
		return "", nil
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// validateJobSortOptions validates and returns safe sort column and direction.
func validateJobSortOptions(sort, dir string) (string, string) {
	sortCol := "created_at"
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"title":      "title",
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

// CloseStaleOpenJobs closes open postings that have not been touched within
// maxAge. Work is batched so a large backlog cannot hold long locks.
func (r *JobRepo) CloseStaleOpenJobs(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	now := r.timeProvider.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs SET status = 'closed', updated_at = $1
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = 'open' AND updated_at < $2
			LIMIT $3
		)`,
		now, now.Add(-maxAge), batchSize)
	if err != nil {
		return 0, fmt.Errorf("close stale open jobs: %w", apperrors.MapDBError(err))
	}
	return res.RowsAffected()
}

// DeleteOldClosedJobs deletes postings closed longer than maxAge ago. The
// schema cascades their applications and bookmarks.
func (r *JobRepo) DeleteOldClosedJobs(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	cutoff := r.timeProvider.Now().UTC().Add(-maxAge)
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status = 'closed' AND updated_at < $1
			LIMIT $2
		)`,
		cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete old closed jobs: %w", apperrors.MapDBError(err))
	}
	return res.RowsAffected()
}
