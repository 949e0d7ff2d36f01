package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jobhub/ui-api/internal/core"
	"github.com/jobhub/ui-api/internal/data/pgxutil"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

const applicationColumns = "id, job_id, candidate_id, status, cover_note, created_at, updated_at"

// ApplicationRepo provides database operations for job applications.
type ApplicationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewApplicationRepo creates a new ApplicationRepo with real time provider.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{DB: db, timeProvider: systemClock{}}
}

// NewApplicationRepoWithTimeProvider creates an ApplicationRepo with a custom time provider.
func NewApplicationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ApplicationRepo {
	return &ApplicationRepo{DB: db, timeProvider: tp}
}

// Create inserts a pending application. The posting is share-locked for
// the duration of the transaction so an apply cannot land on a job the
// reaper or its recruiter is closing concurrently. The unique constraint
// on (job_id, candidate_id) turns double applies into a conflict.
func (r *ApplicationRepo) Create(ctx context.Context, params core.CreateApplicationParams) (*model.Application, error) {
	if params.JobID == "" || params.CandidateID == "" {
		return nil, apperrors.Validation("job ID and candidate ID are required")
	}

	var coverNote *string
	if note := strings.TrimSpace(params.CoverNote); note != "" {
		coverNote = &note
	}

	now := r.timeProvider.Now().UTC()
	var out model.Application
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx,
			`SELECT status FROM jobs WHERE id = $1 FOR SHARE`,
			params.JobID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("Job not found.")
			}
			return err
		}
		if model.JobStatus(status) != model.JobStatusOpen {
			return apperrors.Conflict("This job is no longer accepting applications.")
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO applications (job_id, candidate_id, status, cover_note, created_at, updated_at)
			VALUES ($1, $2, 'pending', $3, $4, $4)
			RETURNING `+applicationColumns,
			params.JobID, params.CandidateID, coverNote, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Application])
		return err
	}})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves an application by ID.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var out model.Application
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Application])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ListByCandidate returns a candidate's applications joined with their jobs,
// newest first.
func (r *ApplicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.CandidateApplication, error) {
	var rowsOut []model.CandidateApplication
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT a.id, a.job_id, a.candidate_id, a.status, a.cover_note, a.created_at, a.updated_at,
			       j.title AS job_title, j.company_name, j.location AS job_location
			FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.candidate_id = $1
			ORDER BY a.created_at DESC`,
			candidateID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CandidateApplication])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list applications by candidate: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.CandidateApplication, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// ListByJob returns the applicants for a posting joined with their accounts,
// oldest first so recruiters review in arrival order.
func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error) {
	var rowsOut []model.JobApplication
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT a.id, a.job_id, a.candidate_id, a.status, a.cover_note, a.created_at, a.updated_at,
			       TRIM(u.first_name || ' ' || u.last_name) AS candidate_name,
			       u.email AS candidate_email
			FROM applications a
			JOIN users u ON u.id = a.candidate_id
			WHERE a.job_id = $1
			ORDER BY a.created_at ASC`,
			jobID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.JobApplication])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list applications by job: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.JobApplication, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// SetStatus records a recruiter's decision on an application.
func (r *ApplicationRepo) SetStatus(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error) {
	var out model.Application
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE applications SET status = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+applicationColumns,
			id, status, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Application])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Count returns the total number of applications.
func (r *ApplicationRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count applications: %w", apperrors.MapDBError(err))
	}
	return count, nil
}

// CountByRecruiter returns the number of applications across a recruiter's
// postings, optionally filtered by status.
func (r *ApplicationRepo) CountByRecruiter(ctx context.Context, recruiterID string, status *model.ApplicationStatus) (int, error) {
	var count int
	var err error
	if status == nil {
		err = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE j.recruiter_id = $1`, recruiterID).Scan(&count)
	} else {
		err = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE j.recruiter_id = $1 AND a.status = $2`,
			recruiterID, string(*status)).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count applications by recruiter: %w", apperrors.MapDBError(err))
	}
	return count, nil
}
