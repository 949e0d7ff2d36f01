package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jobhub/ui-api/internal/data/pgxutil"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

// SavedJobRepo provides database operations for candidate bookmarks.
type SavedJobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSavedJobRepo creates a new SavedJobRepo with real time provider.
func NewSavedJobRepo(db *sql.DB) *SavedJobRepo {
	return &SavedJobRepo{DB: db, timeProvider: systemClock{}}
}

// NewSavedJobRepoWithTimeProvider creates a SavedJobRepo with a custom time provider.
func NewSavedJobRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SavedJobRepo {
	return &SavedJobRepo{DB: db, timeProvider: tp}
}

// Save bookmarks a posting. The unique constraint on (job_id, candidate_id)
// turns double saves into a conflict.
func (r *SavedJobRepo) Save(ctx context.Context, candidateID, jobID string) (*model.SavedJob, error) {
	if candidateID == "" || jobID == "" {
		return nil, apperrors.Validation("candidate ID and job ID are required")
	}

	var out model.SavedJob
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO saved_jobs (job_id, candidate_id, created_at)
			VALUES ($1, $2, $3)
			RETURNING id, job_id, candidate_id, created_at`,
			jobID, candidateID, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.SavedJob])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Unsave removes a bookmark. Returns false when there was none.
func (r *SavedJobRepo) Unsave(ctx context.Context, candidateID, jobID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE candidate_id = $1 AND job_id = $2`,
		candidateID, jobID,
	)
	if err != nil {
		return false, fmt.Errorf("unsave job: %w", apperrors.MapDBError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unsave job rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListByCandidate returns a candidate's bookmarks joined with their jobs,
// newest first.
func (r *SavedJobRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.SavedJobWithJob, error) {
	var rowsOut []model.SavedJobWithJob
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT s.id, s.job_id, s.candidate_id, s.created_at,
			       j.title AS job_title, j.company_name, j.location AS job_location,
			       j.status AS job_status
			FROM saved_jobs s
			JOIN jobs j ON j.id = s.job_id
			WHERE s.candidate_id = $1
			ORDER BY s.created_at DESC`,
			candidateID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.SavedJobWithJob])
		return err
	}); err != nil {
		return nil, fmt.Errorf("list saved jobs: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.SavedJobWithJob, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
