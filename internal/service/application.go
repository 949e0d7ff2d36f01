package service

import (
	"context"
	"fmt"

	"github.com/jobhub/ui-api/internal/core"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

// ApplicationServiceOptions groups dependencies for ApplicationService.
type ApplicationServiceOptions struct {
	Applications core.ApplicationRepository
	SavedJobs    core.SavedJobRepository
	Jobs         core.JobRepository
	Logger       DebugLogger // optional
}

// ApplicationService orchestrates job applications and saved-job bookmarks.
type ApplicationService struct {
	apps  core.ApplicationRepository
	saved core.SavedJobRepository
	jobs  core.JobRepository
	log   DebugLogger
}

// NewApplicationService constructs a new ApplicationService.
func NewApplicationService(opts ApplicationServiceOptions) *ApplicationService {
	return &ApplicationService{
		apps:  opts.Applications,
		saved: opts.SavedJobs,
		jobs:  opts.Jobs,
		log:   opts.Logger,
	}
}

// Apply submits a candidate's application to an open job. A duplicate
// application surfaces as a conflict from the repository's unique constraint.
func (s *ApplicationService) Apply(ctx context.Context, candidateID, jobID string, req *model.ApplyRequest) (*model.Application, error) {
	if jobID == "" {
		return nil, apperrors.Validation("job ID is required")
	}
	if req != nil {
		if err := req.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusOpen {
		return nil, apperrors.Conflict("This job is no longer accepting applications.")
	}

	params := core.CreateApplicationParams{
		JobID:       jobID,
		CandidateID: candidateID,
	}
	if req != nil && req.CoverNote != nil {
		params.CoverNote = *req.CoverNote
	}

	app, err := s.apps.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	if s.log != nil {
		s.log.Debug("application submitted", "application_id", app.ID, "job_id", jobID, "candidate_id", candidateID)
	}
	return app, nil
}

// ListByCandidate returns a candidate's applications joined with their jobs.
func (s *ApplicationService) ListByCandidate(ctx context.Context, candidateID string) ([]*model.CandidateApplication, error) {
	return s.apps.ListByCandidate(ctx, candidateID)
}

// ListByJob returns the applicants for a posting after verifying the actor
// owns it.
func (s *ApplicationService) ListByJob(ctx context.Context, actor Actor, jobID string) ([]*model.JobApplication, error) {
	if err := s.authorizeJob(ctx, actor, jobID); err != nil {
		return nil, err
	}
	return s.apps.ListByJob(ctx, jobID)
}

// GetByID returns one application, restricted to the posting's owner or an
// admin.
func (s *ApplicationService) GetByID(ctx context.Context, actor Actor, applicationID string) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeJob(ctx, actor, app.JobID); err != nil {
		return nil, err
	}
	return app, nil
}

// SetStatus records a recruiter's decision on an application after verifying
// the actor owns the posting it belongs to.
func (s *ApplicationService) SetStatus(ctx context.Context, actor Actor, applicationID string, req *model.UpdateApplicationStatusRequest) (*model.Application, error) {
	if req == nil {
		return nil, apperrors.Validation("status request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeJob(ctx, actor, app.JobID); err != nil {
		return nil, err
	}

	updated, err := s.apps.SetStatus(ctx, applicationID, req.Status)
	if err != nil {
		return nil, fmt.Errorf("set application status: %w", err)
	}
	return updated, nil
}

// SaveJob bookmarks a posting for a candidate. Duplicate bookmarks surface
// as a conflict from the repository's unique constraint.
func (s *ApplicationService) SaveJob(ctx context.Context, candidateID, jobID string) (*model.SavedJob, error) {
	if jobID == "" {
		return nil, apperrors.Validation("job ID is required")
	}
	saved, err := s.saved.Save(ctx, candidateID, jobID)
	if err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	return saved, nil
}

// UnsaveJob removes a candidate's bookmark.
func (s *ApplicationService) UnsaveJob(ctx context.Context, candidateID, jobID string) error {
	ok, err := s.saved.Unsave(ctx, candidateID, jobID)
	if err != nil {
		return fmt.Errorf("unsave job: %w", err)
	}
	if !ok {
		return apperrors.NotFound("Saved job not found.")
	}
	return nil
}

// ListSavedJobs returns a candidate's bookmarks joined with their jobs.
func (s *ApplicationService) ListSavedJobs(ctx context.Context, candidateID string) ([]*model.SavedJobWithJob, error) {
	return s.saved.ListByCandidate(ctx, candidateID)
}

// AuthorizeJobView reports whether the actor may view a posting's
// applicants: the posting's owner or an admin.
func (s *ApplicationService) AuthorizeJobView(ctx context.Context, actor Actor, jobID string) error {
	return s.authorizeJob(ctx, actor, jobID)
}

func (s *ApplicationService) authorizeJob(ctx context.Context, actor Actor, jobID string) error {
	if actor.IsAdmin {
		return nil
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.RecruiterID != actor.UserID {
		return apperrors.Forbidden("You do not have permission to view applications for this job.")
	}
	return nil
}
