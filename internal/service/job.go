package service

import (
	"context"
	"fmt"

	"github.com/jobhub/ui-api/internal/core"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

// Actor identifies who is performing a service operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs   core.JobRepository
	Logger DebugLogger // optional
}

// JobService orchestrates job posting CRUD with recruiter ownership checks.
// Admins may operate on any posting; recruiters only on their own.
type JobService struct {
	jobs core.JobRepository
	log  DebugLogger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) *JobService {
	return &JobService{
		jobs: opts.Jobs,
		log:  opts.Logger,
	}
}

// Create creates a job posting owned by the given recruiter.
func (s *JobService) Create(ctx context.Context, recruiterID string, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	job, err := s.jobs.Create(ctx, recruiterID, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if s.log != nil {
		s.log.Debug("job created", "job_id", job.ID, "recruiter_id", recruiterID)
	}
	return job, nil
}

// GetByID returns a job posting by id.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// List returns job postings with paging, filtering and search applied.
func (s *JobService) List(ctx context.Context, opts model.JobsListOptions) ([]*model.Job, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.jobs.List(ctx, &opts)
}

// ListOpen returns open job postings for the public board.
func (s *JobService) ListOpen(ctx context.Context, opts model.JobsListOptions) ([]*model.Job, error) {
	open := model.JobStatusOpen
	opts.Status = &open
	return s.List(ctx, opts)
}

// ListByRecruiter returns all postings owned by a recruiter.
func (s *JobService) ListByRecruiter(ctx context.Context, recruiterID string) ([]*model.Job, error) {
	return s.jobs.ListByRecruiter(ctx, recruiterID)
}

// Update applies changes to a posting after verifying ownership.
func (s *JobService) Update(ctx context.Context, actor Actor, id string, req *model.UpdateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("update job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	job, err := s.jobs.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}

// SetStatus opens or closes a posting after verifying ownership.
func (s *JobService) SetStatus(ctx context.Context, actor Actor, id string, status model.JobStatus) (*model.Job, error) {
	if _, ok := model.ParseJobStatus(string(status)); !ok {
		return nil, apperrors.ValidationField("status", "invalid job status")
	}
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}
	job, err := s.jobs.SetStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("set job status: %w", err)
	}
	return job, nil
}

// Delete removes a posting after verifying ownership.
func (s *JobService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	ok, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if !ok {
		return apperrors.NotFound("Job not found.")
	}
	return nil
}

// authorize verifies the actor may modify the posting.
func (s *JobService) authorize(ctx context.Context, actor Actor, jobID string) error {
	if actor.IsAdmin {
		return nil
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.RecruiterID != actor.UserID {
		return apperrors.Forbidden("You do not have permission to modify this job.")
	}
	return nil
}
