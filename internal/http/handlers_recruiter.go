package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jobhub/ui-api/internal/cache"
	"github.com/jobhub/ui-api/internal/domain/model"
	"github.com/jobhub/ui-api/internal/service"
	"github.com/jobhub/ui-api/internal/service/mutation"
)

// RecruiterHandlers serves the recruiter dashboard: posting management,
// applicant review, and analytics. All routes sit behind the recruiter
// role gate.
type RecruiterHandlers struct {
	Collections  *Collections
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Coordinator  *mutation.Coordinator
}

// jobInvalidationKeys are the collections a posting write dirties.
func jobInvalidationKeys(recruiterID string, extra ...string) []string {
	keys := []string{
		cache.JobsKey(),
		cache.RecruiterJobsKey(recruiterID),
		cache.AdminJobsKey(),
	}
	return append(keys, extra...)
}

// CreateJob handles POST /api/recruiter/jobs.
func (h *RecruiterHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	var created *model.Job
	err := h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "create_job",
		TargetID:       session.UserID,
		ActorID:        session.UserID,
		SuccessMessage: "Job posted!",
		InvalidateKeys: jobInvalidationKeys(session.UserID),
		Execute: func(ctx context.Context) error {
			var execErr error
			created, execErr = h.Jobs.Create(ctx, session.UserID, &req)
			return execErr
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusCreated, created, "Job posted!")
}

// MyPostedJobs handles GET /api/recruiter/my-posted-jobs.
func (h *RecruiterHandlers) MyPostedJobs(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	data, err := h.Collections.RecruiterJobs(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// UpdateJob handles PATCH /api/recruiter/jobs/{id}. Ownership is enforced
// by the job service; admins edit through their own surface.
func (h *RecruiterHandlers) UpdateJob(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	var req model.UpdateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	actor := service.Actor{UserID: session.UserID}
	var updated *model.Job
	err := h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "update_job",
		TargetID:       id,
		ActorID:        session.UserID,
		SuccessMessage: "Job updated.",
		InvalidateKeys: jobInvalidationKeys(session.UserID, cache.JobKey(id)),
		Execute: func(ctx context.Context) error {
			var execErr error
			updated, execErr = h.Jobs.Update(ctx, actor, id, &req)
			return execErr
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusOK, updated, "Job updated.")
}

// JobApplications handles GET /api/recruiter/jobs/{id}/applications. The
// viewer is authorized before the cache is read so a coalesced fetch never
// serves an applicant list to a recruiter who does not own the posting.
func (h *RecruiterHandlers) JobApplications(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	actor := service.Actor{UserID: session.UserID}
	if err := h.Applications.AuthorizeJobView(r.Context(), actor, id); err != nil {
		WriteAppError(w, err)
		return
	}

	data, err := h.Collections.JobApplications(r.Context(), actor, id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// SetApplicationStatus handles PATCH /api/recruiter/applications/{id}/status.
func (h *RecruiterHandlers) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_path",
				Err:     errors.New("application id is required"),
			},
		)
		return
	}

	var req model.UpdateApplicationStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	// Resolve the application first: its job and candidate decide which
	// cached collections the status change dirties.
	actor := service.Actor{UserID: session.UserID}
	app, err := h.Applications.GetByID(r.Context(), actor, id)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	var updated *model.Application
	err = h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "update_application_status",
		TargetID:       id,
		ActorID:        session.UserID,
		SuccessMessage: "Application status updated.",
		InvalidateKeys: []string{
			cache.JobApplicationsKey(app.JobID),
			cache.CandidateApplicationsKey(app.CandidateID),
		},
		Execute: func(ctx context.Context) error {
			var execErr error
			updated, execErr = h.Applications.SetStatus(ctx, actor, id, &req)
			return execErr
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusOK, updated, "Application status updated.")
}

// Analytics handles GET /api/recruiter/analytics.
func (h *RecruiterHandlers) Analytics(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	data, err := h.Collections.RecruiterAnalytics(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}
