package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jobhub/ui-api/internal/cache"
	"github.com/jobhub/ui-api/internal/domain/model"
	"github.com/jobhub/ui-api/internal/service"
	"github.com/jobhub/ui-api/internal/service/mutation"
)

// CandidateHandlers serves the candidate dashboard: applying to postings
// and managing bookmarks. All routes sit behind the candidate role gate.
type CandidateHandlers struct {
	Collections  *Collections
	Applications *service.ApplicationService
	Coordinator  *mutation.Coordinator
}

// Apply handles POST /api/candidate/apply/{jobID}. The body is an optional
// cover note. The write runs through the mutation coordinator so a double
// click cannot submit twice and a success refreshes the candidate's
// application list and the posting detail.
func (h *CandidateHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	jobID := r.PathValue("jobID")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	var req model.ApplyRequest
	if hasBody(r) && !DecodeJSON(w, r, &req) {
		return
	}

	var created *model.Application
	err := h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "apply_job",
		TargetID:       jobID,
		ActorID:        session.UserID,
		SuccessMessage: "Application submitted!",
		InvalidateKeys: []string{
			cache.CandidateApplicationsKey(session.UserID),
			cache.JobKey(jobID),
		},
		Execute: func(ctx context.Context) error {
			var execErr error
			created, execErr = h.Applications.Apply(ctx, session.UserID, jobID, &req)
			return execErr
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusCreated, created, "Application submitted!")
}

// MyApplications handles GET /api/candidate/my-applications.
func (h *CandidateHandlers) MyApplications(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	data, err := h.Collections.CandidateApplications(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// SaveJob handles POST /api/candidate/save-job/{jobID}.
func (h *CandidateHandlers) SaveJob(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	jobID := r.PathValue("jobID")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	var saved *model.SavedJob
	err := h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "save_job",
		TargetID:       jobID,
		ActorID:        session.UserID,
		SuccessMessage: "Job saved.",
		InvalidateKeys: []string{cache.CandidateSavedJobsKey(session.UserID)},
		Execute: func(ctx context.Context) error {
			var execErr error
			saved, execErr = h.Applications.SaveJob(ctx, session.UserID, jobID)
			return execErr
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusCreated, saved, "Job saved.")
}

// UnsaveJob handles DELETE /api/candidate/remove-saved-job/{jobID}. The
// bookmark disappears from the cached list immediately; if the delete
// fails the list rolls back to its confirmed state.
func (h *CandidateHandlers) UnsaveJob(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	jobID := r.PathValue("jobID")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	savedKey := cache.CandidateSavedJobsKey(session.UserID)
	err := h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "unsave_job",
		TargetID:       jobID,
		ActorID:        session.UserID,
		SuccessMessage: "Job removed from saved jobs.",
		InvalidateKeys: []string{savedKey},
		Optimistic: []mutation.OptimisticUpdate{
			{Key: savedKey, Update: removeByJobID(jobID)},
		},
		Execute: func(ctx context.Context) error {
			return h.Applications.UnsaveJob(ctx, session.UserID, jobID)
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusOK, map[string]bool{"removed": true}, "Job removed from saved jobs.")
}

// MySavedJobs handles GET /api/candidate/my-saved-jobs.
func (h *CandidateHandlers) MySavedJobs(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	data, err := h.Collections.CandidateSavedJobs(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// removeByJobID drops the element whose job_id matches from a cached JSON
// array. Payloads that fail to parse are returned untouched.
func removeByJobID(jobID string) cache.Updater {
	return func(data json.RawMessage) json.RawMessage {
		var items []map[string]any
		if err := json.Unmarshal(data, &items); err != nil {
			return data
		}
		kept := items[:0]
		for _, item := range items {
			if id, _ := item["job_id"].(string); id != jobID {
				kept = append(kept, item)
			}
		}
		out, err := json.Marshal(kept)
		if err != nil {
			return data
		}
		return out
	}
}

// hasBody reports whether the request carries a non-empty body.
func hasBody(r *http.Request) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return false
	}
	if r.ContentLength > 0 {
		return true
	}
	// Unknown length: peek one byte.
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil || buf.Len() == 0 {
		return false
	}
	r.Body = nopCloser{&buf}
	return true
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }
