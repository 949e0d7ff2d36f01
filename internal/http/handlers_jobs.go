// Package httpx provides the HTTP surface for the job portal API.
package httpx

import (
	"errors"
	"net/http"
)

// JobHandlers serves the public job board.
type JobHandlers struct {
	Collections *Collections
}

// List handles GET /api/jobs: every open posting, read through the
// collection cache.
func (h *JobHandlers) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.Collections.OpenJobs(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// GetByID handles GET /api/jobs/{id}: a single posting's detail.
func (h *JobHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	data, err := h.Collections.JobDetail(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}
