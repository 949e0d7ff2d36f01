package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jobhub/ui-api/internal/cache"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	"github.com/jobhub/ui-api/internal/service"
	"github.com/jobhub/ui-api/internal/service/mutation"
)

// AdminHandlers serves the admin dashboard: account rosters, the full job
// list, portal analytics, and account moderation. All routes sit behind
// the admin role gate.
type AdminHandlers struct {
	Collections *Collections
	Users       *service.UserService
	Coordinator *mutation.Coordinator
}

// AllCandidates handles GET /api/admin/all-candidates.
func (h *AdminHandlers) AllCandidates(w http.ResponseWriter, r *http.Request) {
	data, err := h.Collections.AdminCandidates(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// AllRecruiters handles GET /api/admin/all-recruiters.
func (h *AdminHandlers) AllRecruiters(w http.ResponseWriter, r *http.Request) {
	data, err := h.Collections.AdminRecruiters(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// AllJobs handles GET /api/admin/all-jobs.
func (h *AdminHandlers) AllJobs(w http.ResponseWriter, r *http.Request) {
	data, err := h.Collections.AdminJobs(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// Analytics handles GET /api/admin/analytics.
func (h *AdminHandlers) Analytics(w http.ResponseWriter, r *http.Request) {
	data, err := h.Collections.AdminAnalytics(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, data)
}

// BlockUser handles PATCH /api/admin/users/block/{id}.
func (h *AdminHandlers) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// UnblockUser handles PATCH /api/admin/users/unblock/{id}.
func (h *AdminHandlers) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AdminHandlers) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	session := GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("user id is required")},
		)
		return
	}

	// Resolve the account first so the outcome notification can name it
	// and the invalidation targets the right roster.
	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	opName, message := "block_user", user.FullName()+" has been blocked."
	if !blocked {
		opName, message = "unblock_user", user.FullName()+" has been unblocked."
	}

	var updated *model.User
	err = h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           opName,
		TargetID:       id,
		ActorID:        session.UserID,
		SuccessMessage: message,
		InvalidateKeys: moderationKeys(user.Role),
		Execute: func(ctx context.Context) error {
			var execErr error
			updated, execErr = h.Users.SetBlocked(ctx, session.UserID, id, blocked)
			return execErr
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusOK, updated, message)
}

// DeleteUser handles DELETE /api/admin/users/delete/{id}. Owned postings,
// applications, and bookmarks cascade, so the job collections refresh too.
func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("user id is required")},
		)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	message := user.FullName() + " has been removed."
	keys := append(moderationKeys(user.Role), cache.JobsKey(), cache.AdminJobsKey())
	err = h.Coordinator.Perform(r.Context(), mutation.Operation{
		Name:           "delete_user",
		TargetID:       id,
		ActorID:        session.UserID,
		SuccessMessage: message,
		InvalidateKeys: keys,
		Execute: func(ctx context.Context) error {
			return h.Users.Delete(ctx, session.UserID, id)
		},
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteDataMessage(w, http.StatusOK, map[string]bool{"deleted": true}, message)
}

// moderationKeys returns the cached collections dirtied by moderating an
// account of the given role. Analytics always refresh; the roster depends
// on the role.
func moderationKeys(role domainauth.Role) []string {
	keys := []string{cache.AdminAnalyticsKey()}
	switch role {
	case domainauth.RoleCandidate:
		keys = append(keys, cache.AdminCandidatesKey())
	case domainauth.RoleRecruiter:
		keys = append(keys, cache.AdminRecruitersKey())
	}
	return keys
}
