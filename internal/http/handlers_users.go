package httpx

import (
	"errors"
	"net/http"

	"github.com/jobhub/ui-api/internal/service"
)

// UserHandlers serves profile lookups available to any authenticated,
// non-blocked account.
type UserHandlers struct {
	Users *service.UserService
}

// Me handles GET /api/user/me: the viewer's own account record.
func (h *UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	user, err := h.Users.GetByID(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, user)
}

// GetByID handles GET /api/users/{id}.
func (h *UserHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
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
	WriteData(w, http.StatusOK, user)
}
