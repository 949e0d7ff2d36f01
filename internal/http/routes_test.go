package httpx

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
)

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"jobhub-ui-api"}`, rec.Body.String())
}

func TestPublicJobsNeedNoSession(t *testing.T) {
	env := newTestEnv(t)
	job := env.jobs.seed(model.Job{Title: "Backend Engineer", CompanyName: "Acme", Status: model.JobStatusOpen})
	env.jobs.seed(model.Job{Title: "Archived", CompanyName: "Acme", Status: model.JobStatusClosed})

	rec := env.do(t, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []model.Job `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1, "closed postings stay off the public board")
	assert.Equal(t, job.ID, body.Data[0].ID)
}

// An unauthenticated request to a protected candidate route is denied at
// the gate: 401 on the wire and no upstream fetch issued at all.
func TestProtectedRouteDeniedBeforeFetch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/candidate/my-applications", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_required", errCodeOf(t, rec))

	assert.Equal(t, 0, env.apps.listCalls(), "the application list must never be fetched for a denied request")
}

func TestProtectedRouteWrongRole(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.login(t, model.User{
		ID: "cand-1", Email: "c@example.com", Role: domainauth.RoleCandidate,
	})

	rec := env.do(t, http.MethodGet, "/api/admin/all-recruiters", sessionID, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "insufficient_permissions", errCodeOf(t, rec))
	assert.Equal(t, 0, env.users.listCalls(), "roster must not be fetched for a denied viewer")
}

func TestBlockedAccountDeniedEverywhere(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.login(t, model.User{
		ID: "adm-1", Email: "a@example.com", Role: domainauth.RoleAdmin, IsBlocked: true,
	})

	for _, path := range []string{"/api/admin/all-candidates", "/api/user/me"} {
		rec := env.do(t, http.MethodGet, path, sessionID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "account_blocked", errCodeOf(t, rec), path)
	}
	assert.Equal(t, 0, env.users.listCalls())
}

func TestAuthStatusRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.login(t, model.User{
		ID: "rec-1", FirstName: "Rita", LastName: "Vale", Email: "rita@example.com",
		Role: domainauth.RoleRecruiter,
	})

	rec := env.do(t, http.MethodGet, "/auth/status", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, "rec-1", body.User.ID)
	assert.Equal(t, "RECRUITER", body.User.Role)

	anon := env.do(t, http.MethodGet, "/auth/status", "", nil)
	require.Equal(t, http.StatusOK, anon.Code)
	var anonBody struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(anon.Body.Bytes(), &anonBody))
	assert.False(t, anonBody.Authenticated)
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.login(t, model.User{
		ID: "cand-1", Email: "c@example.com", Role: domainauth.RoleCandidate,
	})

	rec := env.do(t, http.MethodPost, "/auth/logout", sessionID, nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	after := env.do(t, http.MethodGet, "/api/candidate/my-applications", sessionID, nil)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}
