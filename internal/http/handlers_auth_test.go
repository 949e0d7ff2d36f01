package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestLoginRedirectsToProvider(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/auth/login?redirect_uri=/candidate/saved-jobs", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://mock-idp/auth", rec.Header().Get("Location"))

	cookies := cookiesByName(rec)
	require.Contains(t, cookies, "oauth_state")
	require.Contains(t, cookies, "oauth_nonce")
	require.Contains(t, cookies, "post_login_redirect")
	assert.NotEmpty(t, cookies["oauth_state"].Value)
	assert.NotEmpty(t, cookies["oauth_nonce"].Value)
	assert.Equal(t, "/candidate/saved-jobs", cookies["post_login_redirect"].Value)
	for _, name := range []string{"oauth_state", "oauth_nonce", "post_login_redirect"} {
		assert.True(t, cookies[name].HttpOnly, "%s must be HttpOnly", name)
	}
}

// Absolute redirect targets are discarded: post-login navigation stays on
// this origin.
func TestLoginRejectsAbsoluteRedirect(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/auth/login?redirect_uri=https://evil.example/phish", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", cookiesByName(rec)["post_login_redirect"].Value)
}

func TestCallbackCompletesLogin(t *testing.T) {
	env := newTestEnv(t)

	login := env.do(t, http.MethodGet, "/auth/login?redirect_uri=/candidate/saved-jobs", "", nil)
	require.Equal(t, http.StatusFound, login.Code)
	issued := cookiesByName(login)

	req := httptest.NewRequest(http.MethodGet,
		"/auth/callback?code=mock-code&state="+issued["oauth_state"].Value, nil)
	req.AddCookie(issued["oauth_state"])
	req.AddCookie(issued["oauth_nonce"])
	req.AddCookie(issued["post_login_redirect"])
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/candidate/saved-jobs", rec.Header().Get("Location"))

	cookies := cookiesByName(rec)
	require.Contains(t, cookies, "session_id")
	sessionID := cookies["session_id"].Value
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "", cookies["oauth_state"].Value, "temporary cookies are cleared")

	// The identity from the provider landed as a live candidate session.
	status := env.do(t, http.MethodGet, "/auth/status", sessionID, nil)
	require.Equal(t, http.StatusOK, status.Code)
	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			ID   string          `json:"id"`
			Role domainauth.Role `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, "mock-user-1", body.User.ID)
	assert.Equal(t, domainauth.RoleCandidate, body.User.Role)
}

func TestCallbackRejectsForgedState(t *testing.T) {
	env := newTestEnv(t)

	login := env.do(t, http.MethodGet, "/auth/login", "", nil)
	require.Equal(t, http.StatusFound, login.Code)
	issued := cookiesByName(login)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=mock-code&state=forged", nil)
	req.AddCookie(issued["oauth_state"])
	req.AddCookie(issued["oauth_nonce"])
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_state", body["error"])
}

// Refreshing re-stamps the session from the directory, so an admin block
// bites without waiting for the account to log in again.
func TestRefreshPicksUpBlock(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.login(t, model.User{
		ID: "cand-1", FirstName: "Cory", LastName: "Nguyen",
		Email: "cory@example.com", Role: domainauth.RoleCandidate,
	})

	ok := env.do(t, http.MethodGet, "/api/candidate/my-applications", sessionID, nil)
	require.Equal(t, http.StatusOK, ok.Code)

	_, err := env.users.SetBlocked(t.Context(), "cand-1", true)
	require.NoError(t, err)

	// The stale session still carries is_blocked=false until refreshed.
	refresh := env.do(t, http.MethodPost, "/auth/refresh", sessionID, nil)
	require.Equal(t, http.StatusOK, refresh.Code)
	var body struct {
		Data struct {
			IsBlocked bool `json:"is_blocked"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(refresh.Body.Bytes(), &body))
	assert.True(t, body.Data.IsBlocked)

	denied := env.do(t, http.MethodGet, "/api/candidate/my-applications", sessionID, nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
	errBody := map[string]string{}
	require.NoError(t, json.Unmarshal(denied.Body.Bytes(), &errBody))
	assert.Equal(t, "account_blocked", errBody["error"])
}

func TestCallbackMissingCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/auth/callback?state=whatever", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missing_code", body["error"])
}
