package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	apperrors "github.com/jobhub/ui-api/internal/errors"
	"github.com/jobhub/ui-api/internal/service"
)

// Cookie names. session carries the server-side session ID; the oauth_*
// and post_login_redirect cookies live only for the duration of a login
// round trip.
const (
	sessionCookie           = "session_id"
	oauthStateCookie        = "oauth_state"
	oauthNonceCookie        = "oauth_nonce"
	postLoginRedirectCookie = "post_login_redirect"

	oauthCookieMaxAge = 600 // seconds; a login round trip never takes longer
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	RefreshSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login starts the OAuth flow.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	// State, nonce, and the original destination ride along in cookies
	// until the IdP calls back.
	h.setCookie(w, r, oauthStateCookie, result.State, oauthCookieMaxAge)
	h.setCookie(w, r, oauthNonceCookie, result.Nonce, oauthCookieMaxAge)
	h.setCookie(w, r, postLoginRedirectCookie, redirectURI, oauthCookieMaxAge)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the OAuth flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	input, badRequest := h.callbackInput(r)
	if badRequest != nil {
		WriteError(w, *badRequest)
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), input)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, oauthStateCookie)
	h.clearCookie(w, r, oauthNonceCookie)

	http.Redirect(w, r, h.takePostLoginRedirect(w, r), http.StatusFound)
}

// callbackInput validates the callback query against the cookies issued
// at login time.
func (h *AuthHandlers) callbackInput(r *http.Request) (service.CompleteLoginInput, *ErrorParams) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		return service.CompleteLoginInput{}, &ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		}
	}
	if state == "" {
		return service.CompleteLoginInput{}, &ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		}
	}
	if stateCookie, err := r.Cookie(oauthStateCookie); err != nil || stateCookie.Value != state {
		return service.CompleteLoginInput{}, &ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		}
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		return service.CompleteLoginInput{}, &ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		}
	}

	return service.CompleteLoginInput{Code: code, State: state, Nonce: nonceCookie.Value}, nil
}

// Logout invalidates the server-side session and clears the cookie.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, sessionCookie)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": redirectURI,
		})
		return
	}
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Status reports the current authentication state. Always 200; an
// anonymous caller is not an error.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		// Invalid or expired; drop the stale cookie.
		h.clearCookie(w, r, sessionCookie)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          sessionUserPayload(session),
		"expires_at":    session.ExpiresAt,
	})
}

// Refresh re-stamps the session from the user directory so role changes and
// blocks applied by an admin take effect without forcing a re-login.
// POST /auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		WriteAppError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	session, err := h.Svc.RefreshSession(r.Context(), cookie.Value)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSessionCookie(w, r, *session)
	WriteData(w, http.StatusOK, sessionUserPayload(session))
}

func sessionUserPayload(s *domainauth.Session) map[string]any {
	return map[string]any{
		"id":         s.UserID,
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"role":       s.Role,
		"is_blocked": s.IsBlocked,
	}
}

// setCookie writes an HttpOnly cookie with the shared attributes. The
// Secure flag follows the effective scheme, including behind a proxy.
func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0).UTC()
	}
	http.SetCookie(w, cookie)
}

// clearCookie expires a cookie with the same attributes it was set
// with, which is what browsers require for deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	h.setCookie(w, r, name, "", -1)
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	h.setCookie(w, r, sessionCookie, s.ID, int(time.Until(s.ExpiresAt).Seconds()))
}

// takePostLoginRedirect consumes the destination stored at login time.
func (h *AuthHandlers) takePostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if cookie, err := r.Cookie(postLoginRedirectCookie); err == nil {
		redirectURI = safeRedirectPath(cookie.Value)
		h.clearCookie(w, r, postLoginRedirectCookie)
	}
	return redirectURI
}

func requestIsSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// safeRedirectPath confines redirects to same-origin relative paths;
// anything absolute or malformed falls back to "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
