package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
)

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// Logging logs one line per request with method, path, status, and
// duration.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover converts handler panics into 500s and logs the stack.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth admits only authenticated, non-blocked accounts. Anything
// short of a valid session is denied before the wrapped handler runs:
// missing or expired sessions get a 401, blocked accounts a 403.
func RequireAuth(authSvc AuthServiceInterface) Middleware {
	return requireSession(authSvc, nil)
}

// RequireRole admits only sessions holding the given role. Denials are
// ordered: no session is a 401, a blocked account a 403 account_blocked
// (even when the role would match), and a role mismatch a 403
// insufficient_permissions. Roles are flat, not hierarchical; an admin
// does not implicitly pass a recruiter gate.
func RequireRole(authSvc AuthServiceInterface, requiredRole domainauth.Role) Middleware {
	return requireSession(authSvc, &requiredRole)
}

func requireSession(authSvc AuthServiceInterface, requiredRole *domainauth.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromRequest(r, authSvc)
			switch {
			case session == nil:
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			case session.IsBlocked:
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "account_blocked",
					Err:     errors.New("your account has been blocked"),
				})
				return
			case requiredRole != nil && session.Role != *requiredRole:
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches the session when one is present and valid, and
// otherwise lets the request through anonymously. Blocked accounts are
// treated as anonymous here; public endpoints stay public but never act
// on a blocked identity.
func OptionalAuth(authSvc AuthServiceInterface) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := sessionFromRequest(r, authSvc); session != nil && !session.IsBlocked {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionFromRequest resolves the session cookie, or nil when the
// request carries no usable session.
func sessionFromRequest(r *http.Request, authSvc AuthServiceInterface) *domainauth.Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	session, err := authSvc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return session
}
