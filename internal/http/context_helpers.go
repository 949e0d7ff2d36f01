package httpx

import (
	"context"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
)

// sessionKey keys the viewer's session in a request context. Unexported
// so only this package can attach one.
type sessionKey struct{}

// SetSessionInContext attaches a session to the context. A nil session
// leaves ctx unchanged, so handlers never see a non-nil key holding a
// nil pointer.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the viewer's session, or nil for an
// anonymous request.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	session, _ := ctx.Value(sessionKey{}).(*domainauth.Session)
	return session
}
