package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/jobhub/ui-api/internal/domain/nav"
)

// NavHandlers serves the navigation menu. The menu is a pure function of
// the viewer's role; badge counts are layered on from cached collections.
type NavHandlers struct {
	Collections *Collections
	Logger      *slog.Logger
}

func (h *NavHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Navigation handles GET /api/navigation. Anonymous viewers, unknown
// roles, and blocked accounts all get the public menu; nothing privileged
// leaks on a bad session.
func (h *NavHandlers) Navigation(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil || !session.CanAct() {
		WriteData(w, http.StatusOK, nav.Public())
		return
	}

	entries := nav.Resolve(session.Role)
	for i, entry := range entries {
		badge := entry.Badge()
		if badge == nil {
			continue
		}
		count, ok := h.badgeCount(r, badge, session.UserID)
		if !ok {
			continue
		}
		entries[i] = entry.WithBadgeCount(count)
	}

	WriteData(w, http.StatusOK, entries)
}

// badgeCount loads the badge's collection through the cache and evaluates
// its JMESPath expression over the payload. Failures drop the badge rather
// than the menu.
func (h *NavHandlers) badgeCount(r *http.Request, badge *nav.BadgeSource, userID string) (int, bool) {
	key, fetch, ok := h.Collections.BadgeFetcher(badge.Key, userID)
	if !ok {
		return 0, false
	}

	data, err := h.Collections.Cache.Get(r.Context(), key, fetch)
	if err != nil {
		h.logger().DebugContext(r.Context(), "badge collection unavailable", "key", key, "error", err)
		return 0, false
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, false
	}
	result, err := jmespath.Search(badge.Expr, payload)
	if err != nil {
		h.logger().DebugContext(r.Context(), "badge expression failed", "expr", badge.Expr, "error", err)
		return 0, false
	}

	switch n := result.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
