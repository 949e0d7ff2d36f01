// Package nav resolves the navigation menu for a role. Resolution is a pure
// function of the role: no I/O, no stored state, so the same role always
// yields the same menu and a role change swaps the menu atomically.
package nav

import "github.com/jobhub/ui-api/internal/domain/auth"

// BadgeSource names a cached collection and a JMESPath expression evaluated
// against its payload to produce a badge count. Entries without a source
// render without a badge.
type BadgeSource struct {
	// Key is a collection cache key template. The placeholder {user}
	// is replaced with the viewer's user ID at evaluation time.
	Key string
	// Expr is a JMESPath expression over the cached payload.
	Expr string
}

// Entry is a single navigation item.
type Entry struct {
	Label      string `json:"label"`
	Target     string `json:"target"`
	Icon       string `json:"icon,omitempty"`
	BadgeCount *int   `json:"badge_count,omitempty"`

	// badge is internal wiring; the resolved count is published via BadgeCount.
	badge *BadgeSource
}

// Badge returns the entry's badge source, or nil when the entry has none.
func (e Entry) Badge() *BadgeSource { return e.badge }

// WithBadgeCount returns a copy of the entry with the badge count set.
func (e Entry) WithBadgeCount(n int) Entry {
	e.BadgeCount = &n
	return e
}

var publicEntries = []Entry{
	{Label: "Home", Target: "/", Icon: "home"},
	{Label: "All Jobs", Target: "/all-jobs", Icon: "briefcase"},
	{Label: "About Us", Target: "/about", Icon: "info"},
	{Label: "Contact", Target: "/contact", Icon: "mail"},
}

var candidateEntries = []Entry{
	{Label: "All Jobs", Target: "/all-jobs", Icon: "briefcase"},
	{
		Label:  "My Applications",
		Target: "/candidate/my-applications",
		Icon:   "file-text",
		badge:  &BadgeSource{Key: "/candidate/{user}/my-applications", Expr: "length(@)"},
	},
	{
		Label:  "Saved Jobs",
		Target: "/candidate/saved-jobs",
		Icon:   "bookmark",
		badge:  &BadgeSource{Key: "/candidate/{user}/saved-jobs", Expr: "length(@)"},
	},
}

var recruiterEntries = []Entry{
	{Label: "Analytics", Target: "/recruiter/analytics", Icon: "bar-chart"},
	{Label: "Post New Job", Target: "/recruiter/add-job", Icon: "plus-circle"},
	{
		Label:  "My Posted Jobs",
		Target: "/recruiter/my-posted-jobs",
		Icon:   "briefcase",
		badge:  &BadgeSource{Key: "/recruiter/{user}/jobs", Expr: "length(@)"},
	},
	{Label: "Job Applications", Target: "/recruiter/applications", Icon: "inbox"},
}

var adminEntries = []Entry{
	{Label: "Analytics", Target: "/admin/analytics", Icon: "bar-chart"},
	{Label: "All Candidates", Target: "/admin/all-candidates", Icon: "users"},
	{Label: "All Recruiters", Target: "/admin/all-recruiters", Icon: "building"},
	{Label: "All Jobs", Target: "/admin/all-jobs", Icon: "briefcase"},
}

// Resolve returns the menu for a role. Unknown or empty roles fall back to
// the public menu; an unrecognized role never exposes privileged entries.
func Resolve(role auth.Role) []Entry {
	switch role {
	case auth.RoleCandidate:
		return clone(candidateEntries)
	case auth.RoleRecruiter:
		return clone(recruiterEntries)
	case auth.RoleAdmin:
		return clone(adminEntries)
	default:
		return clone(publicEntries)
	}
}

// Public returns the menu shown to unauthenticated visitors.
func Public() []Entry { return clone(publicEntries) }

// clone copies entries so callers can annotate badge counts without
// mutating the shared tables.
func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
