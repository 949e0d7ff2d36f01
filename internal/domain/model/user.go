package model

import (
	"time"

	"github.com/jobhub/ui-api/internal/domain/auth"
)

// User is a portal account. Role and IsBlocked are authoritative here;
// sessions carry copies that are refreshed from this record.
type User struct {
	ID        string    `json:"id"          db:"id"`
	FirstName string    `json:"first_name"  db:"first_name"`
	LastName  string    `json:"last_name"   db:"last_name"`
	Email     string    `json:"email"       db:"email"`
	Role      auth.Role `json:"role"        db:"role"`
	IsBlocked bool      `json:"is_blocked"  db:"is_blocked"`
	CreatedAt time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt time.Time `json:"updated_at"  db:"updated_at"`
}

// FullName joins first and last name, tolerating either being empty.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UsersListOptions controls paging and filtering for listing users.
// Notes:
// - Sort supports: "created_at", "email" (case-insensitive).
// - Dir supports: "asc", "desc" (case-insensitive); values are normalized internally.
// - Q matches email or name via ILIKE substring.
type UsersListOptions struct {
	Limit  int
	Offset int
	Q      *string
	Role   *auth.Role // exact match
	Sort   string
	Dir    string
}
