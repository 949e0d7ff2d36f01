package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"CANDIDATE", RoleCandidate, true},
		{"RECRUITER", RoleRecruiter, true},
		{"ADMIN", RoleAdmin, true},
		{"admin", "", false},
		{"ADMIN ", "", false},
		{"SUPERUSER", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCandidate.Valid())
	assert.True(t, RoleRecruiter.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("").Valid())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	active := Session{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, active.Expired(now))

	stale := Session{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, stale.Expired(now))

	// Zero expiry means no expiry was recorded; treat as not expired.
	assert.False(t, Session{}.Expired(now))
}

func TestSessionCanAct(t *testing.T) {
	s := Session{Role: RoleCandidate}
	assert.True(t, s.CanAct())

	s.IsBlocked = true
	assert.False(t, s.CanAct())

	assert.False(t, Session{Role: "mystery"}.CanAct())
	assert.False(t, Session{}.CanAct())
}
