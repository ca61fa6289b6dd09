package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/user"
)

func TestNewSessionValidation(t *testing.T) {
	_, err := NewSession(CreateSessionParams{UserID: "u1", TTL: time.Hour})
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = NewSession(CreateSessionParams{Token: "t", TTL: time.Hour})
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = NewSession(CreateSessionParams{Token: "t", UserID: "u1"})
	assert.ErrorIs(t, err, ErrTTLInvalid)
}

func TestSessionExpiryAndRoles(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSession(CreateSessionParams{
		Token:  "t",
		UserID: "u1",
		Roles:  []user.Role{user.RoleGuest, user.RoleAdmin},
		TTL:    time.Hour,
		Now:    now,
	})
	require.NoError(t, err)

	assert.True(t, s.IsAdmin())
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}

func TestSessionRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSession(CreateSessionParams{Token: " t ", UserID: "u1", TTL: time.Hour, Now: now})
	require.NoError(t, err)

	assert.Equal(t, Token("t"), s.Token)
	assert.Equal(t, 15*time.Minute, s.Remaining(now.Add(45*time.Minute)))
	assert.False(t, s.HasRole(user.RoleAdmin))
	assert.LessOrEqual(t, s.Remaining(now.Add(2*time.Hour)), time.Duration(0))
}
