package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

func TestSessionPayloadRoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  "tok-1",
		UserID: "u-1",
		Roles:  []domainuser.Role{domainuser.RoleGuest, domainuser.RoleAdmin},
		TTL:    time.Hour,
		Now:    now,
	})
	require.NoError(t, err)

	data, err := encodeSession(session)
	require.NoError(t, err)
	got, err := decodeSession(data)
	require.NoError(t, err)

	assert.Equal(t, session, got)
	assert.True(t, got.IsAdmin())
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	_, err := decodeSession([]byte("{not json"))
	assert.Error(t, err)
}

func TestKeysAreNamespaced(t *testing.T) {
	store := NewSessionStore(nil, "")

	assert.Equal(t, "staybook:session:tok", store.sessionKey("tok"))
	assert.Equal(t, "staybook:user_sessions:u-1", store.userKey("u-1"))
	assert.Equal(t, "test:session:tok", NewSessionStore(nil, "test").sessionKey("tok"))
}

func TestSaveRejectsExpiredSession(t *testing.T) {
	store := NewSessionStore(nil, "")
	store.now = func() time.Time { return time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC) }
	session := &domainauth.Session{
		Token:     "tok",
		UserID:    "u-1",
		ExpiresAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.ErrorIs(t, store.Save(context.Background(), session), domainauth.ErrTTLInvalid)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domainauth.ErrTokenRequired)
}
