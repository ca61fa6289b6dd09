package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"staybook/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is an opaque bearer credential.
type Token string

// Session binds a token to a user and the roles the user held at sign-in.
// Role changes made later take effect on the next sign-in.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     []user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	Roles  []user.Role
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	token := Token(strings.TrimSpace(string(params.Token)))
	switch {
	case token == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(params.UserID)) == "":
		return nil, ErrUserRequired
	case params.TTL <= 0:
		return nil, ErrTTLInvalid
	}
	issued := params.Now
	if issued.IsZero() {
		issued = time.Now()
	}
	issued = issued.UTC()
	return &Session{
		Token:     token,
		UserID:    params.UserID,
		Roles:     slices.Clone(params.Roles),
		CreatedAt: issued,
		ExpiresAt: issued.Add(params.TTL),
	}, nil
}

// Remaining is the lifetime left at the given instant; zero or negative once expired.
func (s *Session) Remaining(at time.Time) time.Duration {
	if at.IsZero() {
		at = time.Now()
	}
	return s.ExpiresAt.Sub(at.UTC())
}

func (s *Session) Expired(at time.Time) bool {
	return s.Remaining(at) <= 0
}

func (s *Session) HasRole(role user.Role) bool {
	return slices.Contains(s.Roles, role)
}

func (s *Session) IsAdmin() bool { return s.HasRole(user.RoleAdmin) }

// SessionStore persists sessions until they expire.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
