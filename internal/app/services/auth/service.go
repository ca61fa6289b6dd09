package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

const (
	minPasswordLength = 8
	defaultSessionTTL = 24 * time.Hour
	adminDisplayName  = "Administrator"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = fmt.Errorf("auth: password must be at least %d characters", minPasswordLength)
	ErrUserBlocked        = domainuser.ErrBlocked
	ErrNotConfigured      = errors.New("auth: service not configured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service owns guest accounts and bearer sessions. Every issued session
// snapshots the user's roles; ResolveToken re-reads the user so blocking an
// account takes effect on the next request.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

// Register creates a guest account and signs it in.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	switch _, err := s.Users.ByEmail(ctx, email); {
	case err == nil:
		return nil, domainuser.ErrEmailAlreadyUsed
	case !errors.Is(err, domainuser.ErrNotFound):
		return nil, err
	}
	user, err := s.createUser(ctx, email, params.Name, params.Password, domainuser.RoleGuest)
	if err != nil {
		return nil, err
	}
	s.info(ctx, "guest registered", "user_id", user.ID)
	return s.signIn(ctx, user)
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	user, err := s.authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user)
}

// Logout drops one session; an empty or unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.check(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	case err != nil:
		return nil, err
	case user.Blocked:
		_ = s.Sessions.DeleteByUser(ctx, user.ID)
		return nil, ErrUserBlocked
	}
	return &ResolveResult{User: user, Session: session}, nil
}

// EnsureAdmin creates the bootstrap administrator, or grants the admin role to
// an existing account with the same email. The password of an existing account
// is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*domainuser.User, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	email = domainuser.NormalizeEmail(email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	existing, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domainuser.ErrNotFound) {
		admin, err := s.createUser(ctx, email, adminDisplayName, password, domainuser.RoleGuest, domainuser.RoleAdmin)
		if err != nil {
			return nil, err
		}
		s.info(ctx, "admin account created", "user_id", admin.ID)
		return admin, nil
	}
	if err != nil {
		return nil, err
	}
	if existing.IsAdmin() {
		return existing, nil
	}
	if err := existing.EnsureRole(domainuser.RoleAdmin, s.now()); err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, existing); err != nil {
		return nil, err
	}
	s.info(ctx, "admin role granted", "user_id", existing.ID)
	return existing, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, ErrUserBlocked
	}
	if err := s.Passwords.Compare(user.PasswordHash, password); err != nil {
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "login rejected", "user_id", user.ID)
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) createUser(ctx context.Context, email, name, password string, roles ...domainuser.Role) (*domainuser.User, error) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(s.newID()),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) signIn(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: user.ID,
		Roles:  user.Roles,
		TTL:    s.sessionTTL(),
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *Service) check() error {
	missing := ""
	switch {
	case s.Users == nil:
		missing = "user repository"
	case s.Sessions == nil:
		missing = "session store"
	case s.Passwords == nil:
		missing = "password hasher"
	case s.Tokens == nil:
		missing = "token generator"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s missing", ErrNotConfigured, missing)
}

func (s *Service) info(ctx context.Context, msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, msg, args...)
	}
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return defaultSessionTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
