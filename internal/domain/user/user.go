package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
	ErrBlocked             = errors.New("user: blocked")
)

type ID string

// Role is closed: guests book and review, admins operate the hotel.
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// ParseRole accepts a role name in any case.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleGuest, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Roles        []Role
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	List(ctx context.Context, params ListParams) ([]*User, int, error)
}

// ListParams filter the admin user listing by a case-insensitive email/name match.
type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

func (p ListParams) Normalized() ListParams {
	p.Query = strings.ToLower(strings.TrimSpace(p.Query))
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (p ListParams) Matches(u *User) bool {
	if p.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Email), p.Query) || strings.Contains(strings.ToLower(u.Name), p.Query)
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	u := &User{
		ID:           ID(strings.TrimSpace(string(params.ID))),
		Email:        NormalizeEmail(params.Email),
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: strings.TrimSpace(params.PasswordHash),
	}
	switch {
	case u.ID == "":
		return nil, ErrIDRequired
	case u.Email == "":
		return nil, ErrEmailRequired
	case u.PasswordHash == "":
		return nil, ErrPasswordHashMissing
	case u.Name == "":
		return nil, ErrNameRequired
	}
	for _, role := range params.Roles {
		if err := u.EnsureRole(role, time.Time{}); err != nil {
			return nil, err
		}
	}
	if len(u.Roles) == 0 {
		u.Roles = []Role{RoleGuest}
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	u.CreatedAt = now.UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

// EnsureRole adds role once; a zero now leaves UpdatedAt alone.
func (u *User) EnsureRole(role Role, now time.Time) error {
	parsed, err := ParseRole(string(role))
	if err != nil {
		return err
	}
	if u.HasRole(parsed) {
		return nil
	}
	u.Roles = append(u.Roles, parsed)
	u.touch(now)
	return nil
}

func (u *User) Block(now time.Time) {
	u.Blocked = true
	u.touch(now)
}

func (u *User) Unblock(now time.Time) {
	u.Blocked = false
	u.touch(now)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) HasRole(role Role) bool {
	for _, current := range u.Roles {
		if current == role {
			return true
		}
	}
	return false
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Roles = append([]Role(nil), u.Roles...)
	return &cp
}

func (u *User) touch(now time.Time) {
	if !now.IsZero() {
		u.UpdatedAt = now.UTC()
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
