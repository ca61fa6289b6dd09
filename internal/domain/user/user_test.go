package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserValidation(t *testing.T) {
	base := CreateParams{ID: "u1", Email: "a@example.com", Name: "A", PasswordHash: "h"}
	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"id", func(p *CreateParams) { p.ID = " " }, ErrIDRequired},
		{"email", func(p *CreateParams) { p.Email = "" }, ErrEmailRequired},
		{"hash", func(p *CreateParams) { p.PasswordHash = "" }, ErrPasswordHashMissing},
		{"name", func(p *CreateParams) { p.Name = "  " }, ErrNameRequired},
		{"role", func(p *CreateParams) { p.Roles = []Role{"host"} }, ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := NewUser(p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewUserDefaults(t *testing.T) {
	created := time.Date(2026, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	u, err := NewUser(CreateParams{ID: "u1", Email: " A@Example.com ", Name: " A ", PasswordHash: "h", CreatedAt: created})
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, []Role{RoleGuest}, u.Roles)
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestRolesAndBlocking(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: "a@example.com", Name: "A", PasswordHash: "h", Roles: []Role{"GUEST", "guest"}})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleGuest}, u.Roles)
	assert.False(t, u.IsAdmin())

	later := u.CreatedAt.Add(time.Hour)
	require.NoError(t, u.EnsureRole("Admin", later))
	assert.True(t, u.IsAdmin())
	assert.Equal(t, later, u.UpdatedAt)
	assert.ErrorIs(t, u.EnsureRole("owner", later), ErrInvalidRole)

	u.Block(later)
	assert.True(t, u.Blocked)
	u.Unblock(later)
	assert.False(t, u.Blocked)

	clone := u.Clone()
	clone.Roles[0] = RoleAdmin
	assert.Equal(t, RoleGuest, u.Roles[0])
}

func TestListParams(t *testing.T) {
	p := ListParams{Query: "  Ali ", Limit: 1000, Offset: -2}.Normalized()
	assert.Equal(t, ListParams{Query: "ali", Limit: 50, Offset: 0}, p)

	assert.True(t, p.Matches(&User{Email: "ALICE@example.com"}))
	assert.True(t, p.Matches(&User{Name: "Malik"}))
	assert.False(t, p.Matches(&User{Email: "bob@example.com", Name: "Bob"}))
}
