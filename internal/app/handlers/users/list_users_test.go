package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/queries"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

func seedUsers(t *testing.T, repo *memory.UserRepository) {
	t.Helper()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		user, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(fmt.Sprintf("u%d", i+1)),
			Email:        fmt.Sprintf("%s@example.com", name),
			Name:         name,
			PasswordHash: "hash",
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), user))
	}
}

func TestListUsersFiltersAndPages(t *testing.T) {
	repo := memory.NewUserRepository()
	seedUsers(t, repo)
	h := &ListUsersHandler{Users: repo}

	all, err := h.Handle(context.Background(), ListUsersQuery{ActorAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "u1", all.Items[0].ID)

	filtered, err := h.Handle(context.Background(), ListUsersQuery{Query: "CAR", ActorAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Total)
	assert.Equal(t, "Carol", filtered.Items[0].Name)

	paged, err := h.Handle(context.Background(), ListUsersQuery{Limit: 1, Offset: 1, ActorAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, 3, paged.Total)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "u2", paged.Items[0].ID)
}

func TestListUsersRequiresAdminThroughBus(t *testing.T) {
	repo := memory.NewUserRepository()
	seedUsers(t, repo)
	bus := queries.NewInMemoryBus()
	queries.Register[ListUsersQuery, *dto.UserCollection](bus, &ListUsersHandler{Users: repo})
	guarded := middleware.ChainQueries(bus, middleware.QueryAuthorization(middleware.AdminAuthorizer{}))

	_, err := queries.Ask[ListUsersQuery, *dto.UserCollection](context.Background(), guarded, ListUsersQuery{})
	assert.ErrorIs(t, err, middleware.ErrAdminRequired)

	res, err := queries.Ask[ListUsersQuery, *dto.UserCollection](context.Background(), guarded, ListUsersQuery{ActorAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
}

func TestListUsersWithoutRepository(t *testing.T) {
	_, err := (&ListUsersHandler{}).Handle(context.Background(), ListUsersQuery{ActorAdmin: true})
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)
}
