package users

import (
	"context"
	"errors"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	domainuser "staybook/internal/domain/user"
)

const listUsersKey = "users.list"

var ErrRepositoryUnavailable = errors.New("users: repository unavailable")

// ListUsersQuery is the admin user directory, filtered by email or name.
type ListUsersQuery struct {
	Query      string
	Limit      int `validate:"gte=0"`
	Offset     int `validate:"gte=0"`
	ActorAdmin bool
}

func (ListUsersQuery) Key() string { return listUsersKey }

func (ListUsersQuery) AdminOnly() bool { return true }

func (q ListUsersQuery) CallerIsAdmin() bool { return q.ActorAdmin }

type ListUsersHandler struct {
	Users domainuser.Repository
}

func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (*dto.UserCollection, error) {
	if h.Users == nil {
		return nil, ErrRepositoryUnavailable
	}
	users, total, err := h.Users.List(ctx, domainuser.ListParams{
		Query:  q.Query,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	resp := &dto.UserCollection{
		Items: make([]dto.UserProfile, 0, len(users)),
		Total: total,
	}
	for _, user := range users {
		resp.Items = append(resp.Items, dto.MapUserProfile(user))
	}
	return resp, nil
}

var _ queries.Handler[ListUsersQuery, *dto.UserCollection] = (*ListUsersHandler)(nil)
