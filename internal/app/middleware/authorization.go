package middleware

import (
	"context"
	"errors"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
)

var ErrAdminRequired = errors.New("middleware: admin role required")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// AdminMessage is implemented by commands and queries reserved for administrators.
type AdminMessage interface {
	AdminOnly() bool
	CallerIsAdmin() bool
}

// AdminAuthorizer rejects admin-only messages sent by non-admin callers.
type AdminAuthorizer struct{}

func (AdminAuthorizer) Authorize(_ context.Context, message any) error {
	m, ok := message.(AdminMessage)
	if !ok || !m.AdminOnly() {
		return nil
	}
	if !m.CallerIsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
