package auth

import (
	"context"

	domainbooking "staybook/internal/domain/booking"
	domainuser "staybook/internal/domain/user"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID domainuser.ID
	Roles  []domainuser.Role
	Token  string
}

func (p Principal) IsAdmin() bool {
	for _, role := range p.Roles {
		if role == domainuser.RoleAdmin {
			return true
		}
	}
	return false
}

// Actor converts the principal into the booking authorization context.
func (p Principal) Actor() domainbooking.Actor {
	return domainbooking.Actor{ID: string(p.UserID), Admin: p.IsAdmin()}
}

func PrincipalFromResolve(res *ResolveResult) Principal {
	if res == nil || res.User == nil {
		return Principal{}
	}
	p := Principal{
		UserID: res.User.ID,
		Roles:  append([]domainuser.Role(nil), res.User.Roles...),
	}
	if res.Session != nil {
		p.Token = string(res.Session.Token)
	}
	return p
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}
