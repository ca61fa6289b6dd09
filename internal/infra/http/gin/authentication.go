package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/services/auth"
	domainauth "staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
	domainuser "staybook/internal/domain/user"
)

const principalContextKey = "staybook.principal"

type principal struct {
	auth.Principal
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p principal) ID() string { return string(p.UserID) }

func (p principal) roleNames() []string {
	result := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		result = append(result, string(r))
	}
	return result
}

// TokenResolver turns a bearer token into the user and session behind it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*auth.ResolveResult, error)
}

type AuthMiddleware struct {
	Service TokenResolver
	Logger  *slog.Logger
}

// Handle attaches the caller to the gin context and to the request context.
// Requests without a valid token continue anonymously.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	p := principal{
		Principal: auth.PrincipalFromResolve(resolved),
		Email:     resolved.User.Email,
		Name:      resolved.User.Name,
		CreatedAt: resolved.User.CreatedAt,
		UpdatedAt: resolved.User.UpdatedAt,
	}
	if p.Token == "" {
		p.Token = token
	}
	c.Set(principalContextKey, p)
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p.Principal))
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// currentActor is the booking authorization context of the caller; anonymous callers get the zero Actor.
func currentActor(c *gin.Context) domainbooking.Actor {
	p, ok := currentPrincipal(c)
	if !ok {
		return domainbooking.Actor{}
	}
	return p.Actor()
}

func requireRole(c *gin.Context, role domainuser.Role) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if role != "" && !hasRole(p.Roles, role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func requireAuth(c *gin.Context) (principal, bool) {
	return requireRole(c, "")
}

func requireAdmin(c *gin.Context) (principal, bool) {
	return requireRole(c, domainuser.RoleAdmin)
}

func hasRole(roles []domainuser.Role, role domainuser.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	token := strings.TrimSpace(header[7:])
	return token
}
