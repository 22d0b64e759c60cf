package middleware

import (
	"context"
	"strings"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator resolves a bearer token into a Principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// AuthRequired verifies the bearer token and injects the Principal into context
func AuthRequired(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			_ = c.Error(apperrors.Unauthenticated("Authorization header required (Bearer <token>)"))
			c.Abort()
			return
		}
		principal, err := authn.Authenticate(c.Request.Context(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RoleRequired enforces that the caller holds one of the allowed roles.
// Unapproved restaurant owners are refused.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireRole(GetPrincipal(c), roles...); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the caller from context; nil on public routes
func GetPrincipal(c *gin.Context) *auth.Principal {
	val, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := val.(*auth.Principal)
	return p
}

// SetPrincipal is used by tests that bypass AuthRequired
func SetPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(principalKey, p)
}
