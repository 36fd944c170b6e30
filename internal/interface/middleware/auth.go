package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

const ctxIdentityKey = "identity"

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*helpers.Claims, error)
}

func identify(c *gin.Context, v TokenVerifier) (entity.Identity, error) {
	token := helpers.TokenFromRequest(c)
	if token == "" {
		return entity.Identity{}, apperror.Authentication("Not authorized, no token")
	}
	claims, err := v.Verify(token)
	if err != nil {
		return entity.Identity{}, apperror.Authentication("Not authorized, token failed")
	}
	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return entity.Identity{}, apperror.Authentication("Not authorized, token failed")
	}
	return entity.Identity{ID: claims.UserID, Role: role}, nil
}

// Authenticate resolves the caller's identity from its token and stores it in
// the context. Requests without a valid token are rejected with 401.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identify(c, v)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(ctxIdentityKey, id)
		c.Next()
	}
}

// Identify attaches the identity when a valid token is present and never rejects.
func Identify(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := identify(c, v); err == nil {
			c.Set(ctxIdentityKey, id)
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by Authenticate or Identify.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok
}
