package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/pkg/apperror"
)

// Authorize passes only identities whose role is one of roles. It must run after Authenticate.
func Authorize(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			_ = c.Error(apperror.Authentication("Not authorized, no token"))
			c.Abort()
			return
		}
		if !slices.Contains(roles, id.Role) {
			_ = c.Error(apperror.Forbidden("Access denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
