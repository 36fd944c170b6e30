package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	handlers "github.com/oksasatya/user-management-api/internal/interface/http"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
)

// multipartOverhead leaves room for boundaries and headers around the picture.
const multipartOverhead = 1 << 20

// UserModule wires the user management routes. Listing and creation are
// admin-only; routes addressing one user are open to admins and the owner,
// which the service decides.
type UserModule struct {
	Handler        *handlers.UserHandler
	Verifier       middleware.TokenVerifier
	UploadMaxBytes int64
}

func NewUserModule(h *handlers.UserHandler, v middleware.TokenVerifier, uploadMaxBytes int64) *UserModule {
	return &UserModule{Handler: h, Verifier: v, UploadMaxBytes: uploadMaxBytes}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Authenticate(m.Verifier))

	admin := middleware.Authorize(entity.RoleAdmin)
	anyone := middleware.Authorize(entity.RoleAdmin, entity.RoleUser)

	users.GET("", admin, m.Handler.List)
	users.POST("", admin, m.Handler.Create)
	users.GET("/:id", anyone, m.Handler.Get)
	users.PUT("/:id", anyone, m.Handler.Update)
	users.DELETE("/:id", anyone, m.Handler.Delete)
	users.PUT("/:id/profile-picture", anyone, middleware.MaxBodyBytes(m.UploadMaxBytes+multipartOverhead), m.Handler.UpdateProfilePicture)
}
