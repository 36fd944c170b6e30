package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-management-api/internal/interface/http"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler  *handlers.AuthHandler
	Verifier middleware.TokenVerifier
	Counter  middleware.Counter
	Max      int
	Window   time.Duration
}

func NewAuthModule(h *handlers.AuthHandler, v middleware.TokenVerifier, counter middleware.Counter, limit int, window time.Duration) *AuthModule {
	return &AuthModule{Handler: h, Verifier: v, Counter: counter, Max: limit, Window: window}
}

// Register mounts /auth. Register and login are rate limited per IP and path;
// logout needs no valid token.
func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Counter, m.Max, m.Window, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", limiter, m.Handler.Register)
	auth.POST("/login", limiter, m.Handler.Login)
	auth.POST("/logout", middleware.Identify(m.Verifier), m.Handler.Logout)
}
