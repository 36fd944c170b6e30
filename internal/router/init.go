package router

import (
	"github.com/oksasatya/user-management-api/internal/container"
	handlers "github.com/oksasatya/user-management-api/internal/interface/http"
	"github.com/oksasatya/user-management-api/internal/router/modules"
)

// InitModules wires every feature module from c and registers it with the registry.
// It should be called once during startup.
func InitModules(r *Registry, c *container.Container) {
	svc := c.Service()
	cfg := c.Config

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(svc, c.Cookies()),
		c.JWT,
		c.RateCounter(),
		cfg.AuthRateLimitMax,
		cfg.AuthRateLimitSpan,
	))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc), c.JWT, cfg.UploadMaxBytes))
}
