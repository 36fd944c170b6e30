package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/oksasatya/user-management-api/internal/container"
	handlers "github.com/oksasatya/user-management-api/internal/interface/http"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
	"github.com/oksasatya/user-management-api/pkg/validation"
)

// NewEngine builds the gin engine with the global middleware chain, the
// operational endpoints and every API module.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config
	validation.Init()

	r := gin.New()
	r.Use(gin.CustomRecovery(middleware.Recovery(c.Logger)))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxy))
	r.Use(middleware.SecurityHeaders(cfg.CookieSecure))
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.AppName))
	}
	if c.Prom != nil {
		r.Use(c.Prom.GinHandleMiddleware())
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(c.Logger))
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))

	var allowPrivate middleware.AllowFunc
	if cfg.RateLimitSkipPrivate {
		allowPrivate = middleware.AllowPrivateIP()
	}
	r.Use(middleware.RateLimit(
		c.RateCounter(),
		cfg.RateLimitMax,
		cfg.RateLimitWindow,
		middleware.KeyByIP(),
		middleware.AllowAny(middleware.AllowPaths("/healthz", "/readyz", "/metrics"), allowPrivate),
	))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.NoRoute(middleware.NotFound())

	health := handlers.NewHealthHandler(c.Users)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if c.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))
	}
	if cfg.UploadDriver == "local" && cfg.UploadPublicPath != "" {
		r.Static(strings.TrimSuffix(cfg.UploadPublicPath, "/"), cfg.UploadDir)
	}

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// credentials cannot be combined with a wildcard origin
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
