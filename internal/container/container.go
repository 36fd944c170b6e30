package container

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/internal/application"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/internal/infrastructure/search"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
	"github.com/oksasatya/user-management-api/internal/observability"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

// Container holds the components constructed at startup and shared by the
// router modules. Optional components are nil when disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users repository.UserRepository
	JWT   *helpers.JWTManager

	Redis    *redis.Client
	Limiter  middleware.Counter
	Pictures application.PictureStore
	Index    *search.UserIndex
	Audit    *helpers.RabbitPublisher

	Prom     *observability.Prom
	Registry *prometheus.Registry

	service *application.Service
	closers []func()
}

func New(cfg *config.Config, logger *logrus.Logger, users repository.UserRepository) *Container {
	return &Container{
		Config: cfg,
		Logger: logger,
		Users:  users,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn),
	}
}

// EnableMetrics registers the HTTP and store collectors on a fresh registry and
// wraps the user repository with store instrumentation.
func (c *Container) EnableMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Prom = observability.NewProm(c.Registry)
	c.Users = observability.InstrumentUsers(c.Users, c.Prom)
	c.service = nil
}

// Service returns the application service, built on first use from the
// components set so far.
func (c *Container) Service() *application.Service {
	if c.service != nil {
		return c.service
	}
	svc := application.NewService(c.Users, c.JWT, c.Logger)
	svc.Pictures = c.Pictures
	svc.MaxPictureBytes = c.Config.UploadMaxBytes
	if c.Index != nil {
		svc.Index = c.Index
	}
	if c.Audit != nil {
		svc.Audit = c.Audit
	}
	if c.Prom != nil {
		svc.Metrics = c.Prom
	}
	c.service = svc
	return svc
}

// RateCounter returns the limiter backend: Redis when configured, process memory otherwise.
func (c *Container) RateCounter() middleware.Counter {
	if c.Limiter == nil {
		c.Limiter = middleware.NewCounter(c.Redis)
	}
	return c.Limiter
}

// Cookies returns a cookie manager sharing the token signer's clock.
func (c *Container) Cookies() *helpers.Manager {
	m := helpers.NewCookie(c.Config.CookieDomain, c.Config.CookieSecure, c.Config.CookieSameSite)
	m.Now = c.JWT.Clock
	return m
}

// OnClose registers fn to run on Close, in reverse order.
func (c *Container) OnClose(fn func()) {
	c.closers = append(c.closers, fn)
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
