package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/internal/bootstrap"
	"github.com/oksasatya/user-management-api/internal/router"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	if cfg.IsProduction() && cfg.JWTSecret == "devsecret" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// run returns only after its deferred closers have released every connection
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server exited properly")
}

// buildContainer is swapped in tests.
var buildContainer = bootstrap.Build

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	c, err := buildContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	defer c.Close()

	created, err := c.Service().EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin bootstrap failed: %w", err)
	}
	if created {
		logger.WithField("email", cfg.AdminEmail).Info("admin user created")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewEngine(c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	return nil
}
