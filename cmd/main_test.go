package main

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/internal/bootstrap"
	"github.com/oksasatya/user-management-api/internal/container"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

func TestRunReleasesResourcesWhenAdminSeedFails(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("UPLOAD_DRIVER", "local")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("ADMIN_EMAIL", "admin@x.com")
	t.Setenv("ADMIN_PASSWORD", "x")
	cfg := config.Load()

	closed := false
	orig := buildContainer
	t.Cleanup(func() { buildContainer = orig })
	buildContainer = func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*container.Container, error) {
		c, err := bootstrap.Build(ctx, cfg, logger)
		if err == nil {
			c.OnClose(func() { closed = true })
		}
		return c, err
	}

	err := run(cfg, helpers.NewDiscardLogger())
	if err == nil || !strings.Contains(err.Error(), "admin bootstrap failed") {
		t.Fatalf("got %v, want admin bootstrap failure", err)
	}
	if !closed {
		t.Fatalf("container was not closed")
	}
}
