package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/internal/container"
	"github.com/oksasatya/user-management-api/internal/infrastructure/search"
	"github.com/oksasatya/user-management-api/internal/infrastructure/upload"
	"github.com/oksasatya/user-management-api/internal/observability"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

// Build constructs every component enabled by cfg. Required components (the
// store, the upload backend) fail the build; optional ones are logged and skipped.
// Call Close on the result to release everything.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*container.Container, error) {
	users, closeUsers, err := OpenUsers(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c := container.New(cfg, logger, users)
	c.OnClose(closeUsers)

	if cfg.MetricsEnabled {
		c.EnableMetrics()
	}

	if err := wirePictures(ctx, c); err != nil {
		c.Close()
		return nil, err
	}

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	switch {
	case err != nil:
		helpers.LogWarn(logger, "redis unavailable, rate limits are per instance", logrus.Fields{"error": err.Error()})
	case rdb != nil:
		c.Redis = rdb
		c.OnClose(func() { _ = rdb.Close() })
	}

	if cfg.ESEnabled {
		wireSearch(ctx, c)
	}

	if cfg.AuditEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQAuditQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable, audit trail disabled", logrus.Fields{"error": err.Error()})
		} else {
			c.Audit = pub
			c.OnClose(pub.Close)
		}
	}

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(ctx, cfg.AppName, cfg.OTLPEndpoint)
		if err != nil {
			helpers.LogWarn(logger, "tracing disabled", logrus.Fields{"error": err.Error()})
			cfg.TracingEnabled = false
		} else {
			c.OnClose(func() { _ = shutdown(context.Background()) })
		}
	}

	return c, nil
}

func wirePictures(ctx context.Context, c *container.Container) error {
	cfg := c.Config
	switch cfg.UploadDriver {
	case "local":
		store, err := upload.NewLocalStore(cfg.UploadDir, cfg.UploadPublicPath)
		if err != nil {
			return fmt.Errorf("upload dir: %w", err)
		}
		c.Pictures = store
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fmt.Errorf("gcs client: %w", err)
		}
		store, err := upload.NewGCSStore(client, cfg.GCSBucket)
		if err != nil {
			_ = client.Close()
			return err
		}
		c.Pictures = store
		c.OnClose(func() { _ = client.Close() })
	default:
		return fmt.Errorf("unknown UPLOAD_DRIVER %q", cfg.UploadDriver)
	}
	return nil
}

func wireSearch(ctx context.Context, c *container.Container) {
	cfg := c.Config
	es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch client failed, search uses the store", logrus.Fields{"error": err.Error()})
		return
	}
	idx := search.NewUserIndex(es, cfg.ESUsersIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch index unavailable, search uses the store", logrus.Fields{"error": err.Error()})
		return
	}
	c.Index = idx

	n, err := idx.Backfill(ctx, c.Users)
	if err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch backfill incomplete", logrus.Fields{"error": err.Error(), "indexed": n})
		return
	}
	helpers.LogInfo(c.Logger, "elasticsearch backfill done", logrus.Fields{"indexed": n})
}
