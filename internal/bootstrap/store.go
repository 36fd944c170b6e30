package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/user-management-api/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/user-management-api/internal/infrastructure/postgres"
)

// OpenUsers connects the credential store selected by STORE_DRIVER and
// prepares its schema. The returned func releases the connection.
func OpenUsers(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
			QueryTimeout:    cfg.StoreTimeout,
			ApplicationName: cfg.AppName,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil

	case "mongo":
		client, err := mongoinfra.NewClient(ctx, cfg.MongoURI, cfg.StoreTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		repo := mongoinfra.NewUserRepository(client.Database(cfg.MongoDB), cfg.MongoCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return repo, closeFn, nil

	case "memory":
		logger.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// RunMigrations applies pending migrations from migrationsDir.
func RunMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
