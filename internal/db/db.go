// Package database wires up the pgxpool connection pool and runs schema
// migrations, following the teacher's platform database package.
package database

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	uuid "github.com/vgarvardt/pgx-google-uuid/v5"
	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/pkg/config"
)

//go:embed migrations
var migrationFS embed.FS

const defaultRetries = 5

// Config is the resolved Postgres connection string.
type Config struct {
	ConnectionURL string
}

// NewConfig builds the Postgres connection URL from the loaded
// application config.
func NewConfig(cfg *config.Config) (*Config, error) {
	if cfg == nil || cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("postgres configuration is missing or invalid")
	}

	query := url.Values{}
	query.Set("sslmode", cfg.Postgres.SSLMode)

	connURL := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(cfg.Postgres.Username, cfg.Postgres.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Postgres.Host, cfg.Postgres.Port),
		Path:     cfg.Postgres.DB,
		RawQuery: query.Encode(),
	}

	return &Config{ConnectionURL: connURL.String()}, nil
}

// Init opens the pgxpool, registering the uuid.UUID codec ParserRun rows
// depend on.
func Init(ctx context.Context, connectionURL string, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		uuid.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	logger.Info("database connection pool initialized")
	return pool, nil
}

// WaitForDB retries pool.Ping until it succeeds or defaultRetries is
// exhausted.
func WaitForDB(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) bool {
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("database connection successful")
			return true
		}
		wait := time.Duration(attempt) * 200 * time.Millisecond
		logger.Warn("database ping failed, retrying", zap.Int("attempt", attempt), zap.Duration("wait", wait))
		if attempt < defaultRetries {
			time.Sleep(wait)
		}
	}
	logger.Error("database connection failed after retries")
	return false
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(databaseURL string, logger *zap.Logger) error {
	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return fmt.Errorf("invalid database URL scheme for migrate: %s", databaseURL)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("error closing migration source", zap.Error(srcErr))
	}
	if dbErr != nil {
		logger.Warn("error closing migration database connection", zap.Error(dbErr))
	}

	logger.Info("database migrations applied")
	return nil
}
