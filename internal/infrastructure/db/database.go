package db

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/homewarden/homewarden/configs"
)

// pingTimeout bounds the startup connectivity check so a misconfigured DSN
// fails fast instead of hanging boot.
const pingTimeout = 5 * time.Second

// Database wraps the sqlx handle the repositories share.
type Database struct {
	DB *sqlx.DB
}

// NewDatabaseWithConfig opens the Postgres pool with the configured limits
// and verifies connectivity before returning.
func NewDatabaseWithConfig(cfg *configs.DatabaseConfig) (*Database, error) {
	conn, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return &Database{DB: conn}, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

// Migrate applies any pending schema migrations from migrationsPath. An
// already-current schema is not an error.
func (d *Database) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(d.DB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("db: migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver,
	)
	if err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("db: migrate up: %w", err)
	}

	return nil
}
