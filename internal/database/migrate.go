package database

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file source driver
)

// DefaultMigrationsPath is where migration files live relative to the
// binary's working directory.
const DefaultMigrationsPath = "migrations"

// newMigrator builds a migrate instance for the given migrations directory.
func newMigrator(cfg Config, migrationsPath string) (*migrate.Migrate, error) {
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}
	if absPath, err := filepath.Abs(migrationsPath); err == nil {
		migrationsPath = absPath
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return m, nil
}

// RunMigrations applies all pending migrations. Returns migrate.ErrNoChange
// already swallowed: an up-to-date schema is not an error.
func RunMigrations(cfg Config, migrationsPath string) error {
	m, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// MigrateDown rolls back the given number of migrations (at least one).
func MigrateDown(cfg Config, migrationsPath string, steps int) error {
	m, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if steps <= 0 {
		steps = 1
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}

	return nil
}
