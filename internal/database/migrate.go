package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:blankimports // File source driver
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
)

const filePrefix = "file://"

// Migrator applies the SQL migrations found under a file:// source.
type Migrator struct {
	m      *migrate.Migrate
	source string
	logger logger.Logger
}

// NewMigrator binds migrations at source to db. A relative file path is
// resolved against the working directory.
func NewMigrator(db *sqlx.DB, source string, log logger.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source = absoluteSource(source)
	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{m: m, source: source, logger: log}, nil
}

func absoluteSource(source string) string {
	path, ok := strings.CutPrefix(source, filePrefix)
	if !ok {
		return source
	}
	if abs, err := filepath.Abs(path); err == nil {
		return filePrefix + abs
	}
	return source
}

// Up applies all pending migrations.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("No pending migrations", logger.String("source", mg.source))
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	mg.logger.Info("Migrations applied", logger.String("source", mg.source))
	return nil
}

// Down rolls back steps migrations, at least one.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	if err := mg.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("No migrations to roll back", logger.String("source", mg.source))
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}

	mg.logger.Info("Migrations rolled back",
		logger.String("source", mg.source),
		logger.Int("steps", steps),
	)
	return nil
}

// Version returns the applied version. A fresh database reports 0.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get migration version: %w", err)
	}
	return version, dirty, nil
}
