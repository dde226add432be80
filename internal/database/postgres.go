// Package database provides the relational store of bookings.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/stayscope/internal/config"
)

const (
	driverName       = "postgres"
	pingTimeout      = 5 * time.Second
	connectAttempts  = 5
	connectBaseDelay = time.Second
)

// Connect opens a pooled connection and waits for the server to answer,
// retrying transient failures while it starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingErr := retry.Do(ctx, retry.Config{
		MaxAttempts:  connectAttempts,
		InitialDelay: connectBaseDelay,
	}, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			log.Warn("Database not ready",
				logger.String("host", cfg.Host),
				logger.Error(err),
			)
			return err
		}
		return nil
	})
	if pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %s:%d: %w", cfg.Host, cfg.Port, pingErr)
	}

	log.Info("Connected to database",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.Name),
	)
	return db, nil
}
