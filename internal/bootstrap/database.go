package bootstrap

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/stayscope/internal/database"
	"github.com/jonesrussell/north-cloud/stayscope/internal/ingest"
)

// Database connects to Postgres and returns the pool with the booking
// repository bound to the configured table.
func (r *Runtime) Database(ctx context.Context) (*sqlx.DB, *database.BookingRepository, error) {
	db, err := database.Connect(ctx, r.Config.Database, r.Logger)
	if err != nil {
		return nil, nil, err
	}
	return db, database.NewBookingRepository(db, r.Config.Database.Table), nil
}

// Migrator binds the configured migrations to db.
func (r *Runtime) Migrator(db *sqlx.DB) (*database.Migrator, error) {
	return database.NewMigrator(db, r.Config.Database.MigrationsPath, r.Logger)
}

// Loader returns the CSV ingest pipeline writing to repo.
func (r *Runtime) Loader(repo *database.BookingRepository) *ingest.Loader {
	return ingest.NewLoader(repo, r.Config.Ingest.BatchSize, r.Telemetry, r.Logger)
}
