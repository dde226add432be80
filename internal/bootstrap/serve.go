package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/stayscope/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/stayscope/internal/api"
	"github.com/jonesrussell/north-cloud/stayscope/internal/database"
	stsync "github.com/jonesrussell/north-cloud/stayscope/internal/sync"
)

// Serve runs the HTTP API until ctx is cancelled or a termination signal
// arrives.
func (r *Runtime) Serve(ctx context.Context) error {
	cfg := r.Config
	log := r.Logger

	// Phase 0: profiling
	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	log.Info("Starting StayScope",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.String("index", cfg.Elasticsearch.Index),
	)

	// Phase 1: search engine
	gw, err := r.Gateway(ctx)
	if err != nil {
		return err
	}
	created, err := r.EnsureIndex(ctx, gw)
	if err != nil {
		return err
	}

	// Phase 2: relational store
	db, repo, err := r.Database(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database connection", logger.Error(closeErr))
		}
	}()

	migrator, err := r.Migrator(db)
	if err != nil {
		return err
	}
	if err = migrator.Up(); err != nil {
		return err
	}

	seeded, err := r.seed(ctx, repo)
	if err != nil {
		return err
	}

	// Phase 3: mirror sync
	syncer, err := r.Syncer(repo, gw)
	if err != nil {
		return err
	}
	if created || seeded {
		go r.initialSync(ctx, syncer)
	}
	if cfg.Sync.Enabled {
		scheduler := stsync.NewScheduler(syncer, cfg.Sync.Schedule, log)
		if err = scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start sync scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	// Phase 4: query service and HTTP server
	cache, redisClient := r.SchemaCache(ctx, gw)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	handler := api.NewHandler(r.QueryService(gw, cache), log)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORS(infragin.CORSConfig{
			Enabled:        cfg.CORS.Enabled,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}).
		WithHealthCheck("elasticsearch", infragin.PingChecker("elasticsearch", gw.Ping, infragin.HealthStatusUnhealthy)).
		WithHealthCheck("database", infragin.PingChecker("database", db.PingContext, infragin.HealthStatusDegraded)).
		WithMetrics(gin.WrapH(r.Telemetry.Handler())).
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, handler)
		})
	if redisClient != nil {
		builder = builder.WithHealthCheck("redis", infragin.PingChecker("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}, infragin.HealthStatusDegraded))
	}

	if err = builder.Build().RunContext(ctx); err != nil {
		log.Error("Server error", logger.Error(err))
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("StayScope stopped")
	return nil
}

// seed loads the seed CSV into an empty table.
func (r *Runtime) seed(ctx context.Context, repo *database.BookingRepository) (bool, error) {
	ic := r.Config.Ingest
	if !ic.SeedOnStartup || ic.SeedPath == "" {
		return false, nil
	}

	n, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		r.Logger.Debug("Store already populated, skipping seed", logger.Int64("rows", n))
		return false, nil
	}

	if _, err = r.Loader(repo).LoadFile(ctx, ic.SeedPath); err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	return true, nil
}

func (r *Runtime) initialSync(ctx context.Context, syncer *stsync.Syncer) {
	res, err := syncer.Run(ctx)
	switch {
	case errors.Is(err, stsync.ErrRunInProgress):
	case err != nil:
		r.Logger.Error("Initial sync failed", logger.String("run_id", res.RunID), logger.Error(err))
	default:
		r.Logger.Info("Initial sync complete", logger.Int("indexed", res.Indexed))
	}
}
