package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/stayscope/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/stayscope/internal/config"
	"github.com/jonesrussell/north-cloud/stayscope/internal/derived"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/stayscope/internal/reports"
	"github.com/jonesrussell/north-cloud/stayscope/internal/schema"
	"github.com/jonesrussell/north-cloud/stayscope/internal/service"
	stsync "github.com/jonesrussell/north-cloud/stayscope/internal/sync"
)

// SchemaCache builds the mapping cache over the configured store. When Redis
// is selected but unreachable the cache falls back to process memory. The
// returned client is nil unless Redis is in use.
func (r *Runtime) SchemaCache(ctx context.Context, gw *elasticsearch.Gateway) (*schema.Cache, *redis.Client) {
	store, client := r.mappingStore(ctx)
	return schema.NewCache(store, gw, r.Telemetry, r.Logger), client
}

func (r *Runtime) mappingStore(ctx context.Context) (schema.Store, *redis.Client) {
	if r.Config.SchemaCache.Backend != config.CacheBackendRedis {
		return schema.NewMemoryStore(), nil
	}

	rc := r.Config.Redis
	client, err := infraredis.NewClient(ctx, infraredis.Config{
		Address:  rc.Address,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err != nil {
		r.Logger.Warn("Redis unavailable, caching mappings in memory",
			logger.String("address", rc.Address),
			logger.Error(err),
		)
		return schema.NewMemoryStore(), nil
	}

	r.Logger.Info("Caching mappings in Redis", logger.String("address", rc.Address))
	return schema.NewRedisStore(client, r.Config.SchemaCache.KeyPrefix), client
}

// QueryService assembles the query service for the configured index.
func (r *Runtime) QueryService(gw *elasticsearch.Gateway, cache *schema.Cache) *service.QueryService {
	cfg := r.Config
	return service.NewQueryService(service.Deps{
		Index:     cfg.Elasticsearch.Index,
		Executor:  gw,
		Schema:    cache,
		Builder:   elasticsearch.NewQueryBuilder(cfg.Elasticsearch.KeywordSuffix, cfg.Service.PageSize),
		Catalog:   r.Catalog(),
		Telemetry: r.Telemetry,
		Logger:    r.Logger,

		MaxTextLength: cfg.Service.MaxTextLength,
	})
}

// Catalog returns the report catalog in the configured scripting mode.
func (r *Runtime) Catalog() *reports.Catalog {
	return reports.NewCatalog(r.Config.Reports.UsePrecomputedFields)
}

// Syncer builds the mirror sync from source into gw.
func (r *Runtime) Syncer(source stsync.BookingSource, gw *elasticsearch.Gateway) (*stsync.Syncer, error) {
	calc, err := derived.NewCalculator()
	if err != nil {
		return nil, fmt.Errorf("derived fields: %w", err)
	}

	sc := r.Config.Sync
	return stsync.NewSyncer(stsync.Config{
		Index:     r.Config.Elasticsearch.Index,
		ChunkSize: sc.ChunkSize,
		Workers:   sc.Workers,
		BulkRPS:   sc.BulkRPS,
		BulkBurst: sc.BulkBurst,
	}, source, gw, calc, r.Telemetry, r.Logger), nil
}
