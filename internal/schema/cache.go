// Package schema caches index field mappings so aggregation fields can be
// resolved without a metadata round-trip per request.
package schema

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// Store holds mappings keyed by index name.
type Store interface {
	Get(ctx context.Context, index string) (domain.FieldMapping, bool, error)
	Put(ctx context.Context, mapping domain.FieldMapping) error
	Delete(ctx context.Context, index string) error
}

// MappingFetcher loads a mapping from the search engine.
type MappingFetcher interface {
	GetMapping(ctx context.Context, index string) (domain.FieldMapping, error)
}

// LookupRecorder observes cache hits and misses.
type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// Cache memoizes mappings per index. Entries never expire; Invalidate drops
// one so the next lookup refetches it. Concurrent misses on the same index may
// each fetch, which is harmless because they store the same value.
type Cache struct {
	store   Store
	fetcher MappingFetcher
	metrics LookupRecorder
	log     logger.Logger
}

// NewCache builds a cache over store. metrics may be nil.
func NewCache(store Store, fetcher MappingFetcher, metrics LookupRecorder, log logger.Logger) *Cache {
	return &Cache{store: store, fetcher: fetcher, metrics: metrics, log: log}
}

// GetMapping returns the cached mapping for index, fetching it on a miss.
// A store failure degrades to a live fetch. A fetch failure is returned as is
// and is already classified as domain.ErrEngineUnavailable by the fetcher.
func (c *Cache) GetMapping(ctx context.Context, index string) (domain.FieldMapping, error) {
	mapping, ok, err := c.store.Get(ctx, index)
	if err != nil {
		c.log.Warn("Schema cache read failed, fetching live",
			logger.String("index", index),
			logger.Error(err),
		)
	}
	if ok {
		c.record(true)
		return mapping, nil
	}
	c.record(false)

	mapping, err = c.fetcher.GetMapping(ctx, index)
	if err != nil {
		return domain.FieldMapping{}, fmt.Errorf("load mapping for %s: %w", index, err)
	}

	if putErr := c.store.Put(ctx, mapping); putErr != nil {
		c.log.Warn("Schema cache write failed",
			logger.String("index", index),
			logger.Error(putErr),
		)
	}
	c.log.Debug("Schema cached",
		logger.String("index", index),
		logger.Int("fields", len(mapping.Fields)),
	)
	return mapping, nil
}

// Invalidate forgets the mapping for index.
func (c *Cache) Invalidate(ctx context.Context, index string) error {
	if err := c.store.Delete(ctx, index); err != nil {
		return fmt.Errorf("invalidate mapping for %s: %w", index, err)
	}
	c.log.Info("Schema cache invalidated", logger.String("index", index))
	return nil
}

func (c *Cache) record(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(hit)
	}
}
