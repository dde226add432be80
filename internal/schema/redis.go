package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// DefaultKeyPrefix namespaces mapping keys.
const DefaultKeyPrefix = "stayscope:mapping:"

// RedisStore shares mappings between replicas as JSON values without expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore uses prefix for keys, or DefaultKeyPrefix when empty.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(index string) string {
	return s.prefix + index
}

func (s *RedisStore) Get(ctx context.Context, index string) (domain.FieldMapping, bool, error) {
	raw, err := s.client.Get(ctx, s.key(index)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.FieldMapping{}, false, nil
	}
	if err != nil {
		return domain.FieldMapping{}, false, fmt.Errorf("redis get %s: %w", s.key(index), err)
	}

	var m domain.FieldMapping
	if err = json.Unmarshal(raw, &m); err != nil {
		return domain.FieldMapping{}, false, fmt.Errorf("decode cached mapping %s: %w", index, err)
	}
	return m, true, nil
}

func (s *RedisStore) Put(ctx context.Context, mapping domain.FieldMapping) error {
	raw, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("encode mapping %s: %w", mapping.Index, err)
	}
	if err = s.client.Set(ctx, s.key(mapping.Index), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(mapping.Index), err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, index string) error {
	if err := s.client.Del(ctx, s.key(index)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key(index), err)
	}
	return nil
}
