package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	infraconfig "github.com/jonesrussell/north-cloud/stayscope/infrastructure/config"
	"github.com/jonesrussell/north-cloud/stayscope/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "service:\n  debug: true\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 8095 {
		t.Errorf("Service.Port = %d, want 8095", cfg.Service.Port)
	}
	if cfg.Elasticsearch.Index != "hotel_bookings" {
		t.Errorf("Elasticsearch.Index = %q, want hotel_bookings", cfg.Elasticsearch.Index)
	}
	if cfg.Elasticsearch.KeywordSuffix != ".keyword" {
		t.Errorf("KeywordSuffix = %q, want .keyword", cfg.Elasticsearch.KeywordSuffix)
	}
	if cfg.SchemaCache.Backend != config.CacheBackendMemory {
		t.Errorf("SchemaCache.Backend = %q, want memory", cfg.SchemaCache.Backend)
	}
	if cfg.Sync.ChunkSize != 500 || cfg.Sync.Workers != 4 {
		t.Errorf("Sync = %+v, want chunk 500 workers 4", cfg.Sync)
	}
	if cfg.Sync.Schedule != "@every 1h" {
		t.Errorf("Sync.Schedule = %q, want @every 1h", cfg.Sync.Schedule)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_INDEX", "bookings_v2")
	t.Setenv("SCHEMA_CACHE_BACKEND", "redis")
	t.Setenv("STAYSCOPE_PORT", "9000")

	cfg, err := config.Load(writeConfig(t, "elasticsearch:\n  index: bookings\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Elasticsearch.Index != "bookings_v2" {
		t.Errorf("Index = %q, want bookings_v2", cfg.Elasticsearch.Index)
	}
	if cfg.SchemaCache.Backend != config.CacheBackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.SchemaCache.Backend)
	}
	if cfg.Service.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Service.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad port", "service:\n  port: 70000\n", "service.port"},
		{"page size above max", "service:\n  page_size: 50\n  max_page_size: 20\n", "service.page_size"},
		{"unknown cache backend", "schema_cache:\n  backend: memcached\n", "schema_cache.backend"},
		{"bad log level", "logging:\n  level: chatty\n", "logging.level"},
		{"negative workers", "sync:\n  workers: -1\n", "sync.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			var verr *infraconfig.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Load() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	db := config.DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "p@ss", Name: "bookings", SSLMode: "disable",
	}

	if got := db.DSN(); got != "host=db port=5432 user=app password=p@ss dbname=bookings sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
}
