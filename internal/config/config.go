package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/stayscope/infrastructure/config"
)

// Default values applied by setDefaults.
const (
	defaultServiceName    = "stayscope"
	defaultServiceVersion = "1.0.0"
	defaultPort           = 8095
	defaultPageSize       = 10
	defaultMaxPageSize    = 1000
	defaultMaxTextLength  = 256

	defaultESURL           = "http://localhost:9200"
	defaultIndex           = "hotel_bookings"
	defaultKeywordSuffix   = ".keyword"
	defaultPingTimeout     = 5 * time.Second
	defaultConnectAttempts = 5

	defaultCacheBackend   = CacheBackendMemory
	defaultCacheKeyPrefix = "stayscope:mapping:"
	defaultRedisAddress   = "localhost:6379"

	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "hotel_bookings"
	defaultDBSSLMode       = "disable"
	defaultDBTable         = "hotel_bookings"
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultMigrationsPath  = "file://migrations"

	defaultSyncSchedule  = "@every 1h"
	defaultSyncChunkSize = 500
	defaultSyncWorkers   = 4
	defaultSyncBulkRPS   = 5.0
	defaultSyncBulkBurst = 1

	defaultIngestBatchSize = 1000

	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// Cache backends for the field mapping cache.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config is the complete StayScope configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	SchemaCache   SchemaCacheConfig   `yaml:"schema_cache"`
	Redis         RedisConfig         `yaml:"redis"`
	Database      DatabaseConfig      `yaml:"database"`
	Reports       ReportsConfig       `yaml:"reports"`
	Sync          SyncConfig          `yaml:"sync"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Logging       LoggingConfig       `yaml:"logging"`
	CORS          CORSConfig          `yaml:"cors"`
}

type ServiceConfig struct {
	Name          string `yaml:"name"`
	Version       string `yaml:"version"`
	Port          int    `env:"STAYSCOPE_PORT"      yaml:"port"`
	Debug         bool   `env:"STAYSCOPE_DEBUG"     yaml:"debug"`
	PageSize      int    `env:"STAYSCOPE_PAGE_SIZE" yaml:"page_size"`
	MaxPageSize   int    `yaml:"max_page_size"`
	MaxTextLength int    `yaml:"max_text_length"`
}

type ElasticsearchConfig struct {
	URL                string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username           string        `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password           string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey             string        `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	CACertFile         string        `env:"ELASTICSEARCH_CA_CERT"  yaml:"ca_cert_file"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Index              string        `env:"ELASTICSEARCH_INDEX"    yaml:"index"`
	KeywordSuffix      string        `yaml:"keyword_suffix"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	ConnectAttempts    int           `yaml:"connect_attempts"`
}

type SchemaCacheConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `env:"SCHEMA_CACHE_BACKEND" yaml:"backend"`
	KeyPrefix string `yaml:"key_prefix"`
}

type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Name            string        `env:"POSTGRES_DB"       yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" yaml:"migrations_path"`
}

// DSN returns a lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type ReportsConfig struct {
	// UsePrecomputedFields swaps the Painless scripts in the report templates
	// for fields written at ingest time. Needed on clusters with inline
	// scripting disabled.
	UsePrecomputedFields bool `env:"REPORTS_USE_PRECOMPUTED_FIELDS" yaml:"use_precomputed_fields"`
}

type SyncConfig struct {
	Enabled   bool    `env:"SYNC_ENABLED"  yaml:"enabled"`
	Schedule  string  `env:"SYNC_SCHEDULE" yaml:"schedule"`
	ChunkSize int     `yaml:"chunk_size"`
	Workers   int     `yaml:"workers"`
	BulkRPS   float64 `yaml:"bulk_rps"`
	BulkBurst int     `yaml:"bulk_burst"`
}

type IngestConfig struct {
	SeedPath      string `env:"INGEST_SEED_PATH" yaml:"seed_path"`
	SeedOnStartup bool   `yaml:"seed_on_startup"`
	BatchSize     int    `yaml:"batch_size"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `env:"CORS_ORIGINS" yaml:"allowed_origins"`
}

// Load reads path, applies defaults and environment overrides, and validates.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	setIfEmpty(&cfg.Service.Name, defaultServiceName)
	setIfEmpty(&cfg.Service.Version, defaultServiceVersion)
	setIfZero(&cfg.Service.Port, defaultPort)
	setIfZero(&cfg.Service.PageSize, defaultPageSize)
	setIfZero(&cfg.Service.MaxPageSize, defaultMaxPageSize)
	setIfZero(&cfg.Service.MaxTextLength, defaultMaxTextLength)

	setIfEmpty(&cfg.Elasticsearch.URL, defaultESURL)
	setIfEmpty(&cfg.Elasticsearch.Index, defaultIndex)
	setIfEmpty(&cfg.Elasticsearch.KeywordSuffix, defaultKeywordSuffix)
	setIfZero(&cfg.Elasticsearch.PingTimeout, defaultPingTimeout)
	setIfZero(&cfg.Elasticsearch.ConnectAttempts, defaultConnectAttempts)

	setIfEmpty(&cfg.SchemaCache.Backend, defaultCacheBackend)
	setIfEmpty(&cfg.SchemaCache.KeyPrefix, defaultCacheKeyPrefix)
	setIfEmpty(&cfg.Redis.Address, defaultRedisAddress)

	setIfEmpty(&cfg.Database.Host, defaultDBHost)
	setIfZero(&cfg.Database.Port, defaultDBPort)
	setIfEmpty(&cfg.Database.User, defaultDBUser)
	setIfEmpty(&cfg.Database.Name, defaultDBName)
	setIfEmpty(&cfg.Database.SSLMode, defaultDBSSLMode)
	setIfEmpty(&cfg.Database.Table, defaultDBTable)
	setIfZero(&cfg.Database.MaxOpenConns, defaultMaxOpenConns)
	setIfZero(&cfg.Database.MaxIdleConns, defaultMaxIdleConns)
	setIfZero(&cfg.Database.ConnMaxLifetime, defaultConnMaxLifetime)
	setIfEmpty(&cfg.Database.MigrationsPath, defaultMigrationsPath)

	setIfEmpty(&cfg.Sync.Schedule, defaultSyncSchedule)
	setIfZero(&cfg.Sync.ChunkSize, defaultSyncChunkSize)
	setIfZero(&cfg.Sync.Workers, defaultSyncWorkers)
	setIfZero(&cfg.Sync.BulkRPS, defaultSyncBulkRPS)
	setIfZero(&cfg.Sync.BulkBurst, defaultSyncBulkBurst)

	setIfZero(&cfg.Ingest.BatchSize, defaultIngestBatchSize)

	setIfEmpty(&cfg.Logging.Level, defaultLogLevel)
	setIfEmpty(&cfg.Logging.Format, defaultLogFormat)

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setIfZero[T int | float64 | time.Duration](dst *T, v T) {
	if *dst == 0 {
		*dst = v
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if err := infraconfig.Port("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.PageSize < 1 || c.Service.PageSize > c.Service.MaxPageSize {
		return &infraconfig.ValidationError{
			Field:   "service.page_size",
			Message: fmt.Sprintf("must be between 1 and %d", c.Service.MaxPageSize),
		}
	}
	if err := infraconfig.Required("elasticsearch.url", c.Elasticsearch.URL); err != nil {
		return err
	}
	if err := infraconfig.Required("elasticsearch.index", c.Elasticsearch.Index); err != nil {
		return err
	}
	switch c.SchemaCache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return &infraconfig.ValidationError{Field: "schema_cache.backend", Message: "must be one of: memory, redis"}
	}
	if err := infraconfig.Port("database.port", c.Database.Port); err != nil {
		return err
	}
	if err := infraconfig.Positive("sync.chunk_size", c.Sync.ChunkSize); err != nil {
		return err
	}
	if err := infraconfig.Positive("sync.workers", c.Sync.Workers); err != nil {
		return err
	}
	if c.Sync.BulkRPS <= 0 {
		return &infraconfig.ValidationError{Field: "sync.bulk_rps", Message: "must be greater than zero"}
	}
	if err := infraconfig.Positive("ingest.batch_size", c.Ingest.BatchSize); err != nil {
		return err
	}
	if err := infraconfig.LogLevel("logging.level", c.Logging.Level); err != nil {
		return err
	}
	return infraconfig.LogFormat("logging.format", c.Logging.Format)
}
