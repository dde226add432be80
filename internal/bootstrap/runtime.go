// Package bootstrap wires configuration, logging and the service's
// dependencies for the stayscope commands.
package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/stayscope/infrastructure/config"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/config"
	"github.com/jonesrussell/north-cloud/stayscope/internal/telemetry"
)

const defaultConfigPath = "config.yml"

// Runtime carries what every command needs: configuration, a logger and the
// metrics provider.
type Runtime struct {
	Config    *config.Config
	Logger    logger.Logger
	Telemetry *telemetry.Provider
}

// Init loads configuration from path, or from CONFIG_PATH / config.yml when
// path is empty, and creates the logger.
func Init(path string) (*Runtime, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Runtime{
		Config:    cfg,
		Logger:    log,
		Telemetry: telemetry.NewProvider(),
	}, nil
}

// CreateLogger builds the service logger from the logging section.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	level := cfg.Logging.Level
	if cfg.Service.Debug {
		level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:       level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// Close flushes the logger.
func (r *Runtime) Close() {
	_ = r.Logger.Sync()
}
