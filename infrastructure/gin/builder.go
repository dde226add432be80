package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
)

// ServerBuilder assembles a Server step by step.
type ServerBuilder struct {
	cfg     *Config
	log     logger.Logger
	routes  func(*gin.Engine)
	checks  map[string]HealthChecker
	metrics gin.HandlerFunc
}

// NewServerBuilder starts a builder for serviceName listening on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		cfg: &Config{
			Port:        port,
			ServiceName: serviceName,
			CORS:        CORSConfig{Enabled: true},
		},
		checks: make(map[string]HealthChecker),
	}
}

func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.log = log
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.cfg.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.cfg.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.cfg.ReadTimeout = read
	b.cfg.WriteTimeout = write
	b.cfg.IdleTimeout = idle
	return b
}

func (b *ServerBuilder) WithCORS(cors CORSConfig) *ServerBuilder {
	b.cfg.CORS = cors
	return b
}

// WithHealthCheck registers a named dependency check reported by /health and /ready.
func (b *ServerBuilder) WithHealthCheck(name string, check HealthChecker) *ServerBuilder {
	b.checks[name] = check
	return b
}

// WithMetrics mounts handler at GET /metrics.
func (b *ServerBuilder) WithMetrics(handler gin.HandlerFunc) *ServerBuilder {
	b.metrics = handler
	return b
}

func (b *ServerBuilder) WithRoutes(routes func(*gin.Engine)) *ServerBuilder {
	b.routes = routes
	return b
}

// Build creates the Server. A nop logger is used when none was supplied.
func (b *ServerBuilder) Build() *Server {
	if b.log == nil {
		b.log = logger.NewNop()
	}
	b.cfg.applyDefaults()

	setup := func(r *gin.Engine) {
		registerHealthRoutes(r, healthOptions{
			service: b.cfg.ServiceName,
			version: b.cfg.ServiceVersion,
			checks:  b.checks,
		})
		if b.metrics != nil {
			r.GET("/metrics", b.metrics)
		}
		if b.routes != nil {
			b.routes(r)
		}
	}

	return NewServer(b.cfg, b.log, setup)
}
