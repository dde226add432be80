package gin

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the rolled-up state reported by /health.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"

	bytesPerMiB = 1 << 20
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) CheckResult

// PingChecker turns a ping function into a HealthChecker. Failures report
// failStatus so optional dependencies can degrade instead of fail.
func PingChecker(name string, ping func(ctx context.Context) error, failStatus HealthStatus) HealthChecker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		latency := time.Since(start).String()
		if err != nil {
			return CheckResult{Status: failStatus, Message: name + " unreachable: " + err.Error(), Latency: latency}
		}
		return CheckResult{Status: HealthStatusHealthy, Message: name + " OK", Latency: latency}
	}
}

type healthOptions struct {
	service string
	version string
	checks  map[string]HealthChecker
}

func registerHealthRoutes(r *gin.Engine, opts healthOptions) {
	started := time.Now()

	r.GET("/health", func(c *gin.Context) {
		resp := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.service,
			Version: opts.version,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		}
		resp.Checks, resp.Status = runChecks(c.Request.Context(), opts.checks)

		code := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	})

	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Ready only when every dependency is fully healthy.
	r.GET("/ready", func(c *gin.Context) {
		checks, status := runChecks(c.Request.Context(), opts.checks)
		code := http.StatusOK
		if status != HealthStatusHealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"ready": code == http.StatusOK, "checks": checks})
	})

	r.GET("/health/memory", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(http.StatusOK, gin.H{
			"heap_alloc_mb":  float64(m.HeapAlloc) / bytesPerMiB,
			"heap_inuse_mb":  float64(m.HeapInuse) / bytesPerMiB,
			"sys_mb":         float64(m.Sys) / bytesPerMiB,
			"num_gc":         m.NumGC,
			"num_goroutines": runtime.NumGoroutine(),
		})
	})
}

func runChecks(ctx context.Context, checks map[string]HealthChecker) (map[string]CheckResult, HealthStatus) {
	status := HealthStatusHealthy
	if len(checks) == 0 {
		return nil, status
	}

	results := make(map[string]CheckResult, len(checks))
	for name, check := range checks {
		res := check(ctx)
		results[name] = res
		switch res.Status {
		case HealthStatusUnhealthy:
			status = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if status == HealthStatusHealthy {
				status = HealthStatusDegraded
			}
		case HealthStatusHealthy:
		}
	}
	return results, status
}
