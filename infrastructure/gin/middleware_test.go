package gin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ginpkg "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	infragin "github.com/jonesrussell/north-cloud/stayscope/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
)

func newServer(t *testing.T, checks map[string]infragin.HealthChecker) *ginpkg.Engine {
	t.Helper()

	b := infragin.NewServerBuilder("stayscope-test", 0).
		WithLogger(logger.NewNop()).
		WithRoutes(func(r *ginpkg.Engine) {
			r.GET("/echo", func(c *ginpkg.Context) {
				id, _ := c.Get(infragin.RequestIDKey)
				c.String(http.StatusOK, "%v", id)
			})
			r.GET("/boom", func(*ginpkg.Context) {
				panic("boom")
			})
		})
	for name, check := range checks {
		b.WithHealthCheck(name, check)
	}
	return b.Build().Router()
}

func do(t *testing.T, h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, path, http.NoBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware_GeneratesUUID(t *testing.T) {
	t.Parallel()

	w := do(t, newServer(t, nil), http.MethodGet, "/echo", nil)

	id := w.Header().Get(infragin.RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("X-Request-ID %q is not a UUID: %v", id, err)
	}
	if w.Body.String() != id {
		t.Errorf("context request_id = %q, want %q", w.Body.String(), id)
	}
}

func TestRequestIDMiddleware_KeepsInboundID(t *testing.T) {
	t.Parallel()

	w := do(t, newServer(t, nil), http.MethodGet, "/echo", map[string]string{
		infragin.RequestIDHeader: "upstream-123",
	})

	if got := w.Header().Get(infragin.RequestIDHeader); got != "upstream-123" {
		t.Errorf("X-Request-ID = %q, want upstream-123", got)
	}
}

func TestRequestIDMiddleware_ReplacesOversizedID(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 300)
	w := do(t, newServer(t, nil), http.MethodGet, "/echo", map[string]string{
		infragin.RequestIDHeader: long,
	})

	if got := w.Header().Get(infragin.RequestIDHeader); got == long {
		t.Error("oversized inbound request ID was accepted")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	w := do(t, newServer(t, nil), http.MethodGet, "/boom", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	t.Parallel()

	w := do(t, newServer(t, nil), http.MethodOptions, "/echo", map[string]string{
		"Origin": "http://dashboard.local",
	})

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	okPing := func(context.Context) error { return nil }
	badPing := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name       string
		checks     map[string]infragin.HealthChecker
		path       string
		wantStatus int
	}{
		{
			name:       "no checks",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name: "degraded dependency still healthy",
			checks: map[string]infragin.HealthChecker{
				"redis": infragin.PingChecker("redis", badPing, infragin.HealthStatusDegraded),
			},
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name: "unhealthy dependency",
			checks: map[string]infragin.HealthChecker{
				"elasticsearch": infragin.PingChecker("elasticsearch", badPing, infragin.HealthStatusUnhealthy),
			},
			path:       "/health",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "ready when healthy",
			checks: map[string]infragin.HealthChecker{
				"elasticsearch": infragin.PingChecker("elasticsearch", okPing, infragin.HealthStatusUnhealthy),
			},
			path:       "/ready",
			wantStatus: http.StatusOK,
		},
		{
			name: "not ready when degraded",
			checks: map[string]infragin.HealthChecker{
				"redis": infragin.PingChecker("redis", badPing, infragin.HealthStatusDegraded),
			},
			path:       "/ready",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "memory",
			path:       "/health/memory",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := do(t, newServer(t, tt.checks), http.MethodGet, tt.path, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d; body=%s", tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
