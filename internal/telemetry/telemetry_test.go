package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/stayscope/internal/telemetry"
)

func TestProvider_RecordQuery(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider()
	p.RecordQuery("search", telemetry.OutcomeSuccess, 20*time.Millisecond)
	p.RecordQuery("search", telemetry.OutcomeSuccess, 30*time.Millisecond)
	p.RecordQuery("search", telemetry.OutcomeError, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.QueriesTotal.WithLabelValues("search", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.QueriesTotal.WithLabelValues("search", "error")), 0)
}

func TestProvider_RecordCacheAndSync(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider()
	p.RecordCacheLookup(true)
	p.RecordCacheLookup(false)
	p.RecordCacheLookup(false)
	p.RecordSyncRun(telemetry.OutcomeSuccess, time.Second, 1000, 2)
	p.RecordIngest(10, map[string]int{"adr": 3})

	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.SchemaCacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1000, testutil.ToFloat64(p.Metrics.SyncDocumentsTotal.WithLabelValues("indexed")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(p.Metrics.IngestOutliersTotal.WithLabelValues("adr")), 0)
}

func TestProvider_Handler(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider()
	p.RecordQuery("aggregate", telemetry.OutcomeEmpty, time.Millisecond)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", http.NoBody)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `stayscope_queries_total{operation="aggregate",outcome="empty"} 1`))
}

func TestProvider_StartSpan(t *testing.T) {
	t.Parallel()

	p := telemetry.NewProvider()
	ctx, span := p.StartSpan(context.Background(), "test")
	defer span.End()
	assert.NotNil(t, ctx)
}
