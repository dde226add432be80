package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/stayscope/internal/reports"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestRenderReport_BucketList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := renderReport(&buf, "adr_by_hotel", decode(t, `[
		{"key":"City Hotel","doc_count":79330,"average_adr":{"value":105.3046}},
		{"key":"Resort Hotel","doc_count":40060,"average_adr":{"value":94.9529}}
	]`))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "adr_by_hotel")
	assert.Contains(t, out, "average_adr")
	assert.Contains(t, out, "City Hotel")
	assert.Contains(t, out, "79330")
	assert.Contains(t, out, "105.30")
}

func TestRenderReport_AggregationRoot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := renderReport(&buf, "monthly", decode(t, `{
		"by_month":{"buckets":[{"key_as_string":"2015-07-01","key":1435708800000,"doc_count":3}]}
	}`))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "monthly/by_month")
	assert.Contains(t, out, "2015-07-01")
}

func TestRenderReport_FallsBackToJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, "stats", decode(t, `{"avg_lead_time":{"value":104.0}}`)))
	assert.JSONEq(t, `{"avg_lead_time":{"value":104.0}}`, buf.String())
}

func TestRenderCatalog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderCatalog(&buf, reports.NewCatalog(false).List())

	out := buf.String()
	assert.Contains(t, out, "top_countries")
	assert.Contains(t, out, "16 reports")
	assert.NotContains(t, out, "16 REPORTS")
}

func TestFormatMetric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{json.Number("12.345"), "12.35"},
		{3.5, "3.50"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMetric(tt.in))
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	t.Parallel()

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "ingest", "sync", "report", "migrate", "version"} {
		assert.Contains(t, names, want)
	}
}
