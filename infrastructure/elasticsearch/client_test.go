package elasticsearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/elasticsearch"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/retry"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "http://localhost:9200"},
		{"http://es:9200", "http://es:9200"},
		{"https://es:9200", "https://es:9200"},
		{"es:9200", "http://es:9200"},
	}

	for _, tt := range tests {
		if got := elasticsearch.NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// fakeCluster answers like a minimal Elasticsearch node. go-elasticsearch
// refuses to talk to a server without the X-Elastic-Product header.
func fakeCluster(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.3"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_PingsCluster(t *testing.T) {
	t.Parallel()

	srv := fakeCluster(t, http.StatusOK)

	client, err := elasticsearch.NewClient(context.Background(), elasticsearch.Config{
		URL:         srv.URL,
		PingTimeout: time.Second,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client == nil {
		t.Fatal("NewClient() returned nil client")
	}
}

func TestNewClient_PingErrorStatus(t *testing.T) {
	t.Parallel()

	srv := fakeCluster(t, http.StatusUnauthorized)

	_, err := elasticsearch.NewClient(context.Background(), elasticsearch.Config{
		URL:     srv.URL,
		Connect: retry.Config{MaxAttempts: 1},
	}, logger.NewNop())
	if err == nil {
		t.Fatal("NewClient() expected error for 401 ping")
	}
}
