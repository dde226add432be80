// Package elasticsearch constructs go-elasticsearch clients and verifies the
// cluster is reachable before handing them out.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/retry"
)

const (
	defaultURL         = "http://localhost:9200"
	defaultPingTimeout = 5 * time.Second
)

// Config describes how to reach the cluster.
type Config struct {
	URL                string
	Username           string
	Password           string
	APIKey             string
	CACertFile         string
	CACert             []byte
	InsecureSkipVerify bool
	PingTimeout        time.Duration
	// Connect controls the startup ping backoff only. Requests issued through
	// the client are never retried by the transport.
	Connect retry.Config
}

// NewClient builds a client with transport-level retries disabled and blocks
// until a ping succeeds or Connect is exhausted.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	url := NormalizeURL(cfg.URL)

	esCfg := es.Config{
		Addresses:    []string{url},
		Username:     cfg.Username,
		Password:     cfg.Password,
		APIKey:       cfg.APIKey,
		DisableRetry: true,
	}

	caCert := cfg.CACert
	if len(caCert) == 0 && cfg.CACertFile != "" {
		pem, err := os.ReadFile(cfg.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("read elasticsearch CA cert: %w", err)
		}
		caCert = pem
	}
	switch {
	case len(caCert) > 0:
		esCfg.CACert = caCert
	case cfg.InsecureSkipVerify:
		//nolint:gosec // opt-in for local clusters with self-signed certs
		esCfg.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	log.Info("Verifying Elasticsearch connection", logger.String("url", url))
	if err = retry.Do(ctx, cfg.Connect, func(ctx context.Context) error {
		return Ping(ctx, client, timeout)
	}); err != nil {
		return nil, fmt.Errorf("connect to elasticsearch: %w", err)
	}
	log.Info("Elasticsearch connection established", logger.String("url", url))

	return client, nil
}

// NormalizeURL defaults the scheme to http and the address to localhost.
func NormalizeURL(url string) string {
	switch {
	case url == "":
		return defaultURL
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return url
	default:
		return "http://" + url
	}
}

// Ping issues a single ping bounded by timeout.
func Ping(ctx context.Context, client *es.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("ping returned %s: %s", res.Status(), strings.TrimSpace(string(body)))
	}
	return nil
}
