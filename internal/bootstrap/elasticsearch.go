package bootstrap

import (
	"context"
	"fmt"
	"time"

	infraes "github.com/jonesrussell/north-cloud/stayscope/infrastructure/elasticsearch"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch/mappings"
)

const esConnectDelay = time.Second

// Gateway connects to the cluster and returns the execution gateway.
func (r *Runtime) Gateway(ctx context.Context) (*elasticsearch.Gateway, error) {
	c := r.Config.Elasticsearch

	client, err := infraes.NewClient(ctx, infraes.Config{
		URL:                c.URL,
		Username:           c.Username,
		Password:           c.Password,
		APIKey:             c.APIKey,
		CACertFile:         c.CACertFile,
		InsecureSkipVerify: c.InsecureSkipVerify,
		PingTimeout:        c.PingTimeout,
		Connect: retry.Config{
			MaxAttempts:  c.ConnectAttempts,
			InitialDelay: esConnectDelay,
		},
	}, r.Logger)
	if err != nil {
		return nil, err
	}

	return elasticsearch.NewGateway(client, r.Logger, r.Telemetry), nil
}

// EnsureIndex creates the bookings index with its mapping when absent.
func (r *Runtime) EnsureIndex(ctx context.Context, gw *elasticsearch.Gateway) (bool, error) {
	index := r.Config.Elasticsearch.Index

	created, err := gw.EnsureIndex(ctx, index, mappings.BookingMapping())
	if err != nil {
		return false, fmt.Errorf("ensure index %s: %w", index, err)
	}
	if created {
		r.Logger.Info("Bookings index created", logger.String("index", index))
	}
	return created, nil
}
