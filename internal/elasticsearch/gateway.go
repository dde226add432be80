// Package elasticsearch builds booking queries and executes them, together
// with the index administration the service needs.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
	"github.com/jonesrussell/north-cloud/stayscope/internal/telemetry"
)

// RawResponse is a decoded engine response body.
type RawResponse struct {
	Status int
	Body   map[string]any
}

// Gateway is the single point through which requests reach the cluster. Each
// call is one attempt; failures are classified as domain.ErrEngineUnavailable
// or domain.ErrEngineRejected and never retried here.
type Gateway struct {
	client    *es.Client
	log       logger.Logger
	telemetry *telemetry.Provider
}

// NewGateway wraps client.
func NewGateway(client *es.Client, log logger.Logger, tp *telemetry.Provider) *Gateway {
	return &Gateway{client: client, log: log, telemetry: tp}
}

// Execute runs a search request body against index.
func (g *Gateway) Execute(ctx context.Context, index string, body map[string]any) (*RawResponse, error) {
	ctx, span := g.telemetry.StartSpan(ctx, "elasticsearch.search",
		attribute.String("db.system", "elasticsearch"),
		attribute.String("db.elasticsearch.index", index),
	)
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	res, err := g.client.Search(
		g.client.Search.WithContext(ctx),
		g.client.Search.WithIndex(index),
		g.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err = classify("search", res, err); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.log.Debug("Search request failed",
			logger.String("index", index),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return nil, err
	}
	defer closeBody(res)

	raw, err := decode(res)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", raw.Status))
	return raw, nil
}

// Ping checks the cluster answers.
func (g *Gateway) Ping(ctx context.Context) error {
	res, err := g.client.Ping(g.client.Ping.WithContext(ctx))
	if err = classify("ping", res, err); err != nil {
		return err
	}
	closeBody(res)
	return nil
}

// Count returns the number of documents in index.
func (g *Gateway) Count(ctx context.Context, index string) (int64, error) {
	res, err := g.client.Count(g.client.Count.WithContext(ctx), g.client.Count.WithIndex(index))
	if err = classify("count", res, err); err != nil {
		return 0, err
	}
	defer closeBody(res)

	var out struct {
		Count int64 `json:"count"`
	}
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return out.Count, nil
}

// classify turns a transport error or an error status into a typed error.
// On success it returns nil and the caller owns res.Body.
func classify(op string, res *esapi.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrEngineUnavailable, err)
	}
	if !res.IsError() {
		return nil
	}
	defer closeBody(res)

	rejected := &domain.RejectedError{Status: res.StatusCode}
	body, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		rejected.Reason = readErr.Error()
		return fmt.Errorf("%s: %w", op, rejected)
	}

	var e struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && len(e.Error) > 0 {
		var detail struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		}
		if json.Unmarshal(e.Error, &detail) == nil {
			rejected.Type, rejected.Reason = detail.Type, detail.Reason
		} else {
			rejected.Reason = string(bytes.Trim(e.Error, `"`))
		}
	}
	if rejected.Reason == "" {
		rejected.Reason = http.StatusText(res.StatusCode)
	}
	return fmt.Errorf("%s: %w", op, rejected)
}

func decode(res *esapi.Response) (*RawResponse, error) {
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &RawResponse{Status: res.StatusCode, Body: body}, nil
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
