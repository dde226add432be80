package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// IndexExists reports whether index exists. A 404 is not an error.
func (g *Gateway) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := g.client.Indices.Exists([]string{index}, g.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("index exists: %w: %w", domain.ErrEngineUnavailable, err)
	}
	defer closeBody(res)

	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.IsError():
		return false, fmt.Errorf("index exists: %w", &domain.RejectedError{Status: res.StatusCode, Reason: res.Status()})
	default:
		return true, nil
	}
}

// CreateIndex creates index with body as settings and mappings.
func (g *Gateway) CreateIndex(ctx context.Context, index string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode index body: %w", err)
	}

	res, err := g.client.Indices.Create(index,
		g.client.Indices.Create.WithContext(ctx),
		g.client.Indices.Create.WithBody(bytes.NewReader(payload)),
	)
	if err = classify("create index", res, err); err != nil {
		return err
	}
	closeBody(res)
	return nil
}

// EnsureIndex creates index with body unless it already exists. It reports
// whether the index was created.
func (g *Gateway) EnsureIndex(ctx context.Context, index string, body map[string]any) (bool, error) {
	exists, err := g.IndexExists(ctx, index)
	if err != nil {
		return false, err
	}
	if exists {
		g.log.Info("Index exists", logger.String("index", index))
		return false, nil
	}

	if err = g.CreateIndex(ctx, index, body); err != nil {
		return false, err
	}
	g.log.Info("Index created", logger.String("index", index))
	return true, nil
}

// GetMapping fetches and flattens the mapping of index. Any failure to obtain
// the mapping is reported as domain.ErrEngineUnavailable.
func (g *Gateway) GetMapping(ctx context.Context, index string) (domain.FieldMapping, error) {
	res, err := g.client.Indices.GetMapping(
		g.client.Indices.GetMapping.WithContext(ctx),
		g.client.Indices.GetMapping.WithIndex(index),
	)
	if err = classify("get mapping", res, err); err != nil {
		return domain.FieldMapping{}, fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
	}
	defer closeBody(res)

	var raw map[string]struct {
		Mappings struct {
			Properties map[string]any `json:"properties"`
		} `json:"mappings"`
	}
	if err = json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return domain.FieldMapping{}, fmt.Errorf("%w: decode mapping: %w", domain.ErrEngineUnavailable, err)
	}

	// An alias resolves to its concrete index name in the response.
	entry, ok := raw[index]
	if !ok {
		for _, v := range raw {
			entry = v
			ok = true
			break
		}
	}
	if !ok {
		return domain.FieldMapping{}, fmt.Errorf("%w: no mapping returned for %s", domain.ErrEngineUnavailable, index)
	}

	return FlattenMapping(index, entry.Mappings.Properties), nil
}

// FlattenMapping converts mapping properties into a FieldMapping. Object fields
// are flattened into dotted paths.
func FlattenMapping(index string, properties map[string]any) domain.FieldMapping {
	fm := domain.FieldMapping{Index: index, Fields: make(map[string]domain.FieldInfo)}
	flatten("", properties, fm.Fields)
	return fm
}

func flatten(prefix string, properties map[string]any, out map[string]domain.FieldInfo) {
	for name, v := range properties {
		prop, ok := v.(map[string]any)
		if !ok {
			continue
		}
		path := prefix + name

		if nested, hasProps := prop["properties"].(map[string]any); hasProps {
			flatten(path+".", nested, out)
			continue
		}

		info := domain.FieldInfo{}
		info.Type, _ = prop["type"].(string)
		if sub, hasSub := prop["fields"].(map[string]any); hasSub {
			kw, hasKw := sub["keyword"].(map[string]any)
			info.HasKeyword = hasKw && kw["type"] == "keyword"
		}
		out[path] = info
	}
}
