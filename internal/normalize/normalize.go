// Package normalize turns raw engine response bodies into the service's result
// shapes.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// ErrMalformed means the response lacks a section its request implies.
var ErrMalformed = errors.New("malformed engine response")

// Search extracts hits in engine order and the exact total.
func Search(body map[string]any) (domain.SearchResult, error) {
	hitsSection, ok := body["hits"].(map[string]any)
	if !ok {
		return domain.SearchResult{}, fmt.Errorf("%w: hits missing", ErrMalformed)
	}

	total, err := totalValue(hitsSection["total"])
	if err != nil {
		return domain.SearchResult{}, err
	}

	rawHits, _ := hitsSection["hits"].([]any)
	hits := make([]map[string]any, 0, len(rawHits))
	for _, h := range rawHits {
		if hit, isMap := h.(map[string]any); isMap {
			hits = append(hits, hit)
		}
	}
	return domain.SearchResult{Hits: hits, Total: total}, nil
}

// totalValue reads hits.total as either {"value": n} or a bare number.
func totalValue(v any) (int64, error) {
	if obj, ok := v.(map[string]any); ok {
		v = obj["value"]
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: total %q: %w", ErrMalformed, n, err)
		}
		return i, nil
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: total has type %T", ErrMalformed, v)
	}
}

// Aggregations passes the aggregation tree through. An absent or empty tree is
// domain.ErrEmptyResult.
func Aggregations(body map[string]any) (domain.AggregationResult, error) {
	aggs, ok := body["aggregations"].(map[string]any)
	if !ok || len(aggs) == 0 {
		return domain.AggregationResult{}, domain.ErrEmptyResult
	}
	return domain.AggregationResult{Aggregations: aggs}, nil
}

// Suggestions flattens the option texts of every entry under suggest[field],
// keeping the first occurrence of each text in engine order.
func Suggestions(body map[string]any, field string) []string {
	suggest, ok := body["suggest"].(map[string]any)
	if !ok {
		return []string{}
	}
	entries, _ := suggest[field].([]any)

	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range entries {
		entry, isMap := e.(map[string]any)
		if !isMap {
			continue
		}
		options, _ := entry["options"].([]any)
		for _, o := range options {
			opt, optOK := o.(map[string]any)
			if !optOK {
				continue
			}
			text, textOK := opt["text"].(string)
			if !textOK {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, text)
		}
	}
	return out
}

// Project walks a dotted path from the response root, e.g.
// "aggregations.top_countries.buckets". Numeric segments index into arrays.
func Project(body map[string]any, path string) (any, error) {
	var cur any = body
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("%w: %s not found at %q", ErrMalformed, seg, path)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("%w: bad index %s in %q", ErrMalformed, seg, path)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("%w: cannot descend into %T at %s", ErrMalformed, cur, seg)
		}
	}
	return cur, nil
}
