package reports

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Bucket is the typed view of one aggregation bucket. Sub-aggregations are
// kept in Metrics keyed by name.
type Bucket struct {
	Key         any            `mapstructure:"key"`
	KeyAsString string         `mapstructure:"key_as_string"`
	DocCount    int64          `mapstructure:"doc_count"`
	Metrics     map[string]any `mapstructure:",remain"`
}

// Label is the display key of the bucket.
func (b Bucket) Label() string {
	if b.KeyAsString != "" {
		return b.KeyAsString
	}
	return fmt.Sprint(b.Key)
}

// MetricNames returns the sub-aggregation names that carry a single value,
// sorted.
func (b Bucket) MetricNames() []string {
	var names []string
	for name, v := range b.Metrics {
		if m, ok := v.(map[string]any); ok {
			if _, hasValue := m["value"]; hasValue {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// MetricValue returns the "value" of a single-value sub-aggregation.
func (b Bucket) MetricValue(name string) any {
	if m, ok := b.Metrics[name].(map[string]any); ok {
		return m["value"]
	}
	return nil
}

// DecodeBuckets converts a projected bucket list into Buckets.
func DecodeBuckets(projected any) ([]Bucket, error) {
	var buckets []Bucket
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &buckets,
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket decoder: %w", err)
	}
	if err = dec.Decode(projected); err != nil {
		return nil, fmt.Errorf("decode buckets: %w", err)
	}
	return buckets, nil
}

// FirstBuckets finds the first "buckets" list in an aggregation tree, for
// reports projected at the aggregations root.
func FirstBuckets(tree map[string]any) (string, any, bool) {
	names := make([]string, 0, len(tree))
	for k := range tree {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if node, ok := tree[name].(map[string]any); ok {
			if b, hasBuckets := node["buckets"]; hasBuckets {
				return name, b, true
			}
		}
	}
	return "", nil, false
}
