package domain

import (
	"fmt"
	"strings"
)

// AggKind is a supported single-field aggregation type.
type AggKind string

const (
	AggTerms         AggKind = "terms"
	AggAvg           AggKind = "avg"
	AggSum           AggKind = "sum"
	AggMin           AggKind = "min"
	AggMax           AggKind = "max"
	AggCardinality   AggKind = "cardinality"
	AggValueCount    AggKind = "value_count"
	AggStats         AggKind = "stats"
	AggExtendedStats AggKind = "extended_stats"
	AggPercentiles   AggKind = "percentiles"
	AggHistogram     AggKind = "histogram"
	AggDateHistogram AggKind = "date_histogram"
)

var aggKinds = map[AggKind]struct{}{
	AggTerms: {}, AggAvg: {}, AggSum: {}, AggMin: {}, AggMax: {}, AggCardinality: {},
	AggValueCount: {}, AggStats: {}, AggExtendedStats: {}, AggPercentiles: {},
	AggHistogram: {}, AggDateHistogram: {},
}

// ParseAggKind validates s. "dateHistogram" is accepted as an alias.
func ParseAggKind(s string) (AggKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "datehistogram" {
		return AggDateHistogram, nil
	}
	kind := AggKind(normalized)
	if _, ok := aggKinds[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAggKind, s)
	}
	return kind, nil
}

// AggregationSpec asks for one aggregation of Kind over Field.
type AggregationSpec struct {
	Field string
	Kind  AggKind
}

// NewAggregationSpec validates field and kind.
func NewAggregationSpec(field, kind string) (AggregationSpec, error) {
	if strings.TrimSpace(field) == "" {
		return AggregationSpec{}, fmt.Errorf("%w: aggregation field is required", ErrInvalidRequest)
	}
	k, err := ParseAggKind(kind)
	if err != nil {
		return AggregationSpec{}, err
	}
	return AggregationSpec{Field: field, Kind: k}, nil
}

// Key is the name the aggregation result is stored under. It uses the
// canonical kind, so "dateHistogram" and "Terms" key as date_histogram and terms.
func (a AggregationSpec) Key() string {
	return a.Field + "_" + string(a.Kind)
}
