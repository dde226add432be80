package elasticsearch

import (
	"slices"
	"strings"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

const (
	defaultKeywordSuffix     = ".keyword"
	defaultHistogramInterval = 10
	defaultCalendarInterval  = "month"
	minimumShouldMatch       = 1
)

// QueryBuilder translates structured requests into Elasticsearch query DSL.
// It holds configuration only and is safe for concurrent use.
type QueryBuilder struct {
	keywordSuffix string
	pageSize      int
}

// NewQueryBuilder creates a builder. An empty suffix defaults to ".keyword".
func NewQueryBuilder(keywordSuffix string, pageSize int) *QueryBuilder {
	if keywordSuffix == "" {
		keywordSuffix = defaultKeywordSuffix
	}
	return &QueryBuilder{keywordSuffix: keywordSuffix, pageSize: pageSize}
}

// BuildFilterQuery maps must, must_not and should entries to match clauses and
// range entries to range clauses in must. A non-empty should list requires at
// least one match.
func (qb *QueryBuilder) BuildFilterQuery(spec domain.FilterSpec) domain.QueryTree {
	var tree domain.QueryTree

	for _, field := range sortedKeys(spec.Must) {
		tree.Must = append(tree.Must, matchClause(field, spec.Must[field]))
	}
	for _, field := range sortedKeys(spec.MustNot) {
		tree.MustNot = append(tree.MustNot, matchClause(field, spec.MustNot[field]))
	}
	for _, field := range sortedKeys(spec.Should) {
		tree.Should = append(tree.Should, matchClause(field, spec.Should[field]))
	}
	for _, field := range sortedKeys(spec.Range) {
		tree.Must = append(tree.Must, rangeClause(field, spec.Range[field]))
	}

	if len(tree.Should) > 0 {
		msm := minimumShouldMatch
		tree.MinimumShouldMatch = &msm
	}
	return tree
}

// BuildAggregationQuery returns a size-0 request body with one aggregation per
// spec keyed "<field>_<kind>". Text fields with a keyword sub-field aggregate on
// the sub-field. Fields missing from the mapping are used as given and returned
// in unresolved.
func (qb *QueryBuilder) BuildAggregationQuery(
	specs []domain.AggregationSpec,
	mapping domain.FieldMapping,
) (body map[string]any, unresolved []string) {
	aggs := make(map[string]any, len(specs))

	for _, spec := range specs {
		field, ok := qb.ResolveField(spec.Field, mapping)
		if !ok {
			unresolved = append(unresolved, spec.Field)
		}
		aggs[spec.Key()] = aggregationBody(spec.Kind, field)
	}

	return map[string]any{
		"size": 0,
		"aggs": aggs,
	}, unresolved
}

// ResolveField returns the field to aggregate on: the keyword sub-field for
// text fields that have one, otherwise field itself. ok is false when the
// mapping does not know field.
func (qb *QueryBuilder) ResolveField(field string, mapping domain.FieldMapping) (resolved string, ok bool) {
	info, ok := mapping.Lookup(field)
	if ok && info.Type == "text" && info.HasKeyword {
		return field + qb.keywordSuffix, true
	}
	return field, ok
}

func aggregationBody(kind domain.AggKind, field string) map[string]any {
	params := map[string]any{"field": field}
	switch kind {
	case domain.AggHistogram:
		params["interval"] = defaultHistogramInterval
	case domain.AggDateHistogram:
		params["calendar_interval"] = defaultCalendarInterval
	default:
	}
	return map[string]any{string(kind): params}
}

// BuildFullTextQuery splits text on whitespace and requires every term to
// fuzzily match at least one of fields.
func (qb *QueryBuilder) BuildFullTextQuery(text string, fields []string) domain.QueryTree {
	var tree domain.QueryTree
	for _, term := range strings.Fields(text) {
		tree.Must = append(tree.Must, domain.Clause{
			"multi_match": map[string]any{
				"query":     term,
				"fields":    fields,
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		})
	}
	return tree
}

// BuildSuggestQuery builds a completion suggester request named after field.
// Duplicate suppression by the engine is requested but not relied upon.
func (qb *QueryBuilder) BuildSuggestQuery(text, field string) map[string]any {
	return map[string]any{
		"_source": false,
		"suggest": map[string]any{
			field: map[string]any{
				"prefix": text,
				"completion": map[string]any{
					"field":           field,
					"skip_duplicates": true,
				},
			},
		},
	}
}

// BuildSearchBody wraps tree into a request body with exact total hit counts.
func (qb *QueryBuilder) BuildSearchBody(tree domain.QueryTree) map[string]any {
	body := map[string]any{
		"query":            tree.Source(),
		"track_total_hits": true,
	}
	if qb.pageSize > 0 {
		body["size"] = qb.pageSize
	}
	return body
}

func matchClause(field string, value any) domain.Clause {
	return domain.Clause{"match": map[string]any{field: value}}
}

func rangeClause(field string, bounds domain.RangeBounds) domain.Clause {
	params := make(map[string]any, len(bounds))
	for op, bound := range bounds {
		params[string(op)] = bound
	}
	return domain.Clause{"range": map[string]any{field: params}}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
