// Package service wires the query builder, schema cache, gateway and
// normalizer into the operations the API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/stayscope/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/stayscope/internal/normalize"
	"github.com/jonesrussell/north-cloud/stayscope/internal/reports"
	"github.com/jonesrussell/north-cloud/stayscope/internal/telemetry"
)

const (
	opSearch    = "search"
	opAggregate = "aggregate"
	opFullText  = "full_text_search"
	opSuggest   = "suggest"
	opReport    = "report"
)

// Executor runs one request body against an index.
type Executor interface {
	Execute(ctx context.Context, index string, body map[string]any) (*elasticsearch.RawResponse, error)
}

// SchemaCache resolves and forgets index mappings.
type SchemaCache interface {
	GetMapping(ctx context.Context, index string) (domain.FieldMapping, error)
	Invalidate(ctx context.Context, index string) error
}

// QueryService answers search, aggregation, suggestion and report requests
// for one index.
type QueryService struct {
	index     string
	exec      Executor
	schema    SchemaCache
	builder   *elasticsearch.QueryBuilder
	catalog   *reports.Catalog
	telemetry *telemetry.Provider
	log       logger.Logger

	maxTextLength int
}

// Deps groups the collaborators of QueryService.
type Deps struct {
	Index     string
	Executor  Executor
	Schema    SchemaCache
	Builder   *elasticsearch.QueryBuilder
	Catalog   *reports.Catalog
	Telemetry *telemetry.Provider
	Logger    logger.Logger
	// MaxTextLength bounds full-text and suggest input; zero disables the check.
	MaxTextLength int
}

// NewQueryService builds the service.
func NewQueryService(d Deps) *QueryService {
	return &QueryService{
		index:     d.Index,
		exec:      d.Executor,
		schema:    d.Schema,
		builder:   d.Builder,
		catalog:   d.Catalog,
		telemetry: d.Telemetry,
		log:       d.Logger,

		maxTextLength: d.MaxTextLength,
	}
}

func (s *QueryService) checkText(name, text string) error {
	if s.maxTextLength > 0 && len(text) > s.maxTextLength {
		return fmt.Errorf("%w: %s exceeds %d characters", domain.ErrInvalidRequest, name, s.maxTextLength)
	}
	return nil
}

// Search runs a structured filter query. No hits is domain.ErrEmptyResult.
func (s *QueryService) Search(ctx context.Context, spec domain.FilterSpec) (res domain.SearchResult, err error) {
	start := time.Now()
	defer func() { s.record(opSearch, start, err) }()

	if conflicts := spec.Conflicts(); len(conflicts) > 0 {
		s.log.Debug("Field in both must and must_not",
			logger.Strings("fields", conflicts),
		)
	}

	tree := s.builder.BuildFilterQuery(spec)
	return s.search(ctx, s.builder.BuildSearchBody(tree))
}

// FullTextSearch requires every whitespace-separated term of text to fuzzily
// match one of fields.
func (s *QueryService) FullTextSearch(ctx context.Context, text string, fields []string) (res domain.SearchResult, err error) {
	start := time.Now()
	defer func() { s.record(opFullText, start, err) }()

	if len(strings.Fields(text)) == 0 {
		return domain.SearchResult{}, fmt.Errorf("%w: query_string has no terms", domain.ErrInvalidRequest)
	}
	if len(fields) == 0 {
		return domain.SearchResult{}, fmt.Errorf("%w: fields is required", domain.ErrInvalidRequest)
	}
	if err = s.checkText("query_string", text); err != nil {
		return domain.SearchResult{}, err
	}

	tree := s.builder.BuildFullTextQuery(text, fields)
	return s.search(ctx, s.builder.BuildSearchBody(tree))
}

func (s *QueryService) search(ctx context.Context, body map[string]any) (domain.SearchResult, error) {
	raw, err := s.exec.Execute(ctx, s.index, body)
	if err != nil {
		return domain.SearchResult{}, err
	}
	res, err := normalize.Search(raw.Body)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if len(res.Hits) == 0 {
		return domain.SearchResult{}, domain.ErrEmptyResult
	}
	return res, nil
}

// Aggregate runs single-field aggregations. Fields missing from the mapping are
// used as given and logged.
func (s *QueryService) Aggregate(
	ctx context.Context,
	specs []domain.AggregationSpec,
) (res domain.AggregationResult, err error) {
	start := time.Now()
	defer func() { s.record(opAggregate, start, err) }()

	if len(specs) == 0 {
		return domain.AggregationResult{}, fmt.Errorf("%w: at least one aggregation is required", domain.ErrInvalidRequest)
	}

	mapping, err := s.schema.GetMapping(ctx, s.index)
	if err != nil {
		return domain.AggregationResult{}, err
	}

	body, unresolved := s.builder.BuildAggregationQuery(specs, mapping)
	if len(unresolved) > 0 {
		s.log.Warn("Aggregation fields not in mapping, using as given",
			logger.String("index", s.index),
			logger.Strings("fields", unresolved),
		)
	}

	raw, err := s.exec.Execute(ctx, s.index, body)
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return normalize.Aggregations(raw.Body)
}

// Suggest returns distinct completions for text from a completion field.
func (s *QueryService) Suggest(ctx context.Context, text, field string) (out []string, err error) {
	start := time.Now()
	defer func() { s.record(opSuggest, start, err) }()

	if strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("%w: field is required", domain.ErrInvalidRequest)
	}
	if err = s.checkText("text", text); err != nil {
		return nil, err
	}

	raw, err := s.exec.Execute(ctx, s.index, s.builder.BuildSuggestQuery(text, field))
	if err != nil {
		return nil, err
	}
	out = normalize.Suggestions(raw.Body, field)
	if len(out) == 0 {
		return nil, domain.ErrEmptyResult
	}
	return out, nil
}

// Report runs a named report and returns its projected result.
func (s *QueryService) Report(ctx context.Context, name string) (out any, err error) {
	start := time.Now()
	defer func() { s.record(opReport, start, err) }()

	r, err := s.catalog.Get(name)
	if err != nil {
		return nil, err
	}

	raw, err := s.exec.Execute(ctx, s.index, r.Body())
	if err != nil {
		return nil, err
	}
	return normalize.Project(raw.Body, r.Projection)
}

// Reports lists the catalog.
func (s *QueryService) Reports() []reports.Report {
	return s.catalog.List()
}

// InvalidateSchema drops the cached mapping of index.
func (s *QueryService) InvalidateSchema(ctx context.Context, index string) error {
	return s.schema.Invalidate(ctx, index)
}

func (s *QueryService) record(op string, start time.Time, err error) {
	if s.telemetry == nil {
		return
	}
	outcome := telemetry.OutcomeSuccess
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		outcome = telemetry.OutcomeEmpty
	case err != nil:
		outcome = telemetry.OutcomeError
	}
	s.telemetry.RecordQuery(op, outcome, time.Since(start))
}
