package api

import (
	"maps"
	"time"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// SearchRequest is the body of POST /search. The top-level booking fields
// and the exclude/optional/range aliases are folded into the filter maps.
type SearchRequest struct {
	Hotel            *string `json:"hotel"`
	IsCanceled       *int    `json:"is_canceled"`
	Country          *string `json:"country"`
	ArrivalDateMonth *string `json:"arrival_date_month"`

	Must    map[string]any            `json:"must"`
	MustNot map[string]any            `json:"must_not"`
	Should  map[string]any            `json:"should"`
	Range   map[string]map[string]any `json:"range"`

	ExcludeFields  map[string]any            `json:"exclude_fields"`
	OptionalFields map[string]any            `json:"optional_fields"`
	RangeFields    map[string]map[string]any `json:"range_fields"`
}

// FilterSpec validates the request into a domain.FilterSpec.
func (r SearchRequest) FilterSpec() (domain.FilterSpec, error) {
	must := merge(r.Must, nil)
	if r.Hotel != nil {
		must["hotel"] = *r.Hotel
	}
	if r.IsCanceled != nil {
		must["is_canceled"] = *r.IsCanceled
	}
	if r.Country != nil {
		must["country"] = *r.Country
	}
	if r.ArrivalDateMonth != nil {
		must["arrival_date_month"] = *r.ArrivalDateMonth
	}

	ranges := make(map[string]map[string]any, len(r.Range)+len(r.RangeFields))
	maps.Copy(ranges, r.RangeFields)
	maps.Copy(ranges, r.Range)

	return domain.NewFilterSpec(
		must,
		merge(r.MustNot, r.ExcludeFields),
		merge(r.Should, r.OptionalFields),
		ranges,
	)
}

func merge(primary, alias map[string]any) map[string]any {
	out := make(map[string]any, len(primary)+len(alias))
	maps.Copy(out, alias)
	maps.Copy(out, primary)
	return out
}

// AggregationField is one requested aggregation.
type AggregationField struct {
	Field   string `binding:"required" json:"field"`
	AggType string `binding:"required" json:"agg_type"`
}

// AggregateRequest is the body of POST /aggregate.
type AggregateRequest struct {
	Aggregations []AggregationField `binding:"required,min=1,dive" json:"aggregations"`
}

// Specs validates the requested aggregations.
func (r AggregateRequest) Specs() ([]domain.AggregationSpec, error) {
	specs := make([]domain.AggregationSpec, 0, len(r.Aggregations))
	for _, a := range r.Aggregations {
		spec, err := domain.NewAggregationSpec(a.Field, a.AggType)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// FullTextRequest is the body of POST /full-text-search.
type FullTextRequest struct {
	QueryString string   `binding:"required"       json:"query_string"`
	Fields      []string `binding:"required,min=1" json:"fields"`
}

// SuggestRequest is the body of POST /suggest.
type SuggestRequest struct {
	Text  string `binding:"required" json:"text"`
	Field string `binding:"required" json:"field"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
