package elasticsearch_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch"
)

func bookingsMapping() domain.FieldMapping {
	return domain.FieldMapping{
		Index: "hotel_bookings",
		Fields: map[string]domain.FieldInfo{
			"country":      {Type: "text", HasKeyword: true},
			"hotel":        {Type: "text", HasKeyword: true},
			"adr":          {Type: "float"},
			"lead_time":    {Type: "integer"},
			"arrival_date": {Type: "date", HasKeyword: true},
		},
	}
}

func TestBuildFilterQuery_MustOnly(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	tree := qb.BuildFilterQuery(domain.FilterSpec{
		Must: map[string]any{"hotel": "Resort Hotel", "is_canceled": 0},
	})

	if len(tree.Must) != 2 {
		t.Fatalf("len(Must) = %d, want 2", len(tree.Must))
	}
	if len(tree.MustNot) != 0 || len(tree.Should) != 0 {
		t.Errorf("MustNot/Should = %v/%v, want empty", tree.MustNot, tree.Should)
	}
	if tree.MinimumShouldMatch != nil {
		t.Errorf("MinimumShouldMatch = %d, want unset", *tree.MinimumShouldMatch)
	}

	want := domain.Clause{"match": map[string]any{"hotel": "Resort Hotel"}}
	if !reflect.DeepEqual(tree.Must[0], want) {
		t.Errorf("Must[0] = %v, want %v", tree.Must[0], want)
	}
}

func TestBuildFilterQuery_ShouldSetsMinimumMatch(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	tree := qb.BuildFilterQuery(domain.FilterSpec{
		Should: map[string]any{"country": "Portugal", "meal": "BB"},
	})

	if len(tree.Should) != 2 {
		t.Fatalf("len(Should) = %d, want 2", len(tree.Should))
	}
	if tree.MinimumShouldMatch == nil || *tree.MinimumShouldMatch != 1 {
		t.Errorf("MinimumShouldMatch = %v, want 1", tree.MinimumShouldMatch)
	}
}

func TestBuildFilterQuery_RangeGoesToMust(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	tree := qb.BuildFilterQuery(domain.FilterSpec{
		Must:  map[string]any{"hotel": "City Hotel"},
		Range: map[string]domain.RangeBounds{"lead_time": {domain.RangeGTE: 10, domain.RangeLT: 50}},
	})

	if len(tree.Must) != 2 {
		t.Fatalf("len(Must) = %d, want 2", len(tree.Must))
	}
	want := domain.Clause{"range": map[string]any{"lead_time": map[string]any{"gte": 10, "lt": 50}}}
	if !reflect.DeepEqual(tree.Must[1], want) {
		t.Errorf("range clause = %v, want %v", tree.Must[1], want)
	}
}

func TestBuildFilterQuery_EmptyMatchesEverything(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	src := qb.BuildFilterQuery(domain.FilterSpec{}).Source()

	b, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"bool":{"must":[],"must_not":[],"should":[]}}` {
		t.Errorf("Source() = %s", b)
	}
}

// A field present in both must and must_not yields both clauses. The engine
// then matches no document with that value.
func TestBuildFilterQuery_MustAndMustNotSameField(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	tree := qb.BuildFilterQuery(domain.FilterSpec{
		Must:    map[string]any{"hotel": "City Hotel"},
		MustNot: map[string]any{"hotel": "City Hotel"},
	})

	clause := domain.Clause{"match": map[string]any{"hotel": "City Hotel"}}
	if len(tree.Must) != 1 || !reflect.DeepEqual(tree.Must[0], clause) {
		t.Errorf("Must = %v, want [%v]", tree.Must, clause)
	}
	if len(tree.MustNot) != 1 || !reflect.DeepEqual(tree.MustNot[0], clause) {
		t.Errorf("MustNot = %v, want [%v]", tree.MustNot, clause)
	}
}

func TestBuildAggregationQuery_ResolvesKeywordFields(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder(".keyword", 10)
	body, unresolved := qb.BuildAggregationQuery([]domain.AggregationSpec{
		{Field: "country", Kind: domain.AggTerms},
		{Field: "adr", Kind: domain.AggAvg},
	}, bookingsMapping())

	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", unresolved)
	}
	if body["size"] != 0 {
		t.Errorf("size = %v, want 0", body["size"])
	}

	aggs := body["aggs"].(map[string]any)
	want := map[string]any{
		"country_terms": map[string]any{"terms": map[string]any{"field": "country.keyword"}},
		"adr_avg":       map[string]any{"avg": map[string]any{"field": "adr"}},
	}
	if !reflect.DeepEqual(aggs, want) {
		t.Errorf("aggs = %v, want %v", aggs, want)
	}
}

func TestBuildAggregationQuery_KeyUsesOriginalField(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	specs := []domain.AggregationSpec{
		{Field: "hotel", Kind: domain.AggCardinality},
		{Field: "lead_time", Kind: domain.AggHistogram},
		{Field: "arrival_date", Kind: domain.AggDateHistogram},
		{Field: "not_mapped", Kind: domain.AggMax},
	}
	body, unresolved := qb.BuildAggregationQuery(specs, bookingsMapping())
	aggs := body["aggs"].(map[string]any)

	for _, s := range specs {
		if _, ok := aggs[s.Field+"_"+string(s.Kind)]; !ok {
			t.Errorf("missing aggregation key %s_%s", s.Field, s.Kind)
		}
	}

	if !reflect.DeepEqual(unresolved, []string{"not_mapped"}) {
		t.Errorf("unresolved = %v, want [not_mapped]", unresolved)
	}

	hist := aggs["lead_time_histogram"].(map[string]any)["histogram"].(map[string]any)
	if hist["interval"] != 10 {
		t.Errorf("histogram interval = %v, want 10", hist["interval"])
	}
	dh := aggs["arrival_date_date_histogram"].(map[string]any)["date_histogram"].(map[string]any)
	if dh["field"] != "arrival_date" || dh["calendar_interval"] != "month" {
		t.Errorf("date_histogram = %v", dh)
	}
	if got := aggs["not_mapped_max"].(map[string]any)["max"].(map[string]any)["field"]; got != "not_mapped" {
		t.Errorf("unmapped field = %v, want as given", got)
	}
}

func TestResolveField(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder(".raw", 10)
	tests := []struct {
		field  string
		want   string
		wantOK bool
	}{
		{"country", "country.raw", true},
		{"adr", "adr", true},
		{"arrival_date", "arrival_date", true},
		{"not_mapped", "not_mapped", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.field, func(t *testing.T) {
			t.Parallel()
			got, ok := qb.ResolveField(tt.field, bookingsMapping())
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveField(%q) = %q, %t, want %q, %t", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBuildFullTextQuery_SplitsTerms(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	tree := qb.BuildFullTextQuery("  best   view ", []string{"hotel"})

	if len(tree.Must) != 2 {
		t.Fatalf("len(Must) = %d, want 2", len(tree.Must))
	}
	for i, term := range []string{"best", "view"} {
		mm := tree.Must[i]["multi_match"].(map[string]any)
		if mm["query"] != term {
			t.Errorf("term %d = %v, want %s", i, mm["query"], term)
		}
		if mm["type"] != "best_fields" || mm["fuzziness"] != "AUTO" {
			t.Errorf("clause %d = %v", i, mm)
		}
	}
}

func TestBuildSuggestQuery(t *testing.T) {
	t.Parallel()

	qb := elasticsearch.NewQueryBuilder("", 10)
	body := qb.BuildSuggestQuery("Po", "country_suggest")

	s := body["suggest"].(map[string]any)["country_suggest"].(map[string]any)
	if s["prefix"] != "Po" {
		t.Errorf("prefix = %v, want Po", s["prefix"])
	}
	c := s["completion"].(map[string]any)
	if c["field"] != "country_suggest" || c["skip_duplicates"] != true {
		t.Errorf("completion = %v", c)
	}
}

func TestBuildSearchBody(t *testing.T) {
	t.Parallel()

	body := elasticsearch.NewQueryBuilder("", 25).BuildSearchBody(domain.QueryTree{})
	if body["size"] != 25 || body["track_total_hits"] != true {
		t.Errorf("body = %v", body)
	}
}
