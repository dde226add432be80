package domain

// Clause is one leaf query in engine DSL form, e.g. {"match": {...}}.
type Clause = map[string]any

// QueryTree is a boolean query under construction.
type QueryTree struct {
	Must               []Clause
	MustNot            []Clause
	Should             []Clause
	MinimumShouldMatch *int
}

// Source renders the tree as an engine "query" object. Empty clause lists are
// kept so an empty tree renders as an unrestricted bool query.
func (q QueryTree) Source() map[string]any {
	boolQuery := map[string]any{
		"must":     nonNil(q.Must),
		"must_not": nonNil(q.MustNot),
		"should":   nonNil(q.Should),
	}
	if q.MinimumShouldMatch != nil {
		boolQuery["minimum_should_match"] = *q.MinimumShouldMatch
	}
	return map[string]any{"bool": boolQuery}
}

func nonNil(c []Clause) []Clause {
	if c == nil {
		return []Clause{}
	}
	return c
}
