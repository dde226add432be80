package domain

// SearchResult is the normalized form of a search response.
type SearchResult struct {
	Hits  []map[string]any `json:"hits"`
	Total int64            `json:"total"`
}

// AggregationResult holds the engine's aggregation tree unchanged.
type AggregationResult struct {
	Aggregations map[string]any `json:"aggregations"`
}
