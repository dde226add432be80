package domain

// FieldInfo describes one mapped field.
type FieldInfo struct {
	Type string `json:"type"`
	// HasKeyword is true when the field has a keyword sub-field for exact
	// matching and aggregation.
	HasKeyword bool `json:"has_keyword"`
}

// FieldMapping is the flattened mapping of one index.
type FieldMapping struct {
	Index  string               `json:"index"`
	Fields map[string]FieldInfo `json:"fields"`
}

// Lookup returns the field's info.
func (m FieldMapping) Lookup(field string) (FieldInfo, bool) {
	info, ok := m.Fields[field]
	return info, ok
}
