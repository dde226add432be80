package mappings_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/stayscope/internal/elasticsearch/mappings"
)

func properties(t *testing.T) map[string]any {
	t.Helper()
	m, ok := mappings.BookingMapping()["mappings"].(map[string]any)
	if !ok {
		t.Fatal("mappings section missing")
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatal("properties missing")
	}
	return props
}

func TestBookingMapping_FieldTypes(t *testing.T) {
	t.Parallel()

	props := properties(t)

	tests := []struct {
		field      string
		wantType   string
		hasKeyword bool
	}{
		{"hotel", "text", true},
		{"country", "text", true},
		{"arrival_date", "date", true},
		{"adr", "float", false},
		{"lead_time", "integer", false},
		{"country_suggest", "completion", false},
		{"booking_composition", "keyword", false},
		{"length_of_stay", "integer", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.field, func(t *testing.T) {
			t.Parallel()
			p, ok := props[tt.field].(map[string]any)
			if !ok {
				t.Fatalf("field %s not mapped", tt.field)
			}
			if p["type"] != tt.wantType {
				t.Errorf("type = %v, want %s", p["type"], tt.wantType)
			}
			_, hasFields := p["fields"]
			if hasFields != tt.hasKeyword {
				t.Errorf("keyword sub-field = %v, want %v", hasFields, tt.hasKeyword)
			}
		})
	}
}

func TestBookingMapping_DateFormat(t *testing.T) {
	t.Parallel()

	p := properties(t)["reservation_status_date"].(map[string]any)
	if p["format"] != "yyyy-MM-dd" {
		t.Errorf("format = %v, want yyyy-MM-dd", p["format"])
	}
}
