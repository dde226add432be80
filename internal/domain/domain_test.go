package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

func TestParseAggKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    domain.AggKind
		wantErr bool
	}{
		{"terms", domain.AggTerms, false},
		{" AVG ", domain.AggAvg, false},
		{"dateHistogram", domain.AggDateHistogram, false},
		{"date_histogram", domain.AggDateHistogram, false},
		{"value_count", domain.AggValueCount, false},
		{"composite", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := domain.ParseAggKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnknownAggKind) {
					t.Errorf("ParseAggKind(%q) error = %v, want ErrUnknownAggKind", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseAggKind(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestAggregationSpec_Key(t *testing.T) {
	t.Parallel()

	spec, err := domain.NewAggregationSpec("country", "terms")
	if err != nil {
		t.Fatalf("NewAggregationSpec() error = %v", err)
	}
	if spec.Key() != "country_terms" {
		t.Errorf("Key() = %q, want country_terms", spec.Key())
	}

	if _, err = domain.NewAggregationSpec(" ", "avg"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("empty field error = %v, want ErrInvalidRequest", err)
	}
}

func TestAggregationSpec_KeyUsesCanonicalKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{"dateHistogram", "arrival_date_date_histogram"},
		{"date_histogram", "arrival_date_date_histogram"},
		{"Terms", "arrival_date_terms"},
		{" AVG ", "arrival_date_avg"},
	}
	for _, tt := range tests {
		spec, err := domain.NewAggregationSpec("arrival_date", tt.kind)
		if err != nil {
			t.Fatalf("NewAggregationSpec(%q) error = %v", tt.kind, err)
		}
		if got := spec.Key(); got != tt.want {
			t.Errorf("Key() for %q = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestNewFilterSpec(t *testing.T) {
	t.Parallel()

	spec, err := domain.NewFilterSpec(
		map[string]any{"hotel": "Resort Hotel", "country": nil},
		nil,
		map[string]any{},
		map[string]map[string]any{"lead_time": {"GTE": 10, "lt": 100}, "adr": {}},
	)
	if err != nil {
		t.Fatalf("NewFilterSpec() error = %v", err)
	}

	if len(spec.Must) != 1 {
		t.Errorf("Must = %v, want nil values dropped", spec.Must)
	}
	if spec.Should != nil {
		t.Errorf("Should = %v, want nil for empty map", spec.Should)
	}
	if got := spec.Range["lead_time"][domain.RangeGTE]; got != 10 {
		t.Errorf("Range[lead_time][gte] = %v, want 10", got)
	}
	if _, ok := spec.Range["adr"]; ok {
		t.Error("empty range bounds should be dropped")
	}
}

func TestNewFilterSpec_Rejects(t *testing.T) {
	t.Parallel()

	_, err := domain.NewFilterSpec(nil, nil, nil, map[string]map[string]any{"adr": {"between": 1}})
	if !errors.Is(err, domain.ErrUnknownRangeOp) {
		t.Errorf("error = %v, want ErrUnknownRangeOp", err)
	}

	_, err = domain.NewFilterSpec(map[string]any{"": "x"}, nil, nil, nil)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestFilterSpec_Conflicts(t *testing.T) {
	t.Parallel()

	spec := domain.FilterSpec{
		Must:    map[string]any{"hotel": "City Hotel", "country": "Portugal"},
		MustNot: map[string]any{"hotel": "City Hotel"},
	}
	got := spec.Conflicts()
	if len(got) != 1 || got[0] != "hotel" {
		t.Errorf("Conflicts() = %v, want [hotel]", got)
	}
	if spec.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !(domain.FilterSpec{}).IsEmpty() {
		t.Error("zero FilterSpec should be empty")
	}
}

func TestRejectedError(t *testing.T) {
	t.Parallel()

	var err error = &domain.RejectedError{Status: 400, Type: "parsing_exception", Reason: "unknown field"}
	if !errors.Is(err, domain.ErrEngineRejected) {
		t.Error("RejectedError should match ErrEngineRejected")
	}
	if errors.Is(err, domain.ErrEngineUnavailable) {
		t.Error("RejectedError should not match ErrEngineUnavailable")
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	d := domain.NewDate(2016, time.July, 3)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2016-07-03"` {
		t.Errorf("Marshal() = %s, want \"2016-07-03\"", b)
	}

	var scanned domain.Date
	if err = scanned.Scan("2016-07-03T00:00:00Z"); err != nil {
		t.Fatalf("Scan(string) error = %v", err)
	}
	if !scanned.Equal(d.Time) {
		t.Errorf("Scan() = %v, want %v", scanned, d)
	}

	if err = scanned.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}

func TestNewBookingDocument(t *testing.T) {
	t.Parallel()

	doc := domain.NewBookingDocument(domain.Booking{
		ID:                1,
		Hotel:             "Resort Hotel",
		ReservationStatus: "Check-Out",
		ArrivalDate:       domain.NewDate(2015, time.July, 1),
	}, domain.DerivedFields{LengthOfStay: 3})

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err = json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got["hotel_suggest"].(map[string]any)["input"] != "Resort Hotel" {
		t.Errorf("hotel_suggest = %v", got["hotel_suggest"])
	}
	if _, ok := got["country_suggest"]; ok {
		t.Error("country_suggest should be omitted for empty country")
	}
	if got["arrival_date"] != "2015-07-01" {
		t.Errorf("arrival_date = %v, want 2015-07-01", got["arrival_date"])
	}
	if got["length_of_stay"] != float64(3) {
		t.Errorf("length_of_stay = %v, want 3", got["length_of_stay"])
	}
	if doc.DocumentID() != "1" {
		t.Errorf("DocumentID() = %q, want 1", doc.DocumentID())
	}
}
