// Package mappings defines the index mappings owned by the service.
package mappings

const dateFormat = "yyyy-MM-dd"

// Text fields that also get a keyword sub-field for exact matching and terms aggregations.
var keywordTextFields = []string{
	"hotel", "arrival_date_month", "meal", "country", "market_segment", "distribution_channel",
	"reserved_room_type", "assigned_room_type", "deposit_type", "customer_type", "reservation_status",
}

var integerFields = []string{
	"id", "is_canceled", "lead_time", "arrival_date_year", "arrival_date_week_number",
	"arrival_date_day_of_month", "stays_in_weekend_nights", "stays_in_week_nights", "adults", "babies",
	"is_repeated_guest", "previous_cancellations", "previous_bookings_not_canceled", "booking_changes",
	"days_in_waiting_list", "required_car_parking_spaces", "total_of_special_requests",
	"length_of_stay",
}

var floatFields = []string{"children", "agent", "company", "adr", "stay_revenue"}

// SuggestFields are the completion fields fed from hotel, country and reservation status.
var SuggestFields = []string{"hotel_suggest", "country_suggest", "reservation_status_suggest"}

// BookingMapping returns the create-index body for the bookings index.
func BookingMapping() map[string]any {
	props := make(map[string]any, len(keywordTextFields)+len(integerFields)+len(floatFields)+8)

	for _, f := range keywordTextFields {
		props[f] = withKeyword(map[string]any{"type": "text"})
	}
	for _, f := range integerFields {
		props[f] = map[string]any{"type": "integer"}
	}
	for _, f := range floatFields {
		props[f] = map[string]any{"type": "float"}
	}
	for _, f := range SuggestFields {
		props[f] = map[string]any{"type": "completion"}
	}
	for _, f := range []string{"arrival_date", "reservation_status_date"} {
		props[f] = withKeyword(map[string]any{"type": "date", "format": dateFormat})
	}
	props["booking_composition"] = map[string]any{"type": "keyword"}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]any{
			"properties": props,
		},
	}
}

func withKeyword(field map[string]any) map[string]any {
	field["fields"] = map[string]any{
		"keyword": map[string]any{"type": "keyword"},
	}
	return field
}
