package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in the table, the CSV and the index.
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as yyyy-MM-dd.
type Date struct {
	time.Time
}

// NewDate truncates t to a UTC calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses yyyy-MM-dd.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Date{v.UTC()}
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil //nolint:nilnil // NULL date
	}
	return d.Format(DateLayout), nil
}

// Booking is one row of the hotel bookings table.
type Booking struct {
	ID                          int64   `db:"id"                             json:"id"`
	Hotel                       string  `db:"hotel"                          json:"hotel"`
	IsCanceled                  int     `db:"is_canceled"                    json:"is_canceled"`
	LeadTime                    int     `db:"lead_time"                      json:"lead_time"`
	ArrivalDate                 Date    `db:"arrival_date"                   json:"arrival_date"`
	ArrivalDateYear             int     `db:"arrival_date_year"              json:"arrival_date_year"`
	ArrivalDateMonth            string  `db:"arrival_date_month"             json:"arrival_date_month"`
	ArrivalDateWeekNumber       int     `db:"arrival_date_week_number"       json:"arrival_date_week_number"`
	ArrivalDateDayOfMonth       int     `db:"arrival_date_day_of_month"      json:"arrival_date_day_of_month"`
	StaysInWeekendNights        int     `db:"stays_in_weekend_nights"        json:"stays_in_weekend_nights"`
	StaysInWeekNights           int     `db:"stays_in_week_nights"           json:"stays_in_week_nights"`
	Adults                      int     `db:"adults"                         json:"adults"`
	Children                    float64 `db:"children"                       json:"children"`
	Babies                      int     `db:"babies"                         json:"babies"`
	Meal                        string  `db:"meal"                           json:"meal"`
	Country                     string  `db:"country"                        json:"country"`
	MarketSegment               string  `db:"market_segment"                 json:"market_segment"`
	DistributionChannel         string  `db:"distribution_channel"           json:"distribution_channel"`
	IsRepeatedGuest             int     `db:"is_repeated_guest"              json:"is_repeated_guest"`
	PreviousCancellations       int     `db:"previous_cancellations"         json:"previous_cancellations"`
	PreviousBookingsNotCanceled int     `db:"previous_bookings_not_canceled" json:"previous_bookings_not_canceled"`
	ReservedRoomType            string  `db:"reserved_room_type"             json:"reserved_room_type"`
	AssignedRoomType            string  `db:"assigned_room_type"             json:"assigned_room_type"`
	BookingChanges              int     `db:"booking_changes"                json:"booking_changes"`
	DepositType                 string  `db:"deposit_type"                   json:"deposit_type"`
	Agent                       float64 `db:"agent"                          json:"agent"`
	Company                     float64 `db:"company"                        json:"company"`
	DaysInWaitingList           int     `db:"days_in_waiting_list"           json:"days_in_waiting_list"`
	CustomerType                string  `db:"customer_type"                  json:"customer_type"`
	ADR                         float64 `db:"adr"                            json:"adr"`
	RequiredCarParkingSpaces    int     `db:"required_car_parking_spaces"    json:"required_car_parking_spaces"`
	TotalOfSpecialRequests      int     `db:"total_of_special_requests"      json:"total_of_special_requests"`
	ReservationStatus           string  `db:"reservation_status"             json:"reservation_status"`
	ReservationStatusDate       Date    `db:"reservation_status_date"        json:"reservation_status_date"`
}

// Completion is the input of a completion suggester field.
type Completion struct {
	Input string `json:"input"`
}

// NewCompletion returns nil for empty input, which the engine would reject.
func NewCompletion(input string) *Completion {
	if input == "" {
		return nil
	}
	return &Completion{Input: input}
}

// DerivedFields are per-booking values computed before indexing.
type DerivedFields struct {
	LengthOfStay       int     `json:"length_of_stay"`
	StayRevenue        float64 `json:"stay_revenue"`
	BookingComposition string  `json:"booking_composition"`
}

// BookingDocument is the indexed form of a Booking.
type BookingDocument struct {
	Booking
	DerivedFields

	HotelSuggest             *Completion `json:"hotel_suggest,omitempty"`
	CountrySuggest           *Completion `json:"country_suggest,omitempty"`
	ReservationStatusSuggest *Completion `json:"reservation_status_suggest,omitempty"`
}

// NewBookingDocument attaches completion inputs and derived values to b.
func NewBookingDocument(b Booking, d DerivedFields) BookingDocument {
	return BookingDocument{
		Booking:                  b,
		DerivedFields:            d,
		HotelSuggest:             NewCompletion(b.Hotel),
		CountrySuggest:           NewCompletion(b.Country),
		ReservationStatusSuggest: NewCompletion(b.ReservationStatus),
	}
}

// DocumentID is the index _id of the booking, so resyncs overwrite in place.
func (d BookingDocument) DocumentID() string {
	return fmt.Sprintf("%d", d.ID)
}
