// Package ingest loads the bookings CSV export into the relational store.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// UnknownCountry replaces missing and unrecognised country codes.
const UnknownCountry = "Unknown"

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadValue is returned when a cell cannot be parsed.
	ErrBadValue = errors.New("bad value")
)

// Columns of the export. arrival_date is composed during Transform.
var csvColumns = []string{
	"hotel", "is_canceled", "lead_time", "arrival_date_year", "arrival_date_month",
	"arrival_date_week_number", "arrival_date_day_of_month", "stays_in_weekend_nights",
	"stays_in_week_nights", "adults", "children", "babies", "meal", "country", "market_segment",
	"distribution_channel", "is_repeated_guest", "previous_cancellations",
	"previous_bookings_not_canceled", "reserved_room_type", "assigned_room_type", "booking_changes",
	"deposit_type", "agent", "company", "days_in_waiting_list", "customer_type", "adr",
	"required_car_parking_spaces", "total_of_special_requests", "reservation_status",
	"reservation_status_date",
}

// Record is one parsed CSV row. Missing nullable cells are flagged rather
// than zeroed so Transform can fill them.
type Record struct {
	Booking domain.Booking

	MissingChildren bool
	MissingCountry  bool
	MissingAgent    bool
	MissingCompany  bool
}

// Extract parses a bookings CSV with a header row.
func Extract(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range csvColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read line %d: %w", line, readErr)
		}

		rec, parseErr := parseRow(cells{row: row, idx: idx})
		if parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}
		records = append(records, rec)
	}

	return records, nil
}

type cells struct {
	row []string
	idx map[string]int
	err error
}

func (c *cells) str(col string) string {
	return strings.TrimSpace(c.row[c.idx[col]])
}

func isMissing(v string) bool {
	switch v {
	case "", "NA", "NULL", "NaN", "nan":
		return true
	}
	return false
}

func (c *cells) integer(col string) int {
	v := c.str(col)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		c.fail(col, v)
		return 0
	}
	return int(f)
}

// nullable parses a nullable float column; the bool reports a missing cell.
func (c *cells) nullable(col string) (float64, bool) {
	v := c.str(col)
	if isMissing(v) {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.fail(col, v)
	}
	return f, false
}

func (c *cells) date(col string) domain.Date {
	v := c.str(col)
	d, err := domain.ParseDate(v)
	if err != nil {
		c.fail(col, v)
	}
	return d
}

func (c *cells) fail(col, v string) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s=%q", ErrBadValue, col, v)
	}
}

func parseRow(c cells) (Record, error) {
	var rec Record
	b := &rec.Booking

	b.Hotel = c.str("hotel")
	b.IsCanceled = c.integer("is_canceled")
	b.LeadTime = c.integer("lead_time")
	b.ArrivalDateYear = c.integer("arrival_date_year")
	b.ArrivalDateMonth = c.str("arrival_date_month")
	b.ArrivalDateWeekNumber = c.integer("arrival_date_week_number")
	b.ArrivalDateDayOfMonth = c.integer("arrival_date_day_of_month")
	b.StaysInWeekendNights = c.integer("stays_in_weekend_nights")
	b.StaysInWeekNights = c.integer("stays_in_week_nights")
	b.Adults = c.integer("adults")
	b.Children, rec.MissingChildren = c.nullable("children")
	b.Babies = c.integer("babies")
	b.Meal = c.str("meal")
	b.Country = c.str("country")
	rec.MissingCountry = isMissing(b.Country)
	b.MarketSegment = c.str("market_segment")
	b.DistributionChannel = c.str("distribution_channel")
	b.IsRepeatedGuest = c.integer("is_repeated_guest")
	b.PreviousCancellations = c.integer("previous_cancellations")
	b.PreviousBookingsNotCanceled = c.integer("previous_bookings_not_canceled")
	b.ReservedRoomType = c.str("reserved_room_type")
	b.AssignedRoomType = c.str("assigned_room_type")
	b.BookingChanges = c.integer("booking_changes")
	b.DepositType = c.str("deposit_type")
	b.Agent, rec.MissingAgent = c.nullable("agent")
	b.Company, rec.MissingCompany = c.nullable("company")
	b.DaysInWaitingList = c.integer("days_in_waiting_list")
	b.CustomerType = c.str("customer_type")
	b.ADR, _ = c.nullable("adr")
	b.RequiredCarParkingSpaces = c.integer("required_car_parking_spaces")
	b.TotalOfSpecialRequests = c.integer("total_of_special_requests")
	b.ReservationStatus = c.str("reservation_status")
	b.ReservationStatusDate = c.date("reservation_status_date")

	return rec, c.err
}
