package ingest

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

const (
	lowerQuantile = 0.01
	upperQuantile = 0.99
	iqrFactor     = 1.5

	arrivalLayout = "2006-January-2"
)

// numericColumn exposes one numeric booking field to outlier suppression.
type numericColumn struct {
	name string
	get  func(*domain.Booking) float64
	set  func(*domain.Booking, float64)
}

func intColumn(name string, field func(*domain.Booking) *int) numericColumn {
	return numericColumn{
		name: name,
		get:  func(b *domain.Booking) float64 { return float64(*field(b)) },
		set:  func(b *domain.Booking, v float64) { *field(b) = int(v) },
	}
}

func floatColumn(name string, field func(*domain.Booking) *float64) numericColumn {
	return numericColumn{
		name: name,
		get:  func(b *domain.Booking) float64 { return *field(b) },
		set:  func(b *domain.Booking, v float64) { *field(b) = v },
	}
}

var outlierColumns = []numericColumn{
	intColumn("lead_time", func(b *domain.Booking) *int { return &b.LeadTime }),
	floatColumn("adr", func(b *domain.Booking) *float64 { return &b.ADR }),
	intColumn("days_in_waiting_list", func(b *domain.Booking) *int { return &b.DaysInWaitingList }),
	intColumn("adults", func(b *domain.Booking) *int { return &b.Adults }),
	floatColumn("children", func(b *domain.Booking) *float64 { return &b.Children }),
	intColumn("babies", func(b *domain.Booking) *int { return &b.Babies }),
	intColumn("previous_cancellations", func(b *domain.Booking) *int { return &b.PreviousCancellations }),
	intColumn("previous_bookings_not_canceled", func(b *domain.Booking) *int {
		return &b.PreviousBookingsNotCanceled
	}),
}

// Limits is the accepted range of a column; values outside are clamped to
// the rounded bound.
type Limits struct {
	Lower float64
	Upper float64
}

// Summary describes what Transform changed.
type Summary struct {
	Rows    int
	Filled  map[string]int
	Clamped map[string]int
	Limits  map[string]Limits
}

// Transform cleans records into bookings: fills missing values, suppresses
// outliers, names countries and composes arrival dates.
func Transform(records []Record) ([]domain.Booking, Summary, error) {
	summary := Summary{
		Rows:    len(records),
		Filled:  map[string]int{},
		Clamped: map[string]int{},
		Limits:  map[string]Limits{},
	}

	out := make([]domain.Booking, len(records))
	for i := range records {
		out[i] = records[i].Booking
	}

	fillMissing(records, out, summary.Filled)

	for _, col := range outlierColumns {
		lim, clamped := suppressOutliers(out, col)
		summary.Limits[col.name] = lim
		if clamped > 0 {
			summary.Clamped[col.name] = clamped
		}
	}

	for i := range out {
		out[i].Country = CountryName(out[i].Country)

		arrival, err := ArrivalDate(out[i].ArrivalDateYear, out[i].ArrivalDateMonth, out[i].ArrivalDateDayOfMonth)
		if err != nil {
			return nil, summary, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i].ArrivalDate = arrival
	}

	return out, summary, nil
}

func fillMissing(records []Record, out []domain.Booking, filled map[string]int) {
	var present []float64
	for _, r := range records {
		if !r.MissingChildren {
			present = append(present, r.Booking.Children)
		}
	}
	childrenFill := median(present)

	for i, r := range records {
		if r.MissingChildren {
			out[i].Children = childrenFill
			filled["children"]++
		}
		if r.MissingCountry {
			out[i].Country = UnknownCountry
			filled["country"]++
		}
		if r.MissingAgent {
			out[i].Agent = 0
			filled["agent"]++
		}
		if r.MissingCompany {
			out[i].Company = 0
			filled["company"]++
		}
	}
}

func suppressOutliers(rows []domain.Booking, col numericColumn) (Limits, int) {
	if len(rows) == 0 {
		return Limits{}, 0
	}

	values := make([]float64, len(rows))
	for i := range rows {
		values[i] = col.get(&rows[i])
	}
	lim := OutlierLimits(values)

	upper := math.RoundToEven(lim.Upper)
	lower := math.RoundToEven(lim.Lower)

	clamped := 0
	for i := range rows {
		switch v := col.get(&rows[i]); {
		case v > lim.Upper:
			col.set(&rows[i], upper)
			clamped++
		case v < lim.Lower:
			col.set(&rows[i], lower)
			clamped++
		}
	}
	return lim, clamped
}

// OutlierLimits returns the 1st and 99th percentiles widened by 1.5 times
// their distance.
func OutlierLimits(values []float64) Limits {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q1 := quantile(sorted, lowerQuantile)
	q3 := quantile(sorted, upperQuantile)
	iqr := q3 - q1

	return Limits{
		Lower: q1 - iqrFactor*iqr,
		Upper: q3 + iqrFactor*iqr,
	}
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantile(sorted, 0.5)
}

// ArrivalDate composes a date from a year, an English month name and a day.
func ArrivalDate(year int, month string, day int) (domain.Date, error) {
	t, err := time.Parse(arrivalLayout, strconv.Itoa(year)+"-"+month+"-"+strconv.Itoa(day))
	if err != nil {
		return domain.Date{}, fmt.Errorf("%w: arrival date %d-%s-%d", ErrBadValue, year, month, day)
	}
	return domain.NewDate(t.Year(), t.Month(), t.Day()), nil
}
