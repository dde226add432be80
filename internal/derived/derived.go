// Package derived computes the per-booking values that reports would otherwise
// compute with engine scripts at query time.
package derived

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// Expressions are written against document field names so they read the same
// as the engine scripts they replace.
const (
	LengthOfStayExpr       = `stays_in_weekend_nights + stays_in_week_nights`
	StayRevenueExpr        = `adr * (stays_in_week_nights + stays_in_weekend_nights)`
	BookingCompositionExpr = `string(adults) + " adults, " + decimal(children) + " children, " + string(babies) + " babies"`
)

// Calculator holds the compiled programs. It is safe for concurrent use.
type Calculator struct {
	lengthOfStay *vm.Program
	stayRevenue  *vm.Program
	composition  *vm.Program
}

// decimal renders a float the way the engine's scripting language concatenates
// doubles: always with a fractional part.
func decimal(params ...any) (any, error) {
	f, ok := params[0].(float64)
	if !ok {
		return nil, fmt.Errorf("decimal: want float64, got %T", params[0])
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == float64(int64(f)) {
		s += ".0"
	}
	return s, nil
}

// NewCalculator compiles and type-checks the expressions.
func NewCalculator() (*Calculator, error) {
	sample := env(domain.Booking{})
	decimalFn := expr.Function("decimal", decimal, new(func(float64) string))

	los, err := expr.Compile(LengthOfStayExpr, expr.Env(sample), expr.AsInt())
	if err != nil {
		return nil, fmt.Errorf("compile length_of_stay: %w", err)
	}
	rev, err := expr.Compile(StayRevenueExpr, expr.Env(sample), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("compile stay_revenue: %w", err)
	}
	comp, err := expr.Compile(BookingCompositionExpr, expr.Env(sample), decimalFn)
	if err != nil {
		return nil, fmt.Errorf("compile booking_composition: %w", err)
	}

	return &Calculator{lengthOfStay: los, stayRevenue: rev, composition: comp}, nil
}

// Compute evaluates all derived fields for b.
func (c *Calculator) Compute(b domain.Booking) (domain.DerivedFields, error) {
	e := env(b)

	los, err := expr.Run(c.lengthOfStay, e)
	if err != nil {
		return domain.DerivedFields{}, fmt.Errorf("length_of_stay for booking %d: %w", b.ID, err)
	}
	rev, err := expr.Run(c.stayRevenue, e)
	if err != nil {
		return domain.DerivedFields{}, fmt.Errorf("stay_revenue for booking %d: %w", b.ID, err)
	}
	comp, err := expr.Run(c.composition, e)
	if err != nil {
		return domain.DerivedFields{}, fmt.Errorf("booking_composition for booking %d: %w", b.ID, err)
	}

	composition, _ := comp.(string)
	return domain.DerivedFields{
		LengthOfStay:       los.(int),
		StayRevenue:        rev.(float64),
		BookingComposition: composition,
	}, nil
}

// Document builds the index document for b with its derived fields.
func (c *Calculator) Document(b domain.Booking) (domain.BookingDocument, error) {
	d, err := c.Compute(b)
	if err != nil {
		return domain.BookingDocument{}, err
	}
	return domain.NewBookingDocument(b, d), nil
}

func env(b domain.Booking) map[string]any {
	return map[string]any{
		"stays_in_weekend_nights": b.StaysInWeekendNights,
		"stays_in_week_nights":    b.StaysInWeekNights,
		"adr":                     b.ADR,
		"adults":                  b.Adults,
		"children":                b.Children,
		"babies":                  b.Babies,
	}
}
