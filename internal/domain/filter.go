package domain

import (
	"fmt"
	"strings"
)

// RangeOp is a range query comparison operator.
type RangeOp string

const (
	RangeGTE RangeOp = "gte"
	RangeLTE RangeOp = "lte"
	RangeGT  RangeOp = "gt"
	RangeLT  RangeOp = "lt"
)

// ParseRangeOp validates s as a range operator.
func ParseRangeOp(s string) (RangeOp, error) {
	switch op := RangeOp(strings.ToLower(strings.TrimSpace(s))); op {
	case RangeGTE, RangeLTE, RangeGT, RangeLT:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRangeOp, s)
	}
}

// RangeBounds maps operators to bounds for a single field.
type RangeBounds map[RangeOp]any

// FilterSpec is a structured boolean filter over booking fields.
//
// A field may appear in both Must and MustNot. Both clauses are emitted and
// the engine evaluates them together, so such a request matches nothing for
// that value.
type FilterSpec struct {
	Must    map[string]any
	MustNot map[string]any
	Should  map[string]any
	Range   map[string]RangeBounds
}

// NewFilterSpec builds a FilterSpec from loosely typed maps, rejecting unknown
// range operators and empty field names.
func NewFilterSpec(must, mustNot, should map[string]any, ranges map[string]map[string]any) (FilterSpec, error) {
	spec := FilterSpec{
		Must:    dropNil(must),
		MustNot: dropNil(mustNot),
		Should:  dropNil(should),
	}

	if len(ranges) > 0 {
		spec.Range = make(map[string]RangeBounds, len(ranges))
		for field, raw := range ranges {
			if len(raw) == 0 {
				continue
			}
			bounds := make(RangeBounds, len(raw))
			for opName, bound := range raw {
				op, err := ParseRangeOp(opName)
				if err != nil {
					return FilterSpec{}, fmt.Errorf("range on %q: %w", field, err)
				}
				bounds[op] = bound
			}
			spec.Range[field] = bounds
		}
	}

	if err := spec.Validate(); err != nil {
		return FilterSpec{}, err
	}
	return spec, nil
}

// Validate reports empty field names and unknown range operators.
func (f FilterSpec) Validate() error {
	for name, m := range map[string]map[string]any{"must": f.Must, "must_not": f.MustNot, "should": f.Should} {
		for field := range m {
			if strings.TrimSpace(field) == "" {
				return fmt.Errorf("%w: empty field name in %s", ErrInvalidRequest, name)
			}
		}
	}
	for field, bounds := range f.Range {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("%w: empty field name in range", ErrInvalidRequest)
		}
		for op := range bounds {
			if _, err := ParseRangeOp(string(op)); err != nil {
				return fmt.Errorf("range on %q: %w", field, err)
			}
		}
	}
	return nil
}

// IsEmpty reports whether the spec places no restriction at all.
func (f FilterSpec) IsEmpty() bool {
	return len(f.Must) == 0 && len(f.MustNot) == 0 && len(f.Should) == 0 && len(f.Range) == 0
}

// Conflicts returns fields present in both Must and MustNot.
func (f FilterSpec) Conflicts() []string {
	var out []string
	for field := range f.Must {
		if _, ok := f.MustNot[field]; ok {
			out = append(out, field)
		}
	}
	return out
}

func dropNil(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
