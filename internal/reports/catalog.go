// Package reports holds the fixed analytics reports over the bookings index.
// Each report is a static aggregation request and the path at which its
// answer sits in the response.
package reports

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/stayscope/internal/domain"
)

// Report is one named aggregation template.
type Report struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Projection is the dotted response path returned to callers.
	Projection string `json:"projection"`

	build func() map[string]any
}

// Body returns a fresh request body. Callers may modify it.
func (r Report) Body() map[string]any {
	return r.build()
}

// Catalog indexes reports by name, preserving declaration order for listing.
type Catalog struct {
	reports []Report
	byName  map[string]Report
}

// NewCatalog builds the catalog. With usePrecomputed the computed values
// (stay length, stay revenue, party composition) are read from document
// fields instead of inline scripts.
func NewCatalog(usePrecomputed bool) *Catalog {
	list := templates(source{precomputed: usePrecomputed})
	byName := make(map[string]Report, len(list))
	for _, r := range list {
		byName[r.Name] = r
	}
	return &Catalog{reports: list, byName: byName}
}

// Get looks a report up by name.
func (c *Catalog) Get(name string) (Report, error) {
	r, ok := c.byName[name]
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", domain.ErrUnknownReport, name)
	}
	return r, nil
}

// List returns all reports in declaration order.
func (c *Catalog) List() []Report {
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// Names returns report names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.reports))
	for i, r := range c.reports {
		names[i] = r.Name
	}
	return names
}
