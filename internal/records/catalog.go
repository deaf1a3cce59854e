package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"visitprep/pkg"
)

// ErrNotFound is returned for an unknown patient ID.
var ErrNotFound = errors.New("patient not found")

// Catalog is the read-only set of patient records served by the process.
type Catalog struct {
	byID  map[string]pkg.PatientRecord
	order []string
}

// NewCatalog validates and indexes recs.  Records are copied so later changes
// to the input do not leak into the catalog.
func NewCatalog(recs []pkg.PatientRecord) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]pkg.PatientRecord, len(recs))}
	for i, r := range recs {
		if err := validate(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate patient id %q", i, r.ID)
		}
		c.byID[r.ID] = r.Clone()
		c.order = append(c.order, r.ID)
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.byID[c.order[i]].Name < c.byID[c.order[j]].Name
	})
	return c, nil
}

func validate(r pkg.PatientRecord) error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return errors.New("id is required")
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("patient %q: name is required", r.ID)
	case r.Age <= 0:
		return fmt.Errorf("patient %q: age must be positive, got %d", r.ID, r.Age)
	}
	seen := make(map[string]bool, len(r.Labs))
	for _, l := range r.Labs {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("patient %q: lab with empty name", r.ID)
		}
		if seen[l.Name] {
			return fmt.Errorf("patient %q: duplicate lab %q", r.ID, l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// Get returns a copy of the record for id.
func (c *Catalog) Get(id string) (pkg.PatientRecord, error) {
	r, ok := c.byID[id]
	if !ok {
		return pkg.PatientRecord{}, ErrNotFound
	}
	return r.Clone(), nil
}

// List returns previews sorted by patient name.
func (c *Catalog) List() []pkg.PatientPreview {
	out := make([]pkg.PatientPreview, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Preview())
	}
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.byID) }
