// Package catalogue holds the waste stream vocabulary: the known stream
// labels together with the default unit, density, and (for sheet materials)
// thickness used when a plan does not carry explicit conversion inputs.
//
// A built-in catalogue ships with the binary; deployments with local
// density surveys can replace it with a versioned YAML dataset.
package catalogue

import (
	"strings"

	"github.com/reclaimops/wasteplan/internal/units"
)

// Entry describes one waste stream in the catalogue.
type Entry struct {
	// Label is the canonical stream label, e.g. "Plasterboard".
	Label string `yaml:"label"`

	// DefaultUnit is the unit quantities of this stream are usually
	// recorded in.
	DefaultUnit units.Unit `yaml:"default_unit"`

	// DensityKgPerM3 is the default bulk density.
	DensityKgPerM3 float64 `yaml:"density_kg_per_m3"`

	// DefaultThicknessM is the default sheet thickness in metres. Nil for
	// materials not measured by area.
	DefaultThicknessM *float64 `yaml:"default_thickness_m,omitempty"`
}

// Catalogue is an immutable set of stream entries with label lookup.
type Catalogue struct {
	entries []Entry
	byLabel map[string]int
}

// Default returns the built-in catalogue.
func Default() *Catalogue {
	return newCatalogue(builtinEntries)
}

func newCatalogue(entries []Entry) *Catalogue {
	c := &Catalogue{
		entries: make([]Entry, len(entries)),
		byLabel: make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)
	for i, e := range c.entries {
		c.byLabel[e.Label] = i
	}
	return c
}

// Lookup returns the entry for label. Labels match exactly after trimming
// surrounding whitespace; "plasterboard" does not match "Plasterboard".
func (c *Catalogue) Lookup(label string) (Entry, bool) {
	i, ok := c.byLabel[strings.TrimSpace(label)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Has reports whether label names a catalogue stream.
func (c *Catalogue) Has(label string) bool {
	_, ok := c.Lookup(label)
	return ok
}

// Labels returns all stream labels in catalogue order.
func (c *Catalogue) Labels() []string {
	labels := make([]string, len(c.entries))
	for i, e := range c.entries {
		labels[i] = e.Label
	}
	return labels
}

// Entries returns a copy of all catalogue entries in catalogue order.
func (c *Catalogue) Entries() []Entry {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// ResolveDensity resolves the density for a stream: an explicit value wins,
// then the catalogue default, then the global fallback density. The result
// is never nil because mass-per-volume always has a defensible coarse
// default.
func (c *Catalogue) ResolveDensity(label string, explicit *float64) *float64 {
	if explicit != nil && *explicit > 0 {
		return explicit
	}
	if e, ok := c.Lookup(label); ok && e.DensityKgPerM3 > 0 {
		d := e.DensityKgPerM3
		return &d
	}
	d := GlobalDefaultDensityKgPerM3
	return &d
}

// ResolveThickness resolves the sheet thickness for a stream: an explicit
// value wins, then the catalogue default. There is no global fallback; nil
// means the conversion must be flagged rather than guessed.
func (c *Catalogue) ResolveThickness(label string, explicit *float64) *float64 {
	if explicit != nil && *explicit > 0 {
		return explicit
	}
	if e, ok := c.Lookup(label); ok && e.DefaultThicknessM != nil && *e.DefaultThicknessM > 0 {
		t := *e.DefaultThicknessM
		return &t
	}
	return nil
}
