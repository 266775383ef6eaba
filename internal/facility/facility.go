// Package facility resolves where waste streams can be sent: a directory
// of processing facilities and partners loaded from a versioned YAML
// dataset, filtered by region, accepted stream, and partner scope, and
// ranked by cached travel distance.
//
// The package never computes routes. Distances arrive as an immutable
// snapshot of previously cached figures; facilities without a cached
// distance are excluded or ranked last, per caller policy.
package facility

import (
	"fmt"
	"strings"

	"github.com/reclaimops/wasteplan/internal/catalogue"
)

// Facility is one waste processing destination.
type Facility struct {
	// ID identifies the facility, e.g. "f-wgtn-001".
	ID string `yaml:"id" json:"id"`

	// PartnerID names the operating partner.
	PartnerID string `yaml:"partner_id" json:"partner_id,omitempty"`

	// Name is the display name.
	Name string `yaml:"name" json:"name"`

	// Region is the service region, matched case-insensitively.
	Region string `yaml:"region" json:"region"`

	// Address is the street address.
	Address string `yaml:"address" json:"address,omitempty"`

	// AcceptedStreams lists the stream labels the facility takes,
	// matched case-sensitively against plan categories.
	AcceptedStreams []string `yaml:"accepted_streams" json:"accepted_streams"`
}

// Accepts reports whether the facility takes the given stream label.
// Labels are compared exactly: facility gate lists are contractual
// documents, so "timber" does not match "Timber".
func (f *Facility) Accepts(stream string) bool {
	for _, s := range f.AcceptedStreams {
		if s == stream {
			return true
		}
	}
	return false
}

// Partner is a waste-contract partner operating one or more facilities.
type Partner struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Directory is an immutable facility/partner dataset with a validated
// stream vocabulary.
type Directory struct {
	version    string
	facilities []Facility
	partners   []Partner
	byID       map[string]int
	vocab      map[string]bool
}

// NewDirectory builds a directory from already-parsed data, validating it
// against the catalogue's stream vocabulary.
func NewDirectory(cat *catalogue.Catalogue, facilities []Facility, partners []Partner) (*Directory, error) {
	d := &Directory{
		facilities: cloneFacilities(facilities),
		partners:   make([]Partner, len(partners)),
		byID:       make(map[string]int, len(facilities)),
		vocab:      make(map[string]bool),
	}
	copy(d.partners, partners)

	for _, label := range cat.Labels() {
		d.vocab[label] = true
	}

	partnerIDs := make(map[string]bool, len(partners))
	for _, p := range d.partners {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: partner with empty ID", ErrInvalidDataset)
		}
		if partnerIDs[p.ID] {
			return nil, fmt.Errorf("%w: duplicate partner ID %q", ErrInvalidDataset, p.ID)
		}
		partnerIDs[p.ID] = true
	}

	for i, f := range d.facilities {
		if f.ID == "" {
			return nil, fmt.Errorf("%w: facility %d has no ID", ErrInvalidDataset, i)
		}
		if _, dup := d.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate facility ID %q", ErrInvalidDataset, f.ID)
		}
		if f.Region == "" {
			return nil, fmt.Errorf("%w: facility %q has no region", ErrInvalidDataset, f.ID)
		}
		if len(f.AcceptedStreams) == 0 {
			return nil, fmt.Errorf("%w: facility %q accepts no streams", ErrInvalidDataset, f.ID)
		}
		if f.PartnerID != "" && !partnerIDs[f.PartnerID] {
			return nil, fmt.Errorf("%w: facility %q references unknown partner %q", ErrInvalidDataset, f.ID, f.PartnerID)
		}
		for _, stream := range f.AcceptedStreams {
			if !d.vocab[stream] {
				return nil, fmt.Errorf("facility %q: %w: %q", f.ID, catalogue.ErrUnknownStream, stream)
			}
		}
		d.byID[f.ID] = i
	}

	return d, nil
}

// Version returns the dataset version, or "" for directories built in
// memory.
func (d *Directory) Version() string {
	return d.version
}

// Facilities returns a copy of all facilities in dataset order.
func (d *Directory) Facilities() []Facility {
	return cloneFacilities(d.facilities)
}

// Partners returns a copy of all partners in dataset order.
func (d *Directory) Partners() []Partner {
	out := make([]Partner, len(d.partners))
	copy(out, d.partners)
	return out
}

// FacilityByID returns the facility with the given ID.
func (d *Directory) FacilityByID(id string) (Facility, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Facility{}, false
	}
	return cloneFacility(d.facilities[i]), true
}

// FacilitiesFor returns the facilities eligible for a stream: region
// matched exactly but case-insensitively, stream matched case-sensitively
// against accepted streams, and the partner filter applied last (a no-op
// when partnerID is empty). A stream label outside the catalogue
// vocabulary is an error; an empty result is not.
func (d *Directory) FacilitiesFor(partnerID, region, stream string) ([]Facility, error) {
	if !d.vocab[stream] {
		return nil, fmt.Errorf("%w: %q", catalogue.ErrUnknownStream, stream)
	}

	region = strings.TrimSpace(region)
	var out []Facility
	for i := range d.facilities {
		f := &d.facilities[i]
		if !strings.EqualFold(f.Region, region) {
			continue
		}
		if !f.Accepts(stream) {
			continue
		}
		if partnerID != "" && f.PartnerID != partnerID {
			continue
		}
		out = append(out, cloneFacility(*f))
	}
	return out, nil
}

func cloneFacilities(facilities []Facility) []Facility {
	out := make([]Facility, len(facilities))
	for i := range facilities {
		out[i] = cloneFacility(facilities[i])
	}
	return out
}

func cloneFacility(f Facility) Facility {
	out := f
	if f.AcceptedStreams != nil {
		out.AcceptedStreams = make([]string, len(f.AcceptedStreams))
		copy(out.AcceptedStreams, f.AcceptedStreams)
	}
	return out
}
