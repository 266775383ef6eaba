package facility

import (
	"fmt"
	"sort"
	"time"
)

// DistanceKey identifies a cached route figure: from the project site for
// a given stream to a facility.
type DistanceKey struct {
	Stream     string
	FacilityID string
}

// Distance is one cached route figure.
type Distance struct {
	Km          float64   `json:"km"`
	DurationMin float64   `json:"duration_min"`
	ComputedAt  time.Time `json:"computed_at"`
}

// DistanceSnapshot is an immutable view of cached route distances, loaded
// once per command. Staleness is tolerated; absence is handled by ranking
// policy, never by computing a route.
type DistanceSnapshot map[DistanceKey]Distance

// Lookup returns the cached distance for a stream/facility pair.
func (s DistanceSnapshot) Lookup(stream, facilityID string) (Distance, bool) {
	d, ok := s[DistanceKey{Stream: stream, FacilityID: facilityID}]
	return d, ok
}

// MissingPolicy controls how facilities without a cached distance rank.
type MissingPolicy int

const (
	// MissingExclude drops facilities without a cached distance.
	MissingExclude MissingPolicy = iota
	// MissingLast ranks facilities without a cached distance after all
	// ranked ones, ordered by facility ID.
	MissingLast
)

// String returns the label for a MissingPolicy.
func (p MissingPolicy) String() string {
	switch p {
	case MissingExclude:
		return "exclude"
	case MissingLast:
		return "last"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// RankedFacility is a facility with its cached route figures. DistanceKm
// is nil for facilities ranked under MissingLast.
type RankedFacility struct {
	Facility    Facility `json:"facility"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	DurationMin *float64 `json:"duration_min,omitempty"`
}

// NearestFacilities ranks candidate facilities for a stream by cached
// distance, ascending. Equal distances are broken by facility ID ascending
// so the ranking is deterministic run to run. Candidates without a cached
// distance are excluded or placed last per policy; the order of the input
// slice never influences the result.
func NearestFacilities(stream string, candidates []Facility, snapshot DistanceSnapshot, policy MissingPolicy) []RankedFacility {
	ranked := make([]RankedFacility, 0, len(candidates))
	var unranked []RankedFacility

	for _, f := range candidates {
		d, ok := snapshot.Lookup(stream, f.ID)
		if !ok {
			if policy == MissingLast {
				unranked = append(unranked, RankedFacility{Facility: cloneFacility(f)})
			}
			continue
		}
		km := d.Km
		mins := d.DurationMin
		ranked = append(ranked, RankedFacility{
			Facility:    cloneFacility(f),
			DistanceKm:  &km,
			DurationMin: &mins,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if *ranked[i].DistanceKm != *ranked[j].DistanceKm {
			return *ranked[i].DistanceKm < *ranked[j].DistanceKm
		}
		return ranked[i].Facility.ID < ranked[j].Facility.ID
	})
	sort.Slice(unranked, func(i, j int) bool {
		return unranked[i].Facility.ID < unranked[j].Facility.ID
	})

	return append(ranked, unranked...)
}
