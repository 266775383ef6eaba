package engine

import (
	"github.com/reclaimops/wasteplan/internal/catalogue"
	"github.com/reclaimops/wasteplan/internal/facility"
)

// Engine runs plan computations against a material catalogue, a facility
// directory, and a snapshot of cached route distances. It holds no mutable
// state; one Engine is built per command invocation.
type Engine struct {
	catalogue  *catalogue.Catalogue
	facilities *facility.Directory
	distances  facility.DistanceSnapshot
}

// New creates an Engine. The facility directory and distance snapshot may
// be nil for operations that only aggregate quantities; facility-dependent
// operations report unresolvable targets instead of panicking.
func New(cat *catalogue.Catalogue, facilities *facility.Directory, distances facility.DistanceSnapshot) *Engine {
	if cat == nil {
		cat = catalogue.Default()
	}
	return &Engine{
		catalogue:  cat,
		facilities: facilities,
		distances:  distances,
	}
}

// Catalogue returns the engine's material catalogue.
func (e *Engine) Catalogue() *catalogue.Catalogue {
	return e.catalogue
}
