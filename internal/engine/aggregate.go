package engine

import (
	"context"
	"math"
	"strings"

	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/units"
)

// RecomputeForecastTotals rewrites every plan's forecast tonnage from the
// complete item set and refreshes the cached manual tonnage.
//
// ForecastQtyTonnes is overwritten wholesale: for each plan it becomes the
// sum of ComputedWasteKg/1000 over items whose trimmed WasteStreamKey
// equals the plan's trimmed Category. Items with nil, negative, or
// non-finite kilograms contribute nothing; a plan with no matching items
// gets an explicit zero, not nil. Taking the full plan and item sets makes
// partial updates impossible, which is what keeps repeated recomputes
// idempotent.
//
// The input slices are not mutated; a rewritten copy of plans is returned.
func (e *Engine) RecomputeForecastTotals(ctx context.Context, plans []WasteStreamPlan, items []ForecastItem) []WasteStreamPlan {
	log := logging.FromContext(ctx)

	kgByStream := make(map[string]float64, len(plans))
	for i := range items {
		kg := items[i].ComputedWasteKg
		if kg == nil || *kg < 0 || math.IsNaN(*kg) || math.IsInf(*kg, 0) {
			continue
		}
		stream := strings.TrimSpace(items[i].WasteStreamKey)
		if stream == "" {
			continue
		}
		kgByStream[stream] += *kg
	}

	out := clonePlans(plans)
	for i := range out {
		plan := &out[i]
		forecast := kgByStream[strings.TrimSpace(plan.Category)] / 1000
		plan.ForecastQtyTonnes = &forecast
		plan.ManualQtyTonnes = e.manualTonnes(plan)
	}

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "recompute_forecast_totals").
		Int("plan_count", len(out)).
		Int("item_count", len(items)).
		Msg("forecast totals recomputed")

	return out
}

// manualTonnes converts the plan's manual quantity to tonnes, or nil when
// there is no quantity or the conversion lacks metadata.
func (e *Engine) manualTonnes(plan *WasteStreamPlan) *float64 {
	if plan.ManualQty == nil {
		return nil
	}
	q := plan.ManualQty
	density := e.catalogue.ResolveDensity(plan.Category, q.DensityKgPerM3)
	thickness := e.catalogue.ResolveThickness(plan.Category, q.ThicknessM)
	tonnes, err := units.ToTonnes(q.Value, q.Unit, density, thickness)
	if err != nil {
		return nil
	}
	return &tonnes
}

// EnsureStream returns plans with a plan for label present, reporting
// whether one was added. Matching is exact after trimming surrounding
// whitespace; calling twice with the same label adds at most one entry.
// The input slice is not mutated.
func EnsureStream(plans []WasteStreamPlan, label string) ([]WasteStreamPlan, bool) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return clonePlans(plans), false
	}
	for i := range plans {
		if strings.TrimSpace(plans[i].Category) == trimmed {
			return clonePlans(plans), false
		}
	}
	return append(clonePlans(plans), WasteStreamPlan{Category: trimmed}), true
}

// materialStreamPriority maps a lowercased material type to its candidate
// streams in preference order. The first candidate present in the project
// wins; a material whose candidates are all absent stays unallocated.
var materialStreamPriority = map[string][]string{
	"concrete":     {"Concrete", "Cleanfill", "Mixed C&D"},
	"masonry":      {"Bricks & Masonry", "Cleanfill", "Mixed C&D"},
	"brick":        {"Bricks & Masonry", "Cleanfill", "Mixed C&D"},
	"aggregate":    {"Cleanfill", "Mixed C&D"},
	"soil":         {"Cleanfill"},
	"timber":       {"Timber", "Mixed C&D"},
	"framing":      {"Timber", "Mixed C&D"},
	"plasterboard": {"Plasterboard", "Mixed C&D"},
	"steel":        {"Metals", "Mixed C&D"},
	"metal":        {"Metals", "Mixed C&D"},
	"plastic":      {"Plastics", "Mixed C&D"},
	"packaging":    {"Cardboard & Paper", "Plastics", "Mixed C&D"},
	"cardboard":    {"Cardboard & Paper", "Mixed C&D"},
	"glass":        {"Glass", "Mixed C&D"},
	"insulation":   {"Insulation", "Mixed C&D"},
	"carpet":       {"Carpet & Underlay", "Mixed C&D"},
	"paint":        {"Paints & Adhesives"},
	"adhesive":     {"Paints & Adhesives"},
}

// MatchMaterialToStream picks the waste stream for a material type from
// the fixed priority table, limited to streams the project already has.
// It returns ("", false) for unknown material types and when no candidate
// stream exists in the project; ambiguity degrades to unallocated, never
// to a guess.
func MatchMaterialToStream(materialType string, existing []string) (string, bool) {
	candidates, ok := materialStreamPriority[strings.ToLower(strings.TrimSpace(materialType))]
	if !ok {
		return "", false
	}

	present := make(map[string]bool, len(existing))
	for _, label := range existing {
		present[strings.TrimSpace(label)] = true
	}

	for _, candidate := range candidates {
		if present[candidate] {
			return candidate, true
		}
	}
	return "", false
}
