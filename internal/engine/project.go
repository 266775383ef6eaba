package engine

import (
	"fmt"
	"strings"
)

// Project is a construction project's waste planning state: its stream
// plans and forecast items, plus the region and partner scope used for
// facility selection.
type Project struct {
	// ID identifies the project.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name,omitempty"`

	// Region scopes facility selection, e.g. "Wellington".
	Region string `json:"region,omitempty"`

	// PartnerID scopes facility selection to one waste partner. Empty
	// means all partners are eligible.
	PartnerID string `json:"partner_id,omitempty"`

	// Plans holds one entry per waste stream.
	Plans []WasteStreamPlan `json:"plans,omitempty"`

	// Items holds the purchase forecast.
	Items []ForecastItem `json:"items,omitempty"`
}

// Validate checks the project and everything in it.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: project ID is required", ErrPlanValidation)
	}
	seen := make(map[string]bool, len(p.Plans))
	for i := range p.Plans {
		if err := p.Plans[i].Validate(); err != nil {
			return fmt.Errorf("plan %q: %w", p.Plans[i].Category, err)
		}
		key := strings.TrimSpace(p.Plans[i].Category)
		if seen[key] {
			return fmt.Errorf("%w: duplicate stream category %q", ErrPlanValidation, key)
		}
		seen[key] = true
	}
	for i := range p.Items {
		if err := p.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %q: %w", p.Items[i].ID, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the project. Plans and items contain
// pointer fields, so a shallow copy would alias quantity data between the
// stored project and an in-flight mutation.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Plans = clonePlans(p.Plans)
	out.Items = cloneItems(p.Items)
	return &out
}

func clonePlans(plans []WasteStreamPlan) []WasteStreamPlan {
	if plans == nil {
		return nil
	}
	out := make([]WasteStreamPlan, len(plans))
	for i := range plans {
		out[i] = clonePlan(plans[i])
	}
	return out
}

func clonePlan(p WasteStreamPlan) WasteStreamPlan {
	out := p
	if p.ManualQty != nil {
		mq := *p.ManualQty
		mq.DensityKgPerM3 = cloneFloat(p.ManualQty.DensityKgPerM3)
		mq.ThicknessM = cloneFloat(p.ManualQty.ThicknessM)
		out.ManualQty = &mq
	}
	out.ManualQtyTonnes = cloneFloat(p.ManualQtyTonnes)
	out.ForecastQtyTonnes = cloneFloat(p.ForecastQtyTonnes)
	out.DistanceKm = cloneFloat(p.DistanceKm)
	out.DurationMin = cloneFloat(p.DurationMin)
	if p.IntendedOutcomes != nil {
		out.IntendedOutcomes = make([]Outcome, len(p.IntendedOutcomes))
		copy(out.IntendedOutcomes, p.IntendedOutcomes)
	}
	return out
}

func cloneItems(items []ForecastItem) []ForecastItem {
	if items == nil {
		return nil
	}
	out := make([]ForecastItem, len(items))
	for i := range items {
		out[i] = items[i]
		out[i].ComputedWasteQty = cloneFloat(items[i].ComputedWasteQty)
		out[i].ComputedWasteKg = cloneFloat(items[i].ComputedWasteKg)
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
