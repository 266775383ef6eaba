package engine

import (
	"context"
	"errors"
	"math"

	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/units"
)

// StreamBreakdown is one contributing stream's share of the diversion
// summary, for rendering.
type StreamBreakdown struct {
	Category       string  `json:"category"`
	ManualTonnes   float64 `json:"manual_tonnes"`
	ForecastTonnes float64 `json:"forecast_tonnes"`
	TotalTonnes    float64 `json:"total_tonnes"`
	Outcome        Outcome `json:"outcome"`
	Diverted       bool    `json:"diverted"`
	AvoidsLandfill bool    `json:"avoids_landfill"`
}

// DiversionSummary is the project-level diversion statistics.
type DiversionSummary struct {
	// TotalTonnes sums every quantified stream (manual + forecast).
	TotalTonnes float64 `json:"total_tonnes"`

	// DivertedTonnes is the share with first outcome Reuse or Recycle.
	DivertedTonnes float64 `json:"diverted_tonnes"`

	// LandfillAvoidedTonnes additionally includes Cleanfill.
	LandfillAvoidedTonnes float64 `json:"landfill_avoided_tonnes"`

	// DiversionPct and LandfillAvoidancePct are percentages of
	// TotalTonnes; both are 0 when nothing is quantified.
	DiversionPct         float64 `json:"diversion_pct"`
	LandfillAvoidancePct float64 `json:"landfill_avoidance_pct"`

	// MissingThicknessStreams lists streams whose area-measured manual
	// quantity has no resolvable thickness. They are excluded from every
	// total; flagging instead of zero-filling is what makes the gap
	// visible to the user.
	MissingThicknessStreams []string `json:"missing_thickness_streams,omitempty"`

	// MissingQuantityStreams lists streams with no usable quantity:
	// nothing recorded, zero total, or an unconvertible manual entry.
	MissingQuantityStreams []string `json:"missing_quantity_streams,omitempty"`

	// Streams breaks down every contributing stream, in plan order.
	Streams []StreamBreakdown `json:"streams,omitempty"`
}

// ComputeDiversion computes diversion statistics over the given plans.
//
// A stream contributes only when its combined manual and forecast tonnage
// is positive. Streams that cannot be quantified are excluded and listed:
// an area quantity with unresolvable thickness lands in
// MissingThicknessStreams, everything else unquantifiable in
// MissingQuantityStreams. One bad stream never aborts the computation, and
// an empty or fully-excluded plan yields zero percentages, never NaN.
func (e *Engine) ComputeDiversion(ctx context.Context, plans []WasteStreamPlan) DiversionSummary {
	log := logging.FromContext(ctx)

	var summary DiversionSummary
	for i := range plans {
		plan := &plans[i]

		manual, err := e.manualTonnesChecked(plan)
		if err != nil {
			if errors.Is(err, units.ErrMissingThickness) {
				summary.MissingThicknessStreams = append(summary.MissingThicknessStreams, plan.Category)
			} else {
				summary.MissingQuantityStreams = append(summary.MissingQuantityStreams, plan.Category)
			}
			log.Debug().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "compute_diversion").
				Str("stream", plan.Category).
				Err(err).
				Msg("stream excluded from diversion totals")
			continue
		}

		forecast := 0.0
		if plan.ForecastQtyTonnes != nil && isFiniteNonNegative(*plan.ForecastQtyTonnes) {
			forecast = *plan.ForecastQtyTonnes
		}

		total := manual + forecast
		if total <= 0 {
			summary.MissingQuantityStreams = append(summary.MissingQuantityStreams, plan.Category)
			continue
		}

		outcome := plan.FirstOutcome()
		summary.TotalTonnes += total
		if outcome.Diverted() {
			summary.DivertedTonnes += total
		}
		if outcome.AvoidsLandfill() {
			summary.LandfillAvoidedTonnes += total
		}
		summary.Streams = append(summary.Streams, StreamBreakdown{
			Category:       plan.Category,
			ManualTonnes:   manual,
			ForecastTonnes: forecast,
			TotalTonnes:    total,
			Outcome:        outcome,
			Diverted:       outcome.Diverted(),
			AvoidsLandfill: outcome.AvoidsLandfill(),
		})
	}

	if summary.TotalTonnes > 0 {
		summary.DiversionPct = summary.DivertedTonnes / summary.TotalTonnes * 100
		summary.LandfillAvoidancePct = summary.LandfillAvoidedTonnes / summary.TotalTonnes * 100
	}

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "compute_diversion").
		Int("stream_count", len(plans)).
		Int("contributing", len(summary.Streams)).
		Float64("total_tonnes", summary.TotalTonnes).
		Float64("diversion_pct", summary.DiversionPct).
		Msg("diversion computed")

	return summary
}

// manualTonnesChecked converts the plan's manual quantity, distinguishing
// "no quantity" (0, nil error) from "cannot convert" (error).
func (e *Engine) manualTonnesChecked(plan *WasteStreamPlan) (float64, error) {
	if plan.ManualQty == nil {
		return 0, nil
	}
	q := plan.ManualQty
	if !isFiniteNonNegative(q.Value) {
		return 0, units.ErrInvalidQuantity
	}
	density := e.catalogue.ResolveDensity(plan.Category, q.DensityKgPerM3)
	thickness := e.catalogue.ResolveThickness(plan.Category, q.ThicknessM)
	tonnes, err := units.ToTonnes(q.Value, q.Unit, density, thickness)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(tonnes) || math.IsInf(tonnes, 0) {
		return 0, units.ErrInvalidQuantity
	}
	return tonnes, nil
}
