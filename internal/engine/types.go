// Package engine implements waste-stream planning: converting forecast
// items to waste mass, aggregating manual and forecast quantities per
// stream, computing diversion statistics, and applying strategy
// recommendations to a project.
//
// All computation is pure and synchronous. The engine receives complete
// plan and item sets and returns rewritten copies; callers own persistence.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/reclaimops/wasteplan/internal/units"
)

// maxCategoryLen is the maximum length of a waste stream category label.
const maxCategoryLen = 128

// maxDescriptionLen is the maximum length of a forecast item description.
const maxDescriptionLen = 512

// ErrPlanValidation is returned when plan or item validation fails.
var ErrPlanValidation = errors.New("waste plan validation failed")

// Outcome represents the intended fate of a waste stream.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver; String/MarshalJSON use value receivers.
type Outcome int

const (
	// OutcomeUnknown means no fate has been decided yet. It is the zero
	// value so unset plans read as undecided.
	OutcomeUnknown Outcome = iota
	// OutcomeReuse keeps the material in use without reprocessing.
	OutcomeReuse
	// OutcomeRecycle sends the material for reprocessing.
	OutcomeRecycle
	// OutcomeCleanfill disposes to a cleanfill site. Counts as landfill
	// avoidance but not as diversion.
	OutcomeCleanfill
	// OutcomeLandfill disposes to landfill.
	OutcomeLandfill
)

// String returns the canonical capitalized label for an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "Unknown"
	case OutcomeReuse:
		return "Reuse"
	case OutcomeRecycle:
		return "Recycle"
	case OutcomeCleanfill:
		return "Cleanfill"
	case OutcomeLandfill:
		return "Landfill"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// ParseOutcome maps a label to its Outcome, case-insensitively.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown", "":
		return OutcomeUnknown, true
	case "reuse":
		return OutcomeReuse, true
	case "recycle", "recycling":
		return OutcomeRecycle, true
	case "cleanfill":
		return OutcomeCleanfill, true
	case "landfill":
		return OutcomeLandfill, true
	default:
		return OutcomeUnknown, false
	}
}

// Diverted reports whether the outcome counts toward the diversion rate.
func (o Outcome) Diverted() bool {
	return o == OutcomeReuse || o == OutcomeRecycle
}

// AvoidsLandfill reports whether the outcome counts toward landfill
// avoidance. Cleanfill avoids landfill without being diversion.
func (o Outcome) AvoidsLandfill() bool {
	return o.Diverted() || o == OutcomeCleanfill
}

// MarshalJSON implements json.Marshaler to output Outcome as string.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements json.Unmarshaler to parse Outcome from string.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("parsing outcome: %w", err)
	}
	parsed, ok := ParseOutcome(str)
	if !ok {
		return fmt.Errorf("unknown outcome: %q", str)
	}
	*o = parsed
	return nil
}

// isValidOutcome returns true if the outcome is within the valid range.
func isValidOutcome(o Outcome) bool {
	return o >= OutcomeUnknown && o <= OutcomeLandfill
}

// HandlingMode represents how a stream is handled on site.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver; String/MarshalJSON use value receivers.
type HandlingMode int

const (
	// HandlingUnspecified means no handling decision has been recorded.
	HandlingUnspecified HandlingMode = iota
	// HandlingMixed means the stream goes into mixed waste.
	HandlingMixed
	// HandlingSeparated means the stream is source-separated on site.
	HandlingSeparated
)

// String returns the label for a HandlingMode.
func (h HandlingMode) String() string {
	switch h {
	case HandlingUnspecified:
		return "unspecified"
	case HandlingMixed:
		return "mixed"
	case HandlingSeparated:
		return "separated"
	default:
		return fmt.Sprintf("unknown(%d)", int(h))
	}
}

// MarshalJSON implements json.Marshaler to output HandlingMode as string.
func (h HandlingMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON implements json.Unmarshaler to parse HandlingMode from string.
func (h *HandlingMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("parsing handling mode: %w", err)
	}
	switch strings.ToLower(str) {
	case "unspecified", "":
		*h = HandlingUnspecified
	case "mixed":
		*h = HandlingMixed
	case "separated":
		*h = HandlingSeparated
	default:
		return fmt.Errorf("unknown handling mode: %q", str)
	}
	return nil
}

// isValidHandlingMode returns true if the mode is within the valid range.
func isValidHandlingMode(h HandlingMode) bool {
	return h >= HandlingUnspecified && h <= HandlingSeparated
}

// Quantity is a manually recorded quantity with optional conversion
// overrides. Density and thickness, when set, take precedence over the
// catalogue defaults for the stream.
type Quantity struct {
	Value          float64    `json:"value"`
	Unit           units.Unit `json:"unit"`
	DensityKgPerM3 *float64   `json:"density_kg_per_m3,omitempty"`
	ThicknessM     *float64   `json:"thickness_m,omitempty"`
}

// Validate checks that the quantity is well-formed.
func (q *Quantity) Validate() error {
	if q.Value < 0 || math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
		return fmt.Errorf("%w: quantity value must be finite and >= 0, got %v", ErrPlanValidation, q.Value)
	}
	if !units.IsRecognizedUnit(string(q.Unit)) {
		return fmt.Errorf("%w: unknown unit %q", ErrPlanValidation, q.Unit)
	}
	if q.DensityKgPerM3 != nil && *q.DensityKgPerM3 <= 0 {
		return fmt.Errorf("%w: density override must be > 0", ErrPlanValidation)
	}
	if q.ThicknessM != nil && *q.ThicknessM <= 0 {
		return fmt.Errorf("%w: thickness override must be > 0", ErrPlanValidation)
	}
	return nil
}

// Destination records where a stream is sent: a facility from the
// directory, or a free-text custom destination.
type Destination struct {
	FacilityID string `json:"facility_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Address    string `json:"address,omitempty"`
}

// IsSet reports whether any destination has been recorded.
func (d Destination) IsSet() bool {
	return d.FacilityID != "" || d.Name != ""
}

// HasFacility reports whether the destination references a directory
// facility. A custom destination does not count.
func (d Destination) HasFacility() bool {
	return d.FacilityID != ""
}

// WasteStreamPlan is the per-stream planning row for a project.
type WasteStreamPlan struct {
	// Category is the stream label, unique per project after trimming.
	Category string `json:"category"`

	// ManualQty is the manually recorded quantity, if any.
	ManualQty *Quantity `json:"manual_qty,omitempty"`

	// ManualQtyTonnes caches the conversion of ManualQty to tonnes. Nil
	// when there is no manual quantity or it cannot be converted.
	ManualQtyTonnes *float64 `json:"manual_qty_tonnes,omitempty"`

	// ForecastQtyTonnes is the sum of converted forecast waste allocated
	// to this stream. Recomputed wholesale, never patched incrementally.
	ForecastQtyTonnes *float64 `json:"forecast_qty_tonnes,omitempty"`

	// IntendedOutcomes lists the planned fates; the first element is
	// canonical for diversion statistics.
	IntendedOutcomes []Outcome `json:"intended_outcomes,omitempty"`

	// Handling records whether the stream is separated on site.
	Handling HandlingMode `json:"handling,omitempty"`

	// Destination records where the stream is sent.
	Destination Destination `json:"destination,omitempty"`

	// DistanceKm and DurationMin are cached route figures for the
	// assigned facility, when known.
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	DurationMin *float64 `json:"duration_min,omitempty"`

	// PartnerID scopes facility selection for this stream. Empty means
	// the project-level partner scope applies.
	PartnerID string `json:"partner_id,omitempty"`
}

// FirstOutcome returns the canonical outcome for the plan. An empty
// outcome list reads as Unknown.
func (p *WasteStreamPlan) FirstOutcome() Outcome {
	if len(p.IntendedOutcomes) == 0 {
		return OutcomeUnknown
	}
	return p.IntendedOutcomes[0]
}

// Validate checks that the plan is well-formed.
func (p *WasteStreamPlan) Validate() error {
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrPlanValidation)
	}
	if len(p.Category) > maxCategoryLen {
		return fmt.Errorf("%w: category too long: %d chars (max %d)", ErrPlanValidation, len(p.Category), maxCategoryLen)
	}
	if p.ManualQty != nil {
		if err := p.ManualQty.Validate(); err != nil {
			return err
		}
	}
	for _, o := range p.IntendedOutcomes {
		if !isValidOutcome(o) {
			return fmt.Errorf("%w: invalid outcome: %d", ErrPlanValidation, o)
		}
	}
	if !isValidHandlingMode(p.Handling) {
		return fmt.Errorf("%w: invalid handling mode: %d", ErrPlanValidation, p.Handling)
	}
	return nil
}

// ForecastItem is one purchased line item from the project forecast.
type ForecastItem struct {
	// ID identifies the item within the project.
	ID string `json:"id"`

	// Description is the free-text purchase description.
	Description string `json:"description,omitempty"`

	// MaterialType is the matcher key, e.g. "timber" or "plasterboard".
	MaterialType string `json:"material_type"`

	// Quantity and Unit are the purchased amount.
	Quantity float64    `json:"quantity"`
	Unit     units.Unit `json:"unit"`

	// ExcessPercent is the share of the purchase expected to become
	// waste, as a percentage.
	ExcessPercent float64 `json:"excess_percent"`

	// WasteStreamKey is the allocated stream label. Empty means
	// unallocated; unallocated items contribute to no stream.
	WasteStreamKey string `json:"waste_stream_key,omitempty"`

	// ComputedWasteQty is the waste portion in the item's own unit.
	// Written by ConvertItems.
	ComputedWasteQty *float64 `json:"computed_waste_qty,omitempty"`

	// ComputedWasteKg is the waste portion converted to kilograms. Nil
	// means conversion metadata is missing, never zero-filled.
	ComputedWasteKg *float64 `json:"computed_waste_kg,omitempty"`
}

// Validate checks that the forecast item is well-formed.
func (f *ForecastItem) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("%w: forecast item ID is required", ErrPlanValidation)
	}
	if len(f.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description too long: %d chars (max %d)",
			ErrPlanValidation, len(f.Description), maxDescriptionLen)
	}
	if f.Quantity < 0 || math.IsNaN(f.Quantity) || math.IsInf(f.Quantity, 0) {
		return fmt.Errorf("%w: item quantity must be finite and >= 0, got %v", ErrPlanValidation, f.Quantity)
	}
	if !units.IsRecognizedUnit(string(f.Unit)) {
		return fmt.Errorf("%w: unknown unit %q", ErrPlanValidation, f.Unit)
	}
	if f.ExcessPercent < 0 || math.IsNaN(f.ExcessPercent) || math.IsInf(f.ExcessPercent, 0) {
		return fmt.Errorf("%w: excess percent must be finite and >= 0, got %v", ErrPlanValidation, f.ExcessPercent)
	}
	return nil
}
