// Package equivalency converts abstract diverted-waste tonnages into
// relatable real-world figures like "skip bins" or "truckloads" for
// summaries and reports.
//
// The figures are advisory and display-only; they never feed back into
// plan or diversion calculations.
package equivalency

import "fmt"

// EquivalencyType represents a category of waste diversion equivalency.
type EquivalencyType int

const (
	// EquivalencySkipBins converts tonnes to 9 m3 builder's skip loads.
	EquivalencySkipBins EquivalencyType = iota

	// EquivalencyTruckloads converts tonnes to hook-truck loads.
	EquivalencyTruckloads

	// EquivalencyCO2eAvoided converts diverted tonnes to avoided
	// greenhouse emissions in tonnes CO2e.
	EquivalencyCO2eAvoided
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencySkipBins:
		return "SkipBins"
	case EquivalencyTruckloads:
		return "Truckloads"
	case EquivalencyCO2eAvoided:
		return "CO2eAvoided"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// TonnageInput represents a diverted-waste mass for equivalency
// calculation.
type TonnageInput struct {
	// Value is the numeric mass amount.
	Value float64 `json:"value"`

	// Unit is the measurement unit (t, tonne, tonnes, kg).
	Unit string `json:"unit"`
}

// EquivalencyResult represents a single calculated equivalency.
type EquivalencyResult struct {
	// Type identifies the equivalency category.
	Type EquivalencyType `json:"type"`

	// Value is the raw calculated equivalency value.
	Value float64 `json:"value"`

	// FormattedValue is the display-ready string.
	FormattedValue string `json:"formatted_value"`

	// Label is the descriptive phrase (e.g., "skip bins").
	Label string `json:"label"`
}

// EquivalencyOutput contains all equivalency results for display.
type EquivalencyOutput struct {
	// InputTonnes is the normalized input mass in tonnes.
	InputTonnes float64 `json:"input_tonnes"`

	// Results contains calculated equivalencies in priority order.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the full prose format for CLI output.
	// Example: "Equivalent to ~27 skip bins or ~3.8 truckloads kept out of landfill"
	DisplayText string `json:"display_text"`

	// CompactText is the abbreviated format for constrained outputs.
	// Example: "(≈ 27 skips, 3.8 trucks)"
	CompactText string `json:"compact_text"`

	// IsEmpty is true when no equivalencies were calculated.
	IsEmpty bool `json:"is_empty"`
}
