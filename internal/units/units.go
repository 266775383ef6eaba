// Package units converts purchased and measured waste quantities into the
// canonical mass unit (tonnes).
//
// The unit vocabulary is fixed: mass units convert directly, volume units
// need a material density, and area units need both a density and a sheet
// thickness. Conversion never guesses — a missing density or thickness is
// reported as a distinct error so callers can flag the material as needing
// input instead of silently recording zero tonnes.
package units

import "strings"

// Unit identifies a purchase/measurement unit from the fixed vocabulary.
type Unit string

// Recognized units.
const (
	// Tonne is the canonical mass unit (metric ton).
	Tonne Unit = "t"

	// Kilogram converts at 1/1000 tonne.
	Kilogram Unit = "kg"

	// CubicMetre is a volume unit; conversion requires a density.
	CubicMetre Unit = "m3"

	// Litre is a volume unit; conversion requires a density. Litres are
	// used for liquids such as paints and adhesives.
	Litre Unit = "L"

	// SquareMetre is an area unit for sheet materials; conversion requires
	// a density and a thickness.
	SquareMetre Unit = "m2"
)

// ParseUnit maps a unit string to its canonical Unit value.
// Matching is case-insensitive and accepts the common spelled-out aliases
// ("tonnes", "litres"). Returns (unit, true) for recognized inputs and
// ("", false) otherwise.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "tonne", "tonnes":
		return Tonne, true
	case "kg", "kilogram", "kilograms":
		return Kilogram, true
	case "m3", "m³":
		return CubicMetre, true
	case "l", "litre", "litres":
		return Litre, true
	case "m2", "m²":
		return SquareMetre, true
	default:
		return "", false
	}
}

// IsRecognizedUnit reports whether s parses to a unit in the fixed vocabulary.
func IsRecognizedUnit(s string) bool {
	_, ok := ParseUnit(s)
	return ok
}

// NeedsDensity reports whether conversion from u requires a material density.
func (u Unit) NeedsDensity() bool {
	return u == CubicMetre || u == Litre || u == SquareMetre
}

// NeedsThickness reports whether conversion from u requires a sheet thickness.
func (u Unit) NeedsThickness() bool {
	return u == SquareMetre
}

// String returns the canonical label for the unit.
func (u Unit) String() string {
	return string(u)
}
