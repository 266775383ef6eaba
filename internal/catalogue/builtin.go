package catalogue

import "github.com/reclaimops/wasteplan/internal/units"

// GlobalDefaultDensityKgPerM3 is the last-resort density applied when
// neither the plan nor the catalogue provides one. There is no equivalent
// fallback for thickness: an area quantity with no thickness stays
// unconverted and is flagged instead.
const GlobalDefaultDensityKgPerM3 = 1000.0

// builtinEntries is the built-in waste stream catalogue. Densities are
// as-installed bulk figures for construction and demolition material, not
// laboratory solid densities; thickness defaults cover the common sheet
// gauge for area-measured materials.
var builtinEntries = []Entry{
	{Label: "Concrete", DefaultUnit: units.CubicMetre, DensityKgPerM3: 2400},
	{Label: "Bricks & Masonry", DefaultUnit: units.CubicMetre, DensityKgPerM3: 1900},
	{Label: "Cleanfill", DefaultUnit: units.CubicMetre, DensityKgPerM3: 1800},
	{Label: "Timber", DefaultUnit: units.CubicMetre, DensityKgPerM3: 550},
	{Label: "Plasterboard", DefaultUnit: units.SquareMetre, DensityKgPerM3: 950, DefaultThicknessM: thickness(0.013)},
	{Label: "Metals", DefaultUnit: units.Kilogram, DensityKgPerM3: 7850},
	{Label: "Plastics", DefaultUnit: units.CubicMetre, DensityKgPerM3: 300},
	{Label: "Cardboard & Paper", DefaultUnit: units.CubicMetre, DensityKgPerM3: 110},
	{Label: "Glass", DefaultUnit: units.Kilogram, DensityKgPerM3: 2500},
	{Label: "Insulation", DefaultUnit: units.SquareMetre, DensityKgPerM3: 35, DefaultThicknessM: thickness(0.090)},
	{Label: "Carpet & Underlay", DefaultUnit: units.SquareMetre, DensityKgPerM3: 250, DefaultThicknessM: thickness(0.012)},
	{Label: "Paints & Adhesives", DefaultUnit: units.Litre, DensityKgPerM3: 1300},
	{Label: "Mixed C&D", DefaultUnit: units.CubicMetre, DensityKgPerM3: 350},
}

func thickness(m float64) *float64 {
	return &m
}
