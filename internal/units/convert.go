package units

import (
	"fmt"
	"math"
)

// ToTonnes converts a quantity to tonnes.
//
// Mass units convert directly. Volume units (m3, L) multiply by density;
// area units (m2) multiply by thickness and density. densityKgPerM3 and
// thicknessM are optional inputs resolved by the caller (explicit value,
// catalogue default, or global fallback); a nil or non-positive pointer
// counts as unavailable and yields ErrMissingConversionData wrapping the
// specific gap (ErrMissingDensity or ErrMissingThickness). Litres convert
// through cubic metres, so a litre quantity uses the same density as the
// material's volumetric form.
func ToTonnes(value float64, unit Unit, densityKgPerM3, thicknessM *float64) (float64, error) {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %v %s", ErrInvalidQuantity, value, unit)
	}

	switch unit {
	case Tonne:
		return value, nil
	case Kilogram:
		return value / 1000, nil
	case CubicMetre:
		density, err := requireDensity(unit, densityKgPerM3)
		if err != nil {
			return 0, err
		}
		return value * density / 1000, nil
	case Litre:
		density, err := requireDensity(unit, densityKgPerM3)
		if err != nil {
			return 0, err
		}
		return (value / 1000) * density / 1000, nil
	case SquareMetre:
		density, err := requireDensity(unit, densityKgPerM3)
		if err != nil {
			return 0, err
		}
		if thicknessM == nil || *thicknessM <= 0 {
			return 0, fmt.Errorf("%w: %w for unit %s", ErrMissingConversionData, ErrMissingThickness, unit)
		}
		return value * *thicknessM * density / 1000, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// ToKilograms converts a quantity to kilograms using the same rules as
// ToTonnes.
func ToKilograms(value float64, unit Unit, densityKgPerM3, thicknessM *float64) (float64, error) {
	tonnes, err := ToTonnes(value, unit, densityKgPerM3, thicknessM)
	if err != nil {
		return 0, err
	}
	return tonnes * 1000, nil
}

func requireDensity(unit Unit, densityKgPerM3 *float64) (float64, error) {
	if densityKgPerM3 == nil || *densityKgPerM3 <= 0 {
		return 0, fmt.Errorf("%w: %w for unit %s", ErrMissingConversionData, ErrMissingDensity, unit)
	}
	return *densityKgPerM3, nil
}
