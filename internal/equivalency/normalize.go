package equivalency

import (
	"fmt"
	"math"
	"strings"
)

// NormalizeToTonnes converts a mass value to tonnes. Only mass units are
// recognized; anything needing density or thickness belongs in the units
// package, upstream of this one.
func NormalizeToTonnes(value float64, unit string) (float64, error) {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTonnage, value)
	}

	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "t", "tonne", "tonnes":
		return value * TonnesToTonnes, nil
	case "kg":
		return value * KgToTonnes, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}
}
