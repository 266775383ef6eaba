package equivalency

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Error types for equivalency calculations, comparable with errors.Is().
var (
	// ErrInvalidUnit indicates an unrecognized mass unit. Only mass units
	// are accepted; volumes must be converted upstream.
	ErrInvalidUnit = constError("invalid tonnage unit")

	// ErrInvalidTonnage indicates a negative or non-finite mass value.
	ErrInvalidTonnage = constError("invalid tonnage value")

	// ErrCalculationOverflow indicates a value too large to calculate
	// safely.
	ErrCalculationOverflow = constError("calculation overflow")
)
