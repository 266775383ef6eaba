package units

// constError is an error type that can be used to create constant errors.
type constError string

// Error implements the error interface.
func (e constError) Error() string {
	return string(e)
}

// Conversion errors. ErrInvalidQuantity and ErrMissingConversionData are
// deliberately distinct: the first means the recorded number itself is bad,
// the second means the number is fine but the material metadata needed to
// convert it is absent.
const (
	// ErrInvalidQuantity indicates a negative, NaN, or infinite quantity.
	ErrInvalidQuantity = constError("invalid quantity")

	// ErrUnknownUnit indicates a unit outside the fixed vocabulary.
	ErrUnknownUnit = constError("unknown unit")

	// ErrMissingConversionData indicates that a density or thickness needed
	// for the conversion could not be resolved.
	ErrMissingConversionData = constError("missing conversion data")

	// ErrMissingDensity is wrapped by ErrMissingConversionData when a
	// volume or area conversion has no density available.
	ErrMissingDensity = constError("no density available")

	// ErrMissingThickness is wrapped by ErrMissingConversionData when an
	// area conversion has no thickness available.
	ErrMissingThickness = constError("no thickness available")
)
