package facility

// constError is an error type that can be used to create constant errors.
type constError string

// Error implements the error interface.
func (e constError) Error() string {
	return string(e)
}

// Facility dataset errors.
const (
	// ErrInvalidDataset indicates a dataset file that failed validation.
	ErrInvalidDataset = constError("invalid facility dataset")

	// ErrUnsupportedVersion indicates a dataset whose version is outside
	// the supported major version.
	ErrUnsupportedVersion = constError("unsupported facility dataset version")
)
