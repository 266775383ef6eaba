package catalogue

// constError is an error type that can be used to create constant errors.
type constError string

// Error implements the error interface.
func (e constError) Error() string {
	return string(e)
}

// Catalogue errors.
const (
	// ErrUnknownStream indicates a label with no catalogue entry.
	ErrUnknownStream = constError("unknown waste stream")

	// ErrInvalidDataset indicates a dataset file that failed validation.
	ErrInvalidDataset = constError("invalid catalogue dataset")

	// ErrUnsupportedVersion indicates a dataset whose version is outside
	// the supported major version.
	ErrUnsupportedVersion = constError("unsupported catalogue dataset version")
)
