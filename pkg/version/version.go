// Package version exposes the build version of the wasteplan binary.
package version

// Version is the wasteplan version. Release builds override it via
// -ldflags "-X github.com/reclaimops/wasteplan/pkg/version.Version=...".
var Version = "0.1.0-dev"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
