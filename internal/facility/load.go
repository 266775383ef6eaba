package facility

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/reclaimops/wasteplan/internal/catalogue"
)

// datasetVersionConstraint is the supported dataset schema range.
const datasetVersionConstraint = ">= 1.0.0, < 2.0.0"

// Dataset is the on-disk form of a facility directory file.
type Dataset struct {
	Version    string     `yaml:"version"`
	Partners   []Partner  `yaml:"partners"`
	Facilities []Facility `yaml:"facilities"`
}

// Load reads a facility directory from a YAML file and validates it
// against the catalogue's stream vocabulary, so a facility claiming to
// accept a stream the catalogue does not know fails at load rather than
// producing impossible suggestions later.
func Load(path string, cat *catalogue.Catalogue) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read facility dataset: %w", err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse facility dataset: %w", err)
	}

	if ds.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidDataset)
	}
	v, err := semver.NewVersion(ds.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid version %q: %w", ErrInvalidDataset, ds.Version, err)
	}
	constraint, err := semver.NewConstraint(datasetVersionConstraint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedVersion, ds.Version, datasetVersionConstraint)
	}

	dir, err := NewDirectory(cat, ds.Facilities, ds.Partners)
	if err != nil {
		return nil, err
	}
	dir.version = ds.Version
	return dir, nil
}
