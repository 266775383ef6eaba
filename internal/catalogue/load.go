package catalogue

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/reclaimops/wasteplan/internal/units"
)

// datasetVersionConstraint is the supported dataset schema range. Datasets
// are replaced wholesale, so a major bump means the file layout changed and
// the binary must not guess at it.
const datasetVersionConstraint = ">= 1.0.0, < 2.0.0"

// Dataset is the on-disk form of a catalogue override file.
type Dataset struct {
	Version string  `yaml:"version"`
	Streams []Entry `yaml:"streams"`
}

// Load reads a catalogue dataset from a YAML file. The dataset replaces the
// built-in catalogue entirely; entries are validated so a bad dataset fails
// loudly at startup instead of producing silent zero conversions later.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue dataset: %w", err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue dataset: %w", err)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return newCatalogue(ds.Streams), nil
}

// Validate checks the dataset version and every entry, normalizing unit
// spellings to their canonical form.
func (ds *Dataset) Validate() error {
	if ds.Version == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidDataset)
	}
	v, err := semver.NewVersion(ds.Version)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q: %w", ErrInvalidDataset, ds.Version, err)
	}
	constraint, err := semver.NewConstraint(datasetVersionConstraint)
	if err != nil {
		return fmt.Errorf("failed to parse version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedVersion, ds.Version, datasetVersionConstraint)
	}

	if len(ds.Streams) == 0 {
		return fmt.Errorf("%w: no streams defined", ErrInvalidDataset)
	}

	seen := make(map[string]bool, len(ds.Streams))
	for i := range ds.Streams {
		e := &ds.Streams[i]
		if e.Label == "" {
			return fmt.Errorf("%w: stream %d has no label", ErrInvalidDataset, i)
		}
		if seen[e.Label] {
			return fmt.Errorf("%w: duplicate stream label %q", ErrInvalidDataset, e.Label)
		}
		seen[e.Label] = true

		unit, ok := units.ParseUnit(string(e.DefaultUnit))
		if !ok {
			return fmt.Errorf("%w: stream %q has unknown default unit %q", ErrInvalidDataset, e.Label, e.DefaultUnit)
		}
		e.DefaultUnit = unit

		if e.DensityKgPerM3 <= 0 {
			return fmt.Errorf("%w: stream %q has non-positive density", ErrInvalidDataset, e.Label)
		}
		if unit.NeedsThickness() && (e.DefaultThicknessM == nil || *e.DefaultThicknessM <= 0) {
			return fmt.Errorf("%w: stream %q is measured in %s but has no default thickness", ErrInvalidDataset, e.Label, unit)
		}
	}
	return nil
}
