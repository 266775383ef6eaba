package catalogue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/units"
)

func TestDefaultCatalogue(t *testing.T) {
	cat := Default()

	labels := cat.Labels()
	assert.Len(t, labels, 13)
	assert.Contains(t, labels, "Concrete")
	assert.Contains(t, labels, "Mixed C&D")

	concrete, ok := cat.Lookup("Concrete")
	require.True(t, ok)
	assert.Equal(t, units.CubicMetre, concrete.DefaultUnit)
	assert.InDelta(t, 2400, concrete.DensityKgPerM3, 1e-9)
	assert.Nil(t, concrete.DefaultThicknessM)

	board, ok := cat.Lookup("Plasterboard")
	require.True(t, ok)
	assert.Equal(t, units.SquareMetre, board.DefaultUnit)
	require.NotNil(t, board.DefaultThicknessM)
	assert.InDelta(t, 0.013, *board.DefaultThicknessM, 1e-9)
}

func TestLookupMatching(t *testing.T) {
	cat := Default()

	_, ok := cat.Lookup("  Timber  ")
	assert.True(t, ok, "surrounding whitespace should be ignored")

	_, ok = cat.Lookup("timber")
	assert.False(t, ok, "labels are case sensitive")

	_, ok = cat.Lookup("Asbestos")
	assert.False(t, ok)
	assert.False(t, cat.Has("Asbestos"))
}

func TestResolveDensity(t *testing.T) {
	cat := Default()
	explicit := 600.0
	zero := 0.0

	got := cat.ResolveDensity("Timber", &explicit)
	require.NotNil(t, got)
	assert.InDelta(t, 600, *got, 1e-9, "explicit density wins")

	got = cat.ResolveDensity("Timber", nil)
	require.NotNil(t, got)
	assert.InDelta(t, 550, *got, 1e-9, "catalogue default applies")

	got = cat.ResolveDensity("Timber", &zero)
	require.NotNil(t, got)
	assert.InDelta(t, 550, *got, 1e-9, "non-positive explicit value is ignored")

	got = cat.ResolveDensity("Unknown Material", nil)
	require.NotNil(t, got)
	assert.InDelta(t, GlobalDefaultDensityKgPerM3, *got, 1e-9, "global fallback applies")
}

func TestResolveThickness(t *testing.T) {
	cat := Default()
	explicit := 0.019

	got := cat.ResolveThickness("Plasterboard", &explicit)
	require.NotNil(t, got)
	assert.InDelta(t, 0.019, *got, 1e-9)

	got = cat.ResolveThickness("Plasterboard", nil)
	require.NotNil(t, got)
	assert.InDelta(t, 0.013, *got, 1e-9)

	assert.Nil(t, cat.ResolveThickness("Concrete", nil), "no thickness fallback for volume materials")
	assert.Nil(t, cat.ResolveThickness("Unknown Material", nil), "no global thickness fallback")
}

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streams.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, `version: "1.2.0"
streams:
  - label: Concrete
    default_unit: M3
    density_kg_per_m3: 2300
  - label: Roofing Membrane
    default_unit: m2
    density_kg_per_m3: 1100
    default_thickness_m: 0.002
`)

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Concrete", "Roofing Membrane"}, cat.Labels())

	concrete, ok := cat.Lookup("Concrete")
	require.True(t, ok)
	assert.Equal(t, units.CubicMetre, concrete.DefaultUnit, "unit spelling is normalized")
	assert.InDelta(t, 2300, concrete.DensityKgPerM3, 1e-9)

	assert.False(t, cat.Has("Timber"), "dataset replaces the built-in catalogue")
}

func TestLoadDatasetVersionGate(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr error
	}{
		{name: "supported minor bump", version: "1.7.3", wantErr: nil},
		{name: "next major rejected", version: "2.0.0", wantErr: ErrUnsupportedVersion},
		{name: "pre-1.0 rejected", version: "0.9.0", wantErr: ErrUnsupportedVersion},
		{name: "garbage version", version: "latest", wantErr: ErrInvalidDataset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDataset(t, `version: "`+tt.version+`"
streams:
  - label: Concrete
    default_unit: m3
    density_kg_per_m3: 2400
`)
			_, err := Load(path)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadDatasetValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing version",
			content: "streams:\n  - label: Concrete\n    default_unit: m3\n    density_kg_per_m3: 2400\n",
		},
		{
			name:    "no streams",
			content: "version: \"1.0.0\"\nstreams: []\n",
		},
		{
			name:    "duplicate label",
			content: "version: \"1.0.0\"\nstreams:\n  - label: Concrete\n    default_unit: m3\n    density_kg_per_m3: 2400\n  - label: Concrete\n    default_unit: m3\n    density_kg_per_m3: 2300\n",
		},
		{
			name:    "unknown unit",
			content: "version: \"1.0.0\"\nstreams:\n  - label: Concrete\n    default_unit: yd3\n    density_kg_per_m3: 2400\n",
		},
		{
			name:    "non-positive density",
			content: "version: \"1.0.0\"\nstreams:\n  - label: Concrete\n    default_unit: m3\n    density_kg_per_m3: 0\n",
		},
		{
			name:    "area material without thickness",
			content: "version: \"1.0.0\"\nstreams:\n  - label: Plasterboard\n    default_unit: m2\n    density_kg_per_m3: 950\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeDataset(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalogue dataset")
}
