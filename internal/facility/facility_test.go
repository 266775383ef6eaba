package facility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/catalogue"
)

func testPartners() []Partner {
	return []Partner{
		{ID: "p-enviro", Name: "EnviroSort Ltd"},
		{ID: "p-greenway", Name: "Greenway Recovery"},
	}
}

func testFacilities() []Facility {
	return []Facility{
		{
			ID: "f-003", PartnerID: "p-enviro", Name: "Seaview Resource Recovery",
			Region: "Wellington", AcceptedStreams: []string{"Timber", "Metals", "Plasterboard"},
		},
		{
			ID: "f-001", PartnerID: "p-greenway", Name: "Ngauranga Transfer Station",
			Region: "Wellington", AcceptedStreams: []string{"Timber", "Mixed C&D"},
		},
		{
			ID: "f-002", PartnerID: "p-enviro", Name: "Southern Landfill",
			Region: "wellington", AcceptedStreams: []string{"Mixed C&D", "Cleanfill"},
		},
		{
			ID: "f-100", PartnerID: "p-greenway", Name: "Wiri Processing",
			Region: "Auckland", AcceptedStreams: []string{"Timber", "Concrete"},
		},
	}
}

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := NewDirectory(catalogue.Default(), testFacilities(), testPartners())
	require.NoError(t, err)
	return dir
}

func TestNewDirectoryValidation(t *testing.T) {
	cat := catalogue.Default()

	tests := []struct {
		name       string
		facilities []Facility
		partners   []Partner
		wantErr    error
	}{
		{
			name: "duplicate facility ID",
			facilities: []Facility{
				{ID: "f-1", Region: "Wellington", AcceptedStreams: []string{"Timber"}},
				{ID: "f-1", Region: "Wellington", AcceptedStreams: []string{"Timber"}},
			},
			wantErr: ErrInvalidDataset,
		},
		{
			name: "missing region",
			facilities: []Facility{
				{ID: "f-1", AcceptedStreams: []string{"Timber"}},
			},
			wantErr: ErrInvalidDataset,
		},
		{
			name: "no accepted streams",
			facilities: []Facility{
				{ID: "f-1", Region: "Wellington"},
			},
			wantErr: ErrInvalidDataset,
		},
		{
			name: "unknown partner reference",
			facilities: []Facility{
				{ID: "f-1", PartnerID: "p-ghost", Region: "Wellington", AcceptedStreams: []string{"Timber"}},
			},
			wantErr: ErrInvalidDataset,
		},
		{
			name: "stream outside catalogue vocabulary",
			facilities: []Facility{
				{ID: "f-1", Region: "Wellington", AcceptedStreams: []string{"Asbestos"}},
			},
			wantErr: catalogue.ErrUnknownStream,
		},
		{
			name: "duplicate partner ID",
			partners: []Partner{
				{ID: "p-1", Name: "One"},
				{ID: "p-1", Name: "Two"},
			},
			wantErr: ErrInvalidDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirectory(cat, tt.facilities, tt.partners)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFacilitiesFor(t *testing.T) {
	dir := newTestDirectory(t)

	t.Run("region is case insensitive", func(t *testing.T) {
		got, err := dir.FacilitiesFor("", "WELLINGTON", "Mixed C&D")
		require.NoError(t, err)
		ids := facilityIDs(got)
		assert.ElementsMatch(t, []string{"f-001", "f-002"}, ids)
	})

	t.Run("stream is case sensitive", func(t *testing.T) {
		got, err := dir.FacilitiesFor("", "Wellington", "Timber")
		require.NoError(t, err)
		assert.Len(t, got, 2)

		// "timber" is not in the vocabulary at all, so it errors rather
		// than silently matching nothing.
		_, err = dir.FacilitiesFor("", "Wellington", "timber")
		assert.ErrorIs(t, err, catalogue.ErrUnknownStream)
	})

	t.Run("partner filter applies last", func(t *testing.T) {
		got, err := dir.FacilitiesFor("p-greenway", "Wellington", "Timber")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "f-001", got[0].ID)
	})

	t.Run("empty partner matches all", func(t *testing.T) {
		got, err := dir.FacilitiesFor("", "Wellington", "Timber")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("no facilities in region is empty not error", func(t *testing.T) {
		got, err := dir.FacilitiesFor("", "Dunedin", "Timber")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown stream label", func(t *testing.T) {
		_, err := dir.FacilitiesFor("", "Wellington", "Asbestos")
		assert.ErrorIs(t, err, catalogue.ErrUnknownStream)
	})
}

func TestFacilityByID(t *testing.T) {
	dir := newTestDirectory(t)

	f, ok := dir.FacilityByID("f-002")
	require.True(t, ok)
	assert.Equal(t, "Southern Landfill", f.Name)

	_, ok = dir.FacilityByID("f-404")
	assert.False(t, ok)
}

func TestDirectoryReturnsCopies(t *testing.T) {
	dir := newTestDirectory(t)

	got, err := dir.FacilitiesFor("", "Wellington", "Timber")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	got[0].AcceptedStreams[0] = "Tampered"

	again, err := dir.FacilitiesFor("", "Wellington", "Timber")
	require.NoError(t, err)
	assert.NotEqual(t, "Tampered", again[0].AcceptedStreams[0])
}

func facilityIDs(facilities []Facility) []string {
	ids := make([]string, len(facilities))
	for i, f := range facilities {
		ids[i] = f.ID
	}
	return ids
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facilities.yaml")
	content := `version: "1.1.0"
partners:
  - id: p-enviro
    name: EnviroSort Ltd
facilities:
  - id: f-001
    partner_id: p-enviro
    name: Seaview Resource Recovery
    region: Wellington
    address: 10 Port Rd
    accepted_streams: [Timber, Metals]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	dir, err := Load(path, catalogue.Default())
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", dir.Version())

	f, ok := dir.FacilityByID("f-001")
	require.True(t, ok)
	assert.Equal(t, []string{"Timber", "Metals"}, f.AcceptedStreams)
}

func TestLoadDatasetVersionGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facilities.yaml")
	content := `version: "2.0.0"
facilities:
  - id: f-001
    name: Somewhere
    region: Wellington
    accepted_streams: [Timber]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path, catalogue.Default())
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
