package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/routecache"
)

// snapshotRoutes reads the route cache back from its default location
// under home.
func snapshotRoutes(t *testing.T, home string) map[string]float64 {
	t.Helper()
	rc, err := routecache.Open(filepath.Join(home, "routes.db"))
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	snapshot, err := rc.Snapshot(context.Background())
	require.NoError(t, err)

	out := make(map[string]float64, len(snapshot))
	for key, d := range snapshot {
		out[key.Stream+"/"+key.FacilityID] = d.Km
	}
	return out
}

// TestDistancesImport_SeedsCache verifies imported tuples land in the
// route cache at the default path.
func TestDistancesImport_SeedsCache(t *testing.T) {
	home := setupCLITest(t)

	entries := []routecache.Entry{
		{Stream: "Timber", FacilityID: "f-wgtn-001", DistanceKm: 12.5, DurationMin: 24},
		{Stream: "Concrete", FacilityID: "f-akl-001", DistanceKm: 3.2, DurationMin: 9},
	}
	path := writeJSONFile(t, home, "distances.json", entries)

	output, err := runCommand(t, "distances", "import", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Imported 2 route distances into")

	routes := snapshotRoutes(t, home)
	require.Len(t, routes, 2)
	assert.InDelta(t, 12.5, routes["Timber/f-wgtn-001"], 1e-9)
	assert.InDelta(t, 3.2, routes["Concrete/f-akl-001"], 1e-9)
}

// TestDistancesImport_LastWriterWins verifies a re-import overwrites the
// figures for an existing stream/facility pair.
func TestDistancesImport_LastWriterWins(t *testing.T) {
	home := setupCLITest(t)

	first := writeJSONFile(t, home, "first.json", []routecache.Entry{
		{Stream: "Timber", FacilityID: "f-wgtn-001", DistanceKm: 12.5, DurationMin: 24},
	})
	_, err := runCommand(t, "distances", "import", "--file", first)
	require.NoError(t, err)

	second := writeJSONFile(t, home, "second.json", []routecache.Entry{
		{Stream: "Timber", FacilityID: "f-wgtn-001", DistanceKm: 7.5, DurationMin: 16},
	})
	_, err = runCommand(t, "distances", "import", "--file", second)
	require.NoError(t, err)

	routes := snapshotRoutes(t, home)
	require.Len(t, routes, 1)
	assert.InDelta(t, 7.5, routes["Timber/f-wgtn-001"], 1e-9)
}

// TestDistancesImport_InvalidEntryRejectsWholeBatch verifies one bad tuple
// fails the import and leaves the cache untouched.
func TestDistancesImport_InvalidEntryRejectsWholeBatch(t *testing.T) {
	home := setupCLITest(t)

	path := writeJSONFile(t, home, "distances.json", []routecache.Entry{
		{Stream: "Timber", FacilityID: "f-wgtn-001", DistanceKm: 12.5, DurationMin: 24},
		{Stream: "Timber", FacilityID: "f-wgtn-002", DistanceKm: -4, DurationMin: 10},
	})

	_, err := runCommand(t, "distances", "import", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid distance")

	assert.Empty(t, snapshotRoutes(t, home), "a failed import must not leave partial rows")
}

// TestDistancesImport_MalformedFile verifies non-JSON input is reported as
// a parse error.
func TestDistancesImport_MalformedFile(t *testing.T) {
	home := setupCLITest(t)

	path := filepath.Join(home, "distances.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := runCommand(t, "distances", "import", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing distances file")
}

// TestDistancesImport_MissingFile verifies a missing input file is
// reported as a read error.
func TestDistancesImport_MissingFile(t *testing.T) {
	home := setupCLITest(t)

	_, err := runCommand(t, "distances", "import",
		"--file", filepath.Join(home, "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading distances file")
}
