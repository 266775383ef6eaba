package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/routecache"
)

// DistancesImportParams holds the parameters for the distances import
// command.
type DistancesImportParams struct {
	FilePath string
}

// NewDistancesImportCmd creates the distances import command for loading
// pre-computed route figures into the cache.
func NewDistancesImportCmd() *cobra.Command {
	var params DistancesImportParams

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import pre-computed route distances",
		Long: `Loads route figures from a JSON file into the local route cache.

The file holds a JSON array of tuples with stream, facility_id,
distance_km, duration_min and an optional computed_at timestamp. The
import upserts per stream/facility pair, last writer winning, in a
single transaction. Route distances are never computed by wasteplan
itself; this cache is the only distance source.`,
		Example: `  wasteplan distances import --file distances.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeDistancesImport(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.FilePath, "file", "", "Path to route distances JSON file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func executeDistancesImport(cmd *cobra.Command, params *DistancesImportParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	audit := newAuditContext(ctx, "distances import", map[string]string{
		"file": params.FilePath,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "distances_import").
		Str("file", params.FilePath).
		Msg("importing route distances")

	data, err := os.ReadFile(params.FilePath) //nolint:gosec // Path comes from an explicit CLI flag.
	if err != nil {
		err = fmt.Errorf("reading distances file: %w", err)
		audit.logFailure(ctx, err)
		return err
	}

	var entries []routecache.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		err = fmt.Errorf("parsing distances file %s: %w", params.FilePath, err)
		audit.logFailure(ctx, err)
		return err
	}

	path, err := config.DistancesPath()
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	rc, err := routecache.Open(path)
	if err != nil {
		err = fmt.Errorf("opening route cache: %w", err)
		audit.logFailure(ctx, err)
		return err
	}
	defer func() { _ = rc.Close() }()

	if err := rc.Put(ctx, entries); err != nil {
		err = fmt.Errorf("importing route distances: %w", err)
		audit.logFailure(ctx, err)
		return err
	}

	log.Info().Ctx(ctx).
		Str("operation", "distances_import").
		Int("entry_count", len(entries)).
		Str("cache_path", path).
		Msg("route distances imported")
	audit.logSuccess(ctx, len(entries), 0)

	cmd.Printf("Imported %d route distances into %s\n", len(entries), path)

	return nil
}
