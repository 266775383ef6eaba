package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// PlanImportParams holds the parameters for the plan import command.
type PlanImportParams struct {
	ProjectID string
	ItemsPath string
	Replace   bool
}

// NewPlanImportCmd creates the plan import command for loading forecast
// items from a JSON file.
func NewPlanImportCmd() *cobra.Command {
	var params PlanImportParams

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import forecast items from a JSON file",
		Long: `Imports purchased line items from a procurement forecast export and
recomputes every stream's forecast total.

The file holds a JSON array of items with id, material_type, quantity,
unit and excess_percent fields. Imported items append to the project's
existing items; a duplicate item ID is an error so a re-run can never
double tonnage silently. Use --replace to discard the existing items
first.

Items without a waste_stream_key stay unallocated and contribute to no
stream until "plan allocate" assigns them.`,
		Example: `  # Append items from a forecast export
  wasteplan plan import --project riverside-tower --items forecast.json

  # Reload the full forecast from scratch
  wasteplan plan import --project riverside-tower --items forecast.json --replace`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executePlanImport(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&params.ItemsPath, "items", "", "Path to forecast items JSON file (required)")
	cmd.Flags().BoolVar(&params.Replace, "replace", false, "Discard existing items before importing")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func executePlanImport(cmd *cobra.Command, params *PlanImportParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}

	audit := newAuditContext(ctx, "plan import", map[string]string{
		"project_id": projectID,
		"items_path": params.ItemsPath,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "plan_import").
		Str("project_id", projectID).
		Str("items_path", params.ItemsPath).
		Bool("replace", params.Replace).
		Msg("importing forecast items")

	imported, err := loadForecastItems(params.ItemsPath)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	cat, err := loadCatalogue(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	st, err := openProjectStore(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	proj, err := getProject(st, projectID)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	items := proj.Items
	if params.Replace {
		items = nil
	}
	items, err = appendItems(items, imported)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	eng := engine.New(cat, nil, nil)
	proj.Items = eng.ConvertItems(ctx, items)
	proj.Plans = eng.RecomputeForecastTotals(ctx, proj.Plans, proj.Items)

	if err := saveProject(st, proj); err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	unallocated, unconverted := countItemGaps(proj.Items)

	log.Info().Ctx(ctx).
		Str("operation", "plan_import").
		Str("project_id", projectID).
		Int("imported_count", len(imported)).
		Int("item_count", len(proj.Items)).
		Int("unallocated_count", unallocated).
		Msg("forecast items imported")
	audit.logSuccess(ctx, len(imported), totalForecastTonnes(proj.Plans))

	cmd.Printf("Imported %d items into project %s (%d total)\n", len(imported), projectID, len(proj.Items))
	if unallocated > 0 {
		cmd.Printf("%d items are unallocated; run \"wasteplan plan allocate --project %s\"\n",
			unallocated, projectID)
	}
	if unconverted > 0 {
		cmd.Printf("%d items need conversion metadata and contribute no tonnage\n", unconverted)
	}

	return nil
}

// loadForecastItems reads and validates a forecast items JSON file.
func loadForecastItems(path string) ([]engine.ForecastItem, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from an explicit CLI flag.
	if err != nil {
		return nil, fmt.Errorf("reading items file: %w", err)
	}

	var items []engine.ForecastItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing items file %s: %w", path, err)
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, items[i].ID, err)
		}
	}

	return items, nil
}

// appendItems merges imported items onto the existing set, rejecting
// duplicate IDs.
func appendItems(existing, imported []engine.ForecastItem) ([]engine.ForecastItem, error) {
	seen := make(map[string]bool, len(existing)+len(imported))
	for _, item := range existing {
		seen[item.ID] = true
	}

	merged := make([]engine.ForecastItem, 0, len(existing)+len(imported))
	merged = append(merged, existing...)
	for _, item := range imported {
		if seen[item.ID] {
			return nil, fmt.Errorf("duplicate item ID %q: already present, use --replace to reload", item.ID)
		}
		seen[item.ID] = true
		merged = append(merged, item)
	}

	return merged, nil
}

// countItemGaps counts unallocated items and items missing conversion
// metadata.
func countItemGaps(items []engine.ForecastItem) (unallocated, unconverted int) {
	for i := range items {
		if items[i].WasteStreamKey == "" {
			unallocated++
			continue
		}
		if items[i].ComputedWasteKg == nil {
			unconverted++
		}
	}
	return unallocated, unconverted
}

// totalForecastTonnes sums forecast tonnage across plans for audit logging.
func totalForecastTonnes(plans []engine.WasteStreamPlan) float64 {
	var total float64
	for i := range plans {
		total += tonnesOrZero(plans[i].ForecastQtyTonnes)
	}
	return total
}
