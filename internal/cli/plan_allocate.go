package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// PlanAllocateParams holds the parameters for the plan allocate command.
type PlanAllocateParams struct {
	ProjectID string
	Output    string
}

// allocationRow reports the allocation decision for one forecast item.
type allocationRow struct {
	ItemID       string `json:"item_id"`
	MaterialType string `json:"material_type"`
	Stream       string `json:"stream,omitempty"`
	Allocated    bool   `json:"allocated"`
}

// NewPlanAllocateCmd creates the plan allocate command for assigning
// unallocated forecast items to waste streams.
func NewPlanAllocateCmd() *cobra.Command {
	var params PlanAllocateParams

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate unallocated forecast items to waste streams",
		Long: `Matches each unallocated forecast item's material type against the
project's existing stream labels using the fixed material priority table,
then recomputes forecast totals.

Items whose material type is unknown, or whose candidate streams are not
present in the project, stay unallocated. Allocation never guesses and
never creates streams; add missing streams with "plan stream add" first.`,
		Example: `  wasteplan plan allocate --project riverside-tower
  wasteplan plan allocate --project riverside-tower --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executePlanAllocate(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(
		&params.Output, "output", config.GetDefaultOutputFormat(), "Output format (table, json, ndjson)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func executePlanAllocate(cmd *cobra.Command, params *PlanAllocateParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}

	audit := newAuditContext(ctx, "plan allocate", map[string]string{
		"project_id": projectID,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "plan_allocate").
		Str("project_id", projectID).
		Msg("allocating forecast items")

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

	labels := make([]string, 0, len(proj.Plans))
	for i := range proj.Plans {
		labels = append(labels, proj.Plans[i].Category)
	}

	rows := make([]allocationRow, 0, len(proj.Items))
	allocated := 0
	for i := range proj.Items {
		item := &proj.Items[i]
		if item.WasteStreamKey != "" {
			continue
		}
		stream, ok := engine.MatchMaterialToStream(item.MaterialType, labels)
		if ok {
			item.WasteStreamKey = stream
			allocated++
		}
		rows = append(rows, allocationRow{
			ItemID:       item.ID,
			MaterialType: item.MaterialType,
			Stream:       stream,
			Allocated:    ok,
		})
	}

	eng := engine.New(cat, nil, nil)
	proj.Items = eng.ConvertItems(ctx, proj.Items)
	proj.Plans = eng.RecomputeForecastTotals(ctx, proj.Plans, proj.Items)

	if err := saveProject(st, proj); err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	log.Info().Ctx(ctx).
		Str("operation", "plan_allocate").
		Str("project_id", projectID).
		Int("allocated_count", allocated).
		Int("unallocated_count", len(rows)-allocated).
		Msg("allocation complete")
	audit.logSuccess(ctx, allocated, totalForecastTonnes(proj.Plans))

	return renderAllocationRows(cmd.OutOrStdout(), params.Output, rows)
}

// renderAllocationRows renders allocation decisions in the requested format.
func renderAllocationRows(w io.Writer, format string, rows []allocationRow) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, rows)
	case outputFormatNDJSON:
		return renderNDJSON(w, rows)
	default:
		return renderAllocationTable(w, rows)
	}
}

func renderAllocationTable(w io.Writer, rows []allocationRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No unallocated items")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tMATERIAL\tSTREAM")
	fmt.Fprintln(tw, "----\t--------\t------")
	for _, row := range rows {
		stream := row.Stream
		if !row.Allocated {
			stream = "(unallocated)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.ItemID, row.MaterialType, stream)
	}
	return tw.Flush()
}
