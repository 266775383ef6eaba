package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/catalogue"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/units"
)

// PlanStreamAddParams holds the parameters for the plan stream add command.
type PlanStreamAddParams struct {
	ProjectID   string
	Label       string
	Qty         float64
	Unit        string
	Density     float64
	Thickness   float64
	Outcomes    []string
	Handling    string
	FacilityID  string
	DestName    string
	DestAddress string
}

// NewPlanStreamCmd creates the plan stream command group.
func NewPlanStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Manage waste-stream plans within a project",
	}
	cmd.AddCommand(newPlanStreamAddCmd())
	return cmd
}

// newPlanStreamAddCmd creates the plan stream add command. Adding an
// existing stream updates it in place; the category stays unique.
func newPlanStreamAddCmd() *cobra.Command {
	var params PlanStreamAddParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a waste-stream plan",
		Long: `Adds a waste-stream plan to a project, or updates the existing plan
when the label already exists (trimmed-exact match).

A manual quantity is recorded with --qty and --unit; density and thickness
overrides take precedence over the catalogue defaults for the stream.
Outcomes are listed in priority order; the first one drives diversion
statistics.`,
		Example: `  # Record 40 m3 of timber destined for recycling
  wasteplan plan stream add --project riverside-tower --label Timber \
    --qty 40 --unit m3 --outcome recycle --handling separated

  # Route plasterboard to a known facility
  wasteplan plan stream add --project riverside-tower --label Plasterboard \
    --facility f-wgtn-004`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executePlanStreamAdd(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&params.Label, "label", "", "Stream label, e.g. Timber (required)")
	cmd.Flags().Float64Var(&params.Qty, "qty", 0, "Manual quantity value")
	cmd.Flags().StringVar(&params.Unit, "unit", "", "Manual quantity unit (t, kg, m3, L, m2)")
	cmd.Flags().Float64Var(&params.Density, "density", 0, "Density override in kg/m3")
	cmd.Flags().Float64Var(&params.Thickness, "thickness", 0, "Thickness override in metres (m2 quantities)")
	cmd.Flags().StringArrayVar(&params.Outcomes, "outcome", nil,
		"Intended outcome in priority order (repeatable): reuse, recycle, cleanfill, landfill")
	cmd.Flags().StringVar(&params.Handling, "handling", "", "On-site handling: mixed or separated")
	cmd.Flags().StringVar(&params.FacilityID, "facility", "", "Destination facility ID from the directory")
	cmd.Flags().StringVar(&params.DestName, "dest-name", "", "Custom destination name")
	cmd.Flags().StringVar(&params.DestAddress, "dest-address", "", "Custom destination address")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func executePlanStreamAdd(cmd *cobra.Command, params *PlanStreamAddParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}
	label := strings.TrimSpace(params.Label)
	if label == "" {
		return errors.New("--label must not be blank")
	}

	audit := newAuditContext(ctx, "plan stream add", map[string]string{
		"project_id": projectID,
		"stream":     label,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "plan_stream_add").
		Str("project_id", projectID).
		Str("stream", label).
		Msg("adding waste-stream plan")

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

	plans, added := engine.EnsureStream(proj.Plans, label)
	idx := findPlanIndex(plans, label)

	if err := applyStreamFlags(cmd, &plans[idx], params); err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	if err := resolveStreamFacility(ctx, cat, &plans[idx], params.FacilityID); err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	if err := plans[idx].Validate(); err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	eng := engine.New(cat, nil, nil)
	proj.Plans = eng.RecomputeForecastTotals(ctx, plans, proj.Items)

	if err := saveProject(st, proj); err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	log.Info().Ctx(ctx).
		Str("operation", "plan_stream_add").
		Str("project_id", projectID).
		Str("stream", label).
		Bool("created", added).
		Msg("waste-stream plan saved")
	audit.logSuccess(ctx, 1, tonnesOrZero(proj.Plans[idx].ManualQtyTonnes))

	if added {
		cmd.Printf("Stream %s added to project %s\n", label, projectID)
	} else {
		cmd.Printf("Stream %s updated in project %s\n", label, projectID)
	}

	return nil
}

// applyStreamFlags copies the provided flag values onto the plan, leaving
// untouched fields as they were.
func applyStreamFlags(cmd *cobra.Command, plan *engine.WasteStreamPlan, params *PlanStreamAddParams) error {
	if cmd.Flags().Changed("qty") {
		if params.Unit == "" {
			return errors.New("--unit is required with --qty")
		}
		unit, ok := units.ParseUnit(params.Unit)
		if !ok {
			return fmt.Errorf("unknown unit %q", params.Unit)
		}
		qty := &engine.Quantity{Value: params.Qty, Unit: unit}
		if cmd.Flags().Changed("density") {
			qty.DensityKgPerM3 = &params.Density
		}
		if cmd.Flags().Changed("thickness") {
			qty.ThicknessM = &params.Thickness
		}
		plan.ManualQty = qty
	}

	if len(params.Outcomes) > 0 {
		outcomes := make([]engine.Outcome, 0, len(params.Outcomes))
		for _, s := range params.Outcomes {
			outcome, ok := engine.ParseOutcome(s)
			if !ok {
				return fmt.Errorf("unknown outcome %q", s)
			}
			outcomes = append(outcomes, outcome)
		}
		plan.IntendedOutcomes = outcomes
	}

	if params.Handling != "" {
		switch strings.ToLower(params.Handling) {
		case "mixed":
			plan.Handling = engine.HandlingMixed
		case "separated":
			plan.Handling = engine.HandlingSeparated
		default:
			return fmt.Errorf("unknown handling mode %q: expected mixed or separated", params.Handling)
		}
	}

	if params.DestName != "" {
		plan.Destination.Name = params.DestName
		plan.Destination.Address = params.DestAddress
	}

	return nil
}

// resolveStreamFacility validates a --facility reference against the
// directory and records its cached route figures when available.
func resolveStreamFacility(ctx context.Context, cat *catalogue.Catalogue, plan *engine.WasteStreamPlan, facilityID string) error {
	if facilityID == "" {
		return nil
	}

	dir, err := loadDirectory(ctx, cat)
	if err != nil {
		return err
	}
	f, ok := dir.FacilityByID(facilityID)
	if !ok {
		return fmt.Errorf("facility %q not found in directory", facilityID)
	}

	plan.Destination = engine.Destination{FacilityID: f.ID}
	plan.DistanceKm = nil
	plan.DurationMin = nil

	snapshot, err := loadSnapshot(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).
			Msg("route cache unavailable, facility assigned without distance")
		return nil
	}
	if d, ok := snapshot.Lookup(plan.Category, f.ID); ok {
		km, mins := d.Km, d.DurationMin
		plan.DistanceKm = &km
		plan.DurationMin = &mins
	}

	return nil
}

// findPlanIndex returns the index of the plan whose trimmed category
// matches label. EnsureStream guarantees presence.
func findPlanIndex(plans []engine.WasteStreamPlan, label string) int {
	trimmed := strings.TrimSpace(label)
	for i := range plans {
		if strings.TrimSpace(plans[i].Category) == trimmed {
			return i
		}
	}
	return len(plans) - 1
}

func tonnesOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
