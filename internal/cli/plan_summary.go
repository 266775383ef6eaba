package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/equivalency"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// exitCodeDiversionBelowTarget is the default exit code when a project's
// diversion rate falls below the --min-diversion target.
const exitCodeDiversionBelowTarget = 2

// PlanSummaryParams holds the parameters for the plan summary command.
type PlanSummaryParams struct {
	ProjectID    string
	Stream       string
	MinDiversion float64
	ExitCode     int
	Output       string
}

// NewPlanSummaryCmd creates the plan summary command for computing
// diversion statistics.
func NewPlanSummaryCmd() *cobra.Command {
	var params PlanSummaryParams

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compute diversion statistics for a project",
		Long: `Computes the project's waste diversion summary: total quantified
tonnage, diversion rate (first outcome Reuse or Recycle) and landfill
avoidance rate (adds Cleanfill).

Streams that cannot be quantified are excluded from every figure and
listed separately, so a data gap is visible instead of silently read as
zero. Use --stream to restrict the summary to a single stream.

With --min-diversion the command exits non-zero when the diversion rate
is below the target, so CI pipelines can gate on it. Setting
--exit-code 0 downgrades the violation to a warning.`,
		Example: `  wasteplan plan summary --project riverside-tower
  wasteplan plan summary --project riverside-tower --stream Timber
  wasteplan plan summary --project riverside-tower --min-diversion 70
  wasteplan plan summary --project riverside-tower --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executePlanSummary(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&params.Stream, "stream", "", "Restrict the summary to one stream label")
	cmd.Flags().Float64Var(&params.MinDiversion, "min-diversion", 0,
		"Fail when the diversion rate is below this percentage (0 disables the gate)")
	cmd.Flags().IntVar(&params.ExitCode, "exit-code", exitCodeDiversionBelowTarget,
		"Exit code for --min-diversion violations (0 warns without failing)")
	cmd.Flags().StringVar(
		&params.Output, "output", config.GetDefaultOutputFormat(), "Output format (table, json, ndjson)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func executePlanSummary(cmd *cobra.Command, params *PlanSummaryParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}

	audit := newAuditContext(ctx, "plan summary", map[string]string{
		"project_id": projectID,
		"stream":     params.Stream,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "plan_summary").
		Str("project_id", projectID).
		Str("stream", params.Stream).
		Msg("computing diversion summary")

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

	plans := proj.Plans
	if params.Stream != "" {
		plans, err = filterPlansByStream(plans, params.Stream)
		if err != nil {
			audit.logFailure(ctx, err)
			return err
		}
	}

	eng := engine.New(cat, nil, nil)
	summary := eng.ComputeDiversion(ctx, plans)

	log.Info().Ctx(ctx).
		Str("operation", "plan_summary").
		Str("project_id", projectID).
		Float64("total_tonnes", summary.TotalTonnes).
		Float64("diversion_pct", summary.DiversionPct).
		Msg("diversion summary computed")
	audit.logSuccess(ctx, len(summary.Streams), summary.TotalTonnes)

	if err := renderDiversionSummary(cmd.OutOrStdout(), params.Output, projectID, &summary); err != nil {
		return err
	}

	return checkDiversionExit(cmd, &summary, params.MinDiversion, params.ExitCode)
}

// DiversionExitError is a sentinel error that carries an exit code for
// diversion-target violations. It is used to communicate the exit code
// from the summary gate to the CLI layer.
type DiversionExitError struct {
	ExitCode int
	Reason   string
}

func (e *DiversionExitError) Error() string {
	return e.Reason
}

// checkDiversionExit evaluates whether the CLI should exit because the
// project's diversion rate is below the requested target. It returns a
// DiversionExitError when the gate trips, or nil when no gate is set or
// the target is met.
func checkDiversionExit(cmd *cobra.Command, summary *engine.DiversionSummary, minDiversion float64, exitCode int) error {
	if minDiversion <= 0 {
		return nil
	}
	if summary.DiversionPct >= minDiversion {
		return nil
	}

	reason := fmt.Sprintf("diversion rate %.1f%% is below the %.1f%% target",
		summary.DiversionPct, minDiversion)

	// Warning-only mode: exit code 0 means log warning but don't fail.
	if exitCode == 0 {
		cmd.PrintErrf("WARNING: %s\n", reason)
		return nil
	}

	return &DiversionExitError{
		ExitCode: exitCode,
		Reason:   reason,
	}
}

// filterPlansByStream restricts plans to the one whose trimmed category
// matches label.
func filterPlansByStream(plans []engine.WasteStreamPlan, label string) ([]engine.WasteStreamPlan, error) {
	trimmed := strings.TrimSpace(label)
	for i := range plans {
		if strings.TrimSpace(plans[i].Category) == trimmed {
			return plans[i : i+1], nil
		}
	}
	return nil, fmt.Errorf("stream %q not found in project", label)
}

// renderDiversionSummary renders the diversion summary in the requested
// format.
func renderDiversionSummary(w io.Writer, format, projectID string, summary *engine.DiversionSummary) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, summary)
	case outputFormatNDJSON:
		return renderNDJSON(w, summary.Streams)
	default:
		return renderDiversionSummaryTable(w, projectID, summary)
	}
}

func renderDiversionSummaryTable(w io.Writer, projectID string, summary *engine.DiversionSummary) error {
	fmt.Fprintf(w, "Waste Diversion Summary: %s\n", projectID)
	fmt.Fprintln(w, "=========================")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total quantified:  %s t\n", formatTonnes(summary.TotalTonnes))
	fmt.Fprintf(w, "Diverted:          %s t (%s)\n",
		formatTonnes(summary.DivertedTonnes), formatPercent(summary.DiversionPct))
	fmt.Fprintf(w, "Landfill avoided:  %s t (%s)\n",
		formatTonnes(summary.LandfillAvoidedTonnes), formatPercent(summary.LandfillAvoidancePct))
	if eq, eqErr := equivalency.Calculate(equivalency.TonnageInput{
		Value: summary.DivertedTonnes,
		Unit:  "t",
	}); eqErr == nil && !eq.IsEmpty {
		fmt.Fprintf(w, "%s\n", eq.DisplayText)
	}
	fmt.Fprintln(w)

	if len(summary.Streams) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "STREAM\tMANUAL (t)\tFORECAST (t)\tTOTAL (t)\tOUTCOME\tDIVERTED")
		fmt.Fprintln(tw, "------\t----------\t------------\t---------\t-------\t--------")
		for _, s := range summary.Streams {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.Category,
				formatTonnes(s.ManualTonnes),
				formatTonnes(s.ForecastTonnes),
				formatTonnes(s.TotalTonnes),
				s.Outcome.String(),
				divertedMarker(s.Diverted))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(summary.MissingThicknessStreams) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Streams missing thickness: %s\n",
			strings.Join(summary.MissingThicknessStreams, ", "))
	}
	if len(summary.MissingQuantityStreams) > 0 {
		if len(summary.MissingThicknessStreams) == 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Streams missing quantity: %s\n",
			strings.Join(summary.MissingQuantityStreams, ", "))
	}

	return nil
}

func divertedMarker(diverted bool) string {
	if diverted {
		return "yes"
	}
	return "no"
}
