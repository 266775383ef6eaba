package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// PlanRecomputeParams holds the parameters for the plan recompute command.
type PlanRecomputeParams struct {
	ProjectID string
	All       bool
	Output    string
}

// recomputeRow reports the refreshed totals for one project.
type recomputeRow struct {
	ProjectID      string  `json:"project_id"`
	StreamCount    int     `json:"stream_count"`
	ItemCount      int     `json:"item_count"`
	ForecastTonnes float64 `json:"forecast_tonnes"`
}

// NewPlanRecomputeCmd creates the plan recompute command for refreshing
// cached conversions and forecast totals.
func NewPlanRecomputeCmd() *cobra.Command {
	var params PlanRecomputeParams

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute conversions and forecast totals",
		Long: `Re-runs item conversion and per-stream forecast aggregation over the
complete plan and item sets, overwriting every cached total.

Recomputing is idempotent: running it twice yields identical state. Use
--all to refresh every project, fanned out across CPUs.`,
		Example: `  wasteplan plan recompute --project riverside-tower
  wasteplan plan recompute --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executePlanRecompute(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID")
	cmd.Flags().BoolVar(&params.All, "all", false, "Recompute every project in the store")
	cmd.Flags().StringVar(
		&params.Output, "output", config.GetDefaultOutputFormat(), "Output format (table, json, ndjson)")

	return cmd
}

func executePlanRecompute(cmd *cobra.Command, params *PlanRecomputeParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if params.All == (params.ProjectID != "") {
		return errors.New("exactly one of --project or --all is required")
	}

	audit := newAuditContext(ctx, "plan recompute", map[string]string{
		"project_id": params.ProjectID,
		"all":        fmt.Sprintf("%t", params.All),
	})

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

	var projects []*engine.Project
	if params.All {
		projects = st.Projects()
	} else {
		proj, err := getProject(st, params.ProjectID)
		if err != nil {
			audit.logFailure(ctx, err)
			return err
		}
		projects = []*engine.Project{proj}
	}

	log.Debug().Ctx(ctx).
		Str("operation", "plan_recompute").
		Int("project_count", len(projects)).
		Msg("recomputing forecast totals")

	eng := engine.New(cat, nil, nil)
	rows := recomputeProjectsParallel(ctx, eng, projects)

	for _, proj := range projects {
		if err := st.Put(proj); err != nil {
			audit.logFailure(ctx, err)
			return fmt.Errorf("storing project %s: %w", proj.ID, err)
		}
	}
	if err := st.Save(); err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("saving project store: %w", err)
	}

	var totalTonnes float64
	for _, row := range rows {
		totalTonnes += row.ForecastTonnes
	}

	log.Info().Ctx(ctx).
		Str("operation", "plan_recompute").
		Int("project_count", len(rows)).
		Float64("forecast_tonnes", totalTonnes).
		Msg("recompute complete")
	audit.logSuccess(ctx, len(rows), totalTonnes)

	return renderRecomputeRows(cmd.OutOrStdout(), params.Output, rows)
}

// recomputeProjectsParallel refreshes each project's conversions and
// totals concurrently. Computation is pure per project, so a bounded
// errgroup with one goroutine per project is safe; the store write
// happens afterwards on the caller's goroutine.
func recomputeProjectsParallel(ctx context.Context, eng *engine.Engine, projects []*engine.Project) []recomputeRow {
	var mu sync.Mutex
	rows := make([]recomputeRow, 0, len(projects))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, proj := range projects {
		proj := proj
		g.Go(func() error {
			proj.Items = eng.ConvertItems(gCtx, proj.Items)
			proj.Plans = eng.RecomputeForecastTotals(gCtx, proj.Plans, proj.Items)

			mu.Lock()
			rows = append(rows, recomputeRow{
				ProjectID:      proj.ID,
				StreamCount:    len(proj.Plans),
				ItemCount:      len(proj.Items),
				ForecastTonnes: totalForecastTonnes(proj.Plans),
			})
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ProjectID < rows[j].ProjectID
	})

	return rows
}

// renderRecomputeRows renders per-project recompute results.
func renderRecomputeRows(w io.Writer, format string, rows []recomputeRow) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, rows)
	case outputFormatNDJSON:
		return renderNDJSON(w, rows)
	default:
		return renderRecomputeTable(w, rows)
	}
}

func renderRecomputeTable(w io.Writer, rows []recomputeRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No projects to recompute")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tSTREAMS\tITEMS\tFORECAST (t)")
	fmt.Fprintln(tw, "-------\t-------\t-----\t------------")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
			row.ProjectID, row.StreamCount, row.ItemCount, formatTonnes(row.ForecastTonnes))
	}
	return tw.Flush()
}
