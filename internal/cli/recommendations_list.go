package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/store"
)

// RecommendationsListParams holds the parameters for the recommendations
// list command.
type RecommendationsListParams struct {
	ProjectID string
	FilePath  string
	All       bool
	Output    string
}

// recommendationRow is one recommendation with its derived resolution
// state, for rendering.
type recommendationRow struct {
	engine.StrategyRecommendation
	Resolved bool `json:"resolved"`
}

// NewRecommendationsListCmd creates the recommendations list command.
func NewRecommendationsListCmd() *cobra.Command {
	var params RecommendationsListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List strategy recommendations with resolution state",
		Long: `Lists recommendations from a generated recommendations file, checking
each one against the project's current plans.

Resolution is derived fresh on every read: a recommendation is resolved
when its action's postcondition already holds in the plan, so manual
edits count just as much as "recommendations apply". Resolved entries
are hidden unless --all is given.`,
		Example: `  wasteplan recommendations list --project riverside-tower --file recs.json
  wasteplan recommendations list --project riverside-tower --file recs.json --all --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRecommendationsList(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&params.FilePath, "file", "", "Path to recommendations JSON file (required)")
	cmd.Flags().BoolVar(&params.All, "all", false, "Include resolved recommendations")
	cmd.Flags().StringVar(
		&params.Output, "output", config.GetDefaultOutputFormat(), "Output format (table, json, ndjson)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func executeRecommendationsList(cmd *cobra.Command, params *RecommendationsListParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}

	audit := newAuditContext(ctx, "recommendations list", map[string]string{
		"project_id": projectID,
		"file":       params.FilePath,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "recommendations_list").
		Str("project_id", projectID).
		Str("file", params.FilePath).
		Msg("listing recommendations")

	recs, err := store.LoadRecommendations(params.FilePath)
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

	rows := make([]recommendationRow, 0, len(recs))
	open := 0
	for i := range recs {
		resolved := engine.IsResolved(&recs[i], proj.Plans)
		if resolved && !params.All {
			continue
		}
		if !resolved {
			open++
		}
		rows = append(rows, recommendationRow{StrategyRecommendation: recs[i], Resolved: resolved})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Priority != rows[j].Priority {
			return rows[i].Priority < rows[j].Priority
		}
		return rows[i].ID < rows[j].ID
	})

	log.Info().Ctx(ctx).
		Str("operation", "recommendations_list").
		Str("project_id", projectID).
		Int("total_count", len(recs)).
		Int("open_count", open).
		Msg("recommendations listed")
	audit.logSuccess(ctx, len(rows), 0)

	return renderRecommendationRows(cmd.OutOrStdout(), params.Output, rows)
}

// renderRecommendationRows renders recommendations in the requested format.
func renderRecommendationRows(w io.Writer, format string, rows []recommendationRow) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, rows)
	case outputFormatNDJSON:
		return renderNDJSON(w, rows)
	default:
		return renderRecommendationTable(w, rows)
	}
}

func renderRecommendationTable(w io.Writer, rows []recommendationRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No open recommendations")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRI\tSTREAM\tACTION\tSTATUS\tIMPACT (t)\tSUMMARY")
	fmt.Fprintln(tw, "--\t---\t------\t------\t------\t----------\t-------")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			row.ID,
			row.Priority,
			valueOrDash(row.Category),
			actionLabel(row.Action),
			resolvedMarker(row.Resolved),
			impactLabel(row.EstimatedImpact),
			truncateSummary(row.Summary))
	}
	return tw.Flush()
}

func actionLabel(action *engine.ApplyAction) string {
	if action == nil {
		return "(informational)"
	}
	return action.Type.String()
}

func impactLabel(impact *engine.Impact) string {
	if impact == nil {
		return "-"
	}
	return formatTonnes(impact.Tonnes)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncateSummary(summary string) string {
	const maxSummaryLen = 60
	if len(summary) > maxSummaryLen {
		return summary[:maxSummaryLen-3] + "..."
	}
	return summary
}
