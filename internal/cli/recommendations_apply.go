package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/store"
)

// RecommendationsApplyParams holds the parameters for the recommendations
// apply command.
type RecommendationsApplyParams struct {
	ProjectID string
	FilePath  string
	RecID     string
	DryRun    bool
	Yes       bool
}

// NewRecommendationsApplyCmd creates the recommendations apply command.
func NewRecommendationsApplyCmd() *cobra.Command {
	var params RecommendationsApplyParams

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a strategy recommendation to a project",
		Long: `Applies one recommendation's action to the project plan and
recomputes totals.

Applying is idempotent: re-applying an already-resolved recommendation
leaves the plan unchanged. A set_facility action with no facility in the
payload picks the nearest eligible facility for the project's region and
partner scope from the route cache.

--dry-run prints a unified diff of the project state instead of saving.
Interactive runs confirm before writing; pass --yes to skip the prompt.`,
		Example: `  # Preview the change
  wasteplan recommendations apply --project riverside-tower --file recs.json --id rec-001 --dry-run

  # Apply unattended
  wasteplan recommendations apply --project riverside-tower --file recs.json --id rec-001 --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRecommendationsApply(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&params.FilePath, "file", "", "Path to recommendations JSON file (required)")
	cmd.Flags().StringVar(&params.RecID, "id", "", "Recommendation ID to apply (required)")
	cmd.Flags().BoolVar(&params.DryRun, "dry-run", false, "Show the resulting change without saving")
	cmd.Flags().BoolVar(&params.Yes, "yes", false, "Apply without confirmation")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func executeRecommendationsApply(cmd *cobra.Command, params *RecommendationsApplyParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}

	audit := newAuditContext(ctx, "recommendations apply", map[string]string{
		"project_id":        projectID,
		"recommendation_id": params.RecID,
		"dry_run":           fmt.Sprintf("%t", params.DryRun),
	})

	log.Debug().Ctx(ctx).
		Str("operation", "recommendations_apply").
		Str("project_id", projectID).
		Str("recommendation_id", params.RecID).
		Bool("dry_run", params.DryRun).
		Msg("applying recommendation")

	recs, err := store.LoadRecommendations(params.FilePath)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	rec, err := findRecommendation(recs, params.RecID)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	eng, st, proj, err := loadApplyDependencies(ctx, projectID)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	updated, err := eng.ApplyRecommendation(ctx, rec, proj)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("applying recommendation %s: %w", rec.ID, err)
	}

	// Apply may have created a stream; refresh the derived totals too.
	updated.Items = eng.ConvertItems(ctx, updated.Items)
	updated.Plans = eng.RecomputeForecastTotals(ctx, updated.Plans, updated.Items)

	if params.DryRun {
		diff, err := projectDiff(proj, updated)
		if err != nil {
			audit.logFailure(ctx, err)
			return err
		}
		audit.logSuccess(ctx, 0, 0)
		if diff == "" {
			cmd.Printf("Recommendation %s is already satisfied; no changes\n", rec.ID)
			return nil
		}
		cmd.Print(diff)
		return nil
	}

	if !params.Yes {
		result := ConfirmApply(cmd.OutOrStdout(), cmd.InOrStdin(), rec.ID, projectID)
		if !result.Accepted {
			cmd.Println("Aborted")
			audit.logFailure(ctx, fmt.Errorf("apply of %s declined", rec.ID))
			return nil
		}
	}

	if err := saveProject(st, updated); err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	resolved := engine.IsResolved(rec, updated.Plans)

	log.Info().Ctx(ctx).
		Str("operation", "recommendations_apply").
		Str("project_id", projectID).
		Str("recommendation_id", rec.ID).
		Bool("resolved", resolved).
		Msg("recommendation applied")
	audit.logSuccess(ctx, 1, 0)

	cmd.Printf("Recommendation %s applied to project %s\n", rec.ID, projectID)
	if resolved {
		cmd.Println("Status: resolved")
	}

	return nil
}

// loadApplyDependencies assembles the engine with the full dataset stack
// (catalogue, directory, distance snapshot) plus the project to change.
func loadApplyDependencies(ctx context.Context, projectID string) (*engine.Engine, *store.Store, *engine.Project, error) {
	cat, err := loadCatalogue(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	dir, err := loadDirectory(ctx, cat)
	if err != nil {
		return nil, nil, nil, err
	}
	snapshot, err := loadSnapshot(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := openProjectStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	proj, err := getProject(st, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	return engine.New(cat, dir, snapshot), st, proj, nil
}

// findRecommendation locates a recommendation by ID.
func findRecommendation(recs []engine.StrategyRecommendation, id string) (*engine.StrategyRecommendation, error) {
	trimmed := strings.TrimSpace(id)
	for i := range recs {
		if recs[i].ID == trimmed {
			return &recs[i], nil
		}
	}
	return nil, fmt.Errorf("recommendation %q not found in file", id)
}

// projectDiff renders a unified diff between two project states. An empty
// string means the states are identical.
func projectDiff(before, after *engine.Project) (string, error) {
	beforeJSON, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling current project: %w", err)
	}
	afterJSON, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling updated project: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        strings.Split(string(beforeJSON), "\n"),
		B:        strings.Split(string(afterJSON), "\n"),
		FromFile: fmt.Sprintf("%s (current)", before.ID),
		ToFile:   fmt.Sprintf("%s (after apply)", after.ID),
		Context:  3,
	}
	diffText, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("rendering diff: %w", err)
	}
	if strings.TrimSpace(diffText) == "" {
		return "", nil
	}
	return diffText, nil
}
