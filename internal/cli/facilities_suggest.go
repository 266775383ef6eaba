package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/facility"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// FacilitiesSuggestParams holds the parameters for the facilities suggest
// command.
type FacilitiesSuggestParams struct {
	ProjectID       string
	Stream          string
	IncludeUnrouted bool
	Limit           int
	Output          string
}

// NewFacilitiesSuggestCmd creates the facilities suggest command for
// ranking disposal facilities for a stream.
func NewFacilitiesSuggestCmd() *cobra.Command {
	var params FacilitiesSuggestParams

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Rank disposal facilities for a waste stream",
		Long: `Lists facilities that accept the stream in the project's region,
ranked by cached route distance ascending. Distance ties break by
facility ID so the ranking is stable run to run.

Facilities without a cached route distance are excluded by default;
--include-unrouted ranks them after the routed ones instead. Distances
come from the route cache only ("distances import"); nothing is computed
live.`,
		Example: `  wasteplan facilities suggest --project riverside-tower --stream Timber
  wasteplan facilities suggest --project riverside-tower --stream Concrete --include-unrouted --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeFacilitiesSuggest(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&params.Stream, "stream", "", "Stream label to place (required)")
	cmd.Flags().BoolVar(&params.IncludeUnrouted, "include-unrouted", false,
		"Rank facilities without a cached distance last instead of excluding them")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Maximum number of facilities to show (0 = all)")
	cmd.Flags().StringVar(
		&params.Output, "output", config.GetDefaultOutputFormat(), "Output format (table, json, ndjson)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("stream")

	return cmd
}

func executeFacilitiesSuggest(cmd *cobra.Command, params *FacilitiesSuggestParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID, err := requireProjectFlag(params.ProjectID)
	if err != nil {
		return err
	}
	stream := strings.TrimSpace(params.Stream)

	audit := newAuditContext(ctx, "facilities suggest", map[string]string{
		"project_id": projectID,
		"stream":     stream,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "facilities_suggest").
		Str("project_id", projectID).
		Str("stream", stream).
		Bool("include_unrouted", params.IncludeUnrouted).
		Msg("ranking facilities")

	cat, err := loadCatalogue(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	dir, err := loadDirectory(ctx, cat)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	snapshot, err := loadSnapshot(ctx)
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

	candidates, err := dir.FacilitiesFor(partnerScope(proj, stream), proj.Region, stream)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("resolving facilities: %w", err)
	}

	policy := facility.MissingExclude
	if params.IncludeUnrouted {
		policy = facility.MissingLast
	}
	ranked := facility.NearestFacilities(stream, candidates, snapshot, policy)
	if params.Limit > 0 && len(ranked) > params.Limit {
		ranked = ranked[:params.Limit]
	}

	log.Info().Ctx(ctx).
		Str("operation", "facilities_suggest").
		Str("stream", stream).
		Int("candidate_count", len(candidates)).
		Int("ranked_count", len(ranked)).
		Msg("facilities ranked")
	audit.logSuccess(ctx, len(ranked), 0)

	return renderRankedFacilities(cmd.OutOrStdout(), params.Output, ranked)
}

// partnerScope returns the partner filter for a stream: the stream plan's
// partner when set, the project-level partner otherwise.
func partnerScope(proj *engine.Project, stream string) string {
	for i := range proj.Plans {
		if strings.TrimSpace(proj.Plans[i].Category) == stream && proj.Plans[i].PartnerID != "" {
			return proj.Plans[i].PartnerID
		}
	}
	return proj.PartnerID
}

// renderRankedFacilities renders ranked facilities in the requested format.
func renderRankedFacilities(w io.Writer, format string, ranked []facility.RankedFacility) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, ranked)
	case outputFormatNDJSON:
		return renderNDJSON(w, ranked)
	default:
		return renderRankedFacilitiesTable(w, ranked)
	}
}

func renderRankedFacilitiesTable(w io.Writer, ranked []facility.RankedFacility) error {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No eligible facilities")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tREGION\tPARTNER\tDISTANCE (km)\tDURATION (min)")
	fmt.Fprintln(tw, "----\t--\t----\t------\t-------\t-------------\t--------------")
	for i, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			r.Facility.ID,
			r.Facility.Name,
			r.Facility.Region,
			r.Facility.PartnerID,
			kmOrDash(r.DistanceKm),
			minutesOrDash(r.DurationMin))
	}
	return tw.Flush()
}

func kmOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatKm(*v)
}

func minutesOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.0f", *v)
}
