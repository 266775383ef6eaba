package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// PlanInitParams holds the parameters for the plan init command.
type PlanInitParams struct {
	ProjectID string
	Name      string
	Region    string
	PartnerID string
}

// NewPlanInitCmd creates the plan init command for registering a new
// project in the store.
func NewPlanInitCmd() *cobra.Command {
	var params PlanInitParams

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new project waste plan",
		Long: `Creates a new project in the project store with an empty set of
waste-stream plans and forecast items.

The project ID is the handle every other plan command takes via --project.
When --id is omitted a UUID is generated.`,
		Example: `  # Create a project with an explicit ID
  wasteplan plan init --id riverside-tower --name "Riverside Tower" --region Wellington

  # Create a project scoped to a disposal partner
  wasteplan plan init --name "Harbour View" --region Auckland --partner p-greenco`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executePlanInit(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.ProjectID, "id", "", "Project ID (generated when omitted)")
	cmd.Flags().StringVar(&params.Name, "name", "", "Project display name (required)")
	cmd.Flags().StringVar(&params.Region, "region", "", "Project region, e.g. Wellington")
	cmd.Flags().StringVar(&params.PartnerID, "partner", "", "Disposal partner ID scoping facility suggestions")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func executePlanInit(cmd *cobra.Command, params *PlanInitParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	projectID := strings.TrimSpace(params.ProjectID)
	if projectID == "" {
		projectID = uuid.NewString()
	}

	audit := newAuditContext(ctx, "plan init", map[string]string{
		"project_id": projectID,
		"region":     params.Region,
	})

	log.Debug().Ctx(ctx).
		Str("operation", "plan_init").
		Str("project_id", projectID).
		Str("region", params.Region).
		Msg("creating project")

	st, err := openProjectStore(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	if _, exists := st.Get(projectID); exists {
		err := fmt.Errorf("project %q already exists in %s", projectID, st.FilePath())
		audit.logFailure(ctx, err)
		return err
	}

	proj := &engine.Project{
		ID:        projectID,
		Name:      strings.TrimSpace(params.Name),
		Region:    strings.TrimSpace(params.Region),
		PartnerID: strings.TrimSpace(params.PartnerID),
	}
	if err := proj.Validate(); err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("invalid project: %w", err)
	}

	if err := saveProject(st, proj); err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	log.Info().Ctx(ctx).
		Str("operation", "plan_init").
		Str("project_id", projectID).
		Msg("project created")
	audit.logSuccess(ctx, 1, 0)

	cmd.Printf("Project %s created\n", projectID)
	cmd.Printf("Project store: %s\n", st.FilePath())

	return nil
}

// requireProjectFlag validates the --project flag shared by most plan
// subcommands.
func requireProjectFlag(projectID string) (string, error) {
	trimmed := strings.TrimSpace(projectID)
	if trimmed == "" {
		return "", errors.New("--project is required")
	}
	return trimmed, nil
}
