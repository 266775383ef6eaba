// Package cli implements the wasteplan command tree: plan, facilities,
// recommendations, distances, config and setup.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the wasteplan CLI. It wires
// up configuration, logging, tracing, audit logging and the subcommand
// groups.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult
	var overlayPath string

	cmd := &cobra.Command{
		Use:     "wasteplan",
		Short:   "Construction waste-stream planning and diversion CLI",
		Long:    "wasteplan: plan construction waste streams, forecast tonnage, and route material to diversion facilities",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if overlayPath != "" {
				cfg, err := config.NewWithOverlay(overlayPath)
				if err != nil {
					return err
				}
				config.SetGlobalConfig(cfg)
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&overlayPath, "config", "",
		"overlay config file merged on top of the global configuration")
	cmd.AddCommand(newPlanCmd(), newFacilitiesCmd(), newRecommendationsCmd(),
		newDistancesCmd(), newConfigCmd(), NewSetupCmd())

	return cmd
}

const rootCmdExample = `  # Bootstrap the wasteplan environment
  wasteplan setup

  # Create a project and load its purchase forecast
  wasteplan plan init --id riverside-tower --name "Riverside Tower" --region Wellington
  wasteplan plan import --project riverside-tower --items forecast.json

  # Allocate forecast items to waste streams and recompute tonnage
  wasteplan plan allocate --project riverside-tower
  wasteplan plan recompute --project riverside-tower

  # Show the diversion summary
  wasteplan plan summary --project riverside-tower

  # Suggest nearby facilities for a stream
  wasteplan facilities suggest --project riverside-tower --stream Timber

  # Load cached route distances
  wasteplan distances import --file distances.json

  # Review and apply strategy recommendations
  wasteplan recommendations list --project riverside-tower --file recs.json
  wasteplan recommendations apply --project riverside-tower --file recs.json --id rec-001`

// newPlanCmd creates the plan command group.
func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "plan", Short: "Waste stream planning commands"}
	cmd.AddCommand(
		NewPlanInitCmd(), NewPlanImportCmd(), NewPlanAllocateCmd(),
		NewPlanRecomputeCmd(), NewPlanSummaryCmd(), NewPlanStreamCmd(),
	)
	return cmd
}

// newFacilitiesCmd creates the facilities command group.
func newFacilitiesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "facilities", Short: "Facility lookup commands"}
	cmd.AddCommand(NewFacilitiesSuggestCmd())
	return cmd
}

// newRecommendationsCmd creates the recommendations command group.
func newRecommendationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "recommendations", Short: "Strategy recommendation commands"}
	cmd.AddCommand(NewRecommendationsListCmd(), NewRecommendationsApplyCmd())
	return cmd
}

// newDistancesCmd creates the distances command group.
func newDistancesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "distances", Short: "Cached route distance commands"}
	cmd.AddCommand(NewDistancesImportCmd())
	return cmd
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}
