package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/catalogue"
	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/store"
)

// NewConfigValidateCmd creates the config validate command for validating
// configuration and the reference datasets it points at.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and reference datasets",
		Long: `Validates the configuration file at ~/.wasteplan/config.yaml for syntax
and semantic correctness.

This includes:
- General configuration syntax validation
- Catalogue dataset validation (when a file is configured):
  - Schema version compatibility
  - Stream label and density checks
- Facility dataset validation (when present):
  - Schema version compatibility
  - accepted_streams checked against the catalogue vocabulary
- Route cache and project store readability`,
		Example: `  # Validate current configuration
  wasteplan config validate

  # Validate and show detailed information
  wasteplan config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.New()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cat, err := validateCatalogue(cmd)
	if err != nil {
		return err
	}
	if err := validateDatasets(cmd, cat); err != nil {
		return err
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg, cat)
	}

	return nil
}

// validateCatalogue loads the configured catalogue, or the built-in one
// when no file is configured.
func validateCatalogue(cmd *cobra.Command) (*catalogue.Catalogue, error) {
	path := config.CataloguePath()
	if path == "" {
		return catalogue.Default(), nil
	}

	cat, err := catalogue.Load(path)
	if err != nil {
		cmd.PrintErrln("Catalogue dataset errors:")
		cmd.PrintErrf("  - %s\n", err.Error())
		return nil, fmt.Errorf("catalogue dataset invalid: %w", err)
	}
	return cat, nil
}

// validateDatasets checks the facility dataset, route cache and project
// store. Missing optional files are warnings, not errors: setup seeds
// them on first use.
func validateDatasets(cmd *cobra.Command, cat *catalogue.Catalogue) error {
	ctx := cmd.Context()

	facilitiesPath, err := config.FacilitiesPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(facilitiesPath); statErr == nil {
		if _, loadErr := loadDirectory(ctx, cat); loadErr != nil {
			cmd.PrintErrln("Facility dataset errors:")
			cmd.PrintErrf("  - %s\n", loadErr.Error())
			return fmt.Errorf("facility dataset invalid: %w", loadErr)
		}
	} else {
		cmd.Printf("Warning: facility dataset %s not found (run \"wasteplan setup\")\n", facilitiesPath)
	}

	distancesPath, err := config.DistancesPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(distancesPath); statErr == nil {
		if _, snapErr := loadSnapshot(ctx); snapErr != nil {
			return fmt.Errorf("route cache invalid: %w", snapErr)
		}
	}

	projectsPath, err := config.ProjectsPath()
	if err != nil {
		return err
	}
	st, err := store.New(projectsPath)
	if err != nil {
		return fmt.Errorf("project store path invalid: %w", err)
	}
	if _, statErr := os.Stat(st.FilePath()); statErr == nil {
		if loadErr := st.Load(); loadErr != nil {
			return fmt.Errorf("project store invalid: %w", loadErr)
		}
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config, cat *catalogue.Catalogue) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)

	source := "built-in"
	if config.CataloguePath() != "" {
		source = config.CataloguePath()
	}
	cmd.Printf("  Catalogue: %s (%d streams)\n", source, len(cat.Labels()))
}
