package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/routecache"
	"github.com/reclaimops/wasteplan/internal/store"
	"github.com/reclaimops/wasteplan/pkg/version"
)

// StepStatus represents the outcome of a single setup step.
type StepStatus int

const (
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates the step was intentionally skipped via flag.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// StepResult describes the outcome of executing a single setup step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// SetupOptions holds the configuration for the setup command, derived from CLI flags.
type SetupOptions struct {
	NonInteractive bool
}

// SetupResult is the aggregate outcome of all setup steps.
type SetupResult struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool
}

// dirPermBase is the permission mode for the base and standard directories.
const dirPermBase = 0o700

// facilityTemplate is the starter facility dataset seeded on first setup.
// It is a valid, empty dataset; deployments fill in their regional
// facilities and partners.
const facilityTemplate = `# wasteplan facility dataset
#
# facilities:
#   - id: f-wgtn-001
#     partner_id: p-greenco
#     name: GreenCo Recycling Wellington
#     region: Wellington
#     address: 14 Port Road
#     accepted_streams: [Timber, Metals, "Cardboard & Paper"]
# partners:
#   - id: p-greenco
#     name: GreenCo Resource Recovery
version: "1.0.0"
partners: []
facilities: []
`

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status StepStatus, nonInteractive bool) string {
	if nonInteractive {
		switch status {
		case StepSuccess:
			return "[OK]"
		case StepWarning:
			return "[WARN]"
		case StepSkipped:
			return "[SKIP]"
		case StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}

	switch status {
	case StepSuccess:
		return "✓"
	case StepWarning:
		return "!"
	case StepSkipped:
		return "-"
	case StepError:
		return "✗"
	default:
		return "?"
	}
}

// NewSetupCmd creates the top-level setup command that bootstraps the wasteplan environment.
func NewSetupCmd() *cobra.Command {
	var opts SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Bootstrap the wasteplan environment",
		Long: `Sets up the wasteplan environment by creating directories, initializing
configuration, seeding a facility dataset template, and creating the
route cache and project store.

This command is idempotent — it is safe to run multiple times. Existing
configuration and data files are preserved.`,
		Example: `  # Full setup
  wasteplan setup

  # CI/CD setup (no TTY-dependent output)
  wasteplan setup --non-interactive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false,
		"Disable TTY-dependent output (status symbols, color)")

	return cmd
}

// runSetup orchestrates all setup steps using a collect-and-continue pattern.
// Each step is executed sequentially. Failures in one step do not prevent
// subsequent steps from running. The function returns an error only if a
// critical step fails.
func runSetup(cmd *cobra.Command, opts *SetupOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logging.FromContext(ctx)

	// Auto-detect non-interactive mode when stdin is not a TTY
	if !opts.NonInteractive && !isTerminal(os.Stdin) {
		opts.NonInteractive = true
	}

	result := &SetupResult{}

	step := stepDisplayVersion()
	printStep(cmd, step, opts.NonInteractive)
	result.Steps = append(result.Steps, step)

	dirSteps := stepCreateDirectories()
	for _, s := range dirSteps {
		printStep(cmd, s, opts.NonInteractive)
		result.Steps = append(result.Steps, s)
	}

	step = stepInitConfig()
	printStep(cmd, step, opts.NonInteractive)
	result.Steps = append(result.Steps, step)

	step = stepSeedFacilities()
	printStep(cmd, step, opts.NonInteractive)
	result.Steps = append(result.Steps, step)

	step = stepInitRouteCache()
	printStep(cmd, step, opts.NonInteractive)
	result.Steps = append(result.Steps, step)

	step = stepInitProjectStore()
	printStep(cmd, step, opts.NonInteractive)
	result.Steps = append(result.Steps, step)

	for _, s := range result.Steps {
		if s.Status == StepError && s.Critical {
			result.HasErrors = true
		}
		if s.Status == StepWarning {
			result.HasWarnings = true
		}
	}

	printSummary(cmd, result)

	if result.HasErrors {
		log.Error().
			Ctx(ctx).
			Str("component", "setup").
			Msg("setup completed with critical errors")
		return errors.New("setup failed: one or more critical steps failed")
	}

	return nil
}

// printStep outputs a single step's status line.
func printStep(cmd *cobra.Command, step StepResult, nonInteractive bool) {
	marker := formatStatus(step.Status, nonInteractive)
	cmd.Printf("%s %s\n", marker, step.Message)
}

// printSummary outputs the final completion message.
func printSummary(cmd *cobra.Command, result *SetupResult) {
	cmd.Println()
	if result.HasErrors {
		cmd.Println("Setup completed with errors. Review the messages above for remediation steps.")
	} else {
		cmd.Println("Setup complete! Run 'wasteplan plan init --name \"My Project\"' to get started.")
	}
}

// stepDisplayVersion prints the wasteplan version and Go runtime info.
func stepDisplayVersion() StepResult {
	ver := version.GetVersion()
	goVer := runtime.Version()
	msg := fmt.Sprintf("wasteplan v%s (%s)", ver, goVer)
	return StepResult{
		Name:    "Version display",
		Status:  StepSuccess,
		Message: msg,
	}
}

// stepCreateDirectories creates the required wasteplan directories.
// Returns one StepResult per directory.
func stepCreateDirectories() []StepResult {
	baseDir, err := config.GetConfigDir()
	if err != nil {
		return []StepResult{{
			Name:     "Directory creation",
			Status:   StepError,
			Message:  fmt.Sprintf("Could not resolve config directory: %v", err),
			Critical: true,
			Err:      err,
		}}
	}

	dirs := []string{
		baseDir,
		filepath.Join(baseDir, "logs"),
	}

	var results []StepResult
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err == nil && info.IsDir() {
			results = append(results, StepResult{
				Name:     "Directory creation",
				Status:   StepSuccess,
				Message:  fmt.Sprintf("Directory exists: %s", d),
				Critical: true,
			})
			continue
		}

		if mkErr := os.MkdirAll(d, dirPermBase); mkErr != nil {
			results = append(results, StepResult{
				Name:   "Directory creation",
				Status: StepError,
				Message: fmt.Sprintf(
					"Failed to create %s: %v\n  Try: export WASTEPLAN_HOME=/path/to/writable/directory",
					d,
					mkErr,
				),
				Critical: true,
				Err:      mkErr,
			})
			continue
		}

		results = append(results, StepResult{
			Name:     "Directory creation",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Created %s", d),
			Critical: true,
		})
	}

	return results
}

// stepInitConfig initializes the default config file if one does not exist.
func stepInitConfig() StepResult {
	cfg := config.New()
	configPath := cfg.ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return StepResult{
			Name:     "Config initialization",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Config already exists (%s)", configPath),
			Critical: true,
		}
	}

	if err := cfg.Save(); err != nil {
		return StepResult{
			Name:     "Config initialization",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to initialize config: %v", err),
			Critical: true,
			Err:      err,
		}
	}

	return StepResult{
		Name:     "Config initialization",
		Status:   StepSuccess,
		Message:  fmt.Sprintf("Initialized config (%s)", configPath),
		Critical: true,
	}
}

// stepSeedFacilities writes the facility dataset template if no dataset
// exists yet. An existing dataset is never touched.
func stepSeedFacilities() StepResult {
	path, err := config.FacilitiesPath()
	if err != nil {
		return StepResult{
			Name:    "Facility dataset",
			Status:  StepWarning,
			Message: fmt.Sprintf("Could not resolve facility dataset path: %v", err),
			Err:     err,
		}
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return StepResult{
			Name:    "Facility dataset",
			Status:  StepSuccess,
			Message: fmt.Sprintf("Facility dataset exists (%s)", path),
		}
	}

	if writeErr := os.WriteFile(path, []byte(facilityTemplate), 0o600); writeErr != nil {
		return StepResult{
			Name:    "Facility dataset",
			Status:  StepWarning,
			Message: fmt.Sprintf("Failed to seed facility dataset: %v", writeErr),
			Err:     writeErr,
		}
	}

	return StepResult{
		Name:    "Facility dataset",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Seeded facility dataset template (%s)", path),
	}
}

// stepInitRouteCache creates the route cache database and its schema.
func stepInitRouteCache() StepResult {
	path, err := config.DistancesPath()
	if err != nil {
		return StepResult{
			Name:    "Route cache",
			Status:  StepWarning,
			Message: fmt.Sprintf("Could not resolve route cache path: %v", err),
			Err:     err,
		}
	}

	rc, err := routecache.Open(path)
	if err != nil {
		return StepResult{
			Name:    "Route cache",
			Status:  StepWarning,
			Message: fmt.Sprintf("Failed to create route cache: %v\n  Try later: wasteplan distances import --file distances.json", err),
			Err:     err,
		}
	}
	_ = rc.Close()

	return StepResult{
		Name:    "Route cache",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Route cache ready (%s)", path),
	}
}

// stepInitProjectStore creates an empty project store file if none exists.
func stepInitProjectStore() StepResult {
	path, err := config.ProjectsPath()
	if err != nil {
		return projectStoreErrorStep(err)
	}
	st, err := store.New(path)
	if err != nil {
		return projectStoreErrorStep(err)
	}

	if _, statErr := os.Stat(st.FilePath()); statErr == nil {
		return StepResult{
			Name:     "Project store",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Project store exists (%s)", st.FilePath()),
			Critical: true,
		}
	}

	if err := st.Save(); err != nil {
		return StepResult{
			Name:     "Project store",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to create project store: %v", err),
			Critical: true,
			Err:      err,
		}
	}

	return StepResult{
		Name:     "Project store",
		Status:   StepSuccess,
		Message:  fmt.Sprintf("Created project store (%s)", st.FilePath()),
		Critical: true,
	}
}

func projectStoreErrorStep(err error) StepResult {
	return StepResult{
		Name:     "Project store",
		Status:   StepError,
		Message:  fmt.Sprintf("Failed to resolve project store: %v", err),
		Critical: true,
		Err:      err,
	}
}
