package cli_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/cli"
	"github.com/reclaimops/wasteplan/internal/engine"
)

// seedSummaryProject creates a project with 3 t of recycled timber and
// 1 t of landfilled concrete: 75% diversion, 75% landfill avoidance.
func seedSummaryProject(t *testing.T) {
	t.Helper()
	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")
	addStream(t, "riverside-tower", "Timber",
		"--qty", "3", "--unit", "t", "--outcome", "recycle")
	addStream(t, "riverside-tower", "Concrete",
		"--qty", "1", "--unit", "t", "--outcome", "landfill")
}

// TestPlanSummary_Table verifies the headline figures and per-stream
// breakdown of the table rendering.
func TestPlanSummary_Table(t *testing.T) {
	setupCLITest(t)
	seedSummaryProject(t)

	output, err := runCommand(t, "plan", "summary", "--project", "riverside-tower")
	require.NoError(t, err)

	assert.Contains(t, output, "Waste Diversion Summary: riverside-tower")
	assert.Contains(t, output, "Total quantified:  4.00 t")
	assert.Contains(t, output, "Diverted:          3.00 t (75.0%)")
	assert.Contains(t, output, "Landfill avoided:  3.00 t (75.0%)")
	assert.Contains(t, output, "Equivalent to ~2.7 skip bins or ~0.4 truckloads kept out of landfill")
	assert.Contains(t, output, "Timber")
	assert.Contains(t, output, "Recycle")
	assert.Contains(t, output, "Concrete")
	assert.Contains(t, output, "Landfill")
}

// TestPlanSummary_JSON verifies the JSON rendering round-trips into the
// summary type with the expected figures.
func TestPlanSummary_JSON(t *testing.T) {
	setupCLITest(t)
	seedSummaryProject(t)

	output, err := runCommand(t, "plan", "summary",
		"--project", "riverside-tower", "--output", "json")
	require.NoError(t, err)

	var summary engine.DiversionSummary
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.InDelta(t, 4.0, summary.TotalTonnes, 1e-9)
	assert.InDelta(t, 3.0, summary.DivertedTonnes, 1e-9)
	assert.InDelta(t, 75.0, summary.DiversionPct, 1e-9)
	assert.InDelta(t, 75.0, summary.LandfillAvoidancePct, 1e-9)
	require.Len(t, summary.Streams, 2)
}

// TestPlanSummary_FlagsDataGaps verifies that unquantifiable streams are
// excluded from totals and listed, never silently read as zero.
func TestPlanSummary_FlagsDataGaps(t *testing.T) {
	setupCLITest(t)
	seedSummaryProject(t)
	// No quantity at all.
	addStream(t, "riverside-tower", "Plasterboard")
	// Area quantity on a label with no catalogue thickness default.
	addStream(t, "riverside-tower", "Cladding", "--qty", "100", "--unit", "m2")

	output, err := runCommand(t, "plan", "summary", "--project", "riverside-tower")
	require.NoError(t, err)

	// Totals are unchanged by the two excluded streams.
	assert.Contains(t, output, "Total quantified:  4.00 t")
	assert.Contains(t, output, "Streams missing thickness: Cladding")
	assert.Contains(t, output, "Streams missing quantity: Plasterboard")
}

// TestPlanSummary_StreamFilter verifies --stream restricts the summary to
// one stream.
func TestPlanSummary_StreamFilter(t *testing.T) {
	setupCLITest(t)
	seedSummaryProject(t)

	output, err := runCommand(t, "plan", "summary",
		"--project", "riverside-tower", "--stream", "Timber")
	require.NoError(t, err)

	assert.Contains(t, output, "Total quantified:  3.00 t")
	assert.Contains(t, output, "(100.0%)")
	assert.NotContains(t, output, "Concrete")
}

// TestPlanSummary_StreamNotFound verifies the filter rejects unknown
// stream labels.
func TestPlanSummary_StreamNotFound(t *testing.T) {
	setupCLITest(t)
	seedSummaryProject(t)

	_, err := runCommand(t, "plan", "summary",
		"--project", "riverside-tower", "--stream", "Uranium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stream "Uranium" not found in project`)
}

// TestPlanSummary_MinDiversionGate verifies the CI gate: a diversion rate
// below the target yields a DiversionExitError with the configured code.
func TestPlanSummary_MinDiversionGate(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantErr      bool
		wantExitCode int
	}{
		{
			name:         "below target fails with default code",
			args:         []string{"--min-diversion", "80"},
			wantErr:      true,
			wantExitCode: 2,
		},
		{
			name:         "below target fails with custom code",
			args:         []string{"--min-diversion", "80", "--exit-code", "7"},
			wantErr:      true,
			wantExitCode: 7,
		},
		{
			name:    "target met passes",
			args:    []string{"--min-diversion", "70"},
			wantErr: false,
		},
		{
			name:    "gate disabled by default",
			args:    []string{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			seedSummaryProject(t)

			args := append([]string{"plan", "summary", "--project", "riverside-tower"}, tt.args...)
			output, err := runCommand(t, args...)

			// The summary renders before the gate is evaluated.
			assert.Contains(t, output, "Total quantified:  4.00 t")

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var exitErr *cli.DiversionExitError
			require.True(t, errors.As(err, &exitErr), "gate errors must carry an exit code")
			assert.Equal(t, tt.wantExitCode, exitErr.ExitCode)
			assert.Contains(t, exitErr.Reason, "below the 80.0% target")
		})
	}
}

// TestPlanSummary_MinDiversionWarningMode verifies --exit-code 0 downgrades
// a gate violation to a warning.
func TestPlanSummary_MinDiversionWarningMode(t *testing.T) {
	setupCLITest(t)
	seedSummaryProject(t)

	output, err := runCommand(t, "plan", "summary",
		"--project", "riverside-tower",
		"--min-diversion", "80", "--exit-code", "0")
	require.NoError(t, err, "warning mode must not fail the command")
	assert.Contains(t, output, "WARNING:")
	assert.Contains(t, output, "below the 80.0% target")
}
