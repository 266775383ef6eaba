package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y" or "Y")
	Accepted bool
	// Cancelled is true if reading input failed (e.g., Ctrl+C)
	Cancelled bool
}

// ConfirmApply prompts the user to confirm applying a recommendation to a
// project. It returns immediately with Accepted=false in non-interactive
// (non-TTY) environments; callers pass --yes to apply unattended.
//
// The prompt defaults to "No" (abort) when the user presses Enter without
// input. Valid inputs: "y", "Y", "yes", "Yes", "YES" for acceptance;
// anything else declines.
func ConfirmApply(writer io.Writer, reader io.Reader, recID, projectID string) PromptResult {
	// In non-TTY environments, return immediately without prompting
	if !isTerminal(os.Stdin) {
		return PromptResult{Accepted: false}
	}

	fmt.Fprintf(writer, "? Apply recommendation %s to project %s? [y/N] ", recID, projectID)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		// EOF or error - treat as cancelled
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error - treat as decline (user pressed Ctrl+D)
		return PromptResult{Accepted: false}
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(input) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
