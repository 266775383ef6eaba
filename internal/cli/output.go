package cli

import (
	"encoding/json"
	"io"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/reclaimops/wasteplan/internal/config"
)

const (
	outputFormatTable  = "table"
	outputFormatJSON   = "json"
	outputFormatNDJSON = "ndjson"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

// printer is the locale-aware message printer for number formatting.
// Uses English locale for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// formatTonnes formats a tonnage figure with thousand separators and the
// configured decimal precision. Example: formatTonnes(18248.5) returns
// "18,248.50" at precision 2.
func formatTonnes(v float64) string {
	return printer.Sprintf("%.*f", config.GetOutputPrecision(), v)
}

// formatPercent formats a percentage with one decimal place.
func formatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// formatKm formats a route distance in kilometres.
func formatKm(v float64) string {
	return printer.Sprintf("%.1f", v)
}

// resolvedMarker renders the resolution state of a recommendation for
// table output.
func resolvedMarker(resolved bool) string {
	if resolved {
		return color.New(color.FgGreen).Sprint("resolved")
	}
	return color.New(color.FgYellow).Sprint("open")
}

// renderJSON writes v as indented JSON.
func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderNDJSON writes each item as a single JSON line.
func renderNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
