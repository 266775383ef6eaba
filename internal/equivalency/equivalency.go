package equivalency

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Calculate computes diversion equivalencies for the given tonnage input.
//
// The input is normalized to tonnes, then converted into skip-bin and
// truckload counts plus an indicative avoided-CO2e figure. Inputs below
// MinEquivalencyThresholdTonnes return an empty output with no error;
// invalid units or negative values return an error.
//
// Example:
//
//	input := TonnageInput{Value: 30, Unit: "t"}
//	output, err := Calculate(input)
//	// output.DisplayText: "Equivalent to ~27 skip bins or ~3.8 truckloads kept out of landfill"
func Calculate(input TonnageInput) (EquivalencyOutput, error) {
	tonnes, err := NormalizeToTonnes(input.Value, input.Unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}

	if tonnes < MinEquivalencyThresholdTonnes {
		return EquivalencyOutput{InputTonnes: tonnes, IsEmpty: true}, nil
	}

	skips := tonnes / SkipBinCapacityTonnes
	trucks := tonnes / TruckloadCapacityTonnes
	co2e := tonnes * CO2eAvoidedPerTonne

	if math.IsInf(skips, 0) || math.IsNaN(skips) ||
		math.IsInf(trucks, 0) || math.IsNaN(trucks) ||
		math.IsInf(co2e, 0) || math.IsNaN(co2e) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	skipsFormatted := formatEquivalencyValue(skips)
	trucksFormatted := formatEquivalencyValue(trucks)
	co2eFormatted := formatEquivalencyValue(co2e)

	results := []EquivalencyResult{
		{
			Type:           EquivalencySkipBins,
			Value:          skips,
			FormattedValue: skipsFormatted,
			Label:          "skip bins",
		},
		{
			Type:           EquivalencyTruckloads,
			Value:          trucks,
			FormattedValue: trucksFormatted,
			Label:          "truckloads",
		},
		{
			Type:           EquivalencyCO2eAvoided,
			Value:          co2e,
			FormattedValue: co2eFormatted,
			Label:          "t CO2e avoided",
		},
	}

	displayText := fmt.Sprintf("Equivalent to ~%s skip bins or ~%s truckloads kept out of landfill",
		skipsFormatted, trucksFormatted)
	compactText := fmt.Sprintf("(≈ %s skips, %s trucks)", skipsFormatted, trucksFormatted)

	return EquivalencyOutput{
		InputTonnes: tonnes,
		Results:     results,
		DisplayText: displayText,
		CompactText: compactText,
		IsEmpty:     false,
	}, nil
}

// formatEquivalencyValue formats an equivalency value for display. Values
// of ten and above round to whole numbers with thousand separators;
// smaller values keep one decimal place so a half-full skip still reads
// as something.
func formatEquivalencyValue(v float64) string {
	if v >= wholeNumberThreshold {
		return printer.Sprintf("%d", int64(math.Round(v)))
	}
	return printer.Sprintf("%.1f", v)
}
