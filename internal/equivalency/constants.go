package equivalency

// Capacity and emission factors for the equivalency formulas. To
// calculate an equivalency, divide the diverted tonnage by the factor:
//
//	equivalency = tonnes / factor
//
// These are indicative sector averages for mixed construction and
// demolition waste, chosen for relatability rather than precision.
const (
	// SkipBinCapacityTonnes is the typical payload of a 9 m3 builder's
	// skip loaded with mixed C&D waste.
	SkipBinCapacityTonnes = 1.1

	// TruckloadCapacityTonnes is the typical payload of a hook truck
	// carting site waste.
	TruckloadCapacityTonnes = 8.0

	// CO2eAvoidedPerTonne is the indicative tonnes CO2e avoided per tonne
	// of mixed C&D waste diverted from landfill. This is a multiplier,
	// not a divisor: co2e = tonnes * CO2eAvoidedPerTonne.
	CO2eAvoidedPerTonne = 0.45
)

// Unit conversion constants for normalizing masses to tonnes.
const (
	// KgToTonnes converts kilograms to tonnes.
	KgToTonnes = 0.001

	// TonnesToTonnes is the identity conversion for tonnes.
	TonnesToTonnes = 1.0
)

// Display threshold constants control when equivalencies are shown.
const (
	// MinEquivalencyThresholdTonnes is the minimum diverted tonnage for
	// showing equivalencies. Below this the figures read as noise.
	MinEquivalencyThresholdTonnes = 0.1

	// wholeNumberThreshold is the value above which equivalencies render
	// without a decimal place.
	wholeNumberThreshold = 10.0
)
