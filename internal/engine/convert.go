package engine

import (
	"context"
	"math"
	"strings"

	"github.com/reclaimops/wasteplan/internal/logging"
	"github.com/reclaimops/wasteplan/internal/units"
)

// ConvertItems computes the waste portion of every forecast item and
// converts it to kilograms using the allocated stream's catalogue defaults.
//
// The waste portion is Quantity x ExcessPercent/100, recorded in the item's
// own unit as ComputedWasteQty. ComputedWasteKg is the same portion in
// kilograms; it stays nil when the item is unallocated or the conversion
// lacks metadata (unknown unit, unresolvable thickness). Nil means "needs
// conversion input" and is never zero-filled, so a flagged item can be told
// apart from a genuinely empty one.
//
// The input slice is not mutated; a rewritten copy is returned.
func (e *Engine) ConvertItems(ctx context.Context, items []ForecastItem) []ForecastItem {
	log := logging.FromContext(ctx)

	out := cloneItems(items)
	converted, flagged := 0, 0
	for i := range out {
		item := &out[i]
		item.ComputedWasteQty = nil
		item.ComputedWasteKg = nil

		if !isFiniteNonNegative(item.Quantity) || !isFiniteNonNegative(item.ExcessPercent) {
			flagged++
			continue
		}

		wasteQty := item.Quantity * item.ExcessPercent / 100
		item.ComputedWasteQty = &wasteQty

		stream := strings.TrimSpace(item.WasteStreamKey)
		if stream == "" {
			flagged++
			continue
		}

		density := e.catalogue.ResolveDensity(stream, nil)
		thickness := e.catalogue.ResolveThickness(stream, nil)
		kg, err := units.ToKilograms(wasteQty, item.Unit, density, thickness)
		if err != nil {
			log.Debug().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "convert_items").
				Str("item_id", item.ID).
				Str("stream", stream).
				Err(err).
				Msg("forecast item needs conversion metadata")
			flagged++
			continue
		}
		item.ComputedWasteKg = &kg
		converted++
	}

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "convert_items").
		Int("item_count", len(out)).
		Int("converted", converted).
		Int("flagged", flagged).
		Msg("forecast items converted")

	return out
}

func isFiniteNonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
