package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reclaimops/wasteplan/internal/engine"
)

// LoadRecommendations reads strategy recommendations from a JSON file
// produced by the external generator. The file holds a plain array of
// recommendation objects; unknown action types survive parsing (they show
// as unresolved) so a newer generator does not break an older binary.
func LoadRecommendations(path string) ([]engine.StrategyRecommendation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recommendations file: %w", err)
	}

	var recs []engine.StrategyRecommendation
	if unmarshalErr := json.Unmarshal(data, &recs); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreCorrupted, unmarshalErr)
	}

	for i := range recs {
		if validateErr := recs[i].Validate(); validateErr != nil {
			return nil, fmt.Errorf("recommendation %d: %w", i, validateErr)
		}
	}

	return recs, nil
}
