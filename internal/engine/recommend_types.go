package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedTarget is returned when a recommendation action names a
// target that cannot be found or filled in: a blank stream label, or a
// facility assignment with no eligible facility.
var ErrUnresolvedTarget = errors.New("recommendation target could not be resolved")

// ErrUnsupportedAction is returned when a recommendation carries no action
// or an action type this engine does not implement.
var ErrUnsupportedAction = errors.New("unsupported recommendation action")

// ActionType identifies what an apply action does to the plan.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver; String/MarshalJSON use value receivers.
type ActionType int

const (
	// ActionUnspecified is the zero value: no recognized action. Such
	// recommendations are informational and can never be applied.
	ActionUnspecified ActionType = iota
	// ActionMarkStreamSeparate sets a stream's handling to separated.
	ActionMarkStreamSeparate
	// ActionSetFacility assigns a facility destination to a stream.
	ActionSetFacility
	// ActionSetOutcome sets a stream's first intended outcome.
	ActionSetOutcome
	// ActionCreateStream adds a stream to the project plan.
	ActionCreateStream
)

// String returns the wire label for an ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionUnspecified:
		return "unspecified"
	case ActionMarkStreamSeparate:
		return "mark_stream_separate"
	case ActionSetFacility:
		return "set_facility"
	case ActionSetOutcome:
		return "set_outcome"
	case ActionCreateStream:
		return "create_stream"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// MarshalJSON implements json.Marshaler to output ActionType as string.
func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler to parse ActionType from string.
// Unrecognized labels map to ActionUnspecified instead of failing: a
// recommendations file written by a newer generator must still load, with
// the unknown actions surfacing as unresolvable rather than breaking the
// whole list.
func (a *ActionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("parsing action type: %w", err)
	}
	switch str {
	case "mark_stream_separate":
		*a = ActionMarkStreamSeparate
	case "set_facility":
		*a = ActionSetFacility
	case "set_outcome":
		*a = ActionSetOutcome
	case "create_stream":
		*a = ActionCreateStream
	default:
		*a = ActionUnspecified
	}
	return nil
}

// ApplyAction is the machine-applicable part of a recommendation. Which
// fields are meaningful depends on Type; the rest are ignored.
type ApplyAction struct {
	Type       ActionType `json:"type"`
	Stream     string     `json:"stream,omitempty"`
	FacilityID string     `json:"facility_id,omitempty"`
	Outcome    Outcome    `json:"outcome,omitempty"`
}

// Impact is the advisory effect estimate attached by the recommendation
// generator. It is display-only and never feeds back into the plan.
type Impact struct {
	Tonnes            float64 `json:"tonnes,omitempty"`
	DiversionPctDelta float64 `json:"diversion_pct_delta,omitempty"`
}

// StrategyRecommendation is one generated suggestion for improving a
// project's diversion plan. Whether it is resolved is derived from the
// current plan on every read and never stored.
type StrategyRecommendation struct {
	// ID identifies the recommendation.
	ID string `json:"id"`

	// Category is the waste stream the recommendation concerns, when any.
	Category string `json:"category,omitempty"`

	// Priority orders display, 1 being most urgent.
	Priority int `json:"priority"`

	// Summary is the human-readable recommendation text.
	Summary string `json:"summary"`

	// Action is the machine-applicable change. Nil means the
	// recommendation is informational only.
	Action *ApplyAction `json:"action,omitempty"`

	// EstimatedImpact is the generator's advisory effect estimate.
	EstimatedImpact *Impact `json:"estimated_impact,omitempty"`
}

// Validate checks that the recommendation is well-formed.
func (r *StrategyRecommendation) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: recommendation ID is required", ErrPlanValidation)
	}
	if strings.TrimSpace(r.Summary) == "" {
		return fmt.Errorf("%w: recommendation summary is required", ErrPlanValidation)
	}
	if r.Priority < 0 {
		return fmt.Errorf("%w: priority must be >= 0, got %d", ErrPlanValidation, r.Priority)
	}
	return nil
}
