package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/reclaimops/wasteplan/internal/facility"
	"github.com/reclaimops/wasteplan/internal/logging"
)

// IsResolved reports whether the current plans already satisfy the
// recommendation's action. It is a pure predicate evaluated fresh on every
// read; resolution state is never stored, so it can never go stale. A nil
// or unrecognized action is simply unresolved, never an error.
func IsResolved(rec *StrategyRecommendation, plans []WasteStreamPlan) bool {
	if rec == nil || rec.Action == nil {
		return false
	}

	switch rec.Action.Type {
	case ActionMarkStreamSeparate:
		i := findPlan(plans, rec.Action.Stream)
		return i >= 0 && plans[i].Handling == HandlingSeparated
	case ActionSetFacility:
		i := findPlan(plans, rec.Action.Stream)
		return i >= 0 && plans[i].Destination.HasFacility()
	case ActionSetOutcome:
		// Global: resolved once no stream is undecided. A plan with an
		// empty outcome list counts as undecided.
		for i := range plans {
			if plans[i].FirstOutcome() == OutcomeUnknown {
				return false
			}
		}
		return true
	case ActionCreateStream:
		return findPlan(plans, rec.Action.Stream) >= 0
	default:
		return false
	}
}

// findPlan returns the index of the plan whose trimmed category equals the
// trimmed label, or -1.
func findPlan(plans []WasteStreamPlan, label string) int {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return -1
	}
	for i := range plans {
		if strings.TrimSpace(plans[i].Category) == trimmed {
			return i
		}
	}
	return -1
}

// ApplyRecommendation executes the recommendation's action against a copy
// of the project and returns the updated copy. The action postcondition is
// idempotent: applying the same recommendation twice leaves the project in
// the same state as applying it once.
//
// Failures are explicit, never silent no-ops. A blank stream target or a
// facility assignment with no eligible facility wraps ErrUnresolvedTarget;
// a missing or unrecognized action type wraps ErrUnsupportedAction.
func (e *Engine) ApplyRecommendation(ctx context.Context, rec *StrategyRecommendation, proj *Project) (*Project, error) {
	log := logging.FromContext(ctx)

	if rec == nil {
		return nil, fmt.Errorf("%w: no recommendation", ErrUnsupportedAction)
	}
	if rec.Action == nil {
		return nil, fmt.Errorf("%w: recommendation %s is informational", ErrUnsupportedAction, rec.ID)
	}
	if proj == nil {
		return nil, fmt.Errorf("%w: no project", ErrUnresolvedTarget)
	}

	out := proj.Clone()
	action := rec.Action

	var err error
	switch action.Type {
	case ActionMarkStreamSeparate:
		err = e.applyMarkSeparate(out, action)
	case ActionSetFacility:
		err = e.applySetFacility(out, action)
	case ActionSetOutcome:
		err = e.applySetOutcome(out, action)
	case ActionCreateStream:
		err = e.applyCreateStream(out, action)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedAction, action.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("applying recommendation %s: %w", rec.ID, err)
	}

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "apply_recommendation").
		Str("recommendation_id", rec.ID).
		Str("action", action.Type.String()).
		Str("stream", action.Stream).
		Msg("recommendation applied")

	return out, nil
}

// ensureTarget adds the action's stream to the project if needed and
// returns its plan index.
func ensureTarget(proj *Project, action *ApplyAction) (int, error) {
	stream := strings.TrimSpace(action.Stream)
	if stream == "" {
		return -1, fmt.Errorf("%w: %s action has no stream", ErrUnresolvedTarget, action.Type)
	}
	proj.Plans, _ = EnsureStream(proj.Plans, stream)
	i := findPlan(proj.Plans, stream)
	if i < 0 {
		return -1, fmt.Errorf("%w: stream %q", ErrUnresolvedTarget, stream)
	}
	return i, nil
}

func (e *Engine) applyMarkSeparate(proj *Project, action *ApplyAction) error {
	i, err := ensureTarget(proj, action)
	if err != nil {
		return err
	}
	proj.Plans[i].Handling = HandlingSeparated
	return nil
}

func (e *Engine) applyCreateStream(proj *Project, action *ApplyAction) error {
	_, err := ensureTarget(proj, action)
	return err
}

// applySetOutcome sets the first intended outcome. With a stream named it
// targets that stream; without one it fills in every undecided stream,
// which is what makes the global resolution condition come true.
func (e *Engine) applySetOutcome(proj *Project, action *ApplyAction) error {
	if action.Outcome == OutcomeUnknown {
		return fmt.Errorf("%w: set_outcome with no outcome", ErrUnsupportedAction)
	}

	if strings.TrimSpace(action.Stream) != "" {
		i, err := ensureTarget(proj, action)
		if err != nil {
			return err
		}
		setFirstOutcome(&proj.Plans[i], action.Outcome)
		return nil
	}

	for i := range proj.Plans {
		if proj.Plans[i].FirstOutcome() == OutcomeUnknown {
			setFirstOutcome(&proj.Plans[i], action.Outcome)
		}
	}
	return nil
}

func setFirstOutcome(plan *WasteStreamPlan, outcome Outcome) {
	if len(plan.IntendedOutcomes) == 0 {
		plan.IntendedOutcomes = []Outcome{outcome}
		return
	}
	plan.IntendedOutcomes[0] = outcome
}

// applySetFacility assigns a facility destination. An explicit facility ID
// is looked up and checked against the stream; an empty ID means "pick the
// nearest eligible facility" using the project's region and partner scope
// and the cached distance snapshot.
func (e *Engine) applySetFacility(proj *Project, action *ApplyAction) error {
	i, err := ensureTarget(proj, action)
	if err != nil {
		return err
	}
	plan := &proj.Plans[i]
	stream := strings.TrimSpace(plan.Category)

	if e.facilities == nil {
		return fmt.Errorf("%w: no facility directory loaded", ErrUnresolvedTarget)
	}

	if action.FacilityID != "" {
		f, ok := e.facilities.FacilityByID(action.FacilityID)
		if !ok {
			return fmt.Errorf("%w: facility %q not found", ErrUnresolvedTarget, action.FacilityID)
		}
		if !f.Accepts(stream) {
			return fmt.Errorf("%w: facility %q does not accept %q", ErrUnresolvedTarget, f.ID, stream)
		}
		assignFacility(plan, f, e.distances)
		return nil
	}

	partnerScope := plan.PartnerID
	if partnerScope == "" {
		partnerScope = proj.PartnerID
	}
	candidates, err := e.facilities.FacilitiesFor(partnerScope, proj.Region, stream)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnresolvedTarget, err)
	}
	ranked := facility.NearestFacilities(stream, candidates, e.distances, facility.MissingLast)
	if len(ranked) == 0 {
		return fmt.Errorf("%w: no eligible facility for %q in region %q", ErrUnresolvedTarget, stream, proj.Region)
	}
	assignFacility(plan, ranked[0].Facility, e.distances)
	return nil
}

// assignFacility records the facility on the plan along with its cached
// route figures, when any are known.
func assignFacility(plan *WasteStreamPlan, f facility.Facility, distances facility.DistanceSnapshot) {
	plan.Destination = Destination{
		FacilityID: f.ID,
		Name:       f.Name,
		Address:    f.Address,
	}
	plan.PartnerID = f.PartnerID
	plan.DistanceKm = nil
	plan.DurationMin = nil
	if d, ok := distances.Lookup(strings.TrimSpace(plan.Category), f.ID); ok {
		km := d.Km
		mins := d.DurationMin
		plan.DistanceKm = &km
		plan.DurationMin = &mins
	}
}
