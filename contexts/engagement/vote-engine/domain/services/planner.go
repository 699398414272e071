package services

import (
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
)

// Plan is one condition+update pair for a single transition. A non-empty
// Skip means the transition resolved without touching the store.
type Plan struct {
	Transition entities.Transition
	From       entities.VoteValue
	To         entities.VoteValue
	Condition  entities.Condition
	Mutation   entities.Mutation
	Skip       entities.Outcome
}

// CurrentValue recovers the voter's state from the snapshot. Identified
// voters are looked up in the option arrays and anonymous voters in the
// per-option ip logs. An ip present only in the shared log falls back to the
// caller-asserted previous value; the store predicate still checks the
// option log, so a wrong assertion is rejected as stale.
func CurrentValue(snapshot entities.Tally, req entities.VoteRequest) entities.VoteValue {
	if req.Identified() {
		return snapshot.VoteValue(req.VoterID)
	}
	if value := snapshot.FacelessValue(req.IP); value != entities.VoteNone {
		return value
	}
	if snapshot.HasIP(req.IP) {
		return req.Previous
	}
	return entities.VoteNone
}

// PlanVote dispatches on the recorded state: None starts a new vote, the same
// value is a no-op and the opposite value is a revote.
func PlanVote(topology Topology, snapshot entities.Tally, req entities.VoteRequest) (Plan, error) {
	if err := req.Validate(true); err != nil {
		return Plan{}, err
	}
	switch current := CurrentValue(snapshot, req); current {
	case entities.VoteNone:
		return PlanNewVote(topology, snapshot, req)
	case req.Value:
		return noopPlan(current), nil
	default:
		return PlanRevote(topology, snapshot, req)
	}
}

// PlanNewVote builds the None -> Up/Down transition. It does not consult the
// snapshot for existing votes: the precondition is the gate.
func PlanNewVote(topology Topology, snapshot entities.Tally, req entities.VoteRequest) (Plan, error) {
	if err := req.Validate(true); err != nil {
		return Plan{}, err
	}
	ratio := NewVoteRatio(snapshot.TotalUpCount, snapshot.TotalCount(), req.Value)
	return Plan{
		Transition: entities.TransitionNew,
		From:       entities.VoteNone,
		To:         req.Value,
		Condition:  NewVoteCondition(topology, req),
		Mutation:   NewVoteMutation(topology.UpdatePaths(req.Field()), req, ratio),
	}, nil
}

// PlanRevote builds the Up <-> Down transition.
func PlanRevote(topology Topology, snapshot entities.Tally, req entities.VoteRequest) (Plan, error) {
	if err := req.Validate(true); err != nil {
		return Plan{}, err
	}
	if !req.Identified() && !req.HasIP() {
		return Plan{}, domainerrors.ErrInvalidVoteInput
	}
	from := CurrentValue(snapshot, req)
	switch from {
	case entities.VoteNone:
		return Plan{Transition: entities.TransitionRevote, To: req.Value, Skip: entities.OutcomeStale}, nil
	case req.Value:
		return noopPlan(from), nil
	}
	ratio := RevoteRatio(snapshot.TotalUpCount, snapshot.TotalCount(), from, req.Value)
	return Plan{
		Transition: entities.TransitionRevote,
		From:       from,
		To:         req.Value,
		Condition:  RevoteCondition(topology, req, from),
		Mutation:   RevoteMutation(topology.UpdatePaths(req.Field()), req, from, ratio),
	}, nil
}

// PlanUnvote builds the Up/Down -> None transition. A request value that
// disagrees with the recorded one is treated as a stale assumption.
func PlanUnvote(topology Topology, snapshot entities.Tally, req entities.VoteRequest) (Plan, error) {
	if err := req.Validate(false); err != nil {
		return Plan{}, err
	}
	if !req.Identified() && !req.HasIP() {
		return Plan{}, domainerrors.ErrInvalidVoteInput
	}
	old := CurrentValue(snapshot, req)
	if old == entities.VoteNone || (req.Value != entities.VoteNone && req.Value != old) {
		return Plan{Transition: entities.TransitionUnvote, From: old, Skip: entities.OutcomeStale}, nil
	}
	ratio := UnvoteRatio(snapshot.TotalUpCount, snapshot.TotalCount(), old)
	return Plan{
		Transition: entities.TransitionUnvote,
		From:       old,
		To:         entities.VoteNone,
		Condition:  UnvoteCondition(topology, req, old),
		Mutation:   UnvoteMutation(topology.UpdatePaths(req.Field()), req, old, ratio),
	}, nil
}

func noopPlan(value entities.VoteValue) Plan {
	return Plan{
		Transition: entities.TransitionNoop,
		From:       value,
		To:         value,
		Skip:       entities.OutcomeNoop,
	}
}

// RejectionOutcome maps an unmatched precondition to its outcome.
func RejectionOutcome(transition entities.Transition) entities.Outcome {
	if transition == entities.TransitionNew {
		return entities.OutcomeDuplicate
	}
	return entities.OutcomeStale
}
