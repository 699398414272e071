package entities

import (
	"strings"

	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
)

// DefaultVotingField is the tally namespace used when a request names none.
const DefaultVotingField = "votes"

type VoteValue string

const (
	VoteNone VoteValue = ""
	VoteUp   VoteValue = "up"
	VoteDown VoteValue = "down"
)

func (v VoteValue) Valid() bool {
	return v == VoteUp || v == VoteDown
}

func (v VoteValue) Opposite() VoteValue {
	switch v {
	case VoteUp:
		return VoteDown
	case VoteDown:
		return VoteUp
	default:
		return VoteNone
	}
}

// ParseVoteValue accepts the wire spellings used by API callers.
func ParseVoteValue(raw string) (VoteValue, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "up", "upvote", "+1":
		return VoteUp, nil
	case "down", "downvote", "-1":
		return VoteDown, nil
	case "":
		return VoteNone, nil
	default:
		return VoteNone, domainerrors.ErrInvalidVoteInput
	}
}

// Weights maps a vote value to its point contribution.
type Weights struct {
	Up   float64
	Down float64
}

func DefaultWeights() Weights {
	return Weights{Up: 1, Down: -1}
}

func (w Weights) For(value VoteValue) float64 {
	switch value {
	case VoteUp:
		return w.Up
	case VoteDown:
		return w.Down
	default:
		return 0
	}
}

// VoteRequest is the validated intent handed to the planner. It is built per
// call and never persisted.
type VoteRequest struct {
	Kind        string
	VoteeID     string
	VoterID     string
	IP          string
	Value       VoteValue
	VotingField string
	// Previous is the prior value asserted by the caller. It is consulted
	// only for anonymous votes logged before the per-option ip logs existed.
	Previous VoteValue
	Weights  Weights
}

func (r VoteRequest) Identified() bool {
	return strings.TrimSpace(r.VoterID) != ""
}

func (r VoteRequest) HasIP() bool {
	return strings.TrimSpace(r.IP) != ""
}

func (r VoteRequest) Field() string {
	if field := strings.TrimSpace(r.VotingField); field != "" {
		return field
	}
	return DefaultVotingField
}

// Validate checks the fields every transition needs. Unvote callers pass
// requireValue=false since only the recorded value matters there.
func (r VoteRequest) Validate(requireValue bool) error {
	if strings.TrimSpace(r.VoteeID) == "" {
		return domainerrors.ErrInvalidVoteInput
	}
	if requireValue && !r.Value.Valid() {
		return domainerrors.ErrInvalidVoteInput
	}
	if !requireValue && r.Value != VoteNone && !r.Value.Valid() {
		return domainerrors.ErrInvalidVoteInput
	}
	if r.Previous != VoteNone && !r.Previous.Valid() {
		return domainerrors.ErrInvalidVoteInput
	}
	if strings.Contains(r.Field(), "$") || strings.HasPrefix(r.Field(), ".") || strings.HasSuffix(r.Field(), ".") {
		return domainerrors.ErrInvalidVoteInput
	}
	return nil
}

type Transition string

const (
	TransitionNew    Transition = "new_vote"
	TransitionRevote Transition = "revote"
	TransitionUnvote Transition = "unvote"
	TransitionNoop   Transition = "noop"
)

// Outcome reports what happened to a request. Rejections are values, not
// errors: a repeated vote is an expected result.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate_vote_rejected"
	OutcomeStale     Outcome = "stale_state_rejected"
	OutcomeNoop      Outcome = "noop"
)

type VoteResult struct {
	Transition Transition
	Outcome    Outcome
	From       VoteValue
	To         VoteValue
	// Tally is the post-mutation aggregate when applied, otherwise the
	// snapshot the plan was built from.
	Tally Tally
}

func (r VoteResult) Applied() bool {
	return r.Outcome == OutcomeApplied
}
