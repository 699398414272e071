package services

import "votable/contexts/engagement/vote-engine/domain/entities"

// Ratio returns up/total, or 0 for an empty tally.
func Ratio(totalUp int64, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(totalUp) / float64(total)
}

// NewVoteRatio projects the ratio after one more vote of value. Both inputs
// must come from the snapshot the mutation's precondition was built from.
func NewVoteRatio(totalUp int64, total int64, value entities.VoteValue) float64 {
	if value == entities.VoteUp {
		return Ratio(totalUp+1, total+1)
	}
	return Ratio(totalUp, total+1)
}

// RevoteRatio projects the ratio after one vote moves from one option to the
// other. The total does not change.
func RevoteRatio(totalUp int64, total int64, from entities.VoteValue, to entities.VoteValue) float64 {
	switch {
	case from == entities.VoteDown && to == entities.VoteUp:
		return Ratio(totalUp+1, total)
	case from == entities.VoteUp && to == entities.VoteDown:
		return Ratio(totalUp-1, total)
	default:
		return Ratio(totalUp, total)
	}
}

// UnvoteRatio projects the ratio after one vote of old is removed.
func UnvoteRatio(totalUp int64, total int64, old entities.VoteValue) float64 {
	if old == entities.VoteUp {
		return Ratio(totalUp-1, total-1)
	}
	return Ratio(totalUp, total-1)
}
