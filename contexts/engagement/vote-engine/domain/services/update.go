package services

import "votable/contexts/engagement/vote-engine/domain/entities"

// NewVoteMutation increments the option, total-option and overall counters,
// adds the weighted point and sets the projected ratio. Faceless votes bump
// the faceless option counter, leave count untouched and log the ip under
// the chosen option. Voter and ip are appended only when present.
func NewVoteMutation(paths Paths, req entities.VoteRequest, ratio float64) entities.Mutation {
	value := req.Value
	faceless := !req.Identified()

	counters := []entities.Counter{
		{Path: paths.OptionCount(value, faceless), Delta: 1},
		{Path: paths.TotalOptionCount(value), Delta: 1},
	}
	if !faceless {
		counters = append(counters, entities.Counter{Path: paths.Count(), Delta: 1})
	}

	mutation := entities.Mutation{
		Counters:   counters,
		PointPath:  paths.Point(),
		PointDelta: req.Weights.For(value),
		RatioPath:  paths.Ratio(),
		Ratio:      ratio,
	}
	if !faceless {
		mutation.PushVoter = &entities.ArrayEdit{Path: paths.VoterIDs(value), Value: req.VoterID}
	}
	if req.HasIP() {
		mutation.PushIP = &entities.ArrayEdit{Path: paths.IPLog(), Value: req.IP}
	}
	if faceless && req.HasIP() {
		mutation.PushOptionIP = &entities.ArrayEdit{Path: paths.OptionIPLog(value), Value: req.IP}
	}
	return mutation
}

// RevoteMutation moves one vote from one option to the other. The overall
// count is unchanged; option and total-option counters move by one each and
// point shifts by the weight difference.
func RevoteMutation(paths Paths, req entities.VoteRequest, from entities.VoteValue, ratio float64) entities.Mutation {
	to := req.Value
	faceless := !req.Identified()

	mutation := entities.Mutation{
		Counters: []entities.Counter{
			{Path: paths.OptionCount(from, faceless), Delta: -1},
			{Path: paths.OptionCount(to, faceless), Delta: 1},
			{Path: paths.TotalOptionCount(from), Delta: -1},
			{Path: paths.TotalOptionCount(to), Delta: 1},
		},
		PointPath:  paths.Point(),
		PointDelta: req.Weights.For(to) - req.Weights.For(from),
		RatioPath:  paths.Ratio(),
		Ratio:      ratio,
	}
	if faceless {
		mutation.PullOptionIP = &entities.ArrayEdit{Path: paths.OptionIPLog(from), Value: req.IP}
		mutation.PushOptionIP = &entities.ArrayEdit{Path: paths.OptionIPLog(to), Value: req.IP}
	} else {
		mutation.PullVoter = &entities.ArrayEdit{Path: paths.VoterIDs(from), Value: req.VoterID}
		mutation.PushVoter = &entities.ArrayEdit{Path: paths.VoterIDs(to), Value: req.VoterID}
	}
	return mutation
}

// UnvoteMutation reverses a recorded vote of value old.
func UnvoteMutation(paths Paths, req entities.VoteRequest, old entities.VoteValue, ratio float64) entities.Mutation {
	faceless := !req.Identified()

	counters := []entities.Counter{
		{Path: paths.OptionCount(old, faceless), Delta: -1},
		{Path: paths.TotalOptionCount(old), Delta: -1},
	}
	if !faceless {
		counters = append(counters, entities.Counter{Path: paths.Count(), Delta: -1})
	}

	mutation := entities.Mutation{
		Counters:   counters,
		PointPath:  paths.Point(),
		PointDelta: -req.Weights.For(old),
		RatioPath:  paths.Ratio(),
		Ratio:      ratio,
	}
	if !faceless {
		mutation.PullVoter = &entities.ArrayEdit{Path: paths.VoterIDs(old), Value: req.VoterID}
	}
	if req.HasIP() {
		mutation.PullIP = &entities.ArrayEdit{Path: paths.IPLog(), Value: req.IP}
	}
	if faceless && req.HasIP() {
		mutation.PullOptionIP = &entities.ArrayEdit{Path: paths.OptionIPLog(old), Value: req.IP}
	}
	return mutation
}

// RatioRefreshMutation only rewrites the ratio.
func RatioRefreshMutation(paths Paths, ratio float64) entities.Mutation {
	return entities.Mutation{RatioPath: paths.Ratio(), Ratio: ratio}
}
