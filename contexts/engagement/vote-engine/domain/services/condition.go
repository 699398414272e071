package services

import "votable/contexts/engagement/vote-engine/domain/entities"

// NewVoteCondition requires the votee to exist, the voter to be absent from
// both option arrays and the ip to be absent from the ip log. Unset voter or
// ip add no clause.
func NewVoteCondition(topology Topology, req entities.VoteRequest) entities.Condition {
	paths := topology.QueryPaths(req.Field())
	var clauses []entities.Clause
	if req.Identified() {
		clauses = append(clauses,
			voterClause(paths.VoterIDs(entities.VoteUp), entities.ClauseNotContains, req.VoterID),
			voterClause(paths.VoterIDs(entities.VoteDown), entities.ClauseNotContains, req.VoterID),
		)
	}
	if req.HasIP() {
		clauses = append(clauses, ipClause(paths.IPLog(), entities.ClauseNotContains, req.IP))
	}
	return topology.Condition(req.VoteeID, clauses...)
}

// RevoteCondition guards against a stale read of the voter's current value:
// the voter must still sit in the old array and not yet in the new one.
// Anonymous voters are checked the same way through the per-option ip logs.
func RevoteCondition(topology Topology, req entities.VoteRequest, from entities.VoteValue) entities.Condition {
	paths := topology.QueryPaths(req.Field())
	if !req.Identified() {
		return topology.Condition(req.VoteeID,
			ipClause(paths.OptionIPLog(from), entities.ClauseContains, req.IP),
			ipClause(paths.OptionIPLog(from.Opposite()), entities.ClauseNotContains, req.IP),
		)
	}
	return topology.Condition(req.VoteeID,
		voterClause(paths.VoterIDs(from), entities.ClauseContains, req.VoterID),
		voterClause(paths.VoterIDs(from.Opposite()), entities.ClauseNotContains, req.VoterID),
	)
}

// UnvoteCondition requires the recorded vote that is about to be removed.
func UnvoteCondition(topology Topology, req entities.VoteRequest, old entities.VoteValue) entities.Condition {
	paths := topology.QueryPaths(req.Field())
	if !req.Identified() {
		return topology.Condition(req.VoteeID, ipClause(paths.OptionIPLog(old), entities.ClauseContains, req.IP))
	}
	return topology.Condition(req.VoteeID,
		voterClause(paths.VoterIDs(old), entities.ClauseContains, req.VoterID),
	)
}

// RatioRefreshCondition only matches while the totals still equal snapshot.
func RatioRefreshCondition(topology Topology, voteeID string, field string, snapshot entities.Tally) entities.Condition {
	paths := topology.QueryPaths(field)
	return topology.Condition(voteeID,
		numberClause(paths.TotalOptionCount(entities.VoteUp), snapshot.TotalUpCount),
		numberClause(paths.TotalOptionCount(entities.VoteDown), snapshot.TotalDownCount),
	)
}

// VotedBySelector matches the votees voterID holds a vote on in field.
func VotedBySelector(topology Topology, field string, voterID string) entities.Selector {
	paths := topology.QueryPaths(field)
	return entities.Selector{
		Relation: topology.Condition("").Relation,
		AnyOf: []entities.Clause{
			voterClause(paths.VoterIDs(entities.VoteUp), entities.ClauseContains, voterID),
			voterClause(paths.VoterIDs(entities.VoteDown), entities.ClauseContains, voterID),
		},
	}
}

func voterClause(path string, op entities.ClauseOp, voterID string) entities.Clause {
	return entities.Clause{Path: path, Op: op, Kind: entities.ValueVoter, Value: voterID}
}

func ipClause(path string, op entities.ClauseOp, ip string) entities.Clause {
	return entities.Clause{Path: path, Op: op, Kind: entities.ValueIP, Value: ip}
}

func numberClause(path string, value int64) entities.Clause {
	return entities.Clause{Path: path, Op: entities.ClauseEquals, Kind: entities.ValueNumber, Number: value}
}
