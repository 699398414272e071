package commands

import (
	"context"
	"log/slog"
	"strings"

	application "votable/contexts/engagement/vote-engine/application"
	"votable/contexts/engagement/vote-engine/domain/entities"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

// VoteCommand is the raw vote intent as it arrives from a caller. Value and
// Previous use the wire spellings accepted by entities.ParseVoteValue.
type VoteCommand struct {
	Kind        string
	VoteeID     string
	VoterID     string
	IP          string
	Value       string
	VotingField string
	Previous    string
}

// VoteUseCase runs the vote state machine: snapshot read, plan, and a single
// conditional mutation. Concurrency safety comes entirely from the store
// evaluating the condition and update atomically.
type VoteUseCase struct {
	Kinds  *services.Registry
	Store  ports.DocumentStore
	Ratios ports.RefreshQueue
	Logger *slog.Logger
}

type planFunc func(services.Topology, entities.Tally, entities.VoteRequest) (services.Plan, error)

// NewVote records a first vote. A voter (or ip) already present makes the
// store reject it as a duplicate.
func (uc VoteUseCase) NewVote(ctx context.Context, cmd VoteCommand) (entities.VoteResult, error) {
	return uc.run(ctx, "new_vote", cmd, true, services.PlanNewVote)
}

// Revote moves an existing vote to the opposite value.
func (uc VoteUseCase) Revote(ctx context.Context, cmd VoteCommand) (entities.VoteResult, error) {
	return uc.run(ctx, "revote", cmd, true, services.PlanRevote)
}

// Unvote removes the voter's recorded vote.
func (uc VoteUseCase) Unvote(ctx context.Context, cmd VoteCommand) (entities.VoteResult, error) {
	return uc.run(ctx, "unvote", cmd, false, services.PlanUnvote)
}

// Vote picks the transition from the voter's current state.
func (uc VoteUseCase) Vote(ctx context.Context, cmd VoteCommand) (entities.VoteResult, error) {
	return uc.run(ctx, "vote", cmd, true, services.PlanVote)
}

func (uc VoteUseCase) run(
	ctx context.Context,
	operation string,
	cmd VoteCommand,
	requireValue bool,
	plan planFunc,
) (entities.VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Debug("vote processing started",
		"event", "vote_"+operation+"_started",
		"module", "engagement/vote-engine",
		"layer", "application",
		"kind", strings.TrimSpace(cmd.Kind),
		"votee_id", strings.TrimSpace(cmd.VoteeID),
		"voter_id", strings.TrimSpace(cmd.VoterID),
	)

	kind, req, err := uc.resolve(cmd, requireValue)
	if err != nil {
		logger.Warn("vote validation failed",
			"event", "vote_"+operation+"_validation_failed",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", strings.TrimSpace(cmd.Kind),
			"votee_id", strings.TrimSpace(cmd.VoteeID),
			"error", err.Error(),
		)
		return entities.VoteResult{}, err
	}

	snapshot, err := application.LoadTally(ctx, uc.Store, kind, req.VoteeID, req.Field())
	if err != nil {
		logger.Warn("vote snapshot read failed",
			"event", "vote_"+operation+"_snapshot_failed",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", req.VoteeID,
			"error", err.Error(),
		)
		return entities.VoteResult{}, err
	}

	planned, err := plan(kind.Topology, snapshot, req)
	if err != nil {
		return entities.VoteResult{}, err
	}
	result := entities.VoteResult{
		Transition: planned.Transition,
		From:       planned.From,
		To:         planned.To,
		Tally:      snapshot,
	}
	if planned.Skip != "" {
		result.Outcome = planned.Skip
		logger.Info("vote resolved without mutation",
			"event", "vote_"+operation+"_skipped",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", req.VoteeID,
			"outcome", string(result.Outcome),
		)
		return result, nil
	}

	executor := MutationExecutor{Store: uc.Store, Logger: uc.Logger}
	tally, applied, err := executor.Apply(ctx, kind, req.VoteeID, req.Field(), planned)
	if err != nil {
		return entities.VoteResult{}, err
	}
	if !applied {
		result.Outcome = services.RejectionOutcome(planned.Transition)
		logger.Info("vote rejected by precondition",
			"event", "vote_"+operation+"_rejected",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", req.VoteeID,
			"voter_id", req.VoterID,
			"outcome", string(result.Outcome),
		)
		return result, nil
	}

	result.Outcome = entities.OutcomeApplied
	result.Tally = tally
	uc.scheduleRatioRefresh(ctx, logger, kind, req)
	logger.Info("vote applied",
		"event", "vote_"+operation+"_applied",
		"module", "engagement/vote-engine",
		"layer", "application",
		"kind", kind.Name,
		"votee_id", req.VoteeID,
		"voter_id", req.VoterID,
		"transition", string(result.Transition),
		"from", string(result.From),
		"to", string(result.To),
	)
	return result, nil
}

func (uc VoteUseCase) resolve(cmd VoteCommand, requireValue bool) (services.Kind, entities.VoteRequest, error) {
	kind, err := uc.Kinds.Lookup(cmd.Kind)
	if err != nil {
		return services.Kind{}, entities.VoteRequest{}, err
	}
	field, err := application.ResolveField(kind, cmd.VotingField)
	if err != nil {
		return services.Kind{}, entities.VoteRequest{}, err
	}
	value, err := entities.ParseVoteValue(cmd.Value)
	if err != nil {
		return services.Kind{}, entities.VoteRequest{}, err
	}
	previous, err := entities.ParseVoteValue(cmd.Previous)
	if err != nil {
		return services.Kind{}, entities.VoteRequest{}, err
	}
	req := entities.VoteRequest{
		Kind:        kind.Name,
		VoteeID:     strings.TrimSpace(cmd.VoteeID),
		VoterID:     strings.TrimSpace(cmd.VoterID),
		IP:          strings.TrimSpace(cmd.IP),
		Value:       value,
		VotingField: field,
		Previous:    previous,
		Weights:     kind.Weights,
	}
	if err := req.Validate(requireValue); err != nil {
		return services.Kind{}, entities.VoteRequest{}, err
	}
	return kind, req, nil
}

// scheduleRatioRefresh queues the field for a background ratio recompute.
// Queue failures are logged only; the vote itself already committed.
func (uc VoteUseCase) scheduleRatioRefresh(ctx context.Context, logger *slog.Logger, kind services.Kind, req entities.VoteRequest) {
	if uc.Ratios == nil {
		return
	}
	target := ports.RefreshTarget{Kind: kind.Name, VoteeID: req.VoteeID, VotingField: req.Field()}
	if err := uc.Ratios.Enqueue(ctx, target); err != nil {
		logger.Warn("ratio refresh enqueue failed",
			"event", "vote_ratio_refresh_enqueue_failed",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", req.VoteeID,
			"error", err.Error(),
		)
	}
}
