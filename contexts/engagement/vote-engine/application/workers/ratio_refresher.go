package workers

import (
	"context"
	"errors"
	"log/slog"
	"math"

	application "votable/contexts/engagement/vote-engine/application"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

const ratioEpsilon = 1e-9

// RatioRefresher recomputes stored ratios from the current totals. Vote
// mutations project the ratio from their snapshot, so concurrent writers can
// leave it stale; each refresh is itself conditional on the totals it read.
type RatioRefresher struct {
	Kinds     *services.Registry
	Store     ports.DocumentStore
	Queue     ports.RefreshQueue
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce drains a bounded batch of targets. A target whose totals moved
// between read and write is requeued for the next cycle.
func (r RatioRefresher) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	targets, err := r.Queue.Dequeue(ctx, limit)
	if err != nil {
		logger.Error("ratio refresh dequeue failed",
			"event", "vote_ratio_refresh_dequeue_failed",
			"module", "engagement/vote-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	refreshed := 0
	for _, target := range targets {
		changed, err := r.refresh(ctx, target)
		if err != nil {
			if errors.Is(err, domainerrors.ErrVoteeNotFound) || errors.Is(err, domainerrors.ErrUnknownVoteeKind) {
				logger.Warn("ratio refresh target dropped",
					"event", "vote_ratio_refresh_dropped",
					"module", "engagement/vote-engine",
					"layer", "worker",
					"kind", target.Kind,
					"votee_id", target.VoteeID,
					"error", err.Error(),
				)
				continue
			}
			logger.Error("ratio refresh failed",
				"event", "vote_ratio_refresh_failed",
				"module", "engagement/vote-engine",
				"layer", "worker",
				"kind", target.Kind,
				"votee_id", target.VoteeID,
				"error", err.Error(),
			)
			return err
		}
		if changed {
			refreshed++
		}
	}

	logger.Info("ratio refresh cycle completed",
		"event", "vote_ratio_refresh_completed",
		"module", "engagement/vote-engine",
		"layer", "worker",
		"targets", len(targets),
		"refreshed", refreshed,
	)
	return nil
}

func (r RatioRefresher) refresh(ctx context.Context, target ports.RefreshTarget) (bool, error) {
	kind, err := r.Kinds.Lookup(target.Kind)
	if err != nil {
		return false, err
	}
	tally, err := application.LoadTally(ctx, r.Store, kind, target.VoteeID, target.VotingField)
	if err != nil {
		return false, err
	}
	ratio := services.Ratio(tally.TotalUpCount, tally.TotalCount())
	if math.Abs(ratio-tally.Ratio) < ratioEpsilon {
		return false, nil
	}

	condition := services.RatioRefreshCondition(kind.Topology, target.VoteeID, target.VotingField, tally)
	mutation := services.RatioRefreshMutation(kind.Topology.UpdatePaths(target.VotingField), ratio)
	_, matched, err := r.Store.FindOneAndUpdate(ctx, kind.Collection, condition, mutation)
	if err != nil {
		return false, err
	}
	if !matched {
		return false, r.Queue.Enqueue(ctx, target)
	}
	return true, nil
}
