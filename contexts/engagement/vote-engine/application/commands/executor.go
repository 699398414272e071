package commands

import (
	"context"
	"log/slog"

	application "votable/contexts/engagement/vote-engine/application"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

// MutationExecutor submits one planned condition+update pair to the store as
// a single find-and-modify. It never retries: an unmatched precondition is
// reported back as "not applied".
type MutationExecutor struct {
	Store  ports.DocumentStore
	Logger *slog.Logger
}

// Apply returns the post-mutation tally of field when the precondition held.
func (e MutationExecutor) Apply(
	ctx context.Context,
	kind services.Kind,
	voteeID string,
	field string,
	plan services.Plan,
) (entities.Tally, bool, error) {
	logger := application.ResolveLogger(e.Logger)
	doc, matched, err := e.Store.FindOneAndUpdate(ctx, kind.Collection, plan.Condition, plan.Mutation)
	if err != nil {
		logger.Error("vote mutation failed",
			"event", "vote_mutation_failed",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", voteeID,
			"transition", string(plan.Transition),
			"error", err.Error(),
		)
		return entities.Tally{}, false, err
	}
	if !matched {
		logger.Debug("vote mutation precondition not met",
			"event", "vote_mutation_unmatched",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", voteeID,
			"transition", string(plan.Transition),
		)
		return entities.Tally{}, false, nil
	}
	votee, ok := kind.Topology.Locate(doc, voteeID)
	if !ok {
		return entities.Tally{}, true, domainerrors.ErrMalformedDocument
	}
	return entities.DecodeTally(votee, field), true, nil
}
