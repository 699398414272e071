package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "votable/contexts/engagement/vote-engine/application"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

// CreateVoteeCommand registers a new votee with zeroed tallies. ParentID is
// required for embedded kinds and ignored otherwise; VoteeID is generated
// when empty.
type CreateVoteeCommand struct {
	Kind     string
	VoteeID  string
	ParentID string
}

type VoteeUseCase struct {
	Kinds  *services.Registry
	Store  ports.DocumentStore
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc VoteeUseCase) CreateVotee(ctx context.Context, cmd CreateVoteeCommand) (entities.Votee, error) {
	logger := application.ResolveLogger(uc.Logger)
	kind, err := uc.Kinds.Lookup(cmd.Kind)
	if err != nil {
		return entities.Votee{}, err
	}

	voteeID := strings.TrimSpace(cmd.VoteeID)
	if voteeID == "" {
		voteeID, err = uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Votee{}, err
		}
	} else if _, err := application.LoadVotee(ctx, uc.Store, kind, voteeID); err == nil {
		return entities.Votee{}, domainerrors.ErrVoteeExists
	} else if !errors.Is(err, domainerrors.ErrVoteeNotFound) {
		return entities.Votee{}, err
	}

	doc := entities.NewVoteeDocument(voteeID, kind.Fields...)
	if embedded, ok := kind.Topology.(services.Embedded); ok {
		parentID := strings.TrimSpace(cmd.ParentID)
		if parentID == "" {
			return entities.Votee{}, domainerrors.ErrInvalidVoteInput
		}
		found, err := uc.Store.PushElement(ctx, kind.Collection, parentID, embedded.Relation, doc)
		if err != nil {
			logger.Error("embedded votee create failed",
				"event", "vote_votee_create_failed",
				"module", "engagement/vote-engine",
				"layer", "application",
				"kind", kind.Name,
				"votee_id", voteeID,
				"parent_id", parentID,
				"error", err.Error(),
			)
			return entities.Votee{}, err
		}
		if !found {
			return entities.Votee{}, domainerrors.ErrParentNotFound
		}
	} else if err := uc.Store.InsertOne(ctx, kind.Collection, doc); err != nil {
		logger.Error("votee create failed",
			"event", "vote_votee_create_failed",
			"module", "engagement/vote-engine",
			"layer", "application",
			"kind", kind.Name,
			"votee_id", voteeID,
			"error", err.Error(),
		)
		return entities.Votee{}, err
	}

	logger.Info("votee created",
		"event", "vote_votee_created",
		"module", "engagement/vote-engine",
		"layer", "application",
		"kind", kind.Name,
		"votee_id", voteeID,
		"topology", kind.Topology.Name(),
	)
	return entities.NewVotee(doc)
}
