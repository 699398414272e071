package queries

import (
	"context"
	"strings"

	application "votable/contexts/engagement/vote-engine/application"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

type TallyUseCase struct {
	Kinds *services.Registry
	Store ports.DocumentStore
}

func (uc TallyUseCase) Tally(ctx context.Context, kindName string, voteeID string, field string) (entities.Tally, error) {
	kind, field, err := uc.resolve(kindName, field)
	if err != nil {
		return entities.Tally{}, err
	}
	return application.LoadTally(ctx, uc.Store, kind, strings.TrimSpace(voteeID), field)
}

// VoteValue reports how voterID voted on the votee, or VoteNone.
func (uc TallyUseCase) VoteValue(
	ctx context.Context,
	kindName string,
	voteeID string,
	field string,
	voterID string,
) (entities.VoteValue, error) {
	tally, err := uc.Tally(ctx, kindName, voteeID, field)
	if err != nil {
		return entities.VoteNone, err
	}
	return tally.VoteValue(strings.TrimSpace(voterID)), nil
}

func (uc TallyUseCase) Voted(ctx context.Context, kindName string, voteeID string, field string, voterID string) (bool, error) {
	value, err := uc.VoteValue(ctx, kindName, voteeID, field, voterID)
	if err != nil {
		return false, err
	}
	return value != entities.VoteNone, nil
}

// Votees lists the votees of a kind voterID has voted on in field, in store
// order. Embedded votees are listed individually.
func (uc TallyUseCase) Votees(ctx context.Context, kindName string, voterID string, field string) ([]entities.Votee, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	kind, field, err := uc.resolve(kindName, field)
	if err != nil {
		return nil, err
	}
	docs, err := uc.Store.Find(ctx, kind.Collection, services.VotedBySelector(kind.Topology, field, voterID))
	if err != nil {
		return nil, err
	}
	votees := make([]entities.Votee, 0, len(docs))
	for _, doc := range docs {
		for _, element := range kind.Topology.Elements(doc) {
			if entities.DecodeTally(element, field).VoteValue(voterID) == entities.VoteNone {
				continue
			}
			votee, err := entities.NewVotee(element)
			if err != nil {
				return nil, domainerrors.ErrMalformedDocument
			}
			votees = append(votees, votee)
		}
	}
	return votees, nil
}

func (uc TallyUseCase) resolve(kindName string, field string) (services.Kind, string, error) {
	kind, err := uc.Kinds.Lookup(kindName)
	if err != nil {
		return services.Kind{}, "", err
	}
	field, err = application.ResolveField(kind, field)
	if err != nil {
		return services.Kind{}, "", err
	}
	return kind, field, nil
}
