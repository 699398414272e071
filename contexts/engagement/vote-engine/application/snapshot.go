package application

import (
	"context"
	"strings"

	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

// ResolveField checks that kind hosts field. An empty field selects the
// kind's first registered field.
func ResolveField(kind services.Kind, field string) (string, error) {
	field = strings.TrimSpace(field)
	if field == "" && len(kind.Fields) > 0 {
		field = kind.Fields[0]
	}
	if !kind.HasField(field) {
		return "", domainerrors.ErrUnknownVotingField
	}
	return field, nil
}

// LoadVotee reads the votee document for voteeID, unwrapping embedded
// elements from their parent.
func LoadVotee(ctx context.Context, store ports.DocumentStore, kind services.Kind, voteeID string) (entities.Document, error) {
	doc, found, err := store.FindOne(ctx, kind.Collection, kind.Topology.Condition(voteeID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrVoteeNotFound
	}
	votee, ok := kind.Topology.Locate(doc, voteeID)
	if !ok {
		return nil, domainerrors.ErrMalformedDocument
	}
	return votee, nil
}

// LoadTally is LoadVotee followed by decoding one voting field.
func LoadTally(
	ctx context.Context,
	store ports.DocumentStore,
	kind services.Kind,
	voteeID string,
	field string,
) (entities.Tally, error) {
	votee, err := LoadVotee(ctx, store, kind, voteeID)
	if err != nil {
		return entities.Tally{}, err
	}
	return entities.DecodeTally(votee, field), nil
}
