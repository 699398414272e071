package ports

import (
	"context"

	"votable/contexts/engagement/vote-engine/domain/entities"
)

// DocumentStore is the document-store collaborator. FindOneAndUpdate is the
// only write primitive votes go through: it applies the mutation to the one
// document matching the condition, or to nothing.
type DocumentStore interface {
	FindOne(ctx context.Context, collection string, filter entities.Condition) (entities.Document, bool, error)
	FindOneAndUpdate(
		ctx context.Context,
		collection string,
		filter entities.Condition,
		update entities.Mutation,
	) (entities.Document, bool, error)
	// Find returns every document matching filter in store order.
	Find(ctx context.Context, collection string, filter entities.Selector) ([]entities.Document, error)
	InsertOne(ctx context.Context, collection string, doc entities.Document) error
	// PushElement appends element to the parentID document's relation array
	// and reports whether the parent existed.
	PushElement(
		ctx context.Context,
		collection string,
		parentID string,
		relation string,
		element entities.Document,
	) (bool, error)
}

// RefreshTarget names one voting field whose ratio should be recomputed.
type RefreshTarget struct {
	Kind        string
	VoteeID     string
	VotingField string
}

type RefreshQueue interface {
	Enqueue(ctx context.Context, target RefreshTarget) error
	Dequeue(ctx context.Context, limit int) ([]RefreshTarget, error)
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
