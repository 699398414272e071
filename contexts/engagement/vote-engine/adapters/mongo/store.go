package mongoadapter

import (
	"context"
	"errors"
	"log/slog"

	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store pushes conditions and mutations down to MongoDB, where a single
// findOneAndUpdate evaluates both atomically on one document.
type Store struct {
	db     *mongo.Database
	codec  Codec
	logger *slog.Logger
}

func NewStore(db *mongo.Database, codec Codec, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		codec:  codec,
		logger: logger,
	}
}

func (s *Store) FindOne(ctx context.Context, collection string, filter entities.Condition) (entities.Document, bool, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, s.codec.Filter(filter)).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, s.logError("vote_mongo_find_one_failed", err,
			"collection", collection,
			"votee_id", filter.VoteeID,
		)
	}
	return s.codec.Decode(raw), true, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter entities.Selector) ([]entities.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, s.codec.Selector(filter), opts)
	if err != nil {
		return nil, s.logError("vote_mongo_find_failed", err, "collection", collection)
	}
	defer cursor.Close(ctx)

	var docs []entities.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, s.logError("vote_mongo_find_decode_failed", err, "collection", collection)
		}
		docs = append(docs, s.codec.Decode(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, s.logError("vote_mongo_find_failed", err, "collection", collection)
	}
	return docs, nil
}

func (s *Store) FindOneAndUpdate(
	ctx context.Context,
	collection string,
	filter entities.Condition,
	update entities.Mutation,
) (entities.Document, bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err := s.db.Collection(collection).
		FindOneAndUpdate(ctx, s.codec.Filter(filter), s.codec.Update(update), opts).
		Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, s.logError("vote_mongo_find_one_and_update_failed", err,
			"collection", collection,
			"votee_id", filter.VoteeID,
		)
	}
	return s.codec.Decode(raw), true, nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc entities.Document) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, s.codec.Encode(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainerrors.ErrVoteeExists
		}
		return s.logError("vote_mongo_insert_failed", err,
			"collection", collection,
			"votee_id", doc[entities.KeyID],
		)
	}
	return nil
}

func (s *Store) PushElement(
	ctx context.Context,
	collection string,
	parentID string,
	relation string,
	element entities.Document,
) (bool, error) {
	filter := bson.D{{Key: entities.KeyID, Value: s.codec.id(parentID)}}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: relation, Value: s.codec.Encode(element)}}}}
	result, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, s.logError("vote_mongo_push_element_failed", err,
			"collection", collection,
			"parent_id", parentID,
			"relation", relation,
		)
	}
	return result.MatchedCount > 0, nil
}

func (s *Store) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "engagement/vote-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("vote mongo operation failed", fields...)
	return err
}

// ObjectIDGenerator issues hex ObjectIDs. They are stored natively when the
// codec maps ids to ObjectIDs and as plain strings otherwise.
type ObjectIDGenerator struct{}

func (ObjectIDGenerator) NewID(context.Context) (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

var _ ports.DocumentStore = (*Store)(nil)
var _ ports.IDGenerator = ObjectIDGenerator{}
