package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"votable/contexts/engagement/vote-engine/adapters/docmatch"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS vote_documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
ALTER TABLE vote_documents ADD COLUMN IF NOT EXISTS created_at TIMESTAMPTZ NOT NULL DEFAULT now();
CREATE INDEX IF NOT EXISTS vote_documents_body_gin ON vote_documents USING GIN (body jsonb_path_ops);
`

// Repository stores votee documents as JSONB rows. Postgres cannot evaluate
// the array predicates natively against nested paths, so each conditional
// update locks the row, evaluates the condition in process and writes the
// new body inside the same transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec(schemaDDL).Error; err != nil {
		return r.logError("vote_repo_ensure_schema_failed", err)
	}
	return nil
}

func (r *Repository) FindOne(ctx context.Context, collection string, filter entities.Condition) (entities.Document, bool, error) {
	doc, _, found, err := r.findMatching(r.db.WithContext(ctx), collection, filter, false)
	if err != nil {
		return nil, false, r.logError("vote_repo_find_one_failed", err,
			"collection", collection,
			"votee_id", filter.VoteeID,
		)
	}
	return doc, found, nil
}

// Find narrows rows with JSONB containment on each clause and re-checks the
// decoded bodies in process. Rows come back in insertion order.
func (r *Repository) Find(ctx context.Context, collection string, filter entities.Selector) ([]entities.Document, error) {
	query := r.db.WithContext(ctx).Model(&documentModel{}).Where("collection = ?", strings.TrimSpace(collection))
	where, args, err := containment(filter)
	if err != nil {
		return nil, err
	}
	if where != "" {
		query = query.Where(where, args...)
	}
	var rows []documentModel
	if err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_find_failed", err, "collection", collection)
	}
	docs := make([]entities.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeBody(row.Body)
		if err != nil {
			return nil, r.logError("vote_repo_find_failed", err, "collection", collection, "votee_id", row.ID)
		}
		if docmatch.Select(doc, filter) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (r *Repository) FindOneAndUpdate(
	ctx context.Context,
	collection string,
	filter entities.Condition,
	update entities.Mutation,
) (entities.Document, bool, error) {
	var (
		result  entities.Document
		matched bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, row, found, err := r.findMatching(tx, collection, filter, true)
		if err != nil || !found {
			return err
		}
		position, _ := docmatch.Match(doc, filter)
		if err := docmatch.Apply(doc, position, update); err != nil {
			return err
		}
		if err := r.saveBody(tx, row, doc); err != nil {
			return err
		}
		result, matched = doc, true
		return nil
	})
	if err != nil {
		return nil, false, r.logError("vote_repo_find_one_and_update_failed", err,
			"collection", collection,
			"votee_id", filter.VoteeID,
		)
	}
	return result, matched, nil
}

func (r *Repository) InsertOne(ctx context.Context, collection string, doc entities.Document) error {
	id := strings.TrimSpace(fmt.Sprint(doc[entities.KeyID]))
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := documentModel{
		Collection: strings.TrimSpace(collection),
		ID:         id,
		Body:       string(body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrVoteeExists
		}
		return r.logError("vote_repo_insert_failed", err,
			"collection", collection,
			"votee_id", id,
		)
	}
	return nil
}

func (r *Repository) PushElement(
	ctx context.Context,
	collection string,
	parentID string,
	relation string,
	element entities.Document,
) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", strings.TrimSpace(collection), strings.TrimSpace(parentID)).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		parent, err := decodeBody(row.Body)
		if err != nil {
			return err
		}
		items, _ := parent[relation].([]any)
		parent[relation] = append(items, map[string]any(docmatch.Clone(element)))
		if err := r.saveBody(tx, row, parent); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, r.logError("vote_repo_push_element_failed", err,
			"collection", collection,
			"parent_id", parentID,
			"relation", relation,
		)
	}
	return found, nil
}

// findMatching loads candidate rows for filter and returns the first whose
// body satisfies it. lock selects the rows FOR UPDATE.
func (r *Repository) findMatching(
	tx *gorm.DB,
	collection string,
	filter entities.Condition,
	lock bool,
) (entities.Document, documentModel, bool, error) {
	query := tx.Model(&documentModel{}).Where("collection = ?", strings.TrimSpace(collection))
	if filter.Embedded() {
		element, err := json.Marshal([]map[string]string{{entities.KeyID: filter.VoteeID}})
		if err != nil {
			return nil, documentModel{}, false, err
		}
		query = query.Where("body -> ? @> ?::jsonb", filter.Relation, string(element))
	} else {
		query = query.Where("id = ?", filter.VoteeID)
	}
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []documentModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, documentModel{}, false, err
	}
	for _, row := range rows {
		doc, err := decodeBody(row.Body)
		if err != nil {
			return nil, documentModel{}, false, err
		}
		if _, matched := docmatch.Match(doc, filter); matched {
			return doc, row, true, nil
		}
	}
	return nil, documentModel{}, false, nil
}

// containment renders the contains clauses of sel as OR-ed JSONB @>
// predicates. Other clause ops are left to the in-process check.
func containment(sel entities.Selector) (string, []any, error) {
	var (
		parts []string
		args  []any
	)
	for _, c := range sel.AnyOf {
		if c.Op != entities.ClauseContains {
			return "", nil, nil
		}
		var fragment any = nestPath(c.Path, []string{c.Value})
		column := "body"
		if sel.Embedded() {
			fragment = []any{fragment}
			column = "body -> ?"
			args = append(args, sel.Relation)
		}
		encoded, err := json.Marshal(fragment)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, column+" @> ?::jsonb")
		args = append(args, string(encoded))
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

func nestPath(path string, leaf any) map[string]any {
	segments := strings.Split(path, ".")
	node := map[string]any{segments[len(segments)-1]: leaf}
	for i := len(segments) - 2; i >= 0; i-- {
		node = map[string]any{segments[i]: node}
	}
	return node
}

func (r *Repository) saveBody(tx *gorm.DB, row documentModel, doc entities.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.Model(&documentModel{}).
		Where("collection = ? AND id = ?", row.Collection, row.ID).
		Updates(map[string]any{
			"body":       string(body),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "engagement/vote-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

type documentModel struct {
	Collection string    `gorm:"column:collection;primaryKey"`
	ID         string    `gorm:"column:id;primaryKey"`
	Body       string    `gorm:"column:body;type:jsonb"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (documentModel) TableName() string {
	return "vote_documents"
}

// decodeBody keeps numbers as json.Number so counters stay integral.
func decodeBody(body string) (entities.Document, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(body)))
	decoder.UseNumber()
	var doc map[string]any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrMalformedDocument, err)
	}
	return entities.Document(doc), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.DocumentStore = (*Repository)(nil)
var _ ports.IDGenerator = UUIDGenerator{}
