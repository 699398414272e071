package mongoadapter

import (
	"votable/contexts/engagement/vote-engine/domain/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Codec renders conditions and mutations into MongoDB query and update
// documents. With ObjectIDs set, votee ids and voter ids that are valid hex
// object ids are stored as ObjectID values and read back as hex strings.
type Codec struct {
	ObjectIDs bool
}

// Filter renders cond. Embedded conditions become a single $elemMatch on the
// relation so every clause is evaluated against the same array element.
func (c Codec) Filter(cond entities.Condition) bson.D {
	clauses := c.clauses(cond.Clauses)
	if !cond.Embedded() {
		return append(bson.D{{Key: entities.KeyID, Value: c.id(cond.VoteeID)}}, clauses...)
	}
	element := append(bson.D{{Key: entities.KeyID, Value: c.id(cond.VoteeID)}}, clauses...)
	return bson.D{{Key: cond.Relation, Value: bson.D{{Key: "$elemMatch", Value: element}}}}
}

// Selector renders sel as an $or over its clauses. Embedded selectors wrap
// the $or in an $elemMatch so one element must satisfy it.
func (c Codec) Selector(sel entities.Selector) bson.D {
	anyOf := make(bson.A, 0, len(sel.AnyOf))
	for _, clause := range sel.AnyOf {
		anyOf = append(anyOf, bson.D{{Key: clause.Path, Value: c.clauseValue(clause)}})
	}
	or := bson.D{{Key: "$or", Value: anyOf}}
	if !sel.Embedded() {
		return or
	}
	return bson.D{{Key: sel.Relation, Value: bson.D{{Key: "$elemMatch", Value: or}}}}
}

// Update renders mutation with $inc, $set, $push and $pull. Embedded paths
// already carry the positional "$" segment.
func (c Codec) Update(mutation entities.Mutation) bson.D {
	update := bson.D{}
	inc := bson.D{}
	for _, counter := range mutation.Counters {
		inc = append(inc, bson.E{Key: counter.Path, Value: counter.Delta})
	}
	if mutation.PointPath != "" {
		inc = append(inc, bson.E{Key: mutation.PointPath, Value: mutation.PointDelta})
	}
	if len(inc) > 0 {
		update = append(update, bson.E{Key: "$inc", Value: inc})
	}
	if mutation.RatioPath != "" {
		update = append(update, bson.E{Key: "$set", Value: bson.D{{Key: mutation.RatioPath, Value: mutation.Ratio}}})
	}
	if push := c.edits(mutation.PushVoter, mutation.PushIP, mutation.PushOptionIP); len(push) > 0 {
		update = append(update, bson.E{Key: "$push", Value: push})
	}
	if pull := c.edits(mutation.PullVoter, mutation.PullIP, mutation.PullOptionIP); len(pull) > 0 {
		update = append(update, bson.E{Key: "$pull", Value: pull})
	}
	return update
}

// Encode converts a document for insertion, mapping _id fields to ObjectIDs
// when enabled.
func (c Codec) Encode(doc entities.Document) bson.M {
	encoded := make(bson.M, len(doc))
	for key, value := range doc {
		encoded[key] = c.encodeValue(key, value)
	}
	return encoded
}

// Decode normalizes a driver result into plain maps, slices and strings.
func (c Codec) Decode(raw bson.M) entities.Document {
	if raw == nil {
		return nil
	}
	return entities.Document(normalizeMap(raw))
}

func (c Codec) clauses(clauses []entities.Clause) bson.D {
	rendered := bson.D{}
	seen := map[string]bool{}
	var and bson.A
	for _, clause := range clauses {
		value := c.clauseValue(clause)
		if seen[clause.Path] {
			and = append(and, bson.D{{Key: clause.Path, Value: value}})
			continue
		}
		seen[clause.Path] = true
		rendered = append(rendered, bson.E{Key: clause.Path, Value: value})
	}
	if len(and) > 0 {
		rendered = append(rendered, bson.E{Key: "$and", Value: and})
	}
	return rendered
}

func (c Codec) clauseValue(clause entities.Clause) any {
	switch clause.Op {
	case entities.ClauseNotContains:
		return bson.D{{Key: "$ne", Value: c.editValue(clause.Kind, clause.Value)}}
	case entities.ClauseContains:
		return c.editValue(clause.Kind, clause.Value)
	default:
		return clause.Number
	}
}

// edits renders one $push or $pull body. Only voter values are id-encoded.
func (c Codec) edits(voter *entities.ArrayEdit, ips ...*entities.ArrayEdit) bson.D {
	rendered := bson.D{}
	if voter != nil {
		rendered = append(rendered, bson.E{Key: voter.Path, Value: c.editValue(entities.ValueVoter, voter.Value)})
	}
	for _, ip := range ips {
		if ip != nil {
			rendered = append(rendered, bson.E{Key: ip.Path, Value: ip.Value})
		}
	}
	return rendered
}

func (c Codec) editValue(kind entities.ValueKind, value string) any {
	if kind == entities.ValueVoter {
		return c.id(value)
	}
	return value
}

func (c Codec) id(value string) any {
	if !c.ObjectIDs {
		return value
	}
	if oid, err := primitive.ObjectIDFromHex(value); err == nil {
		return oid
	}
	return value
}

func (c Codec) encodeValue(key string, value any) any {
	switch typed := value.(type) {
	case string:
		if key == entities.KeyID {
			return c.id(typed)
		}
		return typed
	case entities.Document:
		return c.Encode(typed)
	case map[string]any:
		return c.Encode(entities.Document(typed))
	case []any:
		items := make(bson.A, len(typed))
		for i, item := range typed {
			items[i] = c.encodeValue("", item)
		}
		return items
	default:
		return value
	}
}

func normalizeMap(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case bson.M:
		return normalizeMap(typed)
	case map[string]any:
		return normalizeMap(typed)
	case bson.D:
		out := make(map[string]any, len(typed))
		for _, elem := range typed {
			out[elem.Key] = normalizeValue(elem.Value)
		}
		return out
	case bson.A:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = normalizeValue(item)
		}
		return items
	case []any:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = normalizeValue(item)
		}
		return items
	case primitive.ObjectID:
		return typed.Hex()
	case int32:
		return int64(typed)
	default:
		return value
	}
}
