// Package docmatch evaluates conditions and applies mutations against
// in-process documents with the same semantics a document database gives
// them. Stores that cannot push the predicate down (memory, postgres JSONB)
// call it while holding the document exclusively.
package docmatch

import (
	"fmt"
	"strings"

	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
)

// TopLevel is the position reported for conditions without a relation.
const TopLevel = -1

// Match reports whether doc satisfies cond. For embedded conditions it
// returns the index of the matched relation element, which is the element
// the positional "$" segment of update paths refers to.
func Match(doc entities.Document, cond entities.Condition) (int, bool) {
	if doc == nil {
		return TopLevel, false
	}
	if !cond.Embedded() {
		if idString(doc[entities.KeyID]) != cond.VoteeID {
			return TopLevel, false
		}
		return TopLevel, matchClauses(map[string]any(doc), cond.Clauses)
	}
	items, ok := doc[cond.Relation].([]any)
	if !ok {
		return TopLevel, false
	}
	for index, item := range items {
		element, ok := asMap(item)
		if !ok || idString(element[entities.KeyID]) != cond.VoteeID {
			continue
		}
		if matchClauses(element, cond.Clauses) {
			return index, true
		}
	}
	return TopLevel, false
}

// Select reports whether any clause of sel holds on doc, or on one of its
// relation elements when sel is embedded.
func Select(doc entities.Document, sel entities.Selector) bool {
	if doc == nil {
		return false
	}
	if !sel.Embedded() {
		return matchAny(map[string]any(doc), sel.AnyOf)
	}
	items, _ := doc[sel.Relation].([]any)
	for _, item := range items {
		if element, ok := asMap(item); ok && matchAny(element, sel.AnyOf) {
			return true
		}
	}
	return false
}

// Apply mutates doc in place. position resolves "$" path segments and is
// ignored for top-level paths.
func Apply(doc entities.Document, position int, mutation entities.Mutation) error {
	root := map[string]any(doc)
	for _, counter := range mutation.Counters {
		parent, key, err := resolve(root, counter.Path, position)
		if err != nil {
			return err
		}
		parent[key] = entities.Int64(parent[key]) + counter.Delta
	}
	if mutation.PointPath != "" {
		parent, key, err := resolve(root, mutation.PointPath, position)
		if err != nil {
			return err
		}
		parent[key] = entities.Float64(parent[key]) + mutation.PointDelta
	}
	if mutation.RatioPath != "" {
		parent, key, err := resolve(root, mutation.RatioPath, position)
		if err != nil {
			return err
		}
		parent[key] = mutation.Ratio
	}
	for _, edit := range mutation.Pulls() {
		parent, key, err := resolve(root, edit.Path, position)
		if err != nil {
			return err
		}
		parent[key] = pull(parent[key], edit.Value)
	}
	for _, edit := range mutation.Pushes() {
		parent, key, err := resolve(root, edit.Path, position)
		if err != nil {
			return err
		}
		items, _ := parent[key].([]any)
		parent[key] = append(items, edit.Value)
	}
	return nil
}

// Clone deep-copies the maps and arrays of doc so callers can mutate the copy.
func Clone(doc entities.Document) entities.Document {
	if doc == nil {
		return nil
	}
	return entities.Document(cloneMap(doc))
}

func matchClauses(node map[string]any, clauses []entities.Clause) bool {
	for _, clause := range clauses {
		if !matchClause(node, clause) {
			return false
		}
	}
	return true
}

func matchAny(node map[string]any, clauses []entities.Clause) bool {
	for _, clause := range clauses {
		if matchClause(node, clause) {
			return true
		}
	}
	return false
}

func matchClause(node map[string]any, clause entities.Clause) bool {
	value, present := lookup(node, clause.Path)
	switch clause.Op {
	case entities.ClauseContains:
		return contains(value, clause.Value)
	case entities.ClauseNotContains:
		return !contains(value, clause.Value)
	case entities.ClauseEquals:
		return present && entities.Int64(value) == clause.Number
	default:
		return false
	}
}

func contains(value any, target string) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if idString(item) == target {
			return true
		}
	}
	return false
}

func pull(value any, target string) []any {
	items, _ := value.([]any)
	kept := make([]any, 0, len(items))
	for _, item := range items {
		if idString(item) != target {
			kept = append(kept, item)
		}
	}
	return kept
}

func lookup(node map[string]any, path string) (any, bool) {
	var current any = node
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// resolve walks to the parent object of the last path segment, creating
// intermediate objects the way $inc and $push do.
func resolve(root map[string]any, path string, position int) (map[string]any, string, error) {
	segments := strings.Split(path, ".")
	current := root
	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]
		if segments[i+1] == "$" {
			items, ok := current[segment].([]any)
			if !ok || position < 0 || position >= len(items) {
				return nil, "", fmt.Errorf("%w: positional path %q", domainerrors.ErrMalformedDocument, path)
			}
			element, ok := asMap(items[position])
			if !ok {
				return nil, "", fmt.Errorf("%w: positional path %q", domainerrors.ErrMalformedDocument, path)
			}
			current = element
			i++
			continue
		}
		next, ok := asMap(current[segment])
		if !ok {
			if current[segment] != nil {
				return nil, "", fmt.Errorf("%w: path %q crosses a scalar", domainerrors.ErrMalformedDocument, path)
			}
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	return current, segments[len(segments)-1], nil
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case entities.Document:
		return typed, true
	default:
		return nil, false
	}
}

func idString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = cloneValue(value)
	}
	return dst
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case entities.Document:
		return cloneMap(typed)
	case []any:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = cloneValue(item)
		}
		return items
	case []string:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = item
		}
		return items
	default:
		return value
	}
}
