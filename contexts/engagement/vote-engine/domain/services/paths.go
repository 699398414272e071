package services

import (
	"fmt"
	"strings"

	"votable/contexts/engagement/vote-engine/domain/entities"
)

// Paths resolves storage paths for one voting field. The prefix is empty for
// top-level votees and "<relation>.$." for embedded update paths.
type Paths struct {
	prefix string
	field  string
}

func (p Paths) base(key string) string {
	return p.prefix + p.field + "." + key
}

func (p Paths) VoterIDs(value entities.VoteValue) string {
	if value == entities.VoteDown {
		return p.base(entities.KeyDownVoters)
	}
	return p.base(entities.KeyUpVoters)
}

// OptionCount is the identified counter for value, or its faceless twin.
func (p Paths) OptionCount(value entities.VoteValue, faceless bool) string {
	key := entities.KeyUpCount
	if value == entities.VoteDown {
		key = entities.KeyDownCount
	}
	if faceless {
		key = "faceless_" + key
	}
	return p.base(key)
}

func (p Paths) TotalOptionCount(value entities.VoteValue) string {
	if value == entities.VoteDown {
		return p.base(entities.KeyTotalDownCount)
	}
	return p.base(entities.KeyTotalUpCount)
}

// OptionIPLog is the log of ips whose anonymous vote is value.
func (p Paths) OptionIPLog(value entities.VoteValue) string {
	if value == entities.VoteDown {
		return p.base(entities.KeyFacelessDownIPs)
	}
	return p.base(entities.KeyFacelessUpIPs)
}

func (p Paths) Count() string { return p.base(entities.KeyCount) }
func (p Paths) Point() string { return p.base(entities.KeyPoint) }
func (p Paths) IPLog() string { return p.base(entities.KeyIPLog) }
func (p Paths) Ratio() string { return p.base(entities.KeyRatio) }

// Topology is the storage strategy of a votee kind, fixed at registration.
type Topology interface {
	Name() string
	// UpdatePaths are used by mutations.
	UpdatePaths(field string) Paths
	// QueryPaths are used by predicate clauses.
	QueryPaths(field string) Paths
	Condition(voteeID string, clauses ...entities.Clause) entities.Condition
	// Locate returns the votee document inside a document returned by the store.
	Locate(doc entities.Document, voteeID string) (entities.Document, bool)
	// Elements lists every votee held by a stored document.
	Elements(doc entities.Document) []entities.Document
}

// TopLevel votees are stored as their own documents.
type TopLevel struct{}

func (TopLevel) Name() string { return "top_level" }

func (TopLevel) UpdatePaths(field string) Paths {
	return Paths{field: field}
}

func (TopLevel) QueryPaths(field string) Paths {
	return Paths{field: field}
}

func (TopLevel) Condition(voteeID string, clauses ...entities.Clause) entities.Condition {
	return entities.Condition{VoteeID: voteeID, Clauses: clauses}
}

func (TopLevel) Locate(doc entities.Document, voteeID string) (entities.Document, bool) {
	if doc == nil || fmt.Sprint(doc[entities.KeyID]) != voteeID {
		return nil, false
	}
	return doc, true
}

func (TopLevel) Elements(doc entities.Document) []entities.Document {
	if doc == nil {
		return nil
	}
	return []entities.Document{doc}
}

// Embedded votees live as elements of a parent document's Relation array.
// Updates target the matched element through the positional operator and
// predicates are element matches scoped by the votee id.
type Embedded struct {
	Relation string
}

func (e Embedded) Name() string { return "embedded:" + e.Relation }

func (e Embedded) UpdatePaths(field string) Paths {
	return Paths{prefix: e.Relation + ".$.", field: field}
}

func (e Embedded) QueryPaths(field string) Paths {
	return Paths{field: field}
}

func (e Embedded) Condition(voteeID string, clauses ...entities.Clause) entities.Condition {
	return entities.Condition{VoteeID: voteeID, Relation: e.Relation, Clauses: clauses}
}

func (e Embedded) Locate(doc entities.Document, voteeID string) (entities.Document, bool) {
	for _, element := range e.Elements(doc) {
		if fmt.Sprint(element[entities.KeyID]) == voteeID {
			return element, true
		}
	}
	return nil, false
}

func (e Embedded) Elements(doc entities.Document) []entities.Document {
	if doc == nil {
		return nil
	}
	items, _ := doc[e.Relation].([]any)
	elements := make([]entities.Document, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case map[string]any:
			elements = append(elements, entities.Document(typed))
		case entities.Document:
			elements = append(elements, typed)
		}
	}
	return elements
}

func validRelation(relation string) bool {
	relation = strings.TrimSpace(relation)
	return relation != "" && !strings.Contains(relation, ".") && !strings.Contains(relation, "$")
}
