package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"votable/contexts/engagement/vote-engine/adapters/docmatch"
	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
	"votable/contexts/engagement/vote-engine/ports"

	"github.com/google/uuid"
)

type collection struct {
	order []string
	docs  map[string]entities.Document
}

// Store is an in-process document store. A single mutex serializes every
// find-and-modify, which gives the same all-or-nothing guarantee a document
// database gives a single-document update.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection

	refreshMu      sync.Mutex
	refreshQueue   []ports.RefreshTarget
	refreshPending map[ports.RefreshTarget]struct{}
}

func NewStore() *Store {
	return &Store{
		collections:    make(map[string]*collection),
		refreshPending: make(map[ports.RefreshTarget]struct{}),
	}
}

func (s *Store) FindOne(_ context.Context, name string, filter entities.Condition) (entities.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, _, found := s.find(name, filter)
	if !found {
		return nil, false, nil
	}
	return docmatch.Clone(doc), true, nil
}

func (s *Store) Find(_ context.Context, name string, filter entities.Selector) ([]entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	var docs []entities.Document
	for _, id := range coll.order {
		if doc := coll.docs[id]; docmatch.Select(doc, filter) {
			docs = append(docs, docmatch.Clone(doc))
		}
	}
	return docs, nil
}

func (s *Store) FindOneAndUpdate(
	_ context.Context,
	name string,
	filter entities.Condition,
	update entities.Mutation,
) (entities.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, position, found := s.find(name, filter)
	if !found {
		return nil, false, nil
	}
	next := docmatch.Clone(doc)
	if err := docmatch.Apply(next, position, update); err != nil {
		return nil, false, err
	}
	id := idOf(next)
	s.collections[name].docs[id] = next
	return docmatch.Clone(next), true, nil
}

func (s *Store) InsertOne(_ context.Context, name string, doc entities.Document) error {
	id := idOf(doc)
	if id == "" {
		return domainerrors.ErrMalformedDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collection(name)
	if _, exists := coll.docs[id]; exists {
		return domainerrors.ErrVoteeExists
	}
	coll.docs[id] = docmatch.Clone(doc)
	coll.order = append(coll.order, id)
	return nil
}

func (s *Store) PushElement(
	_ context.Context,
	name string,
	parentID string,
	relation string,
	element entities.Document,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[name]
	if !ok {
		return false, nil
	}
	parent, ok := coll.docs[strings.TrimSpace(parentID)]
	if !ok {
		return false, nil
	}
	next := docmatch.Clone(parent)
	items, _ := next[relation].([]any)
	next[relation] = append(items, map[string]any(docmatch.Clone(element)))
	coll.docs[idOf(next)] = next
	return true, nil
}

// Enqueue adds target to the ratio refresh queue unless it is already pending.
func (s *Store) Enqueue(_ context.Context, target ports.RefreshTarget) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if _, pending := s.refreshPending[target]; pending {
		return nil
	}
	s.refreshPending[target] = struct{}{}
	s.refreshQueue = append(s.refreshQueue, target)
	return nil
}

func (s *Store) Dequeue(_ context.Context, limit int) ([]ports.RefreshTarget, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if limit <= 0 || limit > len(s.refreshQueue) {
		limit = len(s.refreshQueue)
	}
	batch := append([]ports.RefreshTarget(nil), s.refreshQueue[:limit]...)
	s.refreshQueue = s.refreshQueue[limit:]
	for _, target := range batch {
		delete(s.refreshPending, target)
	}
	return batch, nil
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) find(name string, filter entities.Condition) (entities.Document, int, bool) {
	coll, ok := s.collections[name]
	if !ok {
		return nil, docmatch.TopLevel, false
	}
	if !filter.Embedded() {
		doc, ok := coll.docs[filter.VoteeID]
		if !ok {
			return nil, docmatch.TopLevel, false
		}
		position, matched := docmatch.Match(doc, filter)
		return doc, position, matched
	}
	for _, id := range coll.order {
		doc := coll.docs[id]
		if position, matched := docmatch.Match(doc, filter); matched {
			return doc, position, true
		}
	}
	return nil, docmatch.TopLevel, false
}

func (s *Store) collection(name string) *collection {
	coll, ok := s.collections[name]
	if !ok {
		coll = &collection{docs: make(map[string]entities.Document)}
		s.collections[name] = coll
	}
	return coll
}

func idOf(doc entities.Document) string {
	if doc == nil || doc[entities.KeyID] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(doc[entities.KeyID]))
}
