package services

import (
	"sort"
	"strings"
	"sync"

	"votable/contexts/engagement/vote-engine/domain/entities"
	domainerrors "votable/contexts/engagement/vote-engine/domain/errors"
)

// Kind describes a registered votee type: where it is stored, how (its
// topology), its point weights and the voting fields it hosts.
type Kind struct {
	Name       string
	Collection string
	Topology   Topology
	Weights    entities.Weights
	Fields     []string
}

func (k Kind) HasField(field string) bool {
	for _, candidate := range k.Fields {
		if candidate == field {
			return true
		}
	}
	return false
}

func (k Kind) Embedded() bool {
	_, ok := k.Topology.(Embedded)
	return ok
}

// Registry holds votee kinds by name. Registration validates the topology up
// front so vote paths never need runtime capability checks.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

func NewRegistry(kinds ...Kind) (*Registry, error) {
	registry := &Registry{kinds: make(map[string]Kind, len(kinds))}
	for _, kind := range kinds {
		if err := registry.Register(kind); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (r *Registry) Register(kind Kind) error {
	kind.Name = strings.TrimSpace(kind.Name)
	kind.Collection = strings.TrimSpace(kind.Collection)
	if kind.Name == "" || kind.Collection == "" {
		return domainerrors.ErrInvalidVoteeKind
	}
	switch topology := kind.Topology.(type) {
	case nil:
		kind.Topology = TopLevel{}
	case TopLevel:
	case Embedded:
		if !validRelation(topology.Relation) {
			return domainerrors.ErrInvalidVoteeKind
		}
	default:
		return domainerrors.ErrInvalidVoteeKind
	}
	if kind.Weights == (entities.Weights{}) {
		kind.Weights = entities.DefaultWeights()
	}
	if len(kind.Fields) == 0 {
		kind.Fields = []string{entities.DefaultVotingField}
	}
	for _, field := range kind.Fields {
		if strings.TrimSpace(field) == "" || strings.Contains(field, "$") {
			return domainerrors.ErrInvalidVoteeKind
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind.Name] = kind
	return nil
}

func (r *Registry) Lookup(name string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[strings.TrimSpace(name)]
	if !ok {
		return Kind{}, domainerrors.ErrUnknownVoteeKind
	}
	return kind, nil
}

func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]Kind, 0, len(r.kinds))
	for _, kind := range r.kinds {
		items = append(items, kind)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
