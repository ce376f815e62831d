package policy

import (
	"context"
	"sync"

	"github.com/govmesh/govmesh/core"
)

// Store persists rule sets by policy id. Implementations must treat the
// first committed write for an id as final: a second Save for the same id
// fails with KindWriteConflict instead of overwriting.
type Store interface {
	// Save persists a rule set under its policy id.
	Save(ctx context.Context, rs core.RuleSet) error

	// Load returns the rule set for a policy id.
	Load(ctx context.Context, policyID string) (core.RuleSet, error)

	// List returns all stored policy ids.
	List(ctx context.Context) ([]string, error)
}

// InMemoryStore is the default process-local Store.
type InMemoryStore struct {
	mu       sync.RWMutex
	ruleSets map[string]core.RuleSet
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{ruleSets: make(map[string]core.RuleSet)}
}

// Save implements Store.
func (s *InMemoryStore) Save(_ context.Context, rs core.RuleSet) error {
	if rs.PolicyID == "" {
		return core.NewError(core.KindInvalidParameters, "rule set has no policy id")
	}
	if err := rs.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ruleSets[rs.PolicyID]; exists {
		return core.NewError(core.KindWriteConflict, "policy %q already registered", rs.PolicyID)
	}
	s.ruleSets[rs.PolicyID] = rs
	return nil
}

// Load implements Store.
func (s *InMemoryStore) Load(_ context.Context, policyID string) (core.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs, ok := s.ruleSets[policyID]
	if !ok {
		return core.RuleSet{}, core.NewError(core.KindPolicyNotFound, "policy %q not found", policyID)
	}
	return rs, nil
}

// List implements Store.
func (s *InMemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.ruleSets))
	for id := range s.ruleSets {
		ids = append(ids, id)
	}
	return ids, nil
}
