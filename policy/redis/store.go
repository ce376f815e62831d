// Package redis provides a Redis-backed policy store. SetNX gives the same
// first-writer-wins semantics as the in-memory store across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/policy"
)

const keyPrefix = "govmesh:policy:"

// Store implements policy.Store on a Redis client.
type Store struct {
	client redis.UniversalClient
}

var _ policy.Store = (*Store)(nil)

// NewStore creates a Store on an existing client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Save implements policy.Store.
func (s *Store) Save(ctx context.Context, rs core.RuleSet) error {
	if rs.PolicyID == "" {
		return core.NewError(core.KindInvalidParameters, "rule set has no policy id")
	}
	if err := rs.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(rs)
	if err != nil {
		return core.WrapError(core.KindInternal, err, "encode policy %q", rs.PolicyID)
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+rs.PolicyID, raw, 0).Result()
	if err != nil {
		return core.WrapError(core.KindInternal, err, "store policy %q", rs.PolicyID)
	}
	if !ok {
		return core.NewError(core.KindWriteConflict, "policy %q already registered", rs.PolicyID)
	}
	return nil
}

// Load implements policy.Store.
func (s *Store) Load(ctx context.Context, policyID string) (core.RuleSet, error) {
	raw, err := s.client.Get(ctx, keyPrefix+policyID).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.RuleSet{}, core.NewError(core.KindPolicyNotFound, "policy %q not found", policyID)
	}
	if err != nil {
		return core.RuleSet{}, core.WrapError(core.KindInternal, err, "load policy %q", policyID)
	}

	var rs core.RuleSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return core.RuleSet{}, core.WrapError(core.KindInternal, err, "decode policy %q", policyID)
	}
	return rs, nil
}

// List implements policy.Store.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, core.WrapError(core.KindInternal, err, "scan policies")
		}
		for _, key := range keys {
			ids = append(ids, key[len(keyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}
