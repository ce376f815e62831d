package schema

import (
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/govmesh/govmesh/core"
)

// Registry keeps registered schema versions per schema name, ordered by
// semantic version. Versions are immutable once registered; re-registering
// the same name and version is a write conflict. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string][]Version
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string][]Version)}
}

// Register stores a schema version under v.Name. The version string must be
// valid semver; the first write for a given name/version pair wins.
func (r *Registry) Register(v Version) error {
	if v.Name == "" {
		return core.NewError(core.KindInvalidParameters, "schema has no name")
	}
	if _, err := semver.NewVersion(v.Version); err != nil {
		return core.WrapError(core.KindInvalidParameters, err, "schema %q has invalid version %q", v.Name, v.Version)
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.schemas[v.Name]
	for _, existing := range versions {
		if existing.Version == v.Version {
			return core.NewError(core.KindWriteConflict, "schema %q version %s already registered", v.Name, v.Version)
		}
	}

	versions = append(versions, v)
	sort.Slice(versions, func(i, j int) bool {
		vi := semver.MustParse(versions[i].Version)
		vj := semver.MustParse(versions[j].Version)
		return vi.LessThan(vj)
	})
	r.schemas[v.Name] = versions

	return nil
}

// Get returns the named schema at an exact version.
func (r *Registry) Get(name, version string) (Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.schemas[name] {
		if v.Version == version {
			return v, nil
		}
	}
	return Version{}, core.NewError(core.KindPolicyNotFound, "schema %q version %s not registered", name, version)
}

// Latest returns the highest registered version of a schema.
func (r *Registry) Latest(name string) (Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.schemas[name]
	if len(versions) == 0 {
		return Version{}, core.NewError(core.KindPolicyNotFound, "schema %q not registered", name)
	}
	return versions[len(versions)-1], nil
}

// Versions lists the registered version strings for a schema in ascending
// semver order.
func (r *Registry) Versions(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.schemas[name]))
	for i, v := range r.schemas[name] {
		out[i] = v.Version
	}
	return out
}

// Drift detects drift between two registered versions of the same schema.
func (r *Registry) Drift(name, oldVersion, newVersion string) (DriftResult, error) {
	old, err := r.Get(name, oldVersion)
	if err != nil {
		return DriftResult{}, err
	}
	next, err := r.Get(name, newVersion)
	if err != nil {
		return DriftResult{}, err
	}
	return DetectDrift(old, next), nil
}
