package schema

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govmesh/govmesh/core"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(customerV1()))

	got, err := r.Get("customer", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "customer", got.Name)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRegistryDuplicateVersionConflicts(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(customerV1()))

	err := r.Register(customerV1())

	assert.True(t, core.IsKind(err, core.KindWriteConflict))
}

func TestRegistryInvalidVersion(t *testing.T) {
	r := NewRegistry()
	v := customerV1()
	v.Version = "not-semver"

	err := r.Register(v)

	assert.True(t, core.IsKind(err, core.KindInvalidParameters))
}

func TestRegistryLatestFollowsSemverOrder(t *testing.T) {
	r := NewRegistry()
	for _, ver := range []string{"2.0.0", "1.0.0", "1.10.0", "1.2.0"} {
		v := customerV1()
		v.Version = ver
		require.NoError(t, r.Register(v))
	}

	latest, err := r.Latest("customer")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", latest.Version)
	assert.Equal(t, []string{"1.0.0", "1.2.0", "1.10.0", "2.0.0"}, r.Versions("customer"))
}

func TestRegistryUnknownSchema(t *testing.T) {
	r := NewRegistry()

	_, err := r.Latest("nope")
	assert.True(t, core.IsKind(err, core.KindPolicyNotFound))

	_, err = r.Get("nope", "1.0.0")
	assert.True(t, core.IsKind(err, core.KindPolicyNotFound))
}

func TestRegistryDrift(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(customerV1()))
	next := customerV1()
	next.Version = "2.0.0"
	next.Properties["phone"] = core.TypePhone
	next.Required = append(next.Required, "phone")
	require.NoError(t, r.Register(next))

	res, err := r.Drift("customer", "1.0.0", "2.0.0")

	require.NoError(t, err)
	assert.True(t, res.HasDrift)
	assert.True(t, res.Breaking)
	assert.Equal(t, ImpactMedium, res.RiskLevel)
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := customerV1()
			v.Version = fmt.Sprintf("1.%d.0", i)
			errs[i] = r.Register(v)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, r.Versions("customer"), 8)
}
