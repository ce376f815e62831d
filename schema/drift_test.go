package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govmesh/govmesh/core"
)

func customerV1() Version {
	return Version{
		Name:    "customer",
		Version: "1.0.0",
		Properties: map[string]core.FieldType{
			"id":    core.TypeString,
			"name":  core.TypeString,
			"email": core.TypeEmail,
			"age":   core.TypeInteger,
		},
		Required: []string{"id", "name", "email"},
	}
}

func TestDetectDriftIdentical(t *testing.T) {
	v := customerV1()

	res := DetectDrift(v, v)

	assert.False(t, res.HasDrift)
	assert.False(t, res.Breaking)
	assert.Equal(t, ImpactLow, res.RiskLevel)
	assert.Empty(t, res.Changes)
}

func TestDetectDriftOptionalFieldAdded(t *testing.T) {
	next := customerV1()
	next.Version = "1.1.0"
	next.Properties["nickname"] = core.TypeString

	res := DetectDrift(customerV1(), next)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangeFieldAdded, res.Changes[0].Kind)
	assert.Equal(t, ImpactLow, res.Changes[0].Impact)
	assert.False(t, res.Breaking)
	assert.Equal(t, ImpactLow, res.RiskLevel)
}

func TestDetectDriftRequiredFieldAddedWithoutDefault(t *testing.T) {
	next := customerV1()
	next.Version = "2.0.0"
	next.Properties["phone"] = core.TypePhone
	next.Required = append(next.Required, "phone")

	res := DetectDrift(customerV1(), next)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangeFieldAdded, res.Changes[0].Kind)
	assert.Equal(t, ImpactMedium, res.Changes[0].Impact)
	assert.Equal(t, ImpactMedium, res.RiskLevel)
	assert.True(t, res.Breaking, "required addition without default blocks old writers")
}

func TestDetectDriftRequiredFieldAddedWithDefault(t *testing.T) {
	next := customerV1()
	next.Version = "2.0.0"
	next.Properties["phone"] = core.TypePhone
	next.Required = append(next.Required, "phone")
	next.Defaults = map[string]any{"phone": ""}

	res := DetectDrift(customerV1(), next)

	assert.True(t, res.HasDrift)
	assert.False(t, res.Breaking, "default value allows backfill")
}

func TestDetectDriftFieldRemoved(t *testing.T) {
	next := customerV1()
	next.Version = "2.0.0"
	delete(next.Properties, "age")

	res := DetectDrift(customerV1(), next)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangeFieldRemoved, res.Changes[0].Kind)
	assert.Equal(t, ImpactHigh, res.Changes[0].Impact)
	assert.Equal(t, ImpactHigh, res.RiskLevel)
	assert.True(t, res.Breaking)
}

func TestDetectDriftTypeChanged(t *testing.T) {
	next := customerV1()
	next.Version = "2.0.0"
	next.Properties["age"] = core.TypeString

	res := DetectDrift(customerV1(), next)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangeTypeChanged, res.Changes[0].Kind)
	assert.Equal(t, ImpactHigh, res.Changes[0].Impact)
	assert.Equal(t, core.TypeInteger, res.Changes[0].From)
	assert.Equal(t, core.TypeString, res.Changes[0].To)
	assert.True(t, res.Breaking)
}

func TestDetectDriftRequiredFlagRelaxed(t *testing.T) {
	next := customerV1()
	next.Version = "1.1.0"
	next.Required = []string{"id", "name"}

	res := DetectDrift(customerV1(), next)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangeRequiredChanged, res.Changes[0].Kind)
	assert.False(t, res.Changes[0].Required)
	assert.False(t, res.Breaking, "relaxing a required field keeps old data readable")
}

func TestDetectDriftDeterministicOrder(t *testing.T) {
	next := customerV1()
	next.Version = "2.0.0"
	next.Properties["aaa"] = core.TypeString
	next.Properties["zzz"] = core.TypeString
	delete(next.Properties, "age")

	first := DetectDrift(customerV1(), next)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DetectDrift(customerV1(), next))
	}

	require.Len(t, first.Changes, 3)
	assert.Equal(t, "aaa", first.Changes[0].Field)
	assert.Equal(t, "zzz", first.Changes[1].Field)
	assert.Equal(t, "age", first.Changes[2].Field)
}
