package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	streampkg "github.com/drblury/protoflow/internal/stream"
)

func newDescriptor(streamName, label string, index int, props map[string]string) streampkg.ModuleDescriptor {
	return streampkg.ModuleDescriptor{
		StreamName: streamName,
		Label:      label,
		Index:      index,
		Properties: streampkg.NewModuleDeploymentProperties(props),
	}
}

// threeModulePipeline mirrors a canonical source | transform | sink scenario,
// no partitioning, count=1 everywhere, no explicit criteria.
func threeModulePipeline(t *testing.T) streampkg.Stream {
	t.Helper()
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, nil),
		newDescriptor("pipeline", "transform", 1, nil),
		newDescriptor("pipeline", "sink", 2, nil),
	})
	require.NoError(t, err)
	return s
}

func plan(t *testing.T, s streampkg.Stream, index int, hooks Hooks) streampkg.RuntimeModuleDeploymentProperties {
	t.Helper()
	provider := streampkg.SequencedRuntimeProvider{Base: streampkg.DescriptorPropertiesProvider{}, Sequence: 1}
	props, err := Plan(s, s.Modules[index], provider, hooks)
	require.NoError(t, err)
	return props
}

func TestPlanSourceModuleHasNoConsumerProperties(t *testing.T) {
	s := threeModulePipeline(t)
	props := plan(t, s, 0, Hooks{})

	assert.False(t, props.Has("consumer.sequence"))
	assert.False(t, props.Has("consumer.count"))
}

func TestPlanMiddleModulePropagatesSequenceAndCount(t *testing.T) {
	s := threeModulePipeline(t)
	props := plan(t, s, 1, Hooks{})

	seq, ok := props.Get("consumer.sequence")
	require.True(t, ok)
	assert.Equal(t, "1", seq)

	count, ok := props.Get("consumer.count")
	require.True(t, ok)
	assert.Equal(t, "1", count)
}

func TestPlanNonPartitionedEligibleForDirectBinding(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, map[string]string{"count": "0"}),
		newDescriptor("pipeline", "sink", 1, map[string]string{"count": "0"}),
	})
	require.NoError(t, err)

	props := plan(t, s, 0, Hooks{})
	allowed, ok := props.Get("producer.directBindingAllowed")
	require.True(t, ok)
	assert.Equal(t, "true", allowed)
}

func TestPlanDirectBindingVetoedByMismatchedCount(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, map[string]string{"count": "0"}),
		newDescriptor("pipeline", "sink", 1, map[string]string{"count": "2"}),
	})
	require.NoError(t, err)

	props := plan(t, s, 0, Hooks{})
	_, ok := props.Get("producer.directBindingAllowed")
	assert.False(t, ok)
}

func TestPlanDirectBindingVetoedByMismatchedCriteria(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, map[string]string{"count": "0", "criteria": "zone=a"}),
		newDescriptor("pipeline", "sink", 1, map[string]string{"count": "0", "criteria": "zone=b"}),
	})
	require.NoError(t, err)

	props := plan(t, s, 0, Hooks{})
	_, ok := props.Get("producer.directBindingAllowed")
	assert.False(t, ok)
}

func TestPlanDirectBindingInvalidOverrideValueWarnsButStillAllows(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, map[string]string{"count": "0", streampkg.PropDirectBindingAllowed: "nope"}),
		newDescriptor("pipeline", "sink", 1, map[string]string{"count": "0"}),
	})
	require.NoError(t, err)

	var warnings []string
	props := plan(t, s, 0, Hooks{OnWarning: func(msg string) { warnings = append(warnings, msg) }})

	allowed, ok := props.Get("producer.directBindingAllowed")
	require.True(t, ok)
	assert.Equal(t, "true", allowed)
	require.Len(t, warnings, 1)
}

func TestPlanPartitionedProducerSetsPartitionCount(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, map[string]string{streampkg.PropPartitionKeyExpr: "payload.id"}),
		newDescriptor("pipeline", "sink", 1, map[string]string{"count": "3"}),
	})
	require.NoError(t, err)

	props := plan(t, s, 0, Hooks{})
	count, ok := props.Get("producer.partitionCount")
	require.True(t, ok)
	assert.Equal(t, "3", count)
}

func TestPlanPartitionedProducerInvalidCountErrors(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, map[string]string{streampkg.PropPartitionKeyExpr: "payload.id"}),
		newDescriptor("pipeline", "sink", 1, map[string]string{"count": "1"}),
	})
	require.NoError(t, err)

	provider := streampkg.SequencedRuntimeProvider{Base: streampkg.DescriptorPropertiesProvider{}, Sequence: 1}
	_, err = Plan(s, s.Modules[0], provider, Hooks{})
	assert.Error(t, err)
}

func TestPlanPartitionedSinkWarns(t *testing.T) {
	s, err := streampkg.NewStream("pipeline", []streampkg.ModuleDescriptor{
		newDescriptor("pipeline", "source", 0, nil),
		newDescriptor("pipeline", "sink", 1, map[string]string{streampkg.PropPartitionKeyExpr: "payload.id"}),
	})
	require.NoError(t, err)

	var warnings []string
	_ = plan(t, s, 1, Hooks{OnWarning: func(msg string) { warnings = append(warnings, msg) }})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "sink module")
}

func TestValidatePartitionCountRejectsAbsentEmptyAndLow(t *testing.T) {
	d := newDescriptor("pipeline", "sink", 1, nil)

	_, err := validatePartitionCount("", d)
	assert.Error(t, err)

	_, err = validatePartitionCount("not-an-int", d)
	assert.Error(t, err)

	_, err = validatePartitionCount("1", d)
	assert.Error(t, err)

	count, err := validatePartitionCount("4", d)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
