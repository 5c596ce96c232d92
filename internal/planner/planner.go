// Package planner computes the consumer- and producer-side runtime
// properties for a module within a stream: sequence propagation, partition
// count, next-hop fan-out, and direct-binding eligibility.
//
// Grounded directly on StreamRuntimePropertiesProvider (Spring XD's
// org.springframework.xd.dirt.server.StreamRuntimePropertiesProvider): the
// branch structure below mirrors propertiesForDescriptor exactly, translated
// from checked exceptions and bean properties into Go errors and typed
// accessors.
package planner

import (
	"fmt"
	"strconv"

	buspkg "github.com/drblury/protoflow/internal/bus"
	streampkg "github.com/drblury/protoflow/internal/stream"
)

const (
	consumerPrefix = "consumer."
	producerPrefix = "producer."
)

// Hooks lets callers observe the warnings the original logs (partitioned
// sink, invalid direct-binding override) without scraping logs.
type Hooks struct {
	OnWarning func(message string)
}

func (h Hooks) warn(format string, args ...any) {
	if h.OnWarning != nil {
		h.OnWarning(fmt.Sprintf(format, args...))
	}
}

// Plan computes the runtime deployment properties for descriptor within
// stream, given provider as the source of each module's base properties.
// Deterministic; performs no mutation of the stream or its descriptors.
func Plan(stream streampkg.Stream, descriptor streampkg.ModuleDescriptor, provider streampkg.RuntimePropertiesProvider, hooks Hooks) (streampkg.RuntimeModuleDeploymentProperties, error) {
	properties := provider.RuntimePropertiesFor(descriptor)
	sequence := properties.Sequence()
	index := descriptor.Index

	if prev, ok := stream.Previous(index); ok {
		previousStatic := streampkg.DescriptorPropertiesProvider{}.PropertiesFor(prev)
		properties.Put(consumerPrefix+streampkg.PropSequence, strconv.Itoa(sequence))
		properties.Put(consumerPrefix+streampkg.PropCount, strconv.Itoa(properties.Count()))
		if previousStatic.HasPartitionKey() {
			properties.Put(consumerPrefix+streampkg.PropPartitionIdx, strconv.Itoa(sequence-1))
		}
	}

	if next, ok := stream.Next(index); ok {
		nextStatic := streampkg.DescriptorPropertiesProvider{}.PropertiesFor(next)
		if v, has := nextStatic.Get(streampkg.PropCount); has {
			properties.Put(producerPrefix+streampkg.PropNextModuleCount, v)
		}
		if v, has := nextStatic.Get(streampkg.PropConcurrency); has {
			properties.Put(producerPrefix+streampkg.PropNextModuleConcurrency, v)
		}
	}

	if properties.HasPartitionKey() {
		next, ok := stream.Next(index)
		if !ok {
			hooks.warn("module '%s' is a sink module which contains a property of "+
				"'producer.partitionKeyExpression' used for data partitioning; this "+
				"feature is only supported for modules that produce data", descriptor)
		} else {
			nextStatic := streampkg.DescriptorPropertiesProvider{}.PropertiesFor(next)
			countStr, _ := nextStatic.Get(streampkg.PropCount)
			count, err := validatePartitionCount(countStr, next)
			if err != nil {
				return streampkg.RuntimeModuleDeploymentProperties{}, err
			}
			properties.Put(producerPrefix+streampkg.PropPartitionCount, strconv.Itoa(count))
		}
	} else if _, ok := stream.Next(index); ok {
		planDirectBinding(stream, descriptor, properties, hooks)
	}

	return properties, nil
}

// planDirectBinding mirrors propertiesForDescriptor's final branch: direct binding is
// permitted iff the user did not veto it, the module is not partitioned
// (already excluded by the caller), the module is not last (already
// ensured by the caller), both modules have count == 0, and their criteria
// match.
func planDirectBinding(stream streampkg.Stream, descriptor streampkg.ModuleDescriptor, properties streampkg.RuntimeModuleDeploymentProperties, hooks Hooks) {
	next, ok := stream.Next(descriptor.Index)
	if !ok {
		return
	}
	nextStatic := streampkg.DescriptorPropertiesProvider{}.PropertiesFor(next)

	directBindingKey := producerPrefix + streampkg.PropDirectBindingAllowed
	vetoed := !properties.DirectBindingAllowed(func(invalidValue string) {
		hooks.warn("only 'false' is allowed as an explicit value for the %s property, "+
			"but the value was: '%s'", directBindingKey, invalidValue)
	})
	if vetoed {
		return
	}

	if properties.Count() != 0 || nextStatic.Count() != 0 {
		return
	}

	criteria, hasCriteria := properties.Criteria()
	nextCriteria, nextHasCriteria := nextStatic.Criteria()
	if hasCriteria != nextHasCriteria {
		return
	}
	if hasCriteria && criteria != nextCriteria {
		return
	}

	properties.Put(directBindingKey, "true")
}

// validatePartitionCount requires the raw string to parse as an integer
// strictly greater than 1. Absent, empty, unparseable, or <= 1 values each
// yield a distinct, descriptive error naming the offending module.
func validatePartitionCount(raw string, descriptor streampkg.ModuleDescriptor) (int, error) {
	if raw == "" {
		return 0, &buspkg.ValidationError{
			Name: fmt.Sprintf("%s", descriptor),
			Kind: "count",
			Keys: []string{"'count' property is required in order to support partitioning"},
		}
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &buspkg.ValidationError{
			Name: fmt.Sprintf("%s", descriptor),
			Kind: "count",
			Keys: []string{fmt.Sprintf("'count' does not contain a valid integer, current value is '%s'", raw)},
		}
	}
	if count <= 1 {
		return 0, &buspkg.ValidationError{
			Name: fmt.Sprintf("%s", descriptor),
			Kind: "count",
			Keys: []string{fmt.Sprintf("'count' must contain an integer > 1, current value is '%s'", raw)},
		}
	}
	return count, nil
}
