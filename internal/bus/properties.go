package bus

import streampkg "github.com/drblury/protoflow/internal/stream"

// Supported-property sets every bus core implementation tolerates. Named and
// composable the way the original's SetBuilder-composed CONSUMER_STANDARD_PROPERTIES
// / PRODUCER_PARTITIONING_PROPERTIES / PRODUCER_BATCHING_* sets are, so a
// transport plugin can union these with its own transport-specific keys to
// build a "core + transport-specific" supported set.
var (
	ConsumerStandardProperties = stringSet(
		streampkg.PropCount,
		streampkg.PropSequence,
	)

	ConsumerRetryProperties = stringSet(
		streampkg.PropBackOffInitialInterval,
		streampkg.PropBackOffMaxInterval,
		streampkg.PropBackOffMultiplier,
		streampkg.PropMaxAttempts,
	)

	ProducerStandardProperties = stringSet(
		streampkg.PropNextModuleCount,
		streampkg.PropNextModuleConcurrency,
		streampkg.PropDirectBindingAllowed,
	)

	ProducerPartitioningProperties = stringSet(
		streampkg.PropPartitionCount,
		streampkg.PropPartitionKeyExpr,
		streampkg.PropPartitionKeyExtractor,
		streampkg.PropPartitionSelectorCls,
		streampkg.PropPartitionSelectorExpr,
	)

	ProducerBatchingBasicProperties = stringSet(
		streampkg.PropBatchingEnabled,
		streampkg.PropBatchSize,
		streampkg.PropBatchTimeout,
	)

	ProducerBatchingAdvancedProperties = stringSet(
		streampkg.PropBatchBufferLimit,
	)

	ProducerCompressionProperties = stringSet(
		streampkg.PropCompress,
	)
)

func stringSet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// union returns a new set containing every key from all of sets.
func union(sets ...map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

// UnionSupportedProperties combines one or more supported-property sets into
// one, the composable building block transport wiring uses to add its own
// transport-specific keys onto the core sets above.
func UnionSupportedProperties(sets ...map[string]struct{}) map[string]struct{} {
	return union(sets...)
}

// DefaultProducerSupportedProperties is the producer property set tolerated
// when no transport-specific extension is supplied.
func DefaultProducerSupportedProperties() map[string]struct{} {
	return union(ProducerStandardProperties, ProducerPartitioningProperties,
		ProducerBatchingBasicProperties, ProducerBatchingAdvancedProperties,
		ProducerCompressionProperties)
}

// DefaultConsumerSupportedProperties is the consumer property set tolerated
// when no transport-specific extension is supplied.
func DefaultConsumerSupportedProperties() map[string]struct{} {
	return union(ConsumerStandardProperties, ConsumerRetryProperties)
}

// validateProperties mirrors MessageBusSupport.validateProperties: every key
// in props not present in supported is collected into a single ValidationError.
func validateProperties(name, kind string, props map[string]string, supported map[string]struct{}) error {
	var offending []string
	for key := range props {
		if _, ok := supported[key]; !ok {
			offending = append(offending, key)
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return &ValidationError{Name: name, Kind: kind, Keys: offending}
}
