// Package stream holds the data model the binding engine plans over: streams,
// module descriptors, and their typed deployment properties.
package stream

import (
	"strconv"
	"time"
)

// Recognized property keys, unprefixed. Consumer/producer prefixes are applied
// by callers when writing into a module's property bag (see planner).
const (
	PropCount        = "count"
	PropSequence     = "sequence"
	PropConcurrency  = "concurrency"
	PropCriteria     = "criteria"
	PropPartitionIdx = "partitionIndex"

	PropMaxAttempts            = "maxAttempts"
	PropBackOffInitialInterval = "backOffInitialInterval"
	PropBackOffMaxInterval     = "backOffMaxInterval"
	PropBackOffMultiplier      = "backOffMultiplier"

	PropNextModuleCount       = "nextModuleCount"
	PropNextModuleConcurrency = "nextModuleConcurrency"
	PropPartitionCount        = "partitionCount"
	PropPartitionKeyExpr      = "partitionKeyExpression"
	PropPartitionKeyExtractor = "partitionKeyExtractorClass"
	PropPartitionSelectorExpr = "partitionSelectorExpression"
	PropPartitionSelectorCls  = "partitionSelectorClass"
	PropDirectBindingAllowed  = "directBindingAllowed"
	PropBatchingEnabled       = "batchingEnabled"
	PropBatchSize             = "batchSize"
	PropBatchBufferLimit      = "batchBufferLimit"
	PropBatchTimeout          = "batchTimeout"
	PropCompress              = "compress"
)

// PropertyAccessor is a typed view over a string-to-string property bag with
// defaulting rules. The zero value wraps an empty bag.
type PropertyAccessor struct {
	props map[string]string
}

// NewPropertyAccessor wraps an existing bag. A nil map is treated as empty.
func NewPropertyAccessor(props map[string]string) PropertyAccessor {
	if props == nil {
		props = map[string]string{}
	}
	return PropertyAccessor{props: props}
}

// Get returns the raw string value for key, if present.
func (a PropertyAccessor) Get(key string) (string, bool) {
	v, ok := a.props[key]
	return v, ok
}

// Has reports whether key is present in the bag, regardless of value.
func (a PropertyAccessor) Has(key string) bool {
	_, ok := a.props[key]
	return ok
}

// Put sets key to value, mutating the underlying bag in place. Used by the
// planner to accrete derived consumer./producer. properties onto a module's
// runtime properties.
func (a PropertyAccessor) Put(key, value string) {
	a.props[key] = value
}

// Properties returns a shallow copy of the underlying bag.
func (a PropertyAccessor) Properties() map[string]string {
	out := make(map[string]string, len(a.props))
	for k, v := range a.props {
		out[k] = v
	}
	return out
}

func (a PropertyAccessor) intDefault(key string, def int) int {
	v, ok := a.props[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (a PropertyAccessor) durationMillisDefault(key string, def time.Duration) time.Duration {
	v, ok := a.props[key]
	if !ok || v == "" {
		return def
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func (a PropertyAccessor) floatDefault(key string, def float64) float64 {
	v, ok := a.props[key]
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (a PropertyAccessor) boolDefault(key string, def bool) bool {
	v, ok := a.props[key]
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Count returns the module's replica count, default 1.
func (a PropertyAccessor) Count() int { return a.intDefault(PropCount, 1) }

// Sequence returns the replica sequence among Count copies, default 0
// (meaning unassigned).
func (a PropertyAccessor) Sequence() int { return a.intDefault(PropSequence, 0) }

// Concurrency returns the per-replica handler concurrency, falling back to def.
func (a PropertyAccessor) Concurrency(def int) int { return a.intDefault(PropConcurrency, def) }

// Criteria returns the deployment predicate string used for co-location
// compatibility, if set.
func (a PropertyAccessor) Criteria() (string, bool) { return a.Get(PropCriteria) }

// MaxAttempts returns the consumer's retry attempt budget, falling back to def.
func (a PropertyAccessor) MaxAttempts(def int) int { return a.intDefault(PropMaxAttempts, def) }

// BackOffInitialInterval returns the retry backoff's initial interval, falling back to def.
func (a PropertyAccessor) BackOffInitialInterval(def time.Duration) time.Duration {
	return a.durationMillisDefault(PropBackOffInitialInterval, def)
}

// BackOffMaxInterval returns the retry backoff's max interval, falling back to def.
func (a PropertyAccessor) BackOffMaxInterval(def time.Duration) time.Duration {
	return a.durationMillisDefault(PropBackOffMaxInterval, def)
}

// BackOffMultiplier returns the retry backoff multiplier, falling back to def.
func (a PropertyAccessor) BackOffMultiplier(def float64) float64 {
	return a.floatDefault(PropBackOffMultiplier, def)
}

// BatchingEnabled reports whether producer-side batching is enabled, falling back to def.
func (a PropertyAccessor) BatchingEnabled(def bool) bool {
	return a.boolDefault(PropBatchingEnabled, def)
}

// BatchSize returns the producer batch size, falling back to def.
func (a PropertyAccessor) BatchSize(def int) int { return a.intDefault(PropBatchSize, def) }

// BatchBufferLimit returns the producer batch buffer limit, falling back to def.
func (a PropertyAccessor) BatchBufferLimit(def int) int {
	return a.intDefault(PropBatchBufferLimit, def)
}

// BatchTimeout returns the producer batch timeout, falling back to def.
func (a PropertyAccessor) BatchTimeout(def time.Duration) time.Duration {
	return a.durationMillisDefault(PropBatchTimeout, def)
}

// Compress reports whether the producer should compress payloads, falling back to def.
func (a PropertyAccessor) Compress(def bool) bool { return a.boolDefault(PropCompress, def) }

// DirectBindingAllowed reports whether direct binding is permitted. Default is
// true; any value other than the literal "false" is treated as true, and
// onWarning (if non-nil) is invoked when the raw value is neither absent nor
// "false" (case-insensitive).
func (a PropertyAccessor) DirectBindingAllowed(onWarning func(string)) bool {
	v, ok := a.Get(PropDirectBindingAllowed)
	if !ok {
		return true
	}
	if equalFoldFalse(v) {
		return false
	}
	if onWarning != nil {
		onWarning(v)
	}
	return true
}

func equalFoldFalse(v string) bool {
	if len(v) != 5 {
		return false
	}
	const want = "false"
	for i := 0; i < 5; i++ {
		c := v[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != want[i] {
			return false
		}
	}
	return true
}

// PartitionKeyExpression returns the configured partition key expression, if set.
func (a PropertyAccessor) PartitionKeyExpression() (string, bool) {
	return a.Get(PropPartitionKeyExpr)
}

// PartitionKeyExtractorClass returns the configured partition key extractor name, if set.
func (a PropertyAccessor) PartitionKeyExtractorClass() (string, bool) {
	return a.Get(PropPartitionKeyExtractor)
}

// PartitionSelectorClass returns the configured partition selector name, if set.
func (a PropertyAccessor) PartitionSelectorClass() (string, bool) {
	return a.Get(PropPartitionSelectorCls)
}

// PartitionSelectorExpression returns the configured partition selector expression, if set.
func (a PropertyAccessor) PartitionSelectorExpression() (string, bool) {
	return a.Get(PropPartitionSelectorExpr)
}

// PartitionCount returns the producer's partition count, falling back to def.
func (a PropertyAccessor) PartitionCount(def int) int {
	return a.intDefault(PropPartitionCount, def)
}

// HasPartitionKey reports whether the bag declares a partition key extractor
// class or expression — the "partitioned" condition.
func (a PropertyAccessor) HasPartitionKey() bool {
	if v, ok := a.PartitionKeyExtractorClass(); ok && v != "" {
		return true
	}
	if v, ok := a.PartitionKeyExpression(); ok && v != "" {
		return true
	}
	return false
}
