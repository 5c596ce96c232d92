package bus

import (
	"hash/fnv"
	"math"
)

// PartitionSelector maps a (key, partitionCount) pair to a partition index
// >= 0. The caller (BusCore.determinePartition) takes the result modulo
// partitionCount; implementations need not do so themselves. Defined only
// for keys with a stable hash contract, notably strings.
type PartitionSelector interface {
	SelectPartition(key any, partitionCount int) int
}

// PartitionSelectorFunc adapts a plain function to PartitionSelector, the
// same func-adapter convention transport.Builder already uses for transport
// construction.
type PartitionSelectorFunc func(key any, partitionCount int) int

// SelectPartition calls f.
func (f PartitionSelectorFunc) SelectPartition(key any, partitionCount int) int { return f(key, partitionCount) }

// DefaultPartitionSelector hashes the key; if the hash equals the minimum
// signed-32-bit integer (to avoid overflow under abs), substitutes 0, then
// returns abs(hash). Grounded on MessageBusSupport.DefaultPartitionSelector.
var DefaultPartitionSelector PartitionSelector = PartitionSelectorFunc(func(key any, partitionCount int) int {
	hash := hashKey(key)
	if hash == math.MinInt32 {
		hash = 0
	}
	return absInt(hash)
})

// hashKey computes a stable 32-bit hash for keys with a string-like
// representation, mirroring Java's key.hashCode() contract for strings: a
// deterministic function of the key's content, not its identity.
func hashKey(key any) int {
	s, ok := key.(string)
	if !ok {
		s = toHashableString(key)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(int32(h.Sum32()))
}

func toHashableString(key any) string {
	if stringer, ok := key.(interface{ String() string }); ok {
		return stringer.String()
	}
	return ""
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// PartitioningMetadata is an immutable snapshot of a producer's partitioning
// configuration, taken from a PropertyAccessor at bind time.
type PartitioningMetadata struct {
	PartitionKeyExtractorClass  string
	PartitionKeyExpression      string
	PartitionSelectorClass      string
	PartitionSelectorExpression string
	PartitionCount              int

	hasKeyExtractor  bool
	hasKeyExpression bool
}

// partitionPropertySource is the stream.PropertyAccessor-shaped source that
// partitioning fields are snapshotted from. It is an interface satisfied by
// stream.PropertyAccessor so this package doesn't import internal/stream
// solely for a constructor's signature.
type partitionPropertySource interface {
	PartitionKeyExtractorClass() (string, bool)
	PartitionKeyExpression() (string, bool)
	PartitionSelectorClass() (string, bool)
	PartitionSelectorExpression() (string, bool)
	PartitionCount(def int) int
}

// NewPartitioningMetadata constructs and freezes a PartitioningMetadata from
// a property accessor.
func NewPartitioningMetadata(accessor partitionPropertySource) PartitioningMetadata {
	extractorClass, hasExtractor := accessor.PartitionKeyExtractorClass()
	keyExpr, hasKeyExpr := accessor.PartitionKeyExpression()
	selectorClass, _ := accessor.PartitionSelectorClass()
	selectorExpr, _ := accessor.PartitionSelectorExpression()
	return PartitioningMetadata{
		PartitionKeyExtractorClass:  extractorClass,
		PartitionKeyExpression:      keyExpr,
		PartitionSelectorClass:      selectorClass,
		PartitionSelectorExpression: selectorExpr,
		PartitionCount:              accessor.PartitionCount(1),
		hasKeyExtractor:             hasExtractor && extractorClass != "",
		hasKeyExpression:            hasKeyExpr && keyExpr != "",
	}
}

// IsPartitioned reports whether a key extractor class or key expression is
// present.
func (m PartitioningMetadata) IsPartitioned() bool {
	return m.hasKeyExtractor || m.hasKeyExpression
}
