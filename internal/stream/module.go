package stream

import "fmt"

// ModuleDescriptor identifies a single module within a stream: its stream
// name, label, and index, plus its static deployment properties. Immutable
// once constructed.
type ModuleDescriptor struct {
	StreamName string
	Label      string
	Index      int
	Properties ModuleDeploymentProperties
}

// String renders a descriptor the way planner error messages reference it:
// "<streamName>.<label>[<index>]", matching the original's use of
// ModuleDescriptor#toString() in validation error text.
func (d ModuleDescriptor) String() string {
	return fmt.Sprintf("%s.%s[%d]", d.StreamName, d.Label, d.Index)
}

// Stream is an ordered, non-empty sequence of ModuleDescriptors. Module at
// index 0 is the source (no upstream); the last module is the sink (no
// downstream). Immutable once constructed via NewStream.
type Stream struct {
	Name    string
	Modules []ModuleDescriptor
}

// NewStream validates and constructs a Stream. Each Modules[i].Index must
// equal i.
func NewStream(name string, modules []ModuleDescriptor) (Stream, error) {
	if len(modules) == 0 {
		return Stream{}, fmt.Errorf("stream %q: must contain at least one module", name)
	}
	for i, m := range modules {
		if m.Index != i {
			return Stream{}, fmt.Errorf("stream %q: module %q has index %d, expected %d", name, m.Label, m.Index, i)
		}
	}
	return Stream{Name: name, Modules: modules}, nil
}

// Source returns the first module in the stream.
func (s Stream) Source() ModuleDescriptor { return s.Modules[0] }

// Sink returns the last module in the stream.
func (s Stream) Sink() ModuleDescriptor { return s.Modules[len(s.Modules)-1] }

// Previous returns the module preceding index, if any.
func (s Stream) Previous(index int) (ModuleDescriptor, bool) {
	if index <= 0 || index > len(s.Modules) {
		return ModuleDescriptor{}, false
	}
	return s.Modules[index-1], true
}

// Next returns the module following index, if any.
func (s Stream) Next(index int) (ModuleDescriptor, bool) {
	if index+1 >= len(s.Modules) {
		return ModuleDescriptor{}, false
	}
	return s.Modules[index+1], true
}

// IsLast reports whether index is the sink's index.
func (s Stream) IsLast(index int) bool {
	return index == len(s.Modules)-1
}

// PropertiesProvider supplies a module's static deployment properties.
// Injected into the planner so tests can substitute a fixture provider
// without constructing a full deployment store.
type PropertiesProvider interface {
	PropertiesFor(descriptor ModuleDescriptor) ModuleDeploymentProperties
}

// DescriptorPropertiesProvider is a PropertiesProvider backed directly by
// each ModuleDescriptor's own Properties field — the common case when the
// stream was already fully resolved at definition time.
type DescriptorPropertiesProvider struct{}

// PropertiesFor returns descriptor.Properties unchanged.
func (DescriptorPropertiesProvider) PropertiesFor(descriptor ModuleDescriptor) ModuleDeploymentProperties {
	return descriptor.Properties
}

// RuntimePropertiesProvider supplies a module's properties plus its assigned
// replica sequence, the input the planner starts from.
type RuntimePropertiesProvider interface {
	RuntimePropertiesFor(descriptor ModuleDescriptor) RuntimeModuleDeploymentProperties
}

// SequencedRuntimeProvider assigns a fixed sequence to every module it's
// asked about, wrapping a PropertiesProvider for the static bag. Used when
// planning for one specific replica (sequence is known by the caller, e.g.
// "the 3rd of 3 copies").
type SequencedRuntimeProvider struct {
	Base     PropertiesProvider
	Sequence int
}

// RuntimePropertiesFor returns the descriptor's base properties augmented
// with the provider's fixed sequence.
func (p SequencedRuntimeProvider) RuntimePropertiesFor(descriptor ModuleDescriptor) RuntimeModuleDeploymentProperties {
	base := p.Base.PropertiesFor(descriptor)
	return NewRuntimeModuleDeploymentProperties(base, p.Sequence)
}
