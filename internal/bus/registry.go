package bus

import "sync"

// SharedChannelRegistry is the lookup-or-create collaborator BusCore uses for
// dynamic producers (BindDynamicProducer): a map of shared Channels keyed by
// name, with factory-on-miss semantics backed by a single lock so two
// concurrent lookups for the same name can never both create. Grounded on
// MessageBusSupport's SharedChannelProvider nested class and
// doBindDynamicProducer's lookupOrCreateSharedChannel contract.
type SharedChannelRegistry struct {
	mu       sync.Mutex
	channels map[string]*Channel
}

// NewSharedChannelRegistry constructs an empty registry.
func NewSharedChannelRegistry() *SharedChannelRegistry {
	return &SharedChannelRegistry{channels: map[string]*Channel{}}
}

// LookupOrCreate returns the Channel registered under name, creating one
// with factory and registering it if absent. factory is only invoked on a
// miss, and is called while the registry lock is held so a concurrent
// second caller always observes either the fully-created channel or blocks
// until it is.
func (r *SharedChannelRegistry) LookupOrCreate(name string, factory func() *Channel) (channel *Channel, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.channels[name]; ok {
		return existing, false
	}
	ch := factory()
	r.channels[name] = ch
	return ch, true
}

// Lookup returns the Channel registered under name, if any, without
// creating one.
func (r *SharedChannelRegistry) Lookup(name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// Remove drops the registration for name, returning the removed Channel if
// one existed. Callers are responsible for closing it once every pump
// referencing it has stopped.
func (r *SharedChannelRegistry) Remove(name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[name]
	if ok {
		delete(r.channels, name)
	}
	return ch, ok
}

// Names returns every currently registered channel name.
func (r *SharedChannelRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}
