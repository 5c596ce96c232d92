package bus

import "sync"

// Role identifies which side of an edge a Binding represents.
type Role int

const (
	// RoleProducer binds a local output Channel to a transport publisher.
	RoleProducer Role = iota
	// RoleConsumer binds a local input Channel to a transport subscriber.
	RoleConsumer
	// RoleDirect binds a producer Channel straight to a consumer Channel,
	// bypassing the transport plugin entirely.
	RoleDirect
)

func (r Role) String() string {
	switch r {
	case RoleProducer:
		return "producer"
	case RoleConsumer:
		return "consumer"
	case RoleDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Endpoint is the lifecycle handle a Binding holds onto so Unbind can
// release whatever resources binding it acquired — a transport
// publisher/subscriber pair, or a direct-binding forwarding pump.
type Endpoint interface {
	Stop() error
}

// EndpointFunc adapts a plain function to Endpoint.
type EndpointFunc func() error

// Stop calls f.
func (f EndpointFunc) Stop() error { return f() }

// Binding is one entry in the BindingTable: the record that a Channel has
// been wired to a named edge in a particular Role, plus whatever endpoint
// needs stopping to tear it down. Grounded on MessageBusSupport's generic
// Binding<T> abstraction, flattened out of its Spring Lifecycle hierarchy
// into a plain struct plus an Endpoint handle.
type Binding struct {
	Name       string
	Role       Role
	Channel    *Channel
	Properties map[string]string
	Endpoint   Endpoint

	// direct carries the state a direct binding needs to revert to a
	// transport-backed producer binding if a consumer later unbinds.
	// nil for RoleProducer/RoleConsumer bindings.
	direct *directBindingState
}

// Unbind releases the binding's endpoint, if any. Safe to call once.
func (b *Binding) Unbind() error {
	if b.Endpoint == nil {
		return nil
	}
	return b.Endpoint.Stop()
}

// BindingTable tracks every live Binding, keyed by channel name. Grounded on
// MessageBusSupport's bindings list, reshaped into a map because BusCore
// frequently needs "every binding for this name" (to unbind all producers or
// consumers of a channel at once, per unbindConsumers/unbindProducers).
type BindingTable struct {
	mu     sync.Mutex
	byName map[string][]*Binding
}

// NewBindingTable constructs an empty table.
func NewBindingTable() *BindingTable {
	return &BindingTable{byName: map[string][]*Binding{}}
}

// Add registers b under b.Name.
func (t *BindingTable) Add(b *Binding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName[b.Name] = append(t.byName[b.Name], b)
}

// Remove deletes b from the table. Reports whether it was present.
func (t *BindingTable) Remove(b *Binding) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	list := t.byName[b.Name]
	for i, candidate := range list {
		if candidate == b {
			t.byName[b.Name] = append(list[:i], list[i+1:]...)
			if len(t.byName[b.Name]) == 0 {
				delete(t.byName, b.Name)
			}
			return true
		}
	}
	return false
}

// FindByName returns every binding currently registered under name.
func (t *BindingTable) FindByName(name string) []*Binding {
	t.mu.Lock()
	defer t.mu.Unlock()
	list := t.byName[name]
	out := make([]*Binding, len(list))
	copy(out, list)
	return out
}

// FindByNameAndRole returns every binding under name with the given role.
func (t *BindingTable) FindByNameAndRole(name string, role Role) []*Binding {
	var out []*Binding
	for _, b := range t.FindByName(name) {
		if b.Role == role {
			out = append(out, b)
		}
	}
	return out
}

// FindAll returns a snapshot of every binding in the table.
func (t *BindingTable) FindAll() []*Binding {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Binding
	for _, list := range t.byName {
		out = append(out, list...)
	}
	return out
}

// Names returns every channel name with at least one live binding.
func (t *BindingTable) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	return names
}
