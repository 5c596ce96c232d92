package bus

import (
	"context"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Named-channel type prefixes.
const (
	P2PNamedChannelPrefix    = "queue:"
	PubSubNamedChannelPrefix = "topic:"
	JobNamedChannelPrefix    = "job:"
)

// ChannelMode identifies one of the three conduit shapes a Channel may have.
type ChannelMode int

const (
	// ChannelModePointToPoint delivers each message to exactly one consumer.
	ChannelModePointToPoint ChannelMode = iota
	// ChannelModePubSub delivers each message to every subscriber.
	ChannelModePubSub
	// ChannelModeJob carries job-channel semantics (job: prefix).
	ChannelModeJob
)

// IsNamedChannel reports whether name uses one of the queue:/topic:/job:
// prefixes, as opposed to a bare (dynamic pipeline edge) identifier.
func IsNamedChannel(name string) bool {
	return strings.HasPrefix(name, P2PNamedChannelPrefix) ||
		strings.HasPrefix(name, PubSubNamedChannelPrefix) ||
		strings.HasPrefix(name, JobNamedChannelPrefix)
}

// ModeForName derives a Channel's mode from its name prefix. Bare identifiers
// (dynamic pipeline edges) default to point-to-point.
func ModeForName(name string) ChannelMode {
	switch {
	case strings.HasPrefix(name, PubSubNamedChannelPrefix):
		return ChannelModePubSub
	case strings.HasPrefix(name, JobNamedChannelPrefix):
		return ChannelModeJob
	default:
		return ChannelModePointToPoint
	}
}

// Channel is a first-class, in-process message conduit: a module's local
// input or output queue, which BusCore binds to an edge either by wiring it
// to a transport plugin or by short-circuiting it directly to a co-located
// peer. Callers construct one with NewChannel and pass it to
// BusCore.BindProducer/BindConsumer; BusCore owns everything past that point.
type Channel struct {
	name string
	mode ChannelMode
	in   chan *message.Message
}

// NewChannel constructs a Channel named name with the given mode and
// buffered capacity.
func NewChannel(name string, mode ChannelMode, buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{name: name, mode: mode, in: make(chan *message.Message, buffer)}
}

// Name returns the channel's symbolic name.
func (c *Channel) Name() string { return c.name }

// Mode returns the channel's conduit shape.
func (c *Channel) Mode() ChannelMode { return c.mode }

// Send enqueues msg, blocking until there is room or ctx is done.
func (c *Channel) Send(ctx context.Context, msg *message.Message) error {
	select {
	case c.in <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages exposes the receive side for pumps to range over.
func (c *Channel) Messages() <-chan *message.Message { return c.in }

// Close closes the underlying channel. Must only be called once, after every
// producer-side pump referencing this channel has stopped.
func (c *Channel) Close() { close(c.in) }
