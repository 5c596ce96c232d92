package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	loggingpkg "github.com/drblury/protoflow/internal/runtime/logging"
	streampkg "github.com/drblury/protoflow/internal/stream"
)

// Transport is the publisher/subscriber pair a TransportFactory hands back
// for a given channel name. Reuses watermill's message.Publisher/Subscriber
// directly rather than inventing a parallel abstraction — this is the same
// shape transport.Transport{Publisher, Subscriber} already carries.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// TransportFactory resolves the concrete transport plugin backing a named
// channel. BusCore never talks to a specific transport package directly;
// wiring a factory here is how the host runtime's transport.Registry gets
// exercised by the binding engine.
type TransportFactory func(ctx context.Context, name string, properties map[string]string) (Transport, error)

// ConsumerHandler processes one inbound message, optionally producing
// messages to forward into the consumer's local Channel. Shares
// message.HandlerFunc's shape so a BuildRetry-produced middleware.Retry can
// wrap it without an adapter.
type ConsumerHandler = message.HandlerFunc

// directBindingState is the record a DIRECT binding keeps so an eventual
// consumer unbind can revert it back to a transport-backed producer binding.
// Grounded on MessageBusSupport.revertDirectBindingIfNecessary.
type directBindingState struct {
	producerChannel    *Channel
	producerProperties map[string]string
	consumerChannel    *Channel
}

// BusCore is the binding engine: bind/unbind producer/consumer channels
// under symbolic names, direct-binding optimization, partition routing, and
// retry template construction. Grounded directly on MessageBusSupport.java;
// see DESIGN.md for how each redesign note is resolved.
type BusCore struct {
	table      *BindingTable
	registry   *SharedChannelRegistry
	strategies *StrategyRegistry
	transport  TransportFactory

	// RetryDefaults seeds BuildRetry for every consumer binding that doesn't
	// override retry properties of its own.
	RetryDefaults RetryDefaults
	// ChannelBuffer sizes channels BindDynamicProducer creates.
	ChannelBuffer int
	// ProducerSupportedProperties/ConsumerSupportedProperties are the
	// core-plus-transport-specific sets bindProducer/bindConsumer validate
	// against. Default to DefaultProducerSupportedProperties/
	// DefaultConsumerSupportedProperties; callers widen these with
	// transport.Capabilities-derived keys when wiring a specific transport.
	ProducerSupportedProperties map[string]struct{}
	ConsumerSupportedProperties map[string]struct{}

	Logger loggingpkg.ServiceLogger
}

// NewBusCore constructs a BusCore over table/registry/strategies, delegating
// to transportFactory for every bind that isn't collapsed into a direct
// binding. NewBusCore performs no I/O; bind and unbind are usable without
// calling Start.
func NewBusCore(table *BindingTable, registry *SharedChannelRegistry, strategies *StrategyRegistry, transportFactory TransportFactory) *BusCore {
	return &BusCore{
		table:                       table,
		registry:                    registry,
		strategies:                  strategies,
		transport:                   transportFactory,
		RetryDefaults:               DefaultRetryDefaults,
		ProducerSupportedProperties: DefaultProducerSupportedProperties(),
		ConsumerSupportedProperties: DefaultConsumerSupportedProperties(),
	}
}

// Start is the point BusCore's ambient collectors (metrics, tracing) would
// attach, were any configured. Bind/unbind are usable before Start is
// called; tests that don't need the ambient collectors never call it.
func (b *BusCore) Start(ctx context.Context) error {
	return nil
}

func (b *BusCore) producerSupported() map[string]struct{} {
	if b.ProducerSupportedProperties != nil {
		return b.ProducerSupportedProperties
	}
	return DefaultProducerSupportedProperties()
}

func (b *BusCore) consumerSupported() map[string]struct{} {
	if b.ConsumerSupportedProperties != nil {
		return b.ConsumerSupportedProperties
	}
	return DefaultConsumerSupportedProperties()
}

func (b *BusCore) channelBuffer() int {
	if b.ChannelBuffer > 0 {
		return b.ChannelBuffer
	}
	return 0
}

func (b *BusCore) logWarn(format string, args ...any) {
	if b.Logger == nil {
		return
	}
	b.Logger.Error(fmt.Sprintf(format, args...), nil, nil)
}

func (b *BusCore) transportFor(ctx context.Context, name string, properties map[string]string) (Transport, error) {
	if b.transport == nil {
		return Transport{}, errors.New("bus core has no transport factory configured")
	}
	return b.transport(ctx, name, properties)
}

// BindProducer mirrors MessageBusSupport.bindProducer.
func (b *BusCore) BindProducer(ctx context.Context, name string, ch *Channel, properties map[string]string) (*Binding, error) {
	if err := validateProperties(name, "producer", properties, b.producerSupported()); err != nil {
		return nil, err
	}
	if !IsNamedChannel(name) {
		if consumers := b.table.FindByNameAndRole(name, RoleConsumer); len(consumers) > 0 {
			return b.bindDirect(name, ch, properties, consumers[0].Channel)
		}
	}
	return b.bindProducerViaTransport(ctx, name, ch, properties)
}

// BindConsumer mirrors MessageBusSupport.bindConsumer.
func (b *BusCore) BindConsumer(ctx context.Context, name string, ch *Channel, properties map[string]string, handler ConsumerHandler) (*Binding, error) {
	if err := validateProperties(name, "consumer", properties, b.consumerSupported()); err != nil {
		return nil, err
	}
	binding, err := b.bindConsumerViaTransport(ctx, name, ch, properties, handler)
	if err != nil {
		return nil, err
	}
	if producers := b.table.FindByNameAndRole(name, RoleProducer); len(producers) > 0 {
		producer := producers[0]
		if streampkg.NewPropertyAccessor(producer.Properties).DirectBindingAllowed(nil) {
			if convErr := b.convertProducerToDirect(name, producer, ch); convErr != nil {
				b.logWarn("convert producer %q to direct binding failed: %v", name, convErr)
			}
		}
	}
	return binding, nil
}

// BindPubSubProducer mirrors MessageBusSupport.bindPubSubProducer: identical
// to bindProducer except the direct-binding optimization is never applied.
func (b *BusCore) BindPubSubProducer(ctx context.Context, name string, ch *Channel, properties map[string]string) (*Binding, error) {
	if err := validateProperties(name, "producer", properties, b.producerSupported()); err != nil {
		return nil, err
	}
	return b.bindProducerViaTransport(ctx, name, ch, properties)
}

// BindPubSubConsumer mirrors MessageBusSupport.bindPubSubConsumer: identical
// to bindConsumer except it never attempts to convert an existing producer
// into a direct binding.
func (b *BusCore) BindPubSubConsumer(ctx context.Context, name string, ch *Channel, properties map[string]string, handler ConsumerHandler) (*Binding, error) {
	if err := validateProperties(name, "consumer", properties, b.consumerSupported()); err != nil {
		return nil, err
	}
	return b.bindConsumerViaTransport(ctx, name, ch, properties, handler)
}

// BindDynamicProducer mirrors MessageBusSupport.bindDynamicProducer:
// allocates (or reuses) a shared Channel under name and binds it as a
// producer. Idempotent on name. If the bind fails and the channel was newly
// created for this call, it is torn down before the error surfaces.
func (b *BusCore) BindDynamicProducer(ctx context.Context, name string, properties map[string]string) (*Channel, *Binding, error) {
	ch, created := b.registry.LookupOrCreate(name, func() *Channel {
		return NewChannel(name, ModeForName(name), b.channelBuffer())
	})
	if !created {
		if existing := b.table.FindByNameAndRole(name, RoleProducer); len(existing) > 0 {
			return ch, existing[0], nil
		}
	}
	binding, err := b.BindProducer(ctx, name, ch, properties)
	if err != nil {
		if created {
			b.registry.Remove(name)
			ch.Close()
		}
		return nil, nil, err
	}
	return ch, binding, nil
}

// UnbindProducer mirrors MessageBusSupport.unbindProducer.
func (b *BusCore) UnbindProducer(name string, ch *Channel) error {
	for _, bnd := range b.table.FindByNameAndRole(name, RoleProducer) {
		if bnd.Channel == ch {
			return b.unbind(bnd)
		}
	}
	return nil
}

// UnbindProducers mirrors MessageBusSupport.unbindProducers.
func (b *BusCore) UnbindProducers(name string) error {
	var firstErr error
	for _, bnd := range b.table.FindByNameAndRole(name, RoleProducer) {
		if err := b.unbind(bnd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UnbindConsumer mirrors MessageBusSupport.unbindConsumer: any DIRECT
// binding paired with ch is reverted to a transport-backed producer binding
// before the consumer itself is unbound.
func (b *BusCore) UnbindConsumer(ctx context.Context, name string, ch *Channel) error {
	for _, direct := range b.table.FindByNameAndRole(name, RoleDirect) {
		if direct.direct != nil && direct.direct.consumerChannel == ch {
			if err := b.revertDirectBinding(ctx, name, direct); err != nil {
				b.logWarn("failed to revert direct binding %q: %v", name, err)
			}
		}
	}
	for _, bnd := range b.table.FindByNameAndRole(name, RoleConsumer) {
		if bnd.Channel == ch {
			return b.unbind(bnd)
		}
	}
	return nil
}

// UnbindConsumers mirrors MessageBusSupport.unbindConsumers.
func (b *BusCore) UnbindConsumers(ctx context.Context, name string) error {
	var firstErr error
	for _, bnd := range b.table.FindByNameAndRole(name, RoleConsumer) {
		if err := b.UnbindConsumer(ctx, name, bnd.Channel); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StopAll mirrors MessageBusSupport.stopAll: stop every binding, logging but
// not propagating failures.
func (b *BusCore) StopAll() {
	for _, bnd := range b.table.FindAll() {
		if err := bnd.Unbind(); err != nil {
			b.logWarn("stop binding %q (%s) failed: %v", bnd.Name, bnd.Role, err)
		}
		b.table.Remove(bnd)
	}
}

func (b *BusCore) unbind(bnd *Binding) error {
	err := bnd.Unbind()
	b.table.Remove(bnd)
	return err
}

func (b *BusCore) bindProducerViaTransport(ctx context.Context, name string, ch *Channel, properties map[string]string) (*Binding, error) {
	transport, err := b.transportFor(ctx, name, properties)
	if err != nil {
		return nil, &BindingFailure{Name: name, Err: err}
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-pumpCtx.Done():
				return
			case msg, ok := <-ch.Messages():
				if !ok {
					return
				}
				if pubErr := transport.Publisher.Publish(name, msg); pubErr != nil {
					b.logWarn("publish to %q failed: %v", name, pubErr)
				}
			}
		}
	}()

	binding := &Binding{
		Name:       name,
		Role:       RoleProducer,
		Channel:    ch,
		Properties: properties,
		Endpoint: EndpointFunc(func() error {
			cancel()
			<-stopped
			return transport.Publisher.Close()
		}),
	}
	b.table.Add(binding)
	return binding, nil
}

func (b *BusCore) bindConsumerViaTransport(ctx context.Context, name string, ch *Channel, properties map[string]string, handler ConsumerHandler) (*Binding, error) {
	transport, err := b.transportFor(ctx, name, properties)
	if err != nil {
		return nil, &BindingFailure{Name: name, Err: err}
	}
	subscription, err := transport.Subscriber.Subscribe(ctx, name)
	if err != nil {
		return nil, &BindingFailure{Name: name, Err: err}
	}

	forward := handler
	if forward == nil {
		forward = func(msg *message.Message) ([]*message.Message, error) {
			return []*message.Message{msg}, nil
		}
	}
	if retry := BuildRetry(streampkg.NewPropertyAccessor(properties), b.RetryDefaults); retry != nil {
		forward = retry.Middleware(forward)
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-pumpCtx.Done():
				return
			case msg, ok := <-subscription:
				if !ok {
					return
				}
				out, handleErr := forward(msg)
				if handleErr != nil {
					b.logWarn("consumer handler for %q failed: %v", name, handleErr)
					continue
				}
				for _, m := range out {
					if sendErr := ch.Send(pumpCtx, m); sendErr != nil {
						return
					}
				}
			}
		}
	}()

	binding := &Binding{
		Name:       name,
		Role:       RoleConsumer,
		Channel:    ch,
		Properties: properties,
		Endpoint: EndpointFunc(func() error {
			cancel()
			<-stopped
			return transport.Subscriber.Close()
		}),
	}
	b.table.Add(binding)
	return binding, nil
}

func (b *BusCore) bindDirect(name string, producerCh *Channel, producerProperties map[string]string, consumerCh *Channel) (*Binding, error) {
	pumpCtx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go directPump(pumpCtx, producerCh, consumerCh, stopped)

	binding := &Binding{
		Name:       name,
		Role:       RoleDirect,
		Channel:    producerCh,
		Properties: producerProperties,
		Endpoint: EndpointFunc(func() error {
			cancel()
			<-stopped
			return nil
		}),
		direct: &directBindingState{
			producerChannel:    producerCh,
			producerProperties: producerProperties,
			consumerChannel:    consumerCh,
		},
	}
	b.table.Add(binding)
	return binding, nil
}

// directPump forwards one message at a time from a producer Channel to a
// consumer Channel, never batching and never interleaving two in-flight
// forwards — the strongest available reading of "synchronous on the
// producing thread" for a DIRECT binding. Closes stopped once it has
// returned, so a caller cancelling ctx can wait for the channel read to
// actually stop before handing the same producer Channel to another pump.
func directPump(ctx context.Context, from, to *Channel, stopped chan struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-from.Messages():
			if !ok {
				return
			}
			_ = to.Send(ctx, msg)
		}
	}
}

// convertProducerToDirect stops the superseded producer pump and waits for it
// to fully exit before starting the direct pump over the same Channel — both
// pumps reading producer.Channel concurrently would race for messages sent in
// the handover window.
func (b *BusCore) convertProducerToDirect(name string, producer *Binding, consumerCh *Channel) error {
	if stopErr := producer.Unbind(); stopErr != nil {
		b.logWarn("stop superseded producer binding %q failed: %v", name, stopErr)
	}
	b.table.Remove(producer)
	_, err := b.bindDirect(name, producer.Channel, producer.Properties, consumerCh)
	return err
}

// revertDirectBinding is the inverse: the direct pump is stopped and drained
// before the transport-backed producer pump starts reading the same Channel.
func (b *BusCore) revertDirectBinding(ctx context.Context, name string, direct *Binding) error {
	state := direct.direct
	if stopErr := direct.Unbind(); stopErr != nil {
		b.logWarn("stop reverted direct binding %q failed: %v", name, stopErr)
	}
	b.table.Remove(direct)
	_, err := b.bindProducerViaTransport(ctx, name, state.producerChannel, state.producerProperties)
	return err
}

// DeterminePartition mirrors MessageBusSupport.determinePartition.
func (b *BusCore) DeterminePartition(ctx context.Context, msg *message.Message, meta PartitioningMetadata) (int, error) {
	key, err := b.resolvePartitionKey(ctx, msg, meta)
	if err != nil {
		return 0, err
	}
	raw, err := b.resolveRawPartition(ctx, key, meta)
	if err != nil {
		return 0, err
	}
	if meta.PartitionCount <= 0 {
		return 0, fmt.Errorf("partition count must be positive, got %d", meta.PartitionCount)
	}
	partition := raw % meta.PartitionCount
	if partition < 0 {
		partition = -partition
	}
	return partition, nil
}

func (b *BusCore) resolvePartitionKey(ctx context.Context, msg *message.Message, meta PartitioningMetadata) (any, error) {
	switch {
	case meta.PartitionKeyExtractorClass != "":
		extractor, ok := b.strategies.ByName(meta.PartitionKeyExtractorClass)
		if !ok {
			return nil, &ClassResolutionError{Name: meta.PartitionKeyExtractorClass, Err: errors.New("partition key extractor not registered")}
		}
		return extractor.ExtractKey(msg)
	case meta.PartitionKeyExpression != "":
		expr, ok := b.strategies.KeyExpressionByText(meta.PartitionKeyExpression)
		if !ok {
			return nil, &ClassResolutionError{Name: meta.PartitionKeyExpression, Err: errors.New("partition key expression not registered")}
		}
		return expr(ctx, msg)
	default:
		return nil, fmt.Errorf("message on %q is not partitioned: no partitionKeyExtractorClass or partitionKeyExpression configured", msg.UUID)
	}
}

func (b *BusCore) resolveRawPartition(ctx context.Context, key any, meta PartitioningMetadata) (int, error) {
	switch {
	case meta.PartitionSelectorClass != "":
		selector, ok := b.strategies.SelectorByName(meta.PartitionSelectorClass)
		if !ok {
			return 0, &ClassResolutionError{Name: meta.PartitionSelectorClass, Err: errors.New("partition selector not registered")}
		}
		return selector.SelectPartition(key, meta.PartitionCount), nil
	case meta.PartitionSelectorExpression != "":
		fn, ok := b.strategies.SelectorExpressionByText(meta.PartitionSelectorExpression)
		if !ok {
			return 0, &ClassResolutionError{Name: meta.PartitionSelectorExpression, Err: errors.New("partition selector expression not registered")}
		}
		return fn(ctx, key)
	default:
		return DefaultPartitionSelector.SelectPartition(key, meta.PartitionCount), nil
	}
}

// PartitionRoutingExpression builds the header-derived topic suffix
// transports use to route a partitioned message, e.g. a Kafka topic name
// plus partition key header. Grounded on
// MessageBusSupport.buildPartitionRoutingExpression.
func PartitionRoutingExpression(root string) string {
	return fmt.Sprintf("'%s-' + headers['%s']", root, HeaderPartition)
}
