package runtime

import (
	"context"

	"github.com/drblury/protoflow/internal/bus"
	configpkg "github.com/drblury/protoflow/internal/runtime/config"
	transportpkg "github.com/drblury/protoflow/internal/runtime/transport"
)

// Transport exposes the publisher/subscriber pair Service.Start runs its
// router over, so a BusCore can be built on top of the exact same transport
// connection instead of opening a second one.
func (s *Service) Transport() transportpkg.Transport {
	return transportpkg.Transport{Publisher: s.publisher, Subscriber: s.subscriber}
}

// NewBindingEngine builds a BusCore driven by svc's transport: every bind
// shares the one publisher/subscriber pair svc.Transport returns, topic
// routing happening through the channel name passed at Publish/Subscribe
// time rather than through a distinct connection per channel. conf's
// configured pub-sub system widens the BusCore's supported producer
// properties with that transport's partitioning capability, giving the
// "core + transport-specific" supported-property union a transport plugin
// needs.
func NewBindingEngine(svc *Service, conf *configpkg.Config) *bus.BusCore {
	table := bus.NewBindingTable()
	registry := bus.NewSharedChannelRegistry()
	strategies := bus.NewStrategyRegistry()

	factory := func(ctx context.Context, name string, properties map[string]string) (bus.Transport, error) {
		t := svc.Transport()
		return bus.Transport{Publisher: t.Publisher, Subscriber: t.Subscriber}, nil
	}

	core := bus.NewBusCore(table, registry, strategies, factory)
	core.Logger = svc.Logger

	caps := transportpkg.GetCapabilities(conf.GetPubSubSystem())
	if caps.SupportsPartitioning {
		core.ProducerSupportedProperties = bus.DefaultProducerSupportedProperties()
	} else {
		core.ProducerSupportedProperties = bus.UnionSupportedProperties(
			bus.ProducerStandardProperties,
			bus.ProducerBatchingBasicProperties,
			bus.ProducerBatchingAdvancedProperties,
			bus.ProducerCompressionProperties,
		)
	}

	return core
}
