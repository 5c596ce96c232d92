package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/protoflow/internal/bus"
	configpkg "github.com/drblury/protoflow/internal/runtime/config"
	transportpkg "github.com/drblury/protoflow/internal/runtime/transport"
	channeltransport "github.com/drblury/protoflow/transport/channel"
)

func newChannelTestService(t *testing.T) (*Service, *configpkg.Config) {
	t.Helper()
	channeltransport.Register()
	cfg := &configpkg.Config{PubSubSystem: "channel"}
	svc := NewService(cfg, newTestLogger(), context.Background(), ServiceDependencies{})
	return svc, cfg
}

func TestServiceTransportReturnsServicePublisherAndSubscriber(t *testing.T) {
	svc, _ := newChannelTestService(t)

	transport := svc.Transport()
	assert.Same(t, svc.publisher, transport.Publisher)
	assert.Same(t, svc.subscriber, transport.Subscriber)
}

func TestNewBindingEngineUsesServiceTransportForEveryBind(t *testing.T) {
	svc, cfg := newChannelTestService(t)
	engine := NewBindingEngine(svc, cfg)
	require.NotNil(t, engine)

	ch := bus.NewChannel("orders.source", bus.ChannelModePointToPoint, 0)
	binding, err := engine.BindProducer(context.Background(), "orders.source", ch, nil)
	require.NoError(t, err)
	require.NotNil(t, binding)
	assert.Equal(t, bus.RoleProducer, binding.Role)
}

func TestNewBindingEngineOmitsPartitioningPropertiesWhenTransportDoesNotPartition(t *testing.T) {
	svc, cfg := newChannelTestService(t)
	engine := NewBindingEngine(svc, cfg)

	caps := transportpkg.GetCapabilities(cfg.GetPubSubSystem())
	if caps.SupportsPartitioning {
		t.Skip("channel transport supports partitioning in this build; non-partitioning branch not exercised")
	}

	_, hasPartitionCount := engine.ProducerSupportedProperties["partitionCount"]
	assert.False(t, hasPartitionCount)
	_, hasBatchingEnabled := engine.ProducerSupportedProperties["batchingEnabled"]
	assert.True(t, hasBatchingEnabled)
}

func TestNewBindingEngineUsesDefaultPropertiesWhenTransportPartitions(t *testing.T) {
	svc, cfg := newChannelTestService(t)

	caps := transportpkg.GetCapabilities(cfg.GetPubSubSystem())
	if !caps.SupportsPartitioning {
		t.Skip("channel transport does not support partitioning in this build; default branch not exercised")
	}

	engine := NewBindingEngine(svc, cfg)
	_, hasPartitionCount := engine.ProducerSupportedProperties["partitionCount"]
	assert.True(t, hasPartitionCount)
}
