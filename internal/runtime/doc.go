/*
Package runtime provides the Watermill-based host service that a stream's
binding engine runs on top of.

# Architecture Overview

The runtime package wires a Watermill router, a publisher/subscriber pair
obtained from a configured transport, and a middleware chain. The resulting
Service exposes its transport (Service.Transport) so internal/bus.BusCore can
bind producers and consumers over the exact same connection the router runs
its handlers on, instead of opening a second one.

# Package Structure

## Core Service (service.go)

The Service struct is the central orchestrator that wires together:
  - Message router (Watermill)
  - Publisher and subscriber connections
  - Middleware chain
  - HTTP servers for metrics

## Binding engine (binding_engine.go)

NewBindingEngine builds a bus.BusCore driven by a Service's transport,
widening its supported producer properties according to the configured
transport's partitioning capability.

## Middleware (middleware.go)

The middleware system provides composable message processing stages:
  - CorrelationID: Ensures message traceability
  - LogMessages: Debug logging of message payloads
  - Tracer: OpenTelemetry distributed tracing
  - Metrics: Prometheus metrics collection
  - Retry: Exponential backoff retry logic
  - Recoverer: Panic recovery

# Sub-packages

  - config/: Service configuration with validation
  - ids/: ULID generation for message IDs
  - jsoncodec/: JSON marshaling utilities
  - logging/: Logger interface and adapters
  - transport/: Transport factory over the protoflow/transport registry (channel, Kafka)

# Usage Example

	cfg := &protoflow.Config{
		PubSubSystem:   "kafka",
		KafkaBrokers:   []string{"localhost:9092"},
		MetricsEnabled: true,
		MetricsPort:    9090,
	}

	svc := protoflow.NewService(cfg, logger, ctx, protoflow.ServiceDependencies{})
	engine := protoflow.NewBindingEngine(svc, cfg)

	svc.Start(ctx)
*/
package runtime
