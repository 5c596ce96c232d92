// Package protoflow is a stream message-bus binding engine: given a stream
// of module descriptors and their deployment properties, PropertyPlanner
// computes each module's per-role runtime properties (sequence, partition
// count, next-hop fan-out, direct-binding eligibility), and BusCore binds
// those roles onto named channels backed by a pluggable transport.
//
// Service hosts the Watermill router, publisher, and subscriber a
// BindingEngine runs on top of, and exposes the default middleware chain:
// correlation ID injection, structured logging, OpenTelemetry tracing,
// Prometheus metrics, retry with exponential backoff, and panic recovery.
// A minimal setup fills Config, builds a Service, derives a BusCore with
// NewBindingEngine, plans and binds each module with Plan and BindProducer/
// BindConsumer, and calls Service.Start.
//
// # Transports
//
// Protoflow ships two transports:
//   - channel: in-memory Go channels, used for direct-bound and test pipelines
//   - kafka: partitioned, consumer-group based streaming
//
// Additional transports register themselves with the transport registry by
// importing their package for its init() side effect.
//
// # Middleware
//
// The default middleware chain includes correlation ID injection, structured
// logging, OpenTelemetry tracing, Prometheus metrics, retry with exponential
// backoff, and panic recovery. Custom middleware can be added via
// ServiceDependencies.Middlewares.
package protoflow
