package protoflow

import (
	buspkg "github.com/drblury/protoflow/internal/bus"
	plannerpkg "github.com/drblury/protoflow/internal/planner"
	runtimepkg "github.com/drblury/protoflow/internal/runtime"
	configpkg "github.com/drblury/protoflow/internal/runtime/config"
	idspkg "github.com/drblury/protoflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/protoflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/protoflow/internal/runtime/logging"
	transportpkg "github.com/drblury/protoflow/internal/runtime/transport"
	streampkg "github.com/drblury/protoflow/internal/stream"
	newtransport "github.com/drblury/protoflow/transport"
)

type (
	Config              = configpkg.Config
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies
	Transport           = transportpkg.Transport
	TransportFactory    = transportpkg.Factory

	MiddlewareBuilder      = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration = runtimepkg.MiddlewareRegistration
	RetryMiddlewareConfig  = runtimepkg.RetryMiddlewareConfig

	LogFields                 = loggingpkg.LogFields
	ServiceLogger             = loggingpkg.ServiceLogger
	EntryLogger               = loggingpkg.EntryLogger
	EntryLoggerAdapter[T any] = loggingpkg.EntryLoggerAdapter[T]

	// Transport capabilities
	Capabilities = transportpkg.Capabilities

	// Modular transport types (channel, kafka)
	TransportBuilder      = newtransport.Builder
	TransportConfig       = newtransport.Config
	TransportRegistry     = newtransport.Registry
	TransportCapabilities = newtransport.Capabilities

	// Stream data model
	Stream                            = streampkg.Stream
	ModuleDescriptor                  = streampkg.ModuleDescriptor
	ModuleDeploymentProperties        = streampkg.ModuleDeploymentProperties
	RuntimeModuleDeploymentProperties = streampkg.RuntimeModuleDeploymentProperties
	PropertiesProvider                = streampkg.PropertiesProvider
	RuntimePropertiesProvider         = streampkg.RuntimePropertiesProvider
	DescriptorPropertiesProvider      = streampkg.DescriptorPropertiesProvider
	SequencedRuntimeProvider          = streampkg.SequencedRuntimeProvider
	PropertyAccessor                  = streampkg.PropertyAccessor

	// Property planner
	PlannerHooks = plannerpkg.Hooks

	// Binding engine
	BusCore                  = buspkg.BusCore
	BusChannel               = buspkg.Channel
	BusChannelMode           = buspkg.ChannelMode
	BusTransport             = buspkg.Transport
	BusTransportFactory      = buspkg.TransportFactory
	BusConsumerHandler       = buspkg.ConsumerHandler
	BusBinding               = buspkg.Binding
	BusRole                  = buspkg.Role
	BusBindingTable          = buspkg.BindingTable
	BusSharedChannelRegistry = buspkg.SharedChannelRegistry
	BusStrategyRegistry      = buspkg.StrategyRegistry
	BusPartitionSelector     = buspkg.PartitionSelector
	BusPartitioningMetadata  = buspkg.PartitioningMetadata
	BusRetryDefaults         = buspkg.RetryDefaults
	BusEnvelope              = buspkg.Envelope
	BusTypeCodec             = buspkg.TypeCodec
	BusDefaultCodec          = buspkg.DefaultCodec
	BusTargetContentType     = buspkg.TargetContentType
	BusValidationError       = buspkg.ValidationError
	BusBindingFailure        = buspkg.BindingFailure
	BusSerializationError    = buspkg.SerializationError
	BusClassResolutionError  = buspkg.ClassResolutionError
)

var (
	NewService     = runtimepkg.NewService
	ValidateConfig = configpkg.ValidateConfig

	DefaultMiddlewares      = runtimepkg.DefaultMiddlewares
	CorrelationIDMiddleware = runtimepkg.CorrelationIDMiddleware
	LogMessagesMiddleware   = runtimepkg.LogMessagesMiddleware
	TracerMiddleware        = runtimepkg.TracerMiddleware
	MetricsMiddleware       = runtimepkg.MetricsMiddleware
	RetryMiddleware         = runtimepkg.RetryMiddleware
	RecovererMiddleware     = runtimepkg.RecovererMiddleware

	// Transport capabilities
	GetCapabilities = transportpkg.GetCapabilities

	// Modular transport registry
	// Import individual transports via: _ "github.com/drblury/protoflow/transport/kafka"
	DefaultTransportRegistry = newtransport.DefaultRegistry
	RegisterTransport        = newtransport.Register
	BuildTransport           = newtransport.Build

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger

	CreateULID = idspkg.CreateULID

	// Stream data model
	NewStream                            = streampkg.NewStream
	NewModuleDeploymentProperties        = streampkg.NewModuleDeploymentProperties
	NewRuntimeModuleDeploymentProperties = streampkg.NewRuntimeModuleDeploymentProperties
	NewPropertyAccessor                  = streampkg.NewPropertyAccessor

	// Property planner
	Plan = plannerpkg.Plan

	// Binding engine
	NewBindingEngine           = runtimepkg.NewBindingEngine
	NewBusCore                 = buspkg.NewBusCore
	NewChannel                 = buspkg.NewChannel
	NewBindingTable            = buspkg.NewBindingTable
	NewSharedChannelRegistry   = buspkg.NewSharedChannelRegistry
	NewStrategyRegistry        = buspkg.NewStrategyRegistry
	NewDefaultCodec            = buspkg.NewDefaultCodec
	BuildRetry                 = buspkg.BuildRetry
	SerializeIfNecessary       = buspkg.SerializeIfNecessary
	DeserializeIfNecessary     = buspkg.DeserializeIfNecessary
	IsNamedChannel             = buspkg.IsNamedChannel
	ModeForName                = buspkg.ModeForName
	PartitionRoutingExpression = buspkg.PartitionRoutingExpression
	NewPartitioningMetadata    = buspkg.NewPartitioningMetadata
	DefaultPartitionSelector   = buspkg.DefaultPartitionSelector
)

func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}
