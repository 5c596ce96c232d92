package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config groups the Pub/Sub settings required to initialise the Service. Each
// transport only uses the keys that are relevant to it.
type Config struct {
	// PubSubSystem selects the backing message infrastructure. Supported values:
	// "channel" (default) or "kafka".
	PubSubSystem string

	// Kafka configuration.
	KafkaBrokers       []string
	KafkaClientID      string
	KafkaConsumerGroup string

	// Retry tuning, checked by Validate. DefaultMiddlewares does not read these
	// fields; its RetryMiddleware uses RetryMiddlewareConfig's own defaults.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// Metrics configuration.
	MetricsEnabled bool
	// MetricsPort is the port where Prometheus metrics will be exposed.
	MetricsPort int
}

// Getter methods to implement transport.Config interface.
func (c *Config) GetPubSubSystem() string       { return c.PubSubSystem }
func (c *Config) GetKafkaBrokers() []string     { return c.KafkaBrokers }
func (c *Config) GetKafkaConsumerGroup() string { return c.KafkaConsumerGroup }

func (c Config) String() string {
	// Use a type alias to avoid infinite recursion when printing
	type configAlias Config
	return fmt.Sprintf("%+v", configAlias(c))
}

// Validate checks that the configuration has all required fields for the selected transport.
// Returns an error describing any missing or invalid configuration.
// Note: validation of pubsub system values is lenient to allow custom transport factories.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateTransport()...)
	errs = append(errs, c.validateRetry()...)
	errs = append(errs, c.validatePorts()...)

	return errors.Join(errs...)
}

// validateTransport checks transport-specific required fields.
func (c *Config) validateTransport() []error {
	switch strings.ToLower(c.PubSubSystem) {
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return []error{errors.New("kafka: brokers are required")}
		}
	}
	// channel, gochannel, "", and custom transports have no required config
	return nil
}

// validateRetry checks retry configuration values.
func (c *Config) validateRetry() []error {
	var errs []error
	if c.RetryMaxRetries < 0 {
		errs = append(errs, errors.New("retry: max retries cannot be negative"))
	}
	if c.RetryInitialInterval < 0 {
		errs = append(errs, errors.New("retry: initial interval cannot be negative"))
	}
	if c.RetryMaxInterval < 0 {
		errs = append(errs, errors.New("retry: max interval cannot be negative"))
	}
	if c.RetryMaxInterval > 0 && c.RetryInitialInterval > 0 && c.RetryInitialInterval > c.RetryMaxInterval {
		errs = append(errs, errors.New("retry: initial interval cannot exceed max interval"))
	}
	return errs
}

// validatePorts checks port configuration values.
func (c *Config) validatePorts() []error {
	var errs []error
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics: invalid port %d", c.MetricsPort))
	}
	return errs
}

// ValidateConfig is a convenience function to validate a config pointer.
// Returns nil if the config is valid.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}
