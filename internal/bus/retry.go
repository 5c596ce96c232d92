package bus

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RetryDefaults is the bus-wide fallback a consumer's own retry properties
// override, mirroring RetryMiddlewareConfig.withDefaults()'s role in the
// host runtime.
type RetryDefaults struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryDefaults is used when a caller doesn't supply its own.
var DefaultRetryDefaults = RetryDefaults{
	MaxAttempts:     3,
	InitialInterval: time.Second,
	MaxInterval:     10 * time.Second,
	Multiplier:      2.0,
}

type retryPropertySource interface {
	MaxAttempts(def int) int
	BackOffInitialInterval(def time.Duration) time.Duration
	BackOffMaxInterval(def time.Duration) time.Duration
	BackOffMultiplier(def float64) float64
}

// BuildRetry returns a configured watermill middleware.Retry for a consumer
// binding, reading its retry properties off accessor and falling back to
// defaults for anything unset. Grounded on
// MessageBusSupport.buildRetryTemplateIfRetryEnabled: that method returns
// null when retry isn't enabled (maxAttempts <= 1), which BuildRetry mirrors
// by returning nil rather than a Retry with a meaningless MaxRetries of 0.
func BuildRetry(accessor retryPropertySource, defaults RetryDefaults) *middleware.Retry {
	maxAttempts := accessor.MaxAttempts(defaults.MaxAttempts)
	if maxAttempts <= 1 {
		return nil
	}
	return &middleware.Retry{
		MaxRetries:      maxAttempts - 1,
		InitialInterval: accessor.BackOffInitialInterval(defaults.InitialInterval),
		MaxInterval:     accessor.BackOffMaxInterval(defaults.MaxInterval),
		Multiplier:      accessor.BackOffMultiplier(defaults.Multiplier),
		ShouldRetry: func(params middleware.RetryParams) bool {
			return true
		},
	}
}
