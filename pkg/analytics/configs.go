package analytics

import "time"

// Config controls the page-view pipeline.
type Config struct {
	// KeyPrefix namespaces the counter keys in the cache.
	// Default: "evalhub:views:"
	KeyPrefix string `yaml:"key_prefix" envconfig:"ANALYTICS_KEY_PREFIX"`

	// FlushInterval is how often buffered counters are folded into the
	// database.
	// Default: 10s
	FlushInterval time.Duration `yaml:"flush_interval" envconfig:"ANALYTICS_FLUSH_INTERVAL"`

	// EventsEnabled publishes a ViewEvent per recorded view to the
	// analytics topic. Counting works without it.
	// Default: false
	EventsEnabled bool `yaml:"events_enabled" envconfig:"ANALYTICS_EVENTS_ENABLED"`
}

const (
	DefaultKeyPrefix     = "evalhub:views:"
	DefaultFlushInterval = 10 * time.Second
)

func (c Config) keyPrefix() string {
	if c.KeyPrefix == "" {
		return DefaultKeyPrefix
	}
	return c.KeyPrefix
}

func (c Config) flushInterval() time.Duration {
	if c.FlushInterval <= 0 {
		return DefaultFlushInterval
	}
	return c.FlushInterval
}

// Logger defines the interface for logging operations in the analytics package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
