package kafka

import "time"

// Config defines the configuration for the Kafka publisher.
// This service only produces (page-view events); nothing in it consumes,
// so there is no reader configuration.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`

	// Topic is the topic events are published to.
	Topic string `yaml:"topic" envconfig:"KAFKA_TOPIC"`

	// ClientID identifies this producer to the brokers.
	ClientID string `yaml:"client_id" envconfig:"KAFKA_CLIENT_ID"`

	// RequiredAcks controls write durability:
	//   0 → fire and forget
	//   1 → wait for the partition leader
	//  -1 → wait for all in-sync replicas
	// Default: 1
	RequiredAcks int `yaml:"required_acks" envconfig:"KAFKA_REQUIRED_ACKS"`

	// BatchSize is the maximum number of messages buffered before a write.
	// Default: 100
	BatchSize int `yaml:"batch_size" envconfig:"KAFKA_BATCH_SIZE"`

	// BatchTimeout is how long the writer waits before flushing an
	// incomplete batch.
	// Default: 1 second
	BatchTimeout time.Duration `yaml:"batch_timeout" envconfig:"KAFKA_BATCH_TIMEOUT"`

	// WriteTimeout is the timeout for broker writes.
	// Default: 10 seconds
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"KAFKA_WRITE_TIMEOUT"`

	// MaxAttempts is the number of delivery attempts before giving up.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts" envconfig:"KAFKA_MAX_ATTEMPTS"`

	// Async makes Publish return without waiting for broker
	// acknowledgement. Page-view events are best-effort, so this
	// defaults to true in the shipped configuration.
	Async bool `yaml:"async" envconfig:"KAFKA_ASYNC"`

	// TLS contains TLS/SSL configuration.
	TLS TLSConfig `yaml:"tls"`

	// SASL contains SASL authentication configuration.
	SASL SASLConfig `yaml:"sasl"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// Enabled determines whether to use TLS for broker connections.
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`

	// CACertPath is the file path to the CA certificate for verifying brokers.
	CACertPath string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT_PATH"`

	// InsecureSkipVerify controls whether to skip verification of broker
	// certificates. Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig contains SASL authentication parameters.
type SASLConfig struct {
	// Mechanism is one of "", "plain", "scram-sha-256", "scram-sha-512".
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM"`

	Username string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`
	Password string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"`
}

// Logger is an interface that matches pkg/logger.Logger
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultRequiredAcks = 1
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 1 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultMaxAttempts  = 3
)
