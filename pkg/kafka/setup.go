package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/evalhub/evalhub/pkg/observability"
)

// Publisher represents a producer-only client for Apache Kafka.
// It wraps a kafka-go Writer and provides best-effort publishing of
// analytics events with optional observability hooks.
type Publisher struct {
	// cfg stores the configuration for this publisher
	cfg Config

	// writer is the Kafka writer used for publishing messages
	writer *kafka.Writer

	// logger is used for structured logging
	logger Logger

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// mu protects concurrent access to writer
	mu sync.RWMutex

	closeOnce sync.Once
}

// NewPublisher creates and initializes a new Publisher with the provided configuration.
//
// Example:
//
//	pub, err := kafka.NewPublisher(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topic:   "evalhub.page-views",
//	}, log)
//	if err != nil {
//		return nil, err
//	}
//	defer pub.Close()
func NewPublisher(cfg Config, logger Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker address is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	// Apply defaults
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = DefaultRequiredAcks
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	mechanism, err := createSASLMechanism(cfg.SASL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
	}

	p := &Publisher{
		cfg:    cfg,
		logger: logger,
		writer: createWriter(cfg, tlsConfig, mechanism),
	}

	if logger != nil {
		logger.Info("Kafka publisher initialized", nil, map[string]interface{}{
			"brokers": cfg.Brokers,
			"topic":   cfg.Topic,
		})
	}
	return p, nil
}

// WithObserver attaches an observer to the publisher and returns the same
// instance for chaining.
func (p *Publisher) WithObserver(observer observability.Observer) *Publisher {
	p.observer = observer
	return p
}

// Close flushes pending messages and closes the underlying writer.
func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		err = p.writer.Close()
	})
	return err
}

// createWriter builds the kafka-go writer from the configuration.
func createWriter(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism) *kafka.Writer {
	transport := &kafka.Transport{
		TLS:      tlsConfig,
		SASL:     mechanism,
		ClientID: cfg.ClientID,
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		Async:        cfg.Async,
		Transport:    transport,
	}
}

// createTLSConfig builds a tls.Config from the TLS configuration section.
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// createSASLMechanism builds a SASL mechanism from the configuration.
// Returns nil when no mechanism is configured.
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "":
		return nil, nil
	case "plain":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "scram-sha-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "scram-sha-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %q", cfg.Mechanism)
	}
}
