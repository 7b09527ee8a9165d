package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/evalhub/evalhub/pkg/observability"
)

// Publish writes a single message to the configured topic.
// Headers are attached verbatim; the analytics service uses them to carry
// W3C trace context alongside the event payload.
func (p *Publisher) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	start := time.Now()

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	p.mu.RLock()
	err := p.writer.WriteMessages(ctx, msg)
	p.mu.RUnlock()

	p.observeOperation("publish", p.cfg.Topic, key, time.Since(start), err, int64(len(value)))
	return err
}

// observeOperation notifies the observer about an operation if one is configured.
func (p *Publisher) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if p == nil || p.observer == nil {
		return
	}

	p.observer.ObserveOperation(observability.OperationContext{
		Component:   "kafka",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    nil,
	})
}
