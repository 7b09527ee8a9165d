package observability

import "time"

// OperationContext carries the details of a single client operation
// (a Redis command, a Kafka publish, an object-store read) so that an
// Observer can turn it into metrics or traces without the client
// packages depending on any particular observability backend.
type OperationContext struct {
	// Component identifies the client package, e.g. "redis" or "kafka".
	Component string

	// Operation is the operation name, e.g. "incr", "publish", "get".
	Operation string

	// Resource is the primary resource being operated on
	// (a Redis key, a Kafka topic, an object key).
	Resource string

	// SubResource is additional context like a field name or partition.
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the operation error, or nil on success.
	Error error

	// Size is the payload size in bytes, when meaningful.
	Size int64

	// Metadata contains operation-specific extras.
	Metadata map[string]interface{}
}

// Observer receives operation notifications from client packages.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}
