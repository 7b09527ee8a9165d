package kafka

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("kafka",
	fx.Provide(
		NewPublisher,
	),
	fx.Invoke(RegisterPublisherLifecycle),
)

// RegisterPublisherLifecycle flushes and closes the writer on shutdown.
func RegisterPublisherLifecycle(lc fx.Lifecycle, publisher *Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}
