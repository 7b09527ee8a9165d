package analytics

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("analytics",
	fx.Provide(
		NewService,
		NewFlusher,
	),
	fx.Invoke(RegisterFlusherLifecycle),
)

// RegisterFlusherLifecycle runs the flush loop for the lifetime of the
// application. Stop performs a final flush so buffered counters survive a
// restart.
func RegisterFlusherLifecycle(lc fx.Lifecycle, flusher *Flusher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			flusher.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			flusher.Stop(ctx)
			return nil
		},
	})
}
