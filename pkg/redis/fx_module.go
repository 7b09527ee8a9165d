package redis

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("redis",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RegisterRedisLifecycle verifies connectivity on startup and closes the
// client on shutdown.
func RegisterRedisLifecycle(lc fx.Lifecycle, client *RedisClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
