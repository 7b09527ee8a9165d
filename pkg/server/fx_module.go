package server

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("server",
	fx.Provide(
		NewAPI,
		NewServer,
	),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle starts the listener on application start and
// drains it on shutdown.
func RegisterServerLifecycle(lc fx.Lifecycle, server *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
}
