package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgres,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// RegisterPostgresLifecycle starts the connection monitor and retry goroutines
// when the application starts and waits for them to drain on shutdown.
func RegisterPostgresLifecycle(lifecycle fx.Lifecycle, postgres *Postgres, logger Logger) {
	wg := &sync.WaitGroup{}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			monitorCtx, cancel := context.WithCancel(context.Background())

			wg.Add(1)
			go func() {
				defer wg.Done()
				postgres.monitorConnection(monitorCtx)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				postgres.retryConnection(monitorCtx, logger)
			}()

			go func() {
				<-postgres.shutdownSignal
				cancel()
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			postgres.closeShutdownOnce.Do(func() {
				close(postgres.shutdownSignal)
			})
			wg.Wait()
			return nil
		},
	})
}
