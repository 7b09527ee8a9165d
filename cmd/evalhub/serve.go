package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/evalhub/evalhub/pkg/analytics"
	"github.com/evalhub/evalhub/pkg/catalog"
	"github.com/evalhub/evalhub/pkg/config"
	"github.com/evalhub/evalhub/pkg/content"
	"github.com/evalhub/evalhub/pkg/kafka"
	"github.com/evalhub/evalhub/pkg/logger"
	"github.com/evalhub/evalhub/pkg/metrics"
	"github.com/evalhub/evalhub/pkg/observability"
	"github.com/evalhub/evalhub/pkg/postgres"
	"github.com/evalhub/evalhub/pkg/redis"
	"github.com/evalhub/evalhub/pkg/server"
	"github.com/evalhub/evalhub/pkg/tracer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		buildApp(cfg).Run()
		return nil
	},
}

func buildApp(cfg config.Config) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(
			func(c config.Config) logger.Config { return c.Logger },
			func(c config.Config) server.Config { return c.Server },
			func(c config.Config) content.Config { return c.Content },
			func(c config.Config) analytics.Config { return c.Analytics },
			func(c config.Config) postgres.Config { return c.Postgres },
			func(c config.Config) redis.Config { return c.Redis },
			func(c config.Config) kafka.Config { return c.Kafka },
			func(c config.Config) metrics.Config { return c.Metrics },
			func(c config.Config) tracer.Config { return c.Tracer },
		),

		// Every package declares its own Logger interface; the zap client
		// satisfies them all.
		fx.Provide(
			func(l *logger.Logger) content.Logger { return l },
			func(l *logger.Logger) analytics.Logger { return l },
			func(l *logger.Logger) server.Logger { return l },
			func(l *logger.Logger) postgres.Logger { return l },
			func(l *logger.Logger) redis.Logger { return l },
			func(l *logger.Logger) kafka.Logger { return l },
			func(l *logger.Logger) metrics.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
		),

		fx.Provide(
			catalog.NewRegistry,
			func(m *metrics.Metrics) observability.Observer {
				return observability.NewPrometheusObserver(m.Registry)
			},

			func(r *redis.RedisClient) analytics.CounterCache { return r },
			func(p *postgres.Postgres) analytics.Database { return p },
			func(p *kafka.Publisher) analytics.Publisher { return p },
			func(t *tracer.Tracer) analytics.Carrier { return t },
			func(m *metrics.Metrics) analytics.Metrics { return m },

			func(s *content.Store) server.ItemStore { return s },
			func(s *analytics.Service) server.Analytics { return s },
			func(m *metrics.Metrics) server.Metrics { return m },
		),

		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		postgres.FXModule,
		redis.FXModule,
		kafka.FXModule,
		content.FXModule,
		analytics.FXModule,
		server.FXModule,

		fx.Invoke(
			attachObservers,
			migrateSchema,
			wireRegistry,
		),
	)
}

// attachObservers feeds client operation metrics into Prometheus.
func attachObservers(observer observability.Observer, redisClient *redis.RedisClient, publisher *kafka.Publisher, source content.Source) {
	redisClient.WithObserver(observer)
	publisher.WithObserver(observer)
	if minioSource, ok := source.(*content.MinioSource); ok {
		minioSource.Client().WithObserver(observer)
	}
}

// migrateSchema creates the analytics tables.
func migrateSchema(db *postgres.Postgres) error {
	return db.Migrate(&analytics.PageView{})
}

// wireRegistry keeps the comparison registry and corpus gauges in step
// with the content store across reloads.
func wireRegistry(store *content.Store, registry *catalog.Registry, m *metrics.Metrics, source content.Source) {
	store.OnReload(func() {
		registry.RegisterItems(store.Items())
		m.SetCorpusItems(source.Type(), store.Len())
		m.IncrementCorpusReloads("success")
	})
}
