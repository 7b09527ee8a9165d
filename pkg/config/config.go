// Package config loads the application configuration: defaults, then an
// optional YAML file, then environment variables. Environment wins, so a
// deployment can override any file setting without editing it.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/evalhub/evalhub/pkg/analytics"
	"github.com/evalhub/evalhub/pkg/content"
	"github.com/evalhub/evalhub/pkg/kafka"
	"github.com/evalhub/evalhub/pkg/logger"
	"github.com/evalhub/evalhub/pkg/metrics"
	"github.com/evalhub/evalhub/pkg/postgres"
	"github.com/evalhub/evalhub/pkg/redis"
	"github.com/evalhub/evalhub/pkg/server"
	"github.com/evalhub/evalhub/pkg/tracer"
)

// Config is the full application configuration.
type Config struct {
	Logger    logger.Config    `yaml:"logger"`
	Server    server.Config    `yaml:"server"`
	Content   content.Config   `yaml:"content"`
	Analytics analytics.Config `yaml:"analytics"`
	Postgres  postgres.Config  `yaml:"postgres"`
	Redis     redis.Config     `yaml:"redis"`
	Kafka     kafka.Config     `yaml:"kafka"`
	Metrics   metrics.Config   `yaml:"metrics"`
	Tracer    tracer.Config    `yaml:"tracer"`
}

// Load reads the configuration. path may be empty or point to a missing
// file; both mean "environment and defaults only".
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		Logger: logger.Config{
			Level:       logger.Info,
			ServiceName: "evalhub",
		},
		Server: server.Config{
			Host: server.DefaultHost,
			Port: server.DefaultPort,
		},
		Content: content.Config{
			SourceType:       content.DefaultSourceType,
			Dir:              content.DefaultDir,
			Watch:            true,
			DebounceInterval: content.DefaultDebounceInterval,
			Parallelism:      content.DefaultParallelism,
		},
		Analytics: analytics.Config{
			KeyPrefix:     analytics.DefaultKeyPrefix,
			FlushInterval: analytics.DefaultFlushInterval,
		},
		Kafka: kafka.Config{
			Brokers:  []string{"localhost:9092"},
			Topic:    "evalhub.page-views",
			ClientID: "evalhub",
		},
		Metrics: metrics.Config{
			Address:                 metrics.DefaultMetricsAddress,
			EnableDefaultCollectors: true,
			ServiceName:             "evalhub",
		},
		Tracer: tracer.Config{
			ServiceName: "evalhub",
			AppEnv:      "development",
		},
	}
}
