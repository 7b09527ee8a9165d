package content

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/evalhub/evalhub/pkg/minio"
	"github.com/evalhub/evalhub/pkg/tracer"
)

var FXModule = fx.Module("content",
	fx.Provide(
		NewRenderer,
		NewSource,
		NewStoreFromConfig,
	),
	fx.Invoke(RegisterContentLifecycle),
)

// NewSource builds the corpus source selected by the configuration.
func NewSource(cfg Config, logger Logger) (Source, error) {
	sourceType := cfg.SourceType
	if sourceType == "" {
		sourceType = DefaultSourceType
	}

	switch sourceType {
	case "dir":
		dir := cfg.Dir
		if dir == "" {
			dir = DefaultDir
		}
		return NewDirSource(dir), nil

	case "minio":
		client, err := minio.NewClient(cfg.Minio, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize corpus object store: %w", err)
		}
		return NewMinioSource(client, cfg.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown content source type %q", sourceType)
	}
}

// NewStoreFromConfig creates the store for the configured source.
func NewStoreFromConfig(cfg Config, source Source, renderer *Renderer, logger Logger, tr *tracer.Tracer) *Store {
	return NewStore(source, renderer, logger, cfg.Parallelism).WithTracer(tr)
}

// RegisterContentLifecycle loads the corpus on startup and, for directory
// sources with watching enabled, keeps it reloading on file changes. A
// failed initial load aborts startup: serving an empty catalog would be
// worse than not serving.
func RegisterContentLifecycle(lc fx.Lifecycle, cfg Config, store *Store, source Source, logger Logger) {
	var watcher *Watcher

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Load(ctx); err != nil {
				return err
			}

			dirSource, ok := source.(*DirSource)
			if !cfg.Watch || !ok {
				return nil
			}

			w, err := NewWatcher(store, dirSource.Root(), cfg.DebounceInterval, logger)
			if err != nil {
				return err
			}
			watcher = w
			watcher.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if watcher != nil {
				watcher.Stop()
			}
			return nil
		},
	})
}
