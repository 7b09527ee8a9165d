package analytics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/evalhub/evalhub/pkg/redis"
	"github.com/evalhub/evalhub/pkg/tracer"
)

const upsertPageView = `
INSERT INTO page_views (path, count, updated_at)
VALUES (?, ?, NOW())
ON CONFLICT (path) DO UPDATE
SET count = page_views.count + EXCLUDED.count, updated_at = NOW()`

// Flusher periodically folds buffered view counters into the database.
// Draining uses GETDEL per key so increments arriving mid-flush land in a
// fresh counter instead of being lost.
type Flusher struct {
	cfg    Config
	cache  CounterCache
	db     Database
	tracer *tracer.Tracer
	logger Logger

	shutdownSignal chan struct{}
	shutdownOnce   sync.Once
	done           sync.WaitGroup
}

// NewFlusher creates a flusher. tracer may be nil.
func NewFlusher(cfg Config, cache CounterCache, db Database, tr *tracer.Tracer, logger Logger) *Flusher {
	return &Flusher{
		cfg:            cfg,
		cache:          cache,
		db:             db,
		tracer:         tr,
		logger:         logger,
		shutdownSignal: make(chan struct{}),
	}
}

// Start runs the flush loop in a background goroutine.
func (f *Flusher) Start() {
	f.done.Add(1)
	go f.run()
}

// Stop terminates the loop after one final flush, so counters buffered at
// shutdown are not lost.
func (f *Flusher) Stop(ctx context.Context) {
	f.shutdownOnce.Do(func() {
		close(f.shutdownSignal)
	})
	f.done.Wait()
	f.Flush(ctx)
}

func (f *Flusher) run() {
	defer f.done.Done()

	ticker := time.NewTicker(f.cfg.flushInterval())
	defer ticker.Stop()

	for {
		select {
		case <-f.shutdownSignal:
			return
		case <-ticker.C:
			f.Flush(context.Background())
		}
	}
}

// Flush drains every buffered counter into the database. Failures are
// logged per key; a key whose database write fails is re-buffered so its
// delta survives until the next cycle.
func (f *Flusher) Flush(ctx context.Context) {
	if f.tracer != nil {
		spanCtx, span := f.tracer.StartSpan(ctx, "analytics-flush")
		defer span.End()
		ctx = spanCtx
	}

	keys, err := f.cache.Keys(ctx, f.cfg.keyPrefix()+"*")
	if err != nil {
		f.logger.Error("failed to list buffered view counters", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	flushed := 0
	for _, key := range keys {
		value, err := f.cache.GetDel(ctx, key)
		if err != nil {
			if !redis.IsNilError(err) {
				f.logger.Warn("failed to drain view counter", err, map[string]interface{}{"key": key})
			}
			continue
		}

		delta, err := strconv.ParseInt(value, 10, 64)
		if err != nil || delta == 0 {
			continue
		}

		path := pathFromKey(f.cfg, key)
		if err := f.db.Exec(ctx, upsertPageView, path, delta); err != nil {
			f.logger.Error("failed to persist view counter, re-buffering", err, map[string]interface{}{
				"path":  path,
				"delta": delta,
			})
			if _, err := f.cache.IncrBy(ctx, key, delta); err != nil {
				f.logger.Error("failed to re-buffer view counter, delta lost", err, map[string]interface{}{
					"path":  path,
					"delta": delta,
				})
			}
			continue
		}
		flushed++
	}

	if flushed > 0 {
		f.logger.Debug("flushed view counters", nil, map[string]interface{}{"counters": flushed})
	}
}

func pathFromKey(cfg Config, key string) string {
	return key[len(cfg.keyPrefix()):]
}
