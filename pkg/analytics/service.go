package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/evalhub/evalhub/pkg/postgres"
)

// CounterCache is the slice of the cache client the pipeline needs: fast
// increments on the hot path and an atomic drain for the flusher.
type CounterCache interface {
	IncrBy(ctx context.Context, key string, value int64) (int64, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
	GetDel(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) ([]interface{}, error)
}

// Database is the slice of the database client the pipeline needs.
type Database interface {
	Find(ctx context.Context, dest interface{}, conditions ...interface{}) error
	First(ctx context.Context, dest interface{}, conditions ...interface{}) error
	Exec(ctx context.Context, sql string, values ...interface{}) error
}

// Publisher emits view events to the analytics topic.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Carrier extracts cross-service trace headers from a request context.
type Carrier interface {
	GetCarrier(ctx context.Context) map[string]string
}

// Metrics is the slice of the metrics client the pipeline needs.
type Metrics interface {
	IncrementPageViews(framework string)
}

// Service implements the page-view pipeline: views are buffered as cache
// counters on the hot path and folded into the database by the flusher,
// so a request never waits on a database write.
type Service struct {
	cfg       Config
	cache     CounterCache
	db        Database
	publisher Publisher
	carrier   Carrier
	metrics   Metrics
	logger    Logger
}

// NewService wires the pipeline. publisher and carrier may be nil; events
// are then skipped regardless of configuration.
func NewService(cfg Config, cache CounterCache, db Database, publisher Publisher, carrier Carrier, metrics Metrics, logger Logger) *Service {
	return &Service{
		cfg:       cfg,
		cache:     cache,
		db:        db,
		publisher: publisher,
		carrier:   carrier,
		metrics:   metrics,
		logger:    logger,
	}
}

// RecordView counts one view of path. The counter increment is the only
// required effect; metrics and the published event are best effort and
// never fail the call.
func (s *Service) RecordView(ctx context.Context, path, framework string) error {
	if path == "" || !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid view path %q", path)
	}

	if _, err := s.cache.IncrBy(ctx, s.key(path), 1); err != nil {
		return fmt.Errorf("failed to buffer view for %s: %w", path, err)
	}

	if s.metrics != nil {
		s.metrics.IncrementPageViews(framework)
	}

	s.publishEvent(ctx, path, framework)
	return nil
}

func (s *Service) publishEvent(ctx context.Context, path, framework string) {
	if !s.cfg.EventsEnabled || s.publisher == nil {
		return
	}

	payload, err := json.Marshal(ViewEvent{
		Path:       path,
		Framework:  framework,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to encode view event", err, map[string]interface{}{"path": path})
		return
	}

	var headers map[string]string
	if s.carrier != nil {
		headers = s.carrier.GetCarrier(ctx)
	}

	if err := s.publisher.Publish(ctx, path, payload, headers); err != nil {
		s.logger.Warn("failed to publish view event", err, map[string]interface{}{"path": path})
	}
}

// Count returns the view count for one path: the durable count plus any
// delta still buffered in the cache.
func (s *Service) Count(ctx context.Context, path string) (int64, error) {
	var row PageView
	total := int64(0)
	if err := s.db.First(ctx, &row, "path = ?", path); err == nil {
		total = row.Count
	} else if !isNotFound(err) {
		return 0, fmt.Errorf("failed to read view count for %s: %w", path, err)
	}

	values, err := s.cache.MGet(ctx, s.key(path))
	if err != nil {
		return 0, fmt.Errorf("failed to read buffered views for %s: %w", path, err)
	}
	if len(values) > 0 {
		total += parseCount(values[0])
	}

	return total, nil
}

// Counts returns the view counts of every known path, merging the durable
// table with deltas the flusher has not picked up yet.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	var rows []PageView
	if err := s.db.Find(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to read view counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Path] = row.Count
	}

	keys, err := s.cache.Keys(ctx, s.key("*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list buffered views: %w", err)
	}
	if len(keys) == 0 {
		return counts, nil
	}

	values, err := s.cache.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to read buffered views: %w", err)
	}
	for i, key := range keys {
		if i >= len(values) {
			break
		}
		counts[s.pathFromKey(key)] += parseCount(values[i])
	}

	return counts, nil
}

func (s *Service) key(path string) string {
	return s.cfg.keyPrefix() + path
}

func (s *Service) pathFromKey(key string) string {
	return strings.TrimPrefix(key, s.cfg.keyPrefix())
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, postgres.ErrRecordNotFound)
}

func parseCount(value interface{}) int64 {
	str, ok := value.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
