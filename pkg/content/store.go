package content

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	traceSpan "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/evalhub/evalhub/pkg/tracer"
)

// Store holds the in-memory corpus snapshot. Reads never block reloads:
// every Load builds a fresh snapshot and swaps it in wholesale, so callers
// always see a consistent corpus.
type Store struct {
	source   Source
	renderer *Renderer
	logger   Logger
	tracer   *tracer.Tracer

	parallelism int

	mutex    sync.RWMutex
	snapshot *snapshot

	hooksMutex sync.Mutex
	hooks      []func()
}

type snapshot struct {
	items  []EvalItem
	byPath map[string]EvalItem
}

// NewStore creates a Store reading from the given source. The store is
// empty until the first Load.
func NewStore(source Source, renderer *Renderer, logger Logger, parallelism int) *Store {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Store{
		source:      source,
		renderer:    renderer,
		logger:      logger,
		parallelism: parallelism,
		snapshot:    &snapshot{byPath: map[string]EvalItem{}},
	}
}

// WithTracer attaches a tracer to the store and returns the same instance
// for chaining. Reloads then run under a span.
func (s *Store) WithTracer(tr *tracer.Tracer) *Store {
	s.tracer = tr
	return s
}

// Load reads the full corpus from the source, parses and renders every
// document, and replaces the current snapshot. Documents that fail to
// parse are skipped and logged; a single bad document does not take the
// corpus down. Source-level failures leave the previous snapshot intact.
func (s *Store) Load(ctx context.Context) error {
	started := time.Now()

	var span traceSpan.Span
	if s.tracer != nil {
		spanCtx, sp := s.tracer.StartSpan(ctx, "corpus-reload")
		defer sp.End()
		ctx = spanCtx
		span = sp
	}

	docs, err := s.source.Load(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load corpus from %s source: %w", s.source.Type(), err)
		if s.tracer != nil {
			s.tracer.RecordErrorOnSpan(span, err)
		}
		return err
	}

	items := make([]EvalItem, len(docs))
	valid := make([]bool, len(docs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.parallelism)

	for i, doc := range docs {
		i, doc := i, doc
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}

			item, violations, err := ParseDocument(doc.Path, doc.Data)
			if err != nil {
				s.logger.Warn("skipping corpus document", err, map[string]interface{}{
					"path": doc.Path,
				})
				return nil
			}
			if len(violations) > 0 {
				s.logger.Warn("corpus document has frontmatter violations", nil, map[string]interface{}{
					"path":       doc.Path,
					"violations": violations,
				})
			}

			html, err := s.renderer.Render(item.Body)
			if err != nil {
				s.logger.Warn("skipping corpus document with unrenderable body", err, map[string]interface{}{
					"path": doc.Path,
				})
				return nil
			}
			item.HTML = html

			items[i] = item
			valid[i] = true
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		err = fmt.Errorf("corpus reload aborted: %w", err)
		if s.tracer != nil {
			s.tracer.RecordErrorOnSpan(span, err)
		}
		return err
	}

	next := &snapshot{byPath: make(map[string]EvalItem, len(docs))}
	for i, item := range items {
		if !valid[i] {
			continue
		}
		if _, exists := next.byPath[item.Path]; exists {
			s.logger.Warn("duplicate corpus path, keeping first occurrence", nil, map[string]interface{}{
				"path": item.Path,
			})
			continue
		}
		next.byPath[item.Path] = item
		next.items = append(next.items, item)
	}
	sort.Slice(next.items, func(a, b int) bool {
		return next.items[a].Path < next.items[b].Path
	})

	s.mutex.Lock()
	s.snapshot = next
	s.mutex.Unlock()

	if s.tracer != nil {
		s.tracer.SetAttributes(span, map[string]interface{}{
			"corpus.source":  s.source.Type(),
			"corpus.items":   len(next.items),
			"corpus.skipped": len(docs) - len(next.items),
		})
	}

	s.logger.Info("corpus loaded", nil, map[string]interface{}{
		"source":   s.source.Type(),
		"items":    len(next.items),
		"skipped":  len(docs) - len(next.items),
		"duration": time.Since(started).String(),
	})

	s.notifyReload()
	return nil
}

// Items returns the current snapshot, sorted by path. Callers must not
// mutate the returned slice.
func (s *Store) Items() []EvalItem {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshot.items
}

// Get looks up a single item by its path.
func (s *Store) Get(path string) (EvalItem, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	item, ok := s.snapshot.byPath[path]
	return item, ok
}

// Len returns the number of items in the current snapshot.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.snapshot.items)
}

// OnReload registers a callback invoked after every successful Load.
// Callbacks run synchronously on the loading goroutine, so they should be
// quick; the comparison registry uses this to rebuild its entries.
func (s *Store) OnReload(hook func()) {
	s.hooksMutex.Lock()
	defer s.hooksMutex.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *Store) notifyReload() {
	s.hooksMutex.Lock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.hooksMutex.Unlock()

	for _, hook := range hooks {
		hook()
	}
}
