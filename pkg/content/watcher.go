package content

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the store when files under a directory source change.
// Events are debounced: a burst of writes (editor saves, rsync, git
// checkout) collapses into a single reload that runs once the burst has
// been quiet for the configured interval.
type Watcher struct {
	store    *Store
	root     string
	debounce time.Duration
	logger   Logger

	watcher        *fsnotify.Watcher
	shutdownSignal chan struct{}
	shutdownOnce   sync.Once
	done           sync.WaitGroup
}

// NewWatcher creates a watcher over the directory tree rooted at root.
func NewWatcher(store *Store, root string, debounce time.Duration, logger Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	w := &Watcher{
		store:          store,
		root:           root,
		debounce:       debounce,
		logger:         logger,
		watcher:        fsWatcher,
		shutdownSignal: make(chan struct{}),
	}

	if err := w.addRecursive(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.done.Add(1)
	go w.run()
}

// Stop terminates the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.shutdownOnce.Do(func() {
		close(w.shutdownSignal)
	})
	w.done.Wait()
	w.watcher.Close()
}

func (w *Watcher) run() {
	defer w.done.Done()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-w.shutdownSignal:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			// New directories have to be registered so files created
			// inside them are seen too.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", err, map[string]interface{}{
						"path": event.Name,
					})
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.store.Load(context.Background()); err != nil {
				w.logger.Error("corpus reload after file change failed", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("filesystem watcher error", err)
		}
	}
}

// relevant filters out events that cannot change the corpus.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	if isMarkdown(event.Name) {
		return true
	}
	// Directory events matter for create/rename of whole subtrees.
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}

// addRecursive registers path and every directory below it. Non-directory
// paths are ignored.
func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The entry may have vanished between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
