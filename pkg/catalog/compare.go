package catalog

import (
	"sync"

	"github.com/evalhub/evalhub/pkg/content"
)

// MaxCompareItems caps how many items a comparison may hold. Adding beyond
// the cap is a silent no-op; four side-by-side columns is already the
// limit of usefulness.
const MaxCompareItems = 4

// Entry is the denormalized slice of an item the comparison view needs.
// Keeping a copy instead of a pointer into the corpus means a comparison
// stays renderable while the corpus is being reloaded underneath it.
type Entry struct {
	Path        string   `json:"path"`
	Framework   string   `json:"framework"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	UseCase     string   `json:"use_case,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Models      []string `json:"models,omitempty"`
	Metrics     []string `json:"metrics,omitempty"`
	SetupTime   string   `json:"setup_time,omitempty"`
	RuntimeCost string   `json:"runtime_cost,omitempty"`
	EvalType    string   `json:"eval_type,omitempty"`
}

// Registry resolves item paths to comparison entries. It is replaced
// wholesale on every corpus reload and is safe for concurrent use.
type Registry struct {
	mutex   sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// RegisterItems rebuilds the registry from the given corpus, replacing it
// wholesale. Items missing a path, title, or description are dropped: an
// entry that cannot be labeled in the comparison view is useless.
func (r *Registry) RegisterItems(items []content.EvalItem) {
	entries := make(map[string]Entry, len(items))
	for _, item := range items {
		if item.Path == "" || item.Title == "" || item.Description == "" {
			continue
		}
		entries[item.Path] = Entry{
			Path:        item.Path,
			Framework:   item.Framework,
			Title:       item.Title,
			Description: item.Description,
			UseCase:     item.UseCase,
			Languages:   item.Languages,
			Tags:        item.Tags,
			Difficulty:  item.Difficulty,
			Models:      item.Models,
			Metrics:     item.Metrics,
			SetupTime:   item.SetupTime,
			RuntimeCost: item.RuntimeCost,
			EvalType:    item.EvalType,
		}
	}

	r.mutex.Lock()
	r.entries = entries
	r.mutex.Unlock()
}

// Lookup resolves one path.
func (r *Registry) Lookup(path string) (Entry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	entry, ok := r.entries[path]
	return entry, ok
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entries)
}

// ComparisonSet is an ordered selection of item paths, bounded by
// MaxCompareItems. Order is insertion order and survives removals of other
// members. The set belongs to a single request; concurrent use is not
// supported.
type ComparisonSet struct {
	registry *Registry
	paths    []string
	modal    bool
}

// NewComparisonSet creates an empty set resolving against registry.
func NewComparisonSet(registry *Registry) *ComparisonSet {
	return &ComparisonSet{registry: registry}
}

// Add appends path to the selection. It reports whether the selection
// changed: false when the path is already selected or the set is full.
func (c *ComparisonSet) Add(path string) bool {
	if c.IsInComparison(path) {
		return false
	}
	if len(c.paths) >= MaxCompareItems {
		return false
	}
	c.paths = append(c.paths, path)
	return true
}

// Remove deletes path from the selection, preserving the order of the
// remaining members. Removing an absent path is a no-op.
func (c *ComparisonSet) Remove(path string) {
	for i, p := range c.paths {
		if p == path {
			c.paths = append(c.paths[:i], c.paths[i+1:]...)
			return
		}
	}
}

// Toggle adds the path if absent, removes it if present. It reports
// whether the selection changed; the only unchanged case is an add
// rejected by the size cap.
func (c *ComparisonSet) Toggle(path string) bool {
	if c.IsInComparison(path) {
		c.Remove(path)
		return true
	}
	return c.Add(path)
}

// Clear empties the selection and closes the modal.
func (c *ComparisonSet) Clear() {
	c.paths = nil
	c.modal = false
}

// IsInComparison reports whether path is currently selected.
func (c *ComparisonSet) IsInComparison(path string) bool {
	for _, p := range c.paths {
		if p == path {
			return true
		}
	}
	return false
}

// SetSelection replaces the selection with the given paths, preserving
// their order. Duplicates are dropped after the first occurrence and the
// result is truncated to MaxCompareItems. This is how a selection arrives
// from the compare query parameter.
func (c *ComparisonSet) SetSelection(paths []string) {
	c.paths = nil
	for _, path := range paths {
		if path == "" {
			continue
		}
		if !c.Add(path) && len(c.paths) >= MaxCompareItems {
			break
		}
	}
}

// Count returns the number of selected paths.
func (c *ComparisonSet) Count() int { return len(c.paths) }

// CanCompare reports whether the comparison view may open: it needs at
// least two members.
func (c *ComparisonSet) CanCompare() bool { return len(c.paths) >= 2 }

// CanAddMore reports whether the set has room for another member.
func (c *ComparisonSet) CanAddMore() bool { return len(c.paths) < MaxCompareItems }

// OpenCompareModal opens the comparison view. It reports whether the view
// opened; with fewer than two members it stays closed.
func (c *ComparisonSet) OpenCompareModal() bool {
	if !c.CanCompare() {
		return false
	}
	c.modal = true
	return true
}

// CloseCompareModal closes the comparison view without touching the
// selection.
func (c *ComparisonSet) CloseCompareModal() { c.modal = false }

// ModalOpen reports whether the comparison view is open.
func (c *ComparisonSet) ModalOpen() bool { return c.modal }

// Paths returns the selected paths in selection order, including ones the
// registry no longer resolves.
func (c *ComparisonSet) Paths() []string {
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// Items resolves the selection against the registry, in selection order.
// Paths the registry no longer knows (the item vanished in a corpus
// reload) are skipped rather than rendered as holes.
func (c *ComparisonSet) Items() []Entry {
	entries := make([]Entry, 0, len(c.paths))
	for _, path := range c.paths {
		if entry, ok := c.registry.Lookup(path); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
