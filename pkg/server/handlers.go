package server

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/evalhub/evalhub/pkg/catalog"
	"github.com/evalhub/evalhub/pkg/content"
)

// ItemStore is the slice of the content store the API reads from.
type ItemStore interface {
	Items() []content.EvalItem
	Get(path string) (content.EvalItem, bool)
}

// Analytics is the slice of the analytics service the API uses.
type Analytics interface {
	RecordView(ctx context.Context, path, framework string) error
	Count(ctx context.Context, path string) (int64, error)
	Counts(ctx context.Context) (map[string]int64, error)
}

// API serves the catalog endpoints. Filter and comparison state live in
// the request URL; the API itself holds only shared, reload-safe state.
type API struct {
	store     ItemStore
	registry  *catalog.Registry
	analytics Analytics
	logger    Logger
}

// NewAPI wires the catalog endpoints.
func NewAPI(store ItemStore, registry *catalog.Registry, analytics Analytics, logger Logger) *API {
	return &API{
		store:     store,
		registry:  registry,
		analytics: analytics,
		logger:    logger,
	}
}

// Routes builds the request mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items", a.handleListItems)
	mux.HandleFunc("GET /api/items/{path...}", a.handleGetItem)
	mux.HandleFunc("GET /api/facets", a.handleFacets)
	mux.HandleFunc("GET /api/compare", a.handleCompare)
	mux.HandleFunc("POST /api/views/{path...}", a.handleRecordView)
	mux.HandleFunc("GET /api/views", a.handleListViews)
	mux.HandleFunc("GET /healthz", a.handleHealth)
	return mux
}

type listItemsResponse struct {
	Items []content.EvalItem `json:"items"`
	Total int                `json:"total"`

	// Query is the canonical serialization of the applied filters.
	// Clients put it back into the address bar; re-requesting with it
	// yields the same result set.
	Query             string `json:"query"`
	ActiveFilterCount int    `json:"active_filter_count"`
}

func (a *API) handleListItems(w http.ResponseWriter, r *http.Request) {
	state := catalog.ParseQuery(r.URL.Query())
	items := state.FilterItems(a.store.Items())

	writeJSON(w, http.StatusOK, listItemsResponse{
		Items:             items,
		Total:             len(items),
		Query:             state.EncodeQuery(),
		ActiveFilterCount: state.ActiveFilterCount(),
	})
}

type itemDetailResponse struct {
	content.EvalItem
	HTML  string `json:"html"`
	Views int64  `json:"views"`
}

func (a *API) handleGetItem(w http.ResponseWriter, r *http.Request) {
	path := "/" + strings.Trim(r.PathValue("path"), "/")

	item, ok := a.store.Get(path)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	views, err := a.analytics.Count(r.Context(), path)
	if err != nil {
		// The detail page is still useful without its view count.
		a.logger.Warn("failed to read view count", err, map[string]interface{}{"path": path})
		views = 0
	}

	writeJSON(w, http.StatusOK, itemDetailResponse{
		EvalItem: item,
		HTML:     string(item.HTML),
		Views:    views,
	})
}

type facetsResponse struct {
	Facets catalog.FacetSummary `json:"facets"`

	// Vocabulary lists every legal value per facet regardless of the
	// current result set, so clients can render zero-count options.
	Vocabulary map[string][]string `json:"vocabulary"`

	Total int    `json:"total"`
	Query string `json:"query"`
}

var facetVocabulary = buildFacetVocabulary()

func buildFacetVocabulary() map[string][]string {
	tags := content.AllTags()
	sort.Strings(tags)
	return map[string][]string{
		"frameworks":   content.Frameworks,
		"use_cases":    content.UseCases,
		"languages":    content.Languages,
		"difficulties": content.Difficulties,
		"tags":         tags,
	}
}

// handleFacets summarizes facet values over the currently filtered result
// set, so counts reflect how many matches each further refinement leaves.
func (a *API) handleFacets(w http.ResponseWriter, r *http.Request) {
	state := catalog.ParseQuery(r.URL.Query())
	items := state.FilterItems(a.store.Items())

	writeJSON(w, http.StatusOK, facetsResponse{
		Facets:     catalog.Summarize(items),
		Vocabulary: facetVocabulary,
		Total:      len(items),
		Query:      state.EncodeQuery(),
	})
}

type compareResponse struct {
	Items      []catalog.Entry `json:"items"`
	Count      int             `json:"count"`
	CanCompare bool            `json:"can_compare"`
	CanAddMore bool            `json:"can_add_more"`
}

// handleCompare resolves the ?compare= selection. A selection below two
// members is not an error, the response just reports it as not comparable;
// the client keeps the tray visible and the view closed.
func (a *API) handleCompare(w http.ResponseWriter, r *http.Request) {
	set := catalog.NewComparisonSet(a.registry)
	set.SetSelection(splitCompareParam(r.URL.Query().Get("compare")))

	writeJSON(w, http.StatusOK, compareResponse{
		Items:      set.Items(),
		Count:      set.Count(),
		CanCompare: set.CanCompare(),
		CanAddMore: set.CanAddMore(),
	})
}

func splitCompareParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		paths = append(paths, p)
	}
	return paths
}

func (a *API) handleRecordView(w http.ResponseWriter, r *http.Request) {
	path := "/" + strings.Trim(r.PathValue("path"), "/")

	item, ok := a.store.Get(path)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := a.analytics.RecordView(r.Context(), path, item.Framework); err != nil {
		a.logger.Error("failed to record view", err, map[string]interface{}{"path": path})
		writeError(w, http.StatusInternalServerError, "failed to record view")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListViews returns view counters, optionally restricted to
// ?paths=/a,/b.
func (a *API) handleListViews(w http.ResponseWriter, r *http.Request) {
	counts, err := a.analytics.Counts(r.Context())
	if err != nil {
		a.logger.Error("failed to read view counts", err)
		writeError(w, http.StatusInternalServerError, "failed to read view counts")
		return
	}

	if raw := r.URL.Query().Get("paths"); raw != "" {
		filtered := make(map[string]int64)
		for _, p := range splitCompareParam(raw) {
			if count, ok := counts[p]; ok {
				filtered[p] = count
			}
		}
		counts = filtered
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"views": counts})
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
