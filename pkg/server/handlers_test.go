package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalhub/evalhub/pkg/catalog"
	"github.com/evalhub/evalhub/pkg/content"
)

type testLogger struct{}

func (testLogger) Info(string, error, ...map[string]interface{})  {}
func (testLogger) Debug(string, error, ...map[string]interface{}) {}
func (testLogger) Warn(string, error, ...map[string]interface{})  {}
func (testLogger) Error(string, error, ...map[string]interface{}) {}
func (testLogger) Fatal(string, error, ...map[string]interface{}) {}

type fakeStore struct {
	items []content.EvalItem
}

func (s *fakeStore) Items() []content.EvalItem { return s.items }

func (s *fakeStore) Get(path string) (content.EvalItem, bool) {
	for _, item := range s.items {
		if item.Path == path {
			return item, true
		}
	}
	return content.EvalItem{}, false
}

type fakeAnalytics struct {
	recorded []string
	counts   map[string]int64
	err      error
}

func (a *fakeAnalytics) RecordView(_ context.Context, path, _ string) error {
	if a.err != nil {
		return a.err
	}
	a.recorded = append(a.recorded, path)
	return nil
}

func (a *fakeAnalytics) Count(_ context.Context, path string) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	return a.counts[path], nil
}

func (a *fakeAnalytics) Counts(context.Context) (map[string]int64, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.counts, nil
}

func corpus() []content.EvalItem {
	return []content.EvalItem{
		{
			Path: "/evalite/rag/precision", Framework: "evalite", Title: "Precision",
			Description: "p", UseCase: "rag", Languages: []string{"python"},
			Tags: []string{"accuracy", "precision"}, Difficulty: "beginner",
			HTML: "<h1>Precision</h1>",
		},
		{
			Path: "/ragas/rag/faithfulness", Framework: "ragas", Title: "Faithfulness",
			Description: "f", UseCase: "rag", Languages: []string{"python"},
			Tags: []string{"faithfulness"}, Difficulty: "intermediate",
		},
		{
			Path: "/deepeval/safety/bias", Framework: "deepeval", Title: "Bias",
			Description: "b", UseCase: "safety", Languages: []string{"typescript"},
			Tags: []string{"bias"}, Difficulty: "advanced",
		},
	}
}

func newTestAPI(analytics Analytics) *API {
	items := corpus()
	registry := catalog.NewRegistry()
	registry.RegisterItems(items)
	return NewAPI(&fakeStore{items: items}, registry, analytics, testLogger{})
}

func doRequest(t *testing.T, api *API, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, req)
	return rec
}

func TestListItemsUnfiltered(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/items")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []content.EvalItem `json:"items"`
		Total int                `json:"total"`
		Query string             `json:"query"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, "", body.Query)
}

func TestListItemsFiltered(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/items?use_cases=rag&languages=python")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items             []content.EvalItem `json:"items"`
		Query             string             `json:"query"`
		ActiveFilterCount int                `json:"active_filter_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "/evalite/rag/precision", body.Items[0].Path)
	assert.Equal(t, 2, body.ActiveFilterCount)
	assert.Equal(t, "languages=python&use_cases=rag", body.Query)
}

func TestListItemsDropsUnknownFilterValues(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/items?tags=accuracy,bogus&colors=red")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total int    `json:"total"`
		Query string `json:"query"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "tags=accuracy", body.Query, "echoed query must be the canonical form")
}

func TestGetItemDetail(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{counts: map[string]int64{"/evalite/rag/precision": 7}})
	rec := doRequest(t, api, http.MethodGet, "/api/items/evalite/rag/precision")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Path  string `json:"path"`
		HTML  string `json:"html"`
		Views int64  `json:"views"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/evalite/rag/precision", body.Path)
	assert.Equal(t, "<h1>Precision</h1>", body.HTML)
	assert.Equal(t, int64(7), body.Views)
}

func TestGetItemNotFound(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/items/evalite/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestFacetsReflectActiveFilters(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/facets?use_cases=rag")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Facets map[string][]catalog.ValueCount `json:"facets"`
		Total  int                             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, []catalog.ValueCount{{Value: "python", Count: 2}}, body.Facets["languages"])
}

func TestFacetsCarryFullVocabulary(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/facets?use_cases=safety")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Vocabulary map[string][]string `json:"vocabulary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// The vocabulary is independent of the filtered result set.
	assert.Equal(t, content.Frameworks, body.Vocabulary["frameworks"])
	assert.Equal(t, content.Difficulties, body.Vocabulary["difficulties"])
	assert.Contains(t, body.Vocabulary["tags"], "toxicity")
	assert.IsIncreasing(t, body.Vocabulary["tags"])
}

func TestCompareResolvesSelection(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet,
		"/api/compare?compare=/evalite/rag/precision,/ragas/rag/faithfulness")
	require.Equal(t, http.StatusOK, rec.Code)

	var body compareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Precision", body.Items[0].Title)
	assert.Equal(t, "Faithfulness", body.Items[1].Title)
	assert.True(t, body.CanCompare)
	assert.True(t, body.CanAddMore)
}

func TestCompareSingleItemIsNotComparable(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/api/compare?compare=/evalite/rag/precision")
	require.Equal(t, http.StatusOK, rec.Code)

	var body compareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.False(t, body.CanCompare)
}

func TestCompareSkipsUnknownPaths(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet,
		"/api/compare?compare=/evalite/rag/precision,/gone/item")
	require.Equal(t, http.StatusOK, rec.Code)

	var body compareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, 2, body.Count, "count reflects the selection, not resolution")
}

func TestCompareTruncatesSelection(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet,
		"/api/compare?compare=/a,/b,/c,/d,/e,/f")
	require.Equal(t, http.StatusOK, rec.Code)

	var body compareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, catalog.MaxCompareItems, body.Count)
	assert.False(t, body.CanAddMore)
}

func TestRecordView(t *testing.T) {
	analytics := &fakeAnalytics{}
	api := newTestAPI(analytics)

	rec := doRequest(t, api, http.MethodPost, "/api/views/evalite/rag/precision")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"/evalite/rag/precision"}, analytics.recorded)
}

func TestRecordViewUnknownItem(t *testing.T) {
	analytics := &fakeAnalytics{}
	api := newTestAPI(analytics)

	rec := doRequest(t, api, http.MethodPost, "/api/views/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, analytics.recorded)
}

func TestRecordViewPipelineFailure(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{err: errors.New("cache down")})
	rec := doRequest(t, api, http.MethodPost, "/api/views/evalite/rag/precision")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListViews(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{counts: map[string]int64{"/evalite/rag/precision": 12}})
	rec := doRequest(t, api, http.MethodGet, "/api/views")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Views map[string]int64 `json:"views"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.Views["/evalite/rag/precision"])
}

func TestListViewsFilteredByPaths(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{counts: map[string]int64{
		"/evalite/rag/precision":  12,
		"/ragas/rag/faithfulness": 3,
	}})
	rec := doRequest(t, api, http.MethodGet, "/api/views?paths=/evalite/rag/precision,/gone")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Views map[string]int64 `json:"views"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]int64{"/evalite/rag/precision": 12}, body.Views)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(&fakeAnalytics{})
	rec := doRequest(t, api, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
