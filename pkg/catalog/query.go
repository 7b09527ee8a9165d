package catalog

import (
	"net/url"
	"strings"

	"github.com/evalhub/evalhub/pkg/content"
)

// Query parameter names, one per facet. Values are comma-separated lists,
// e.g. ?tags=accuracy,latency&languages=python.
var facetParams = map[Facet]string{
	FacetTags:         "tags",
	FacetFrameworks:   "frameworks",
	FacetUseCases:     "use_cases",
	FacetLanguages:    "languages",
	FacetDifficulties: "difficulties",
}

var facetValidators = map[Facet]func(string) bool{
	FacetTags:         content.ValidTag,
	FacetFrameworks:   content.ValidFramework,
	FacetUseCases:     content.ValidUseCase,
	FacetLanguages:    content.ValidLanguage,
	FacetDifficulties: content.ValidDifficulty,
}

// ParseQuery reconstructs a filter state from URL query parameters.
//
// Values outside the closed enumerations are dropped silently, so a stale
// or hand-edited URL degrades to a weaker filter instead of an error.
// Parsing is the inverse of EncodeQuery: for any state s,
// ParseQuery(url.Values of s.EncodeQuery()) equals s.
func ParseQuery(values url.Values) *FilterState {
	state := NewFilterState()
	for facet, param := range facetParams {
		valid := facetValidators[facet]
		for _, raw := range values[param] {
			for _, v := range strings.Split(raw, ",") {
				v = strings.TrimSpace(v)
				if v == "" || !valid(v) {
					continue
				}
				state.selected[facet][v] = struct{}{}
			}
		}
	}
	return state
}

// EncodeQuery serializes the state into a canonical query string without
// the leading "?". Facets appear in canonical order and values are sorted,
// so equal states always produce identical strings. An empty state encodes
// to "".
func (s *FilterState) EncodeQuery() string {
	values := url.Values{}
	for _, facet := range Facets {
		selected := s.Values(facet)
		if len(selected) == 0 {
			continue
		}
		values.Set(facetParams[facet], strings.Join(selected, ","))
	}
	return values.Encode()
}

// ToggleQuery returns the query string for the state with one value
// toggled, leaving the receiver untouched. Handlers use it to build filter
// links.
func (s *FilterState) ToggleQuery(facet Facet, value string) string {
	next := s.Clone()
	next.Toggle(facet, value)
	return next.EncodeQuery()
}
