package catalog

import (
	"fmt"
	"sort"

	"github.com/evalhub/evalhub/pkg/content"
)

// Facet identifies one of the catalog's filterable dimensions.
type Facet string

const (
	FacetTags         Facet = "tags"
	FacetFrameworks   Facet = "frameworks"
	FacetUseCases     Facet = "use_cases"
	FacetLanguages    Facet = "languages"
	FacetDifficulties Facet = "difficulties"
)

// Facets lists every facet in canonical order. Query serialization and
// facet summaries follow this order.
var Facets = []Facet{
	FacetTags,
	FacetFrameworks,
	FacetUseCases,
	FacetLanguages,
	FacetDifficulties,
}

// FilterState is an immutable-per-request set of selected facet values.
// The zero value from NewFilterState selects nothing and matches every item.
//
// Matching semantics are deliberately asymmetric: tags narrow (an item must
// carry every selected tag), while the other four facets broaden within
// themselves (an item matches if it has any selected value). Facets always
// combine with AND across each other.
type FilterState struct {
	selected map[Facet]map[string]struct{}
}

// NewFilterState creates an empty filter state.
func NewFilterState() *FilterState {
	return &FilterState{selected: newSelection()}
}

func newSelection() map[Facet]map[string]struct{} {
	selected := make(map[Facet]map[string]struct{}, len(Facets))
	for _, facet := range Facets {
		selected[facet] = make(map[string]struct{})
	}
	return selected
}

func (s *FilterState) facetValues(facet Facet) map[string]struct{} {
	values, ok := s.selected[facet]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown facet %q", facet))
	}
	return values
}

// Toggle flips the selection of value within facet: selecting it if absent,
// deselecting it if present. Toggling the same value twice restores the
// prior state. Unknown facets panic; they indicate a programming error,
// not bad user input.
func (s *FilterState) Toggle(facet Facet, value string) {
	values := s.facetValues(facet)
	if _, ok := values[value]; ok {
		delete(values, value)
	} else {
		values[value] = struct{}{}
	}
}

// Has reports whether value is currently selected within facet.
func (s *FilterState) Has(facet Facet, value string) bool {
	_, ok := s.facetValues(facet)[value]
	return ok
}

// Clear deselects every value of one facet.
func (s *FilterState) Clear(facet Facet) {
	s.facetValues(facet)
	s.selected[facet] = make(map[string]struct{})
}

// ClearAll resets the state to no selections.
func (s *FilterState) ClearAll() {
	s.selected = newSelection()
}

// HasActiveFilters reports whether any facet has at least one selection.
func (s *FilterState) HasActiveFilters() bool {
	for _, values := range s.selected {
		if len(values) > 0 {
			return true
		}
	}
	return false
}

// ActiveFilterCount returns the total number of selected values across all
// facets.
func (s *FilterState) ActiveFilterCount() int {
	count := 0
	for _, values := range s.selected {
		count += len(values)
	}
	return count
}

// Values returns the selected values of one facet, sorted.
func (s *FilterState) Values(facet Facet) []string {
	values := s.facetValues(facet)
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the state.
func (s *FilterState) Clone() *FilterState {
	clone := NewFilterState()
	for facet, values := range s.selected {
		for v := range values {
			clone.selected[facet][v] = struct{}{}
		}
	}
	return clone
}

// FilterItems returns the items matching the state, preserving the input
// order. With no active filters the input is returned unchanged.
func (s *FilterState) FilterItems(items []content.EvalItem) []content.EvalItem {
	if !s.HasActiveFilters() {
		return items
	}

	matched := make([]content.EvalItem, 0, len(items))
	for _, item := range items {
		if s.Matches(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Matches reports whether a single item satisfies every active facet.
func (s *FilterState) Matches(item content.EvalItem) bool {
	if !hasAllValues(s.selected[FacetTags], item.Tags) {
		return false
	}
	if !matchesSingle(s.selected[FacetFrameworks], item.Framework) {
		return false
	}
	if !matchesSingle(s.selected[FacetUseCases], item.UseCase) {
		return false
	}
	if !hasAnyValue(s.selected[FacetLanguages], item.Languages) {
		return false
	}
	if !matchesSingle(s.selected[FacetDifficulties], item.Difficulty) {
		return false
	}
	return true
}

// hasAllValues implements the tags facet: every selected tag must be
// present on the item. An item without tags fails any non-empty selection.
func hasAllValues(selected map[string]struct{}, itemValues []string) bool {
	if len(selected) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(itemValues))
	for _, v := range itemValues {
		have[v] = struct{}{}
	}
	for want := range selected {
		if _, ok := have[want]; !ok {
			return false
		}
	}
	return true
}

// hasAnyValue implements the languages facet: the item's values must
// intersect the selection. An item without the field fails any non-empty
// selection.
func hasAnyValue(selected map[string]struct{}, itemValues []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, v := range itemValues {
		if _, ok := selected[v]; ok {
			return true
		}
	}
	return false
}

// matchesSingle implements the single-valued OR facets. An item with the
// field unset fails any non-empty selection.
func matchesSingle(selected map[string]struct{}, itemValue string) bool {
	if len(selected) == 0 {
		return true
	}
	if itemValue == "" {
		return false
	}
	_, ok := selected[itemValue]
	return ok
}
