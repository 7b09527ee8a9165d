package catalog

import (
	"sort"

	"github.com/evalhub/evalhub/pkg/content"
)

// ValueCount is one facet value with the number of items carrying it.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetSummary lists the value counts of every facet for a set of items.
// Handlers summarize the filtered result set so the UI can show how many
// matches each refinement would leave.
type FacetSummary map[Facet][]ValueCount

// Summarize counts facet values across items. Values are reported in
// descending count order, ties broken alphabetically; values carried by no
// item are omitted.
func Summarize(items []content.EvalItem) FacetSummary {
	counts := make(map[Facet]map[string]int, len(Facets))
	for _, facet := range Facets {
		counts[facet] = make(map[string]int)
	}

	for _, item := range items {
		for _, tag := range item.Tags {
			counts[FacetTags][tag]++
		}
		if item.Framework != "" {
			counts[FacetFrameworks][item.Framework]++
		}
		if item.UseCase != "" {
			counts[FacetUseCases][item.UseCase]++
		}
		for _, lang := range item.Languages {
			counts[FacetLanguages][lang]++
		}
		if item.Difficulty != "" {
			counts[FacetDifficulties][item.Difficulty]++
		}
	}

	summary := make(FacetSummary, len(Facets))
	for facet, byValue := range counts {
		entries := make([]ValueCount, 0, len(byValue))
		for value, count := range byValue {
			entries = append(entries, ValueCount{Value: value, Count: count})
		}
		sort.Slice(entries, func(a, b int) bool {
			if entries[a].Count != entries[b].Count {
				return entries[a].Count > entries[b].Count
			}
			return entries[a].Value < entries[b].Value
		})
		summary[facet] = entries
	}
	return summary
}
