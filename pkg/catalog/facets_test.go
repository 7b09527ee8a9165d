package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeCountsAndOrders(t *testing.T) {
	summary := Summarize(testItems())

	tags := summary[FacetTags]
	require.NotEmpty(t, tags)
	// accuracy appears twice, everything else once; ties alphabetical.
	assert.Equal(t, ValueCount{Value: "accuracy", Count: 2}, tags[0])
	assert.Equal(t, ValueCount{Value: "bias", Count: 1}, tags[1])

	assert.Equal(t, []ValueCount{
		{Value: "rag", Count: 2},
		{Value: "safety", Count: 1},
	}, summary[FacetUseCases])

	assert.Equal(t, []ValueCount{
		{Value: "python", Count: 2},
		{Value: "typescript", Count: 2},
	}, summary[FacetLanguages])

	// The sparse item still counts toward frameworks.
	assert.Len(t, summary[FacetFrameworks], 4)
}

func TestSummarizeEmptyCorpus(t *testing.T) {
	summary := Summarize(nil)
	for _, facet := range Facets {
		assert.Empty(t, summary[facet])
	}
}
