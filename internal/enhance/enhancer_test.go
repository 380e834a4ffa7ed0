package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhance(t *testing.T) {
	enhancer := New(DefaultVocabulary)

	tests := []struct {
		name            string
		query           string
		wantNoMatch     bool
		wantConcepts    []string
		wantRelatedHas  []string
		wantInsightsLen int
	}{
		{
			name:            "hoodie economics query matches concept and insight",
			query:           "What does hoodie economics say about value?",
			wantConcepts:    []string{"Hoodie Economics"},
			wantRelatedHas:  []string{"Community-Centered Economics", "Relational Leadership"},
			wantInsightsLen: 1,
		},
		{
			name:            "indigenous knowledge query",
			query:           "How is indigenous knowledge represented?",
			wantConcepts:    []string{"Indigenous Knowledge Integration"},
			wantRelatedHas:  []string{"Cultural Sensitivity Framework"},
			wantInsightsLen: 1,
		},
		{
			name:         "relational query matches without insight",
			query:        "Explain relational approaches to mentoring",
			wantConcepts: []string{"Relational Value Creation"},
		},
		{
			name:        "unrelated query yields generic summary",
			query:       "What is the weather like today?",
			wantNoMatch: true,
		},
		{
			name:        "empty query yields generic summary",
			query:       "",
			wantNoMatch: true,
		},
		{
			name:         "matching is case-insensitive",
			query:        "HOODIE ECONOMICS overview",
			wantConcepts: []string{"Hoodie Economics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enhancer.Enhance(tt.query)
			require.NotNil(t, got)
			if tt.wantNoMatch {
				assert.False(t, got.HasMatches)
				assert.Empty(t, got.MatchedConcepts)
				assert.Equal(t, noMatchSummary, got.Summary)
				return
			}
			assert.True(t, got.HasMatches)
			assert.Equal(t, tt.wantConcepts, got.MatchedConcepts)
			for _, name := range tt.wantRelatedHas {
				assert.Contains(t, got.RelatedConcepts, name)
			}
			if tt.wantInsightsLen > 0 {
				assert.Len(t, got.Insights, tt.wantInsightsLen)
			}
			assert.NotEmpty(t, got.Summary)
		})
	}
}

func TestEnhanceRelatedExcludesMatched(t *testing.T) {
	enhancer := New(DefaultVocabulary)

	// "relational" matches Relational Value Creation whose adjacency
	// includes Hoodie Economics; when both match, neither may appear in
	// the related list.
	got := enhancer.Enhance("relational hoodie economics")
	require.NotNil(t, got)
	assert.Contains(t, got.MatchedConcepts, "Hoodie Economics")
	assert.Contains(t, got.MatchedConcepts, "Relational Value Creation")
	assert.NotContains(t, got.RelatedConcepts, "Hoodie Economics")
	assert.NotContains(t, got.RelatedConcepts, "Relational Value Creation")
}

func TestEnhanceSummaryShape(t *testing.T) {
	enhancer := New(DefaultVocabulary)

	got := enhancer.Enhance("hoodie economics and indigenous methodology in digital spaces")
	require.NotNil(t, got)
	assert.Contains(t, got.Summary, "Your query relates to key concepts:")
	assert.Contains(t, got.Summary, "Related concepts to explore:")
	assert.Contains(t, got.Summary, "Key insight:")
}

func TestEnhanceDeterministic(t *testing.T) {
	enhancer := New(DefaultVocabulary)

	first := enhancer.Enhance("hoodie economics and relational value")
	require.NotNil(t, first)
	for range 10 {
		assert.Equal(t, first, enhancer.Enhance("hoodie economics and relational value"))
	}
}
