// Package enhance overlays retrieval results with curated domain
// concepts. It is deliberately static and pure: no model calls, no
// I/O, identical output for identical queries.
package enhance

import (
	"fmt"
	"strings"
)

// Enhancement is the concept overlay attached to a query response.
type Enhancement struct {
	// MatchedConcepts are vocabulary concepts triggered by the query.
	MatchedConcepts []string `json:"matchedConcepts"`
	// RelatedConcepts are adjacent concepts worth exploring, excluding
	// anything already matched.
	RelatedConcepts []string `json:"relatedConcepts"`
	// Insights are cross-concept observations whose requirements the
	// query satisfied.
	Insights []Insight `json:"insights"`
	// Summary is a one-paragraph human-readable rendering of the above.
	Summary string `json:"summary"`
	// HasMatches reports whether any concept matched. When false the
	// summary is a single generic exploration sentence.
	HasMatches bool `json:"hasMatches"`
}

// maxRelatedInSummary caps how many related concepts the summary names.
const maxRelatedInSummary = 3

// Enhancer matches queries against a concept vocabulary.
type Enhancer struct {
	vocab Vocabulary
}

// New creates an enhancer over the given vocabulary. Pass
// DefaultVocabulary for the standard domain tables.
func New(vocab Vocabulary) *Enhancer {
	return &Enhancer{vocab: vocab}
}

// noMatchSummary is emitted when the query triggers no concept.
const noMatchSummary = "This query shows potential for exploration within the knowledge base."

// Enhance returns the concept overlay for a query. A query matching no
// concept still yields an enhancement carrying the generic summary and
// HasMatches=false.
func (e *Enhancer) Enhance(query string) *Enhancement {
	lower := strings.ToLower(query)

	matched := make([]string, 0, len(e.vocab.Concepts))
	matchedSet := make(map[string]bool)
	for _, concept := range e.vocab.Concepts {
		if concept.triggers(lower) {
			matched = append(matched, concept.Name)
			matchedSet[concept.Name] = true
		}
	}
	if len(matched) == 0 {
		return &Enhancement{Summary: noMatchSummary}
	}

	related := e.relatedConcepts(matchedSet)
	insights := e.insights(matchedSet)

	return &Enhancement{
		MatchedConcepts: matched,
		RelatedConcepts: related,
		Insights:        insights,
		Summary:         buildSummary(matched, related, insights),
		HasMatches:      true,
	}
}

func (c Concept) triggers(lowerQuery string) bool {
	for _, kw := range c.Keywords {
		if strings.Contains(lowerQuery, kw) {
			return true
		}
	}
	return false
}

// relatedConcepts collects adjacencies of every matched concept,
// dropping duplicates and anything already matched. Order follows the
// vocabulary, so output is deterministic.
func (e *Enhancer) relatedConcepts(matchedSet map[string]bool) []string {
	var related []string
	seen := make(map[string]bool)
	for _, concept := range e.vocab.Concepts {
		if !matchedSet[concept.Name] {
			continue
		}
		for _, name := range concept.Related {
			if matchedSet[name] || seen[name] {
				continue
			}
			seen[name] = true
			related = append(related, name)
		}
	}
	return related
}

func (e *Enhancer) insights(matchedSet map[string]bool) []Insight {
	var out []Insight
	for _, insight := range e.vocab.Insights {
		satisfied := true
		for _, name := range insight.RequiresAll {
			if !matchedSet[name] {
				satisfied = false
				break
			}
		}
		if satisfied && len(insight.RequiresAll) > 0 {
			out = append(out, insight)
		}
	}
	return out
}

func buildSummary(matched, related []string, insights []Insight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your query relates to key concepts: %s.", strings.Join(matched, ", "))

	if len(related) > 0 {
		shown := related
		if len(shown) > maxRelatedInSummary {
			shown = shown[:maxRelatedInSummary]
		}
		fmt.Fprintf(&b, " Related concepts to explore: %s.", strings.Join(shown, ", "))
	}

	if len(insights) > 0 {
		best := insights[0]
		for _, insight := range insights[1:] {
			if insight.Confidence > best.Confidence {
				best = insight
			}
		}
		fmt.Fprintf(&b, " Key insight: %s", best.Detail)
	}

	return b.String()
}
