package enhance

// Concept is one entry in the curated concept vocabulary. A concept
// matches a query when any of its trigger keywords appears in the
// lowercased query text.
type Concept struct {
	// Name is the canonical concept label.
	Name string
	// Keywords trigger the concept. Matching is substring-based on the
	// lowercased query, so multi-word triggers are allowed.
	Keywords []string
	// Related lists adjacent concepts worth exploring next.
	Related []string
}

// Insight is a cross-concept observation surfaced when all of its
// required concepts match the same query.
type Insight struct {
	// Title is a short label for the observation.
	Title string
	// Detail is the full observation text.
	Detail string
	// Confidence is the curator-assigned confidence in [0,1].
	Confidence float64
	// RequiresAll lists the concept names that must all match.
	RequiresAll []string
}

// Vocabulary bundles the concept table and the insight rules.
type Vocabulary struct {
	Concepts []Concept
	Insights []Insight
}

// DefaultVocabulary is the authored knowledge-domain vocabulary. The
// tables are data, not code: extending the domain means appending
// entries here, never touching the matcher.
var DefaultVocabulary = Vocabulary{
	Concepts: []Concept{
		{
			Name:     "Hoodie Economics",
			Keywords: []string{"hoodie", "economics"},
			Related:  []string{"Community-Centered Economics", "Relational Leadership"},
		},
		{
			Name:     "Relational Value Creation",
			Keywords: []string{"relational"},
			Related:  []string{"Hoodie Economics", "Network Effects"},
		},
		{
			Name:     "Indigenous Knowledge Integration",
			Keywords: []string{"indigenous"},
			Related:  []string{"Cultural Sensitivity Framework", "Community Consultation"},
		},
		{
			Name:     "Digital Hoodies Recognition",
			Keywords: []string{"digital", "methodology"},
			Related:  []string{"Achievement Systems", "Community Recognition"},
		},
	},
	Insights: []Insight{
		{
			Title:       "Economic Innovation Pattern",
			Detail:      "Your query touches on economic concepts that the knowledge base approaches through relational rather than transactional frameworks.",
			Confidence:  0.85,
			RequiresAll: []string{"Hoodie Economics"},
		},
		{
			Title:       "Cultural Protocol Pattern",
			Detail:      "Queries about indigenous knowledge systems benefit from community consultation context present in the source material.",
			Confidence:  0.8,
			RequiresAll: []string{"Indigenous Knowledge Integration"},
		},
	},
}
