// Package facts mines short, independently-checkable claims from
// generated answer text. Extraction is pure lexical pattern matching
// with no semantic understanding: it is a recall aid for human
// reviewers, not a precision guarantee.
package facts

import (
	"regexp"
	"strings"
)

// maxFacts caps the number of facts extracted per answer.
const maxFacts = 3

// Fact is a standalone claim surfaced for human validation.
type Fact struct {
	// Content is the claim text.
	Content string `json:"content"`
	// Confidence is the extraction confidence in [0,1], fixed per
	// pattern battery.
	Confidence float64 `json:"confidence"`
	// SourceContext references the query the answer was generated for.
	SourceContext string `json:"sourceContext"`
	// Tags are suggested categories from a keyword lookup over the
	// query and the claim text.
	Tags []string `json:"tags"`
}

// battery is one ordered group of claim patterns sharing a confidence.
type battery struct {
	name       string
	confidence float64
	patterns   []*regexp.Regexp
	minLen     int
	maxLen     int
}

var (
	// Statistical claims: percentages, counts of domain nouns, and
	// bounded quantities.
	statisticalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+(?:\.\d+)?%`),
		regexp.MustCompile(`(?i)\b\d[\d,]*\s+(?:participants|students|mentors|schools|universities|communities|programs|partners|young people)\b`),
		regexp.MustCompile(`(?i)\b(?:over|more than|up to|at least)\s+\d[\d,]*\b`),
	}

	// Domain entities: sentences naming a curated proper-noun trigger.
	entityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bHoodie Economics\b`),
		regexp.MustCompile(`\bDigital Hoodies\b`),
		regexp.MustCompile(`\bIMAGI-NATION\b`),
		regexp.MustCompile(`\bAIME\b`),
	}

	// Definitional claims: a domain keyword plus a copular or
	// definitional verb form.
	definitionalKeyword = regexp.MustCompile(`(?i)\b(?:hoodie|mentor(?:ing|ship)?|indigenous|relational|imagination|economics|network)\b`)
	definitionalVerb    = regexp.MustCompile(`(?i)\b(?:is|are|means|refers to|is defined as|represents)\b`)
)

var batteries = []battery{
	{name: "statistics", confidence: 0.8, patterns: statisticalPatterns, minLen: 20, maxLen: 300},
	{name: "domain-entity", confidence: 0.7, patterns: entityPatterns, minLen: 20, maxLen: 300},
}

// tagVocabulary maps lowercase keywords to suggested tags. Both the
// query and the claim text are consulted.
var tagVocabulary = []struct {
	keyword string
	tag     string
}{
	{"%", "statistics"},
	{"percent", "statistics"},
	{"rate", "statistics"},
	{"hoodie", "hoodie-economics"},
	{"economic", "economics"},
	{"indigenous", "indigenous-knowledge"},
	{"mentor", "mentoring"},
	{"universit", "education"},
	{"school", "education"},
	{"education", "education"},
	{"communit", "community"},
	{"relational", "relationships"},
	{"research", "research"},
}

// Extractor mines extractable facts from answer text.
type Extractor struct{}

// NewExtractor creates a fact extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns at most three facts mined from the answer. Output is
// deterministic for identical input: batteries run in a fixed order and
// sentences are scanned in document order.
func (e *Extractor) Extract(answerText, query string) []Fact {
	plain := normalizeMarkdown(answerText)
	sentences := splitSentences(plain)
	sourceContext := "Generated from query: " + query

	var out []Fact
	seen := make(map[string]bool)

	collect := func(sentence string, confidence float64, baseTag string) {
		if len(out) >= maxFacts {
			return
		}
		claim := strings.TrimSpace(sentence)
		key := normalizeClaim(claim)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Fact{
			Content:       claim,
			Confidence:    confidence,
			SourceContext: sourceContext,
			Tags:          suggestTags(query, claim, baseTag),
		})
	}

	for _, b := range batteries {
		for _, sentence := range sentences {
			if len(sentence) < b.minLen || len(sentence) > b.maxLen {
				continue
			}
			for _, pattern := range b.patterns {
				if pattern.MatchString(sentence) {
					collect(sentence, b.confidence, b.name)
					break
				}
			}
		}
	}

	// Definitional battery: bounded tighter than the others.
	for _, sentence := range sentences {
		if len(sentence) < 30 || len(sentence) > 200 {
			continue
		}
		if definitionalKeyword.MatchString(sentence) && definitionalVerb.MatchString(sentence) {
			collect(sentence, 0.6, "definition")
		}
	}

	return out
}

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+|\n`)

func splitSentences(s string) []string {
	var sentences []string
	for _, part := range sentenceBoundary.Split(s, -1) {
		part = strings.TrimSpace(part)
		part = strings.TrimRight(part, ".!? ")
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// normalizeClaim is the dedupe key: lowercased, whitespace-collapsed,
// trailing punctuation stripped.
func normalizeClaim(s string) string {
	s = strings.ToLower(strings.TrimRight(s, ".!? "))
	return strings.Join(strings.Fields(s), " ")
}

func suggestTags(query, claim, baseTag string) []string {
	haystack := strings.ToLower(query + " " + claim)
	tags := []string{baseTag}
	seen := map[string]bool{baseTag: true}
	for _, entry := range tagVocabulary {
		if seen[entry.tag] {
			continue
		}
		if strings.Contains(haystack, entry.keyword) {
			seen[entry.tag] = true
			tags = append(tags, entry.tag)
		}
	}
	return tags
}
