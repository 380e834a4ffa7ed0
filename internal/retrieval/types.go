package retrieval

import (
	"knowledge-ai/internal/enhance"
	"knowledge-ai/internal/facts"
	"knowledge-ai/internal/llm"
)

// Source identifies which adapter produced a candidate.
type Source string

const (
	SourceVector         Source = "vector"
	SourceThemeFiltered  Source = "theme_filtered"
	SourceDirectMatch    Source = "direct_match"
	SourceFallback       Source = "fallback"
	SourceDocumentScoped Source = "document_scoped"
)

// Candidate is a unit of retrievable text produced by a source adapter.
// Candidates are created fresh per request and discarded after merging.
type Candidate struct {
	// ChunkID is the globally unique chunk identifier.
	ChunkID string
	// DocumentID is the parent document identifier.
	DocumentID string
	// DocumentTitle is the parent document title.
	DocumentTitle string
	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int
	// Content is the raw text span.
	Content string
	// Score is the similarity score. A nil score means the candidate is
	// rank-indifferent and sorts after all scored candidates.
	Score *float64
	// Source tags the adapter that produced this candidate.
	Source Source
}

// Scope restricts retrieval to a target document or a set of themes.
type Scope struct {
	// DocumentID, when set, limits retrieval to a single document.
	DocumentID string `json:"documentId,omitempty"`
	// Themes, when set, limits retrieval to documents carrying these theme labels.
	Themes []string `json:"themes,omitempty"`
}

// Request is a retrieval-augmented query request.
type Request struct {
	// Query is the natural-language question.
	Query string `json:"query"`
	// Scope optionally narrows retrieval.
	Scope Scope `json:"scope,omitempty"`
	// ModelPreference selects the chat provider ("openai" or "anthropic").
	// Empty or unknown values fall back to the configured default.
	ModelPreference string `json:"modelPreference,omitempty"`
	// History is the prior conversation; only the trailing turns are sent
	// to the provider.
	History []llm.Message `json:"history,omitempty"`
	// Limit optionally overrides the merged result count. Zero means the
	// configured default.
	Limit int `json:"limit,omitempty"`
}

// Citation ties a span of answer context back to its source chunk.
// Citations are a 1:1 projection of the candidates actually sent to
// the model, never a superset.
type Citation struct {
	// Text is the passage text included in the prompt.
	Text string `json:"text"`
	// Source is a human-readable source locator.
	Source string `json:"source"`
	// DocumentTitle is the cited document's title.
	DocumentTitle string `json:"documentTitle"`
	// ChunkID is the cited chunk's identifier.
	ChunkID string `json:"chunkId"`
}

// Response is the result of a retrieval-augmented query.
type Response struct {
	// AnswerText is the generated answer.
	AnswerText string `json:"answerText"`
	// Citations reference the passages the answer was grounded in.
	Citations []Citation `json:"citations"`
	// ExtractableFacts are claims mined from the answer for human validation.
	ExtractableFacts []facts.Fact `json:"extractableFacts"`
	// Enhancement is the concept overlay; nil when enhancement was
	// unavailable or produced nothing.
	Enhancement *enhance.Enhancement `json:"enhancement"`
}

// AdapterQuery is the per-request input handed to each source adapter.
type AdapterQuery struct {
	// Text is the raw query text.
	Text string
	// Vector is the query embedding.
	Vector []float32
	// Scope carries the request's scoping filters.
	Scope Scope
	// Limit is the final merged result cap the adapters size their
	// fetches against.
	Limit int
}
