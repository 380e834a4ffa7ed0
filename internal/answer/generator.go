// Package answer turns merged passage candidates into a grounded,
// cited answer via a chat provider.
package answer

import (
	"context"
	"fmt"
	"strings"

	"knowledge-ai/internal/contextutil"
	"knowledge-ai/internal/enhance"
	"knowledge-ai/internal/llm"
	"knowledge-ai/internal/retrieval"
)

const (
	// historyWindow is how many trailing conversation turns are sent to
	// the provider alongside the new query.
	historyWindow = 4

	// maxAnswerTokens bounds the generated answer length.
	maxAnswerTokens = 1200

	answerTemperature = 0.2
)

// Generator assembles the grounded prompt and calls the selected chat
// provider. It implements retrieval.Generator.
type Generator struct {
	registry *llm.Registry
}

// NewGenerator creates an answer generator over the given provider registry.
func NewGenerator(registry *llm.Registry) *Generator {
	return &Generator{registry: registry}
}

// Generate produces an answer grounded in the given candidates. The
// returned citations are a direct projection of the candidates placed
// in the prompt, never a superset.
func (g *Generator) Generate(
	ctx context.Context,
	query string,
	candidates []retrieval.Candidate,
	history []llm.Message,
	enhancement *enhance.Enhancement,
	modelPreference string,
) (string, []retrieval.Citation, error) {
	logger := contextutil.LoggerFromContext(ctx)

	provider := g.registry.Select(modelPreference)
	system := buildSystemInstruction(candidates, enhancement)
	messages := buildMessages(history, query)

	logger.DebugContext(ctx, "calling chat provider",
		"provider", provider.Name(),
		"candidates", len(candidates),
		"history_turns", len(messages)-1,
	)

	text, err := provider.Chat(ctx, messages, llm.ChatParams{
		System:      system,
		MaxTokens:   maxAnswerTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat provider %s: %w", provider.Name(), err)
	}

	return text, citationsFor(candidates), nil
}

// buildSystemInstruction renders the grounding context: every candidate
// as title plus content, the optional concept overlay, then the fixed
// behavioral instructions.
func buildSystemInstruction(candidates []retrieval.Candidate, enhancement *enhance.Enhancement) string {
	var b strings.Builder

	b.WriteString("You are a knowledge assistant answering questions from a curated document collection.\n\n")

	if len(candidates) > 0 {
		b.WriteString("Context passages:\n\n")
		for i, c := range candidates {
			fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, c.DocumentTitle, c.Content)
		}
	} else {
		b.WriteString("No context passages are available for this query.\n\n")
	}

	if enhancement != nil && enhancement.HasMatches {
		b.WriteString("Concept notes:\n")
		fmt.Fprintf(&b, "%s\n", enhancement.Summary)
		if len(enhancement.RelatedConcepts) > 0 {
			fmt.Fprintf(&b, "Related concepts: %s\n", strings.Join(enhancement.RelatedConcepts, ", "))
		}
		for _, insight := range enhancement.Insights {
			fmt.Fprintf(&b, "Insight: %s\n", insight.Detail)
		}
		b.WriteString("\n")
	}

	b.WriteString("Instructions:\n")
	b.WriteString("- Answer using only the context passages above.\n")
	b.WriteString("- Cite sources by document title.\n")
	b.WriteString("- If the context is insufficient to answer, say so explicitly.\n")
	b.WriteString("- Mention related concepts as suggestions for further exploration, never as facts.\n")

	return b.String()
}

// buildMessages returns the trailing history turns followed by the new
// user query.
func buildMessages(history []llm.Message, query string) []llm.Message {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: query})
	return messages
}

func citationsFor(candidates []retrieval.Candidate) []retrieval.Citation {
	citations := make([]retrieval.Citation, 0, len(candidates))
	for _, c := range candidates {
		citations = append(citations, retrieval.Citation{
			Text:          c.Content,
			Source:        fmt.Sprintf("%s (chunk %d)", c.DocumentTitle, c.ChunkIndex),
			DocumentTitle: c.DocumentTitle,
			ChunkID:       c.ChunkID,
		})
	}
	return citations
}
