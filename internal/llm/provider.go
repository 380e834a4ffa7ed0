package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_provider.go -package=mocks knowledge-ai/internal/llm ChatProvider

import (
	"context"
	"fmt"
	"strings"
)

// ChatProvider is a chat-completion provider. Both supported providers
// (OpenAI-style and Anthropic-style APIs) receive the same system
// instruction and conversation history, so they are interchangeable
// from the pipeline's point of view.
type ChatProvider interface {
	// Name returns the provider's registry name (e.g. "openai").
	Name() string
	// Chat sends the conversation to the provider and returns the assistant reply.
	Chat(ctx context.Context, messages []Message, params ChatParams) (string, error)
}

// Registry holds the configured chat providers and selects one by
// caller preference, falling back to the default provider for unknown
// or empty preferences.
type Registry struct {
	providers       map[string]ChatProvider
	defaultProvider string
}

// NewRegistry creates a provider registry. defaultName must match one
// of the registered providers.
func NewRegistry(defaultName string, providers ...ChatProvider) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one chat provider is required")
	}
	m := make(map[string]ChatProvider, len(providers))
	for _, p := range providers {
		m[strings.ToLower(p.Name())] = p
	}
	defaultName = strings.ToLower(defaultName)
	if _, ok := m[defaultName]; !ok {
		return nil, fmt.Errorf("default provider %q is not registered", defaultName)
	}
	return &Registry{providers: m, defaultProvider: defaultName}, nil
}

// Select returns the provider matching the given preference, or the
// default provider if the preference is empty or unknown.
func (r *Registry) Select(preference string) ChatProvider {
	if p, ok := r.providers[strings.ToLower(strings.TrimSpace(preference))]; ok {
		return p
	}
	return r.providers[r.defaultProvider]
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
