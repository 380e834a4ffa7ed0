package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegistry_Select(t *testing.T) {
	openai := NewOpenAIProvider("http://localhost:0", "k", "gpt-4o-mini")
	anthropic := NewAnthropicProvider("http://localhost:0", "k", "claude-3-5-haiku-latest")

	registry, err := NewRegistry("openai", openai, anthropic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		preference string
		wantName   string
	}{
		{"openai", "openai"},
		{"anthropic", "anthropic"},
		{"Anthropic", "anthropic"},
		{"", "openai"},
		{"unknown-provider", "openai"},
	}

	for _, tt := range tests {
		if got := registry.Select(tt.preference).Name(); got != tt.wantName {
			t.Errorf("Select(%q) = %q, want %q", tt.preference, got, tt.wantName)
		}
	}
}

func TestNewRegistry_UnknownDefault(t *testing.T) {
	openai := NewOpenAIProvider("http://localhost:0", "k", "gpt-4o-mini")
	if _, err := NewRegistry("anthropic", openai); err == nil {
		t.Fatal("expected error for unregistered default provider")
	}
}

func TestOpenAIProvider_Chat(t *testing.T) {
	var captured openAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		resp := openAIChatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{})
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = "Hoodie economics values relationships over transactions."
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL, "test-key", "gpt-4o-mini")
	answer, err := provider.Chat(context.Background(),
		userTurn("What is hoodie economics?"),
		ChatParams{System: "Answer from context only.", Temperature: 0.7},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("expected non-empty answer")
	}

	// System instruction becomes the leading system-role message
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages in payload, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", captured.Messages[0].Role)
	}
}

func TestAnthropicProvider_Chat(t *testing.T) {
	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		resp := anthropicResponse{}
		resp.Content = append(resp.Content, struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "text", Text: "Answer text."})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewAnthropicProvider(server.URL, "test-key", "claude-3-5-haiku-latest")
	answer, err := provider.Chat(context.Background(),
		userTurn("What is hoodie economics?"),
		ChatParams{System: "Answer from context only."},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Answer text." {
		t.Errorf("answer = %q, want %q", answer, "Answer text.")
	}

	// System instruction goes in the top-level field, not a message
	if captured.System == "" {
		t.Error("expected top-level system field to be set")
	}
	if len(captured.Messages) != 1 {
		t.Fatalf("expected 1 message in payload, got %d", len(captured.Messages))
	}
	if captured.MaxTokens == 0 {
		t.Error("expected max_tokens default to be applied")
	}
}

// userTurn builds a single-user-turn conversation for tests.
func userTurn(question string) []Message {
	return []Message{{Role: "user", Content: question}}
}
