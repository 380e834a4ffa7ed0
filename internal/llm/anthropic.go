package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const anthropicAPIVersion = "2023-06-01"

// defaultAnthropicMaxTokens is used when the caller does not set a limit;
// the Anthropic messages API requires max_tokens to be present.
const defaultAnthropicMaxTokens = 1024

// AnthropicProvider is a ChatProvider for the Anthropic messages API.
type AnthropicProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewAnthropicProvider creates a new Anthropic chat provider.
func NewAnthropicProvider(baseURL, apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// Name returns the provider's registry name.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// anthropicRequest represents the request payload for the messages API.
// The system instruction is a top-level field, not a message role.
type anthropicRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature,omitempty"`
}

// anthropicResponse represents the response from the messages API.
type anthropicResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Chat sends a messages API request with the same system instruction and
// conversation history the OpenAI provider receives.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	url := fmt.Sprintf("%s/v1/messages", p.BaseURL)

	maxTokens := params.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	payload := anthropicRequest{
		Model:       p.Model,
		System:      params.System,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: params.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var msgResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	for _, block := range msgResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content returned")
}
