package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// System is the system instruction prepended to the conversation.
	System string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, a provider-specific default is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32
}
