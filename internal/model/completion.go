package model

// ChatMessage is a single message of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an OpenAI-compatible chat-completion request body.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
	Stop        []string      `json:"stop,omitempty"`
}

// ChatResponse is the subset of a chat-completion response pyskel inspects.
// Content fields stay loosely typed: providers disagree on their shapes.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
}

// ChatChoice is one completion alternative.
type ChatChoice struct {
	Message *ChatChoiceMessage `json:"message,omitempty"`
	Text    any                `json:"text,omitempty"`
}

// ChatChoiceMessage holds the assistant message of a choice.
type ChatChoiceMessage struct {
	Content          any `json:"content,omitempty"`
	ReasoningContent any `json:"reasoning_content,omitempty"`
}
