package domain

import (
	m "pyskel.dev/pkg/pyskel/internal/model"
)

const (
	systemPrompt = "You are a code generator that outputs ONLY valid Python pytest code. " +
		"Do not include explanations, natural language, or markdown fences. " +
		"Your first line MUST be 'import pytest'."

	exampleRequest  = "Write pytest tests for:\n\ndef inc(x): return x+1"
	exampleResponse = "import pytest\n\ndef test_inc_basic():\n    assert inc(1) == 2\n"

	userPromptPrefix = "Given the following Python code, write pytest unit tests. " +
		"Return only the Python test code, starting with 'import pytest'.\n\n"

	// DefaultMaxTokens bounds the model answer when no limit is configured.
	DefaultMaxTokens = 2500
)

// stopSequences cut the answer where models usually start explaining themselves.
var stopSequences = []string{"\n\nWe", "\nExplanation", "\nReasoning"}

// BuildChatRequest assembles the few-shot conversation asking model for tests of code.
func BuildChatRequest(model string, maxTokens int, code string) m.ChatRequest {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return m.ChatRequest{
		Model: model,
		Messages: []m.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: exampleRequest},
			{Role: "assistant", Content: exampleResponse},
			{Role: "user", Content: userPromptPrefix + code},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
		Stream:      false,
		Stop:        append([]string(nil), stopSequences...),
	}
}
