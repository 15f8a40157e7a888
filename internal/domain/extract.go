package domain

import (
	"regexp"
	"strings"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

var (
	openingFence   = regexp.MustCompile("^```[a-zA-Z]*\n?")
	closingFence   = regexp.MustCompile("\n?```$")
	reasoningBlock = regexp.MustCompile("(?s)```(?:python)?\n(.*?)```")
)

// ExtractAssistantText pulls the answer out of the first choice, trying in
// order: message.content, the first python block of message.reasoning_content
// (or all of it), then the legacy choice.text field.
func ExtractAssistantText(resp m.ChatResponse) (string, bool) {
	if len(resp.Choices) == 0 {
		return "", false
	}

	choice := resp.Choices[0]

	if choice.Message != nil {
		if content, ok := nonBlankString(choice.Message.Content); ok {
			return content, true
		}

		if reasoning, ok := nonBlankString(choice.Message.ReasoningContent); ok {
			if match := reasoningBlock.FindStringSubmatch(reasoning); match != nil {
				return strings.TrimSpace(match[1]), true
			}

			return reasoning, true
		}
	}

	if text, ok := nonBlankString(choice.Text); ok {
		return text, true
	}

	return "", false
}

// StripCodeFences removes a surrounding markdown fence, if any.
func StripCodeFences(text string) string {
	t := strings.TrimSpace(text)

	if strings.HasPrefix(t, "```") {
		t = openingFence.ReplaceAllString(t, "")
		t = closingFence.ReplaceAllString(t, "")
	}

	return strings.TrimSpace(t)
}

func nonBlankString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}

	return s, true
}
