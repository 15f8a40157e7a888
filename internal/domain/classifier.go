package domain

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"pyskel.dev/pkg/pyskel/internal/adapter"
)

// Classifier decides whether text is syntactically valid Python.
type Classifier interface {
	// IsCode never fails: every parse problem is reported as false.
	IsCode(ctx context.Context, text string) bool
}

type classifier struct {
	adapter.PythonFileAdapter
}

// NewClassifier creates a Classifier backed by the given Python adapter.
func NewClassifier(pythonAdapter adapter.PythonFileAdapter) Classifier {
	return &classifier{PythonFileAdapter: pythonAdapter}
}

func (c *classifier) IsCode(ctx context.Context, text string) (isCode bool) {
	if !parseableText(text) || c.PythonFileAdapter == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "recovered from parser panic", "panic", r)

			isCode = false
		}
	}()

	src := []byte(text)

	tree, err := c.Parse(ctx, src)
	if err != nil {
		slog.DebugContext(ctx, "classifier parse failed", "error", err)
		return false
	}
	defer tree.Close()

	return c.Valid(tree, src)
}

// parseableText rejects input CPython refuses before tokenizing: blank text,
// invalid UTF-8 and NUL bytes.
func parseableText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	return utf8.ValidString(text) && !strings.ContainsRune(text, 0)
}
