package domain

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

// Analyzer derives the structural view of a snippet: its generation tier and
// its top-level function signatures.
type Analyzer interface {
	Analyze(ctx context.Context, snippet string) m.Analysis
}

type analyzer struct {
	adapter.PythonFileAdapter
	classifier Classifier
}

// NewAnalyzer creates an Analyzer. The classifier gates how far analysis goes.
func NewAnalyzer(pythonAdapter adapter.PythonFileAdapter, classifier Classifier) Analyzer {
	return &analyzer{
		PythonFileAdapter: pythonAdapter,
		classifier:        classifier,
	}
}

func (a *analyzer) Analyze(ctx context.Context, snippet string) (analysis m.Analysis) {
	analysis = m.Analysis{Code: NormalizeSnippet(snippet)}

	if strings.TrimSpace(analysis.Code) == "" {
		analysis.Tier = m.TierEmpty
		return analysis
	}

	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "recovered from analysis panic", "panic", r)

			analysis.Tier = m.TierParseError
			analysis.Functions = nil
		}
	}()

	if a.classifier == nil || !a.classifier.IsCode(ctx, analysis.Code) {
		analysis.Tier = m.TierParseError
		return analysis
	}

	src := []byte(analysis.Code)

	tree, err := a.Parse(ctx, src)
	if err != nil {
		slog.DebugContext(ctx, "analysis parse failed", "error", err)

		analysis.Tier = m.TierParseError

		return analysis
	}
	defer tree.Close()

	analysis.Functions = a.ExtractFunctions(tree, src)
	if len(analysis.Functions) == 0 {
		analysis.Tier = m.TierNoFunctions
		return analysis
	}

	analysis.Tier = m.TierFunctions

	slog.DebugContext(ctx, "analyzed snippet", "functions", len(analysis.Functions))

	return analysis
}

// NormalizeSnippet converts line endings to LF, drops blank lines around the
// code and trailing whitespace. Indentation of the first code line is kept.
func NormalizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, "\r\n", "\n")
	snippet = strings.ReplaceAll(snippet, "\r", "\n")

	lines := strings.Split(snippet, "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	return strings.TrimRightFunc(strings.Join(lines[start:], "\n"), unicode.IsSpace)
}
