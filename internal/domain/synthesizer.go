package domain

import (
	"context"
	"log/slog"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

// Synthesizer builds deterministic pytest skeletons for arbitrary snippets.
type Synthesizer interface {
	// Synthesize always returns a syntactically valid pytest module.
	Synthesize(ctx context.Context, snippet string) string
	// Build returns the structured module Synthesize renders.
	Build(ctx context.Context, snippet string) m.SkeletonModule
}

type synthesizer struct {
	analyzer Analyzer
}

// NewSynthesizer creates a Synthesizer on top of the given Analyzer.
func NewSynthesizer(analyzer Analyzer) Synthesizer {
	return &synthesizer{analyzer: analyzer}
}

func (s *synthesizer) Synthesize(ctx context.Context, snippet string) string {
	return s.Build(ctx, snippet).String()
}

func (s *synthesizer) Build(ctx context.Context, snippet string) (module m.SkeletonModule) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "recovered from synthesis panic", "panic", r)

			module = parseErrorModule(NormalizeSnippet(snippet))
		}
	}()

	analysis := s.analyzer.Analyze(ctx, snippet)

	module = m.SkeletonModule{
		Tier:     analysis.Tier,
		Preamble: BuildPreamble(analysis.Code),
	}

	switch analysis.Tier {
	case m.TierEmpty:
		module.Cases = []m.TestCase{noCodeCase()}
	case m.TierNoFunctions:
		module.Cases = []m.TestCase{noFunctionsCase()}
	case m.TierFunctions:
		module.Cases = functionCases(analysis.Functions)
	default:
		module.Tier = m.TierParseError
		module.Cases = []m.TestCase{parseErrorCase()}
	}

	slog.DebugContext(ctx, "synthesized skeleton", "tier", module.Tier, "tests", len(module.Cases))

	return module
}

// functionCases emits an existence test and a behavior test per function, in
// declaration order. Duplicate names are kept.
func functionCases(functions []m.FunctionSignature) []m.TestCase {
	cases := make([]m.TestCase, 0, 2*len(functions))

	for _, fn := range functions {
		cases = append(cases, existsCase(fn))

		if fn.AutoCallable() {
			cases = append(cases, smokeCase(fn))
		} else {
			cases = append(cases, placeholderCase(fn))
		}
	}

	return cases
}

func parseErrorModule(code string) m.SkeletonModule {
	return m.SkeletonModule{
		Tier:     m.TierParseError,
		Preamble: BuildPreamble(code),
		Cases:    []m.TestCase{parseErrorCase()},
	}
}
