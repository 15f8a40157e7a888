// Package skeleton exposes pyskel's offline pytest skeleton synthesis as a
// library.
//
// All functions are safe for concurrent use and never fail: input that is
// not valid Python yields a module that skips with an explanation.
package skeleton

import (
	"context"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	"pyskel.dev/pkg/pyskel/internal/domain"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

// Signature is a detected top-level function signature.
type Signature = m.FunctionSignature

// Tier classifies a snippet for synthesis.
type Tier = m.Tier

// Tier values.
const (
	TierEmpty       = m.TierEmpty
	TierParseError  = m.TierParseError
	TierNoFunctions = m.TierNoFunctions
	TierFunctions   = m.TierFunctions
)

var (
	classifier  domain.Classifier
	analyzer    domain.Analyzer
	synthesizer domain.Synthesizer
)

func init() {
	pythonAdapter := adapter.NewLocalPythonFileAdapter()
	classifier = domain.NewClassifier(pythonAdapter)
	analyzer = domain.NewAnalyzer(pythonAdapter, classifier)
	synthesizer = domain.NewSynthesizer(analyzer)
}

// IsCode reports whether text parses as a Python 3 module.
func IsCode(ctx context.Context, text string) bool {
	return classifier.IsCode(ctx, text)
}

// Analyze returns the tier of code and its top-level function signatures in
// declaration order.
func Analyze(ctx context.Context, code string) (Tier, []Signature) {
	analysis := analyzer.Analyze(ctx, code)

	return analysis.Tier, analysis.Functions
}

// Synthesize returns a pytest module exercising the top-level functions of code.
// The result always parses as Python.
func Synthesize(ctx context.Context, code string) string {
	return synthesizer.Synthesize(ctx, code)
}
