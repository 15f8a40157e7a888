package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/goleak"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClassifier() Classifier {
	return NewClassifier(adapter.NewLocalPythonFileAdapter())
}

func newTestSynthesizer() Synthesizer {
	pythonAdapter := adapter.NewLocalPythonFileAdapter()

	return NewSynthesizer(NewAnalyzer(pythonAdapter, NewClassifier(pythonAdapter)))
}

func readExample(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "examples", name, "snippet.py"))
	if err != nil {
		t.Fatalf("read example %s: %v", name, err)
	}

	return string(data)
}

// panickingPythonAdapter simulates a misbehaving parser binding.
type panickingPythonAdapter struct{}

func (panickingPythonAdapter) Parse(context.Context, []byte) (*sitter.Tree, error) {
	panic("parser exploded")
}

func (panickingPythonAdapter) Valid(*sitter.Tree, []byte) bool { return true }

func (panickingPythonAdapter) ExtractFunctions(*sitter.Tree, []byte) []m.FunctionSignature {
	return nil
}

// stubClassifier answers a fixed verdict.
type stubClassifier bool

func (s stubClassifier) IsCode(context.Context, string) bool { return bool(s) }
