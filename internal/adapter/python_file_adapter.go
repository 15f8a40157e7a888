package adapter

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"golang.org/x/text/unicode/norm"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

// ErrNilTree is returned when the parser produced no syntax tree.
var ErrNilTree = errors.New("parser returned no tree")

var implicitReceivers = map[string]struct{}{
	"self": {},
	"cls":  {},
}

// PythonFileAdapter encapsulates Python-specific parsing so the domain layer can
// reason about snippets without depending on the tree-sitter bindings directly.
type PythonFileAdapter interface {
	// Parse builds a syntax tree for src. The caller owns the tree and must Close it.
	Parse(ctx context.Context, src []byte) (*sitter.Tree, error)

	// Valid reports whether the tree parsed from src is free of syntax errors.
	Valid(tree *sitter.Tree, src []byte) bool

	// ExtractFunctions returns the top-level function definitions in declaration order.
	ExtractFunctions(tree *sitter.Tree, src []byte) []m.FunctionSignature
}

// LocalPythonFileAdapter provides a concrete PythonFileAdapter backed by tree-sitter.
type LocalPythonFileAdapter struct{}

// NewLocalPythonFileAdapter constructs a LocalPythonFileAdapter.
func NewLocalPythonFileAdapter() *LocalPythonFileAdapter {
	return &LocalPythonFileAdapter{}
}

// Parse builds a syntax tree with a parser private to this call; tree-sitter
// parsers must not be shared between goroutines.
func (a *LocalPythonFileAdapter) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}

	if tree == nil {
		return nil, ErrNilTree
	}

	return tree, nil
}

// Valid walks the whole tree once, rejecting ERROR and MISSING nodes, empty
// suites, legacy statements and orderings CPython refuses, then checks the
// indentation of every logical line.
func (a *LocalPythonFileAdapter) Valid(tree *sitter.Tree, src []byte) bool {
	if tree == nil {
		return false
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return false
	}

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	for {
		if rejectedNode(cursor.CurrentNode(), src) {
			return false
		}

		if cursor.GoToFirstChild() || cursor.GoToNextSibling() {
			continue
		}

		for {
			if !cursor.GoToParent() {
				return consistentIndentation(root, src)
			}

			if cursor.GoToNextSibling() {
				break
			}
		}
	}
}

// ExtractFunctions inspects the module's direct children only. Decorated
// functions count; async functions and class methods do not. Names are NFKC
// normalized, matching the keys CPython stores in the namespace.
func (a *LocalPythonFileAdapter) ExtractFunctions(tree *sitter.Tree, src []byte) []m.FunctionSignature {
	if tree == nil {
		return nil
	}

	root := tree.RootNode()
	functions := make([]m.FunctionSignature, 0)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)

		if node.Type() == "decorated_definition" {
			node = node.ChildByFieldName("definition")
			if node == nil {
				continue
			}
		}

		if node.Type() != "function_definition" || isAsync(node) {
			continue
		}

		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		signature := m.FunctionSignature{
			Name: norm.NFKC.String(nameNode.Content(src)),
			Line: int(node.StartPoint().Row) + 1,
		}

		if params := node.ChildByFieldName("parameters"); params != nil {
			collectParameters(params, src, &signature)
		}

		functions = append(functions, signature)
	}

	return functions
}

func isAsync(fn *sitter.Node) bool {
	first := fn.Child(0)
	return first != nil && first.Type() == "async"
}

// collectParameters fills the parameter-related fields of signature from a
// `parameters` node. Everything after `*` or `*args` is keyword-only.
func collectParameters(params *sitter.Node, src []byte, signature *m.FunctionSignature) {
	keywordOnly := false

	addParam := func(name string, hasDefault bool) {
		if keywordOnly {
			signature.KeywordOnlyParams = append(signature.KeywordOnlyParams, name)
			return
		}

		if hasDefault {
			signature.NumDefaults++
		}

		if _, implicit := implicitReceivers[name]; implicit {
			return
		}

		signature.PositionalParams = append(signature.PositionalParams, name)
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)

		switch param.Type() {
		case "identifier":
			addParam(param.Content(src), false)

		case "default_parameter", "typed_default_parameter":
			if name := param.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				addParam(name.Content(src), true)
			}

		case "typed_parameter":
			inner := param.NamedChild(0)
			if inner == nil {
				continue
			}

			switch inner.Type() {
			case "list_splat_pattern":
				signature.HasVarArgs = true
				keywordOnly = true
			case "dictionary_splat_pattern":
				signature.HasVarKwargs = true
			case "identifier":
				addParam(inner.Content(src), false)
			}

		case "list_splat_pattern":
			signature.HasVarArgs = true
			keywordOnly = true

		case "dictionary_splat_pattern":
			signature.HasVarKwargs = true

		case "keyword_separator":
			keywordOnly = true
		}
	}
}
