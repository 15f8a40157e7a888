package adapter

import (
	"bytes"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Python-2-only statements the grammar accepts but CPython 3 rejects.
var legacyStatements = map[string]struct{}{
	"print_statement": {},
	"exec_statement":  {},
}

// Clauses that open a logical line of their own inside a compound statement.
var clauseNodes = map[string]struct{}{
	"elif_clause":         {},
	"else_clause":         {},
	"except_clause":       {},
	"except_group_clause": {},
	"finally_clause":      {},
	"case_clause":         {},
	"decorator":           {},
}

type parameterKind int

const (
	paramPlain parameterKind = iota
	paramDefault
	paramStar
	paramKwargs
	paramSlash
	paramIgnored
)

// rejectedNode matches constructs the grammar parses cleanly although CPython
// raises SyntaxError for them.
func rejectedNode(node *sitter.Node, src []byte) bool {
	nodeType := node.Type()
	if _, legacy := legacyStatements[nodeType]; legacy {
		return true
	}

	switch nodeType {
	case "tuple_pattern":
		return tupleParameter(node)
	case "block":
		return emptyBlock(node)
	case "function_definition", "class_definition":
		return node.ChildByFieldName("body") == nil
	case "parameters", "lambda_parameters":
		return !validParameterOrder(node)
	case "argument_list":
		return !validArgumentOrder(node)
	case "delete_statement":
		return deletesCall(node)
	case "named_expression":
		parent := node.Parent()
		return parent != nil && parent.Type() == "expression_statement"
	case "integer":
		return invalidInteger(node.Content(src))
	default:
		return false
	}
}

// tupleParameter matches Python 2 tuple parameters such as `def f((a, b)):`.
func tupleParameter(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}

	switch parent.Type() {
	case "parameters", "lambda_parameters", "default_parameter":
		return true
	default:
		return false
	}
}

// emptyBlock matches a suite holding nothing but comments, which is what a
// header like `def f():` cut off at end of input parses to.
func emptyBlock(block *sitter.Node) bool {
	if block.StartByte() == block.EndByte() {
		return true
	}

	for i := 0; i < int(block.NamedChildCount()); i++ {
		if block.NamedChild(i).Type() != "comment" {
			return false
		}
	}

	return true
}

func classifyParameter(param *sitter.Node) parameterKind {
	switch param.Type() {
	case "identifier", "tuple_pattern":
		return paramPlain
	case "default_parameter", "typed_default_parameter":
		return paramDefault
	case "list_splat_pattern", "keyword_separator":
		return paramStar
	case "dictionary_splat_pattern":
		return paramKwargs
	case "positional_separator":
		return paramSlash
	case "typed_parameter":
		inner := param.NamedChild(0)
		if inner == nil {
			return paramIgnored
		}

		return classifyParameter(inner)
	default:
		return paramIgnored
	}
}

// validParameterOrder enforces the CPython parameter grammar:
// [positional-only /] plain, defaults [*args | *] keyword-only [**kwargs].
func validParameterOrder(params *sitter.Node) bool {
	var (
		seen        int
		seenDefault bool
		starred     bool
		bareStar    bool
		slashed     bool
		kwargs      bool
	)

	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)

		kind := classifyParameter(param)
		if kind == paramIgnored {
			continue
		}

		if kwargs {
			return false
		}

		switch kind {
		case paramPlain:
			if seenDefault && !starred {
				return false
			}

			bareStar = false

		case paramDefault:
			if !starred {
				seenDefault = true
			}

			bareStar = false

		case paramStar:
			if starred {
				return false
			}

			starred = true
			bareStar = param.Type() == "keyword_separator"

		case paramKwargs:
			if bareStar {
				return false
			}

			kwargs = true

		case paramSlash:
			if seen == 0 || slashed || starred {
				return false
			}

			slashed = true
		}

		seen++
	}

	return !bareStar
}

// validArgumentOrder rejects positional arguments after keyword arguments and
// any positional or `*` argument after `**`.
func validArgumentOrder(args *sitter.Node) bool {
	keyword, doubleSplat := false, false

	for i := 0; i < int(args.NamedChildCount()); i++ {
		switch args.NamedChild(i).Type() {
		case "comment":
		case "keyword_argument":
			keyword = true
		case "dictionary_splat":
			doubleSplat = true
		case "list_splat":
			if doubleSplat {
				return false
			}
		default:
			if keyword || doubleSplat {
				return false
			}
		}
	}

	return true
}

func deletesCall(stmt *sitter.Node) bool {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		target := stmt.NamedChild(i)

		if target.Type() == "call" {
			return true
		}

		if target.Type() != "expression_list" {
			continue
		}

		for j := 0; j < int(target.NamedChildCount()); j++ {
			if target.NamedChild(j).Type() == "call" {
				return true
			}
		}
	}

	return false
}

// invalidInteger matches Python 2 literals: long suffixes and decimal
// integers with leading zeros such as 0777.
func invalidInteger(literal string) bool {
	literal = strings.ReplaceAll(literal, "_", "")
	if literal == "" {
		return false
	}

	switch literal[len(literal)-1] {
	case 'l', 'L':
		return true
	case 'j', 'J':
		return false
	}

	if len(literal) < 2 || literal[0] != '0' {
		return false
	}

	switch literal[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}

	return strings.Trim(literal, "0") != ""
}

type indentLevel struct {
	col int // tabs to multiples of 8
	alt int // tabs count as one column
}

func measureIndent(line []byte) indentLevel {
	var level indentLevel

	for _, c := range line {
		switch c {
		case ' ':
			level.col++
			level.alt++
		case '\t':
			level.col = (level.col/8 + 1) * 8
			level.alt++
		case '\f':
			level = indentLevel{}
		default:
			return level
		}
	}

	return level
}

// consistentIndentation replays the tokenizer's indent stack over every
// logical line start, rejecting tab/space mixes whose meaning depends on the
// tab size and dedents to a column no enclosing block uses.
func consistentIndentation(root *sitter.Node, src []byte) bool {
	lines := bytes.Split(src, []byte("\n"))
	stack := []indentLevel{{}}

	for _, row := range logicalLineRows(root, lines) {
		level := measureIndent(lines[row])
		top := stack[len(stack)-1]

		switch {
		case level.col == top.col:
			if level.alt != top.alt {
				return false
			}

		case level.col > top.col:
			if level.alt <= top.alt {
				return false
			}

			stack = append(stack, level)

		default:
			for len(stack) > 1 && level.col < stack[len(stack)-1].col {
				stack = stack[:len(stack)-1]
			}

			if level != stack[len(stack)-1] {
				return false
			}
		}
	}

	return true
}

// logicalLineRows returns the sorted rows on which a statement or clause
// begins as the first token of its line.
func logicalLineRows(root *sitter.Node, lines [][]byte) []int {
	seen := make(map[int]struct{})

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	for {
		node := cursor.CurrentNode()

		if startsLogicalLine(node) {
			row := int(node.StartPoint().Row)
			if row < len(lines) && leadingWhitespace(lines[row]) == int(node.StartPoint().Column) {
				seen[row] = struct{}{}
			}
		}

		if cursor.GoToFirstChild() || cursor.GoToNextSibling() {
			continue
		}

		for {
			if !cursor.GoToParent() {
				rows := make([]int, 0, len(seen))
				for row := range seen {
					rows = append(rows, row)
				}

				slices.Sort(rows)

				return rows
			}

			if cursor.GoToNextSibling() {
				break
			}
		}
	}
}

func startsLogicalLine(node *sitter.Node) bool {
	if !node.IsNamed() || node.Type() == "comment" {
		return false
	}

	if _, clause := clauseNodes[node.Type()]; clause {
		return true
	}

	parent := node.Parent()
	if parent == nil {
		return false
	}

	switch parent.Type() {
	case "module", "block":
		return true
	case "decorated_definition":
		return node.Type() == "function_definition" || node.Type() == "class_definition"
	default:
		return false
	}
}

func leadingWhitespace(line []byte) int {
	return len(line) - len(bytes.TrimLeft(line, " \t\f"))
}
