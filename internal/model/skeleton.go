package model

import "strings"

// TestCaseKind identifies the shape of a generated test.
type TestCaseKind int

const (
	// ExistsCheck asserts that a function is present in the namespace and callable.
	ExistsCheck TestCaseKind = iota
	// SmokeCall invokes a function without arguments.
	SmokeCall
	// Placeholder is skipped until a human supplies real arguments.
	Placeholder
	// Degenerate is the single skip emitted for empty, unparseable or function-less code.
	Degenerate
)

func (k TestCaseKind) String() string {
	switch k {
	case ExistsCheck:
		return "exists"
	case SmokeCall:
		return "smoke"
	case Placeholder:
		return "placeholder"
	case Degenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// TestCase is a single generated pytest function.
type TestCase struct {
	Kind     TestCaseKind
	Name     string // pytest function name, e.g. test_add_exists_and_callable
	Function string // empty for degenerate cases
	Text     string
}

// SkeletonModule is a generated pytest module: a fixed preamble plus test cases.
type SkeletonModule struct {
	Tier     Tier
	Preamble string
	Cases    []TestCase
}

// String renders the module text.
func (s SkeletonModule) String() string {
	var b strings.Builder

	b.WriteString(s.Preamble)

	for _, tc := range s.Cases {
		b.WriteString(tc.Text)
	}

	return b.String()
}
