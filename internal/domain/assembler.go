package domain

import (
	"strings"
)

// EnsurePytestImport makes `import pytest` the first line of content.
func EnsurePytestImport(content string) string {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if startsWithPytestImport(trimmed) {
		return trimmed
	}

	return pytestImport + "\n\n" + trimmed
}

// Inject splices the namespace-loading block for code right after the leading
// `import pytest` line. Content without that line is returned trimmed.
// Only model-generated modules need this; synthesized ones load code themselves.
func Inject(content, code string) string {
	final := strings.TrimSpace(content)
	if !startsWithPytestImport(final) {
		return final
	}

	first, rest, _ := strings.Cut(final, "\n")

	return strings.TrimSpace(first + "\n" + BuildInjection(code) + rest)
}

func startsWithPytestImport(content string) bool {
	first, _, _ := strings.Cut(content, "\n")
	first = strings.TrimRight(first, " \t\r")

	if first == pytestImport {
		return true
	}

	rest, ok := strings.CutPrefix(first, pytestImport)

	return ok && (strings.HasPrefix(rest, ",") || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "#"))
}
