package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const pytestImport = "import pytest"

// loadBlock executes CODE into ns and keeps any failure in USER_CODE_EXEC_ERROR
// so every generated test can skip instead of erroring at import time.
const loadBlock = `try:
    exec(CODE, ns)
except Exception as e:
    USER_CODE_EXEC_ERROR = e
else:
    USER_CODE_EXEC_ERROR = None
`

// BuildPreamble renders the header shared by every synthesized module.
func BuildPreamble(code string) string {
	var b strings.Builder

	b.WriteString(pytestImport + "\n\n")
	b.WriteString("ns = {}\n")
	b.WriteString("CODE = " + PythonStringLiteral(code) + "\n")
	b.WriteString(loadBlock)

	return b.String()
}

// BuildInjection renders the namespace-loading block spliced into model
// generated modules. Its names become module globals so model tests can call
// the snippet's functions directly.
func BuildInjection(code string) string {
	var b strings.Builder

	b.WriteString("ns = {}\n")
	b.WriteString("CODE = " + PythonStringLiteral(code) + "\n")
	b.WriteString("exec(CODE, ns)\n")
	b.WriteString("globals().update(ns)\n")

	return b.String()
}

// PythonStringLiteral returns a Python expression evaluating to exactly s.
// Raw triple-quoted forms are preferred for readability; anything that could
// terminate or alter them falls back to an escaped double-quoted literal.
func PythonStringLiteral(s string) string {
	for _, delim := range []string{`"""`, `'''`} {
		if rawLiteralSafe(s, delim) {
			return "r" + delim + s + delim
		}
	}

	return strconv.Quote(s)
}

func rawLiteralSafe(s, delim string) bool {
	if !utf8.ValidString(s) || strings.Contains(s, delim) {
		return false
	}

	// A trailing quote would merge with the closing delimiter.
	if strings.HasSuffix(s, delim[:1]) {
		return false
	}

	// An odd run of trailing backslashes escapes the closing delimiter.
	if trailing := len(s) - len(strings.TrimRight(s, `\`)); trailing%2 == 1 {
		return false
	}

	for _, r := range s {
		if r == '\n' || r == '\t' {
			continue
		}

		if unicode.IsControl(r) || r == '\ufeff' {
			return false
		}
	}

	return true
}
