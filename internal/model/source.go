// Package model defines the data structures for test skeleton generation.
package model

// Path represents a file system path.
type Path string

// Snippet is an untrusted piece of Python source submitted for test generation.
type Snippet struct {
	Path Path // empty when read from stdin or an HTTP request
	Code string
}

// Tier is the generation strategy selected for a snippet, most specific last.
type Tier int

const (
	// TierEmpty is used when no code was provided.
	TierEmpty Tier = iota + 1
	// TierParseError is used when the snippet is not valid Python.
	TierParseError
	// TierNoFunctions is used when the snippet parses but declares no top-level functions.
	TierNoFunctions
	// TierFunctions is used when at least one top-level function was found.
	TierFunctions
)

func (t Tier) String() string {
	switch t {
	case TierEmpty:
		return "empty"
	case TierParseError:
		return "parse-error"
	case TierNoFunctions:
		return "no-functions"
	case TierFunctions:
		return "functions"
	default:
		return "unknown"
	}
}

// Analysis is the structural view of a snippet used to drive generation.
type Analysis struct {
	// Code is the normalized snippet text, embedded verbatim in generated modules.
	Code      string
	Tier      Tier
	Functions []FunctionSignature
}
