package model

// Origin tells where the test code of a GenerateResult came from.
type Origin string

const (
	// OriginModel marks code produced by the remote chat model.
	OriginModel Origin = "model"
	// OriginFallback marks code produced by the skeleton synthesizer.
	OriginFallback Origin = "fallback"
)

// GenerateResult is the outcome of generating a test module for one snippet.
type GenerateResult struct {
	Snippet  Snippet
	TestCode string
	Origin   Origin
	// Warning explains why the fallback was used, when it was.
	Warning string
}
