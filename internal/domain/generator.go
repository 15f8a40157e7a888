package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

// ErrUnexpectedResponse is returned when the model answer holds no usable text.
var ErrUnexpectedResponse = errors.New("unexpected response format")

const (
	warnNotCode       = "model output was not valid Python; used fallback skeleton"
	warnOfflinePrefix = "model unavailable; used fallback skeleton: "
)

// GeneratorConfig tunes how the remote model is queried.
type GeneratorConfig struct {
	Model     string
	MaxTokens int
	// FallbackOnError synthesizes a skeleton instead of failing when the model
	// cannot be reached or answers with an unusable payload.
	FallbackOnError bool
}

// Generator produces a pytest module for a snippet, preferring the remote
// model and falling back to the Synthesizer.
type Generator interface {
	Generate(ctx context.Context, snippet m.Snippet) (m.GenerateResult, error)
	GenerateBatch(ctx context.Context, snippets []m.Snippet, threads int) ([]m.GenerateResult, error)
	Fallback(ctx context.Context, snippet m.Snippet) m.GenerateResult
}

type generator struct {
	chat        adapter.ChatAdapter
	classifier  Classifier
	synthesizer Synthesizer
	config      GeneratorConfig
}

// NewGenerator creates a Generator. A nil chat adapter means offline mode:
// every snippet goes straight to the synthesizer.
func NewGenerator(chat adapter.ChatAdapter, classifier Classifier, synthesizer Synthesizer, config GeneratorConfig) Generator {
	return &generator{
		chat:        chat,
		classifier:  classifier,
		synthesizer: synthesizer,
		config:      config,
	}
}

func (g *generator) Generate(ctx context.Context, snippet m.Snippet) (m.GenerateResult, error) {
	if g.chat == nil {
		return g.Fallback(ctx, snippet), nil
	}

	resp, err := g.chat.Complete(ctx, BuildChatRequest(g.config.Model, g.config.MaxTokens, snippet.Code))
	if err != nil {
		return g.upstreamFailure(ctx, snippet, err)
	}

	content, ok := ExtractAssistantText(resp)
	if !ok {
		return g.upstreamFailure(ctx, snippet, ErrUnexpectedResponse)
	}

	content = StripCodeFences(content)

	if !g.classifier.IsCode(ctx, content) {
		slog.InfoContext(ctx, "model output rejected by classifier", "path", snippet.Path)

		result := g.Fallback(ctx, snippet)
		result.Warning = warnNotCode

		return result, nil
	}

	testCode := Inject(EnsurePytestImport(content), NormalizeSnippet(snippet.Code))

	return m.GenerateResult{
		Snippet:  snippet,
		TestCode: testCode,
		Origin:   m.OriginModel,
	}, nil
}

func (g *generator) upstreamFailure(ctx context.Context, snippet m.Snippet, cause error) (m.GenerateResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return m.GenerateResult{Snippet: snippet}, fmt.Errorf("generate tests: %w", ctxErr)
	}

	if !g.config.FallbackOnError {
		slog.ErrorContext(ctx, "model request failed", "path", snippet.Path, "error", cause)
		return m.GenerateResult{Snippet: snippet}, fmt.Errorf("generate tests: %w", cause)
	}

	slog.WarnContext(ctx, "model request failed, using fallback", "path", snippet.Path, "error", cause)

	result := g.Fallback(ctx, snippet)
	result.Warning = warnOfflinePrefix + cause.Error()

	return result, nil
}

// Fallback synthesizes a skeleton without consulting the model.
func (g *generator) Fallback(ctx context.Context, snippet m.Snippet) m.GenerateResult {
	return m.GenerateResult{
		Snippet:  snippet,
		TestCode: g.synthesizer.Synthesize(ctx, snippet.Code),
		Origin:   m.OriginFallback,
	}
}

// GenerateBatch runs Generate for every snippet with at most threads workers.
// Results keep the input order.
func (g *generator) GenerateBatch(ctx context.Context, snippets []m.Snippet, threads int) ([]m.GenerateResult, error) {
	results := make([]m.GenerateResult, len(snippets))

	group, groupCtx := errgroup.WithContext(ctx)
	if threads > 0 {
		group.SetLimit(threads)
	}

	for i, snippet := range snippets {
		group.Go(func() error {
			result, err := g.Generate(groupCtx, snippet)
			if err != nil {
				return fmt.Errorf("%s: %w", displayPath(snippet.Path), err)
			}

			results[i] = result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}

	return results, nil
}

func displayPath(path m.Path) string {
	if path == "" {
		return "<stdin>"
	}

	return string(path)
}
