package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	"pyskel.dev/pkg/pyskel/internal/controller"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

const testFilePerm os.FileMode = 0o644

// ErrNoSources is returned when the given paths hold no Python sources.
var ErrNoSources = errors.New("no python sources found")

// SourceArgs names a single input: a file path, or Stdin when Path is empty.
type SourceArgs struct {
	Path  m.Path
	Stdin io.Reader
}

// GenerateArgs contains the arguments for generating test modules.
type GenerateArgs struct {
	Paths     []m.Path
	Stdin     io.Reader
	Recursive bool
	Stdout    bool
	Diff      bool
	Threads   int
}

// InspectArgs contains the arguments for reporting detected signatures.
type InspectArgs struct {
	SourceArgs
	Format controller.OutputFormat
}

// WatchArgs contains the arguments for regenerating a test module on change.
type WatchArgs struct {
	Path   m.Path
	Stdout bool
}

// Workflow drives the CLI use cases: it reads sources, runs the domain
// services and hands the results to the UI.
type Workflow interface {
	Generate(ctx context.Context, args GenerateArgs) error
	Classify(ctx context.Context, args SourceArgs) (bool, error)
	Inspect(ctx context.Context, args InspectArgs) error
	View(ctx context.Context, args SourceArgs) error
	Watch(ctx context.Context, args WatchArgs) error
}

type workflow struct {
	fs         adapter.SourceFSAdapter
	watcher    adapter.SourceWatcher
	ui         controller.UI
	generator  Generator
	analyzer   Analyzer
	classifier Classifier
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	watcher adapter.SourceWatcher,
	ui controller.UI,
	generator Generator,
	analyzer Analyzer,
	classifier Classifier,
) Workflow {
	return &workflow{
		fs:         fsAdapter,
		watcher:    watcher,
		ui:         ui,
		generator:  generator,
		analyzer:   analyzer,
		classifier: classifier,
	}
}

func (w *workflow) Generate(ctx context.Context, args GenerateArgs) error {
	snippets, err := w.collectSnippets(ctx, args)
	if err != nil {
		return fmt.Errorf("collect sources: %w", err)
	}

	slog.InfoContext(ctx, "generating test modules", "count", len(snippets), "threads", args.Threads)

	results, err := w.generator.GenerateBatch(ctx, snippets, args.Threads)
	if err != nil {
		return err
	}

	for _, result := range results {
		if err := w.emit(ctx, result, args.Stdout, args.Diff); err != nil {
			return err
		}
	}

	return nil
}

func (w *workflow) emit(ctx context.Context, result m.GenerateResult, stdout, diff bool) error {
	if stdout || result.Snippet.Path == "" {
		return w.ui.DisplayModule(ctx, result)
	}

	target := w.fs.TestFilePath(result.Snippet.Path)
	content := moduleFileContent(result.TestCode)

	if diff {
		existing, err := w.readOptional(ctx, target)
		if err != nil {
			return err
		}

		return w.ui.DisplayDiff(ctx, target, existing, content)
	}

	if err := w.fs.WriteFile(ctx, target, []byte(content), testFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	w.ui.DisplayWritten(ctx, target, result)

	return nil
}

func (w *workflow) readOptional(ctx context.Context, path m.Path) (string, error) {
	data, err := w.fs.ReadFile(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return string(data), nil
}

func (w *workflow) collectSnippets(ctx context.Context, args GenerateArgs) ([]m.Snippet, error) {
	if len(args.Paths) == 0 {
		snippet, err := w.readSource(ctx, SourceArgs{Stdin: args.Stdin})
		if err != nil {
			return nil, err
		}

		return []m.Snippet{snippet}, nil
	}

	var paths []m.Path

	for _, root := range args.Paths {
		info, err := w.fs.FileInfo(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			paths = append(paths, root)
			continue
		}

		found, err := w.pythonSources(ctx, root, args.Recursive)
		if err != nil {
			return nil, err
		}

		if len(found) == 0 {
			return nil, fmt.Errorf("%s: %w", root, ErrNoSources)
		}

		paths = append(paths, found...)
	}

	snippets := make([]m.Snippet, 0, len(paths))

	for _, path := range paths {
		snippet, err := w.readSource(ctx, SourceArgs{Path: path})
		if err != nil {
			return nil, err
		}

		snippets = append(snippets, snippet)
	}

	return snippets, nil
}

func (w *workflow) pythonSources(ctx context.Context, root m.Path, recursive bool) ([]m.Path, error) {
	var found []m.Path

	err := w.fs.Walk(ctx, root, recursive, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !adapter.IsPythonSource(path) || w.fs.IsTestFile(m.Path(path)) {
			return nil
		}

		found = append(found, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return found, nil
}

func (w *workflow) readSource(ctx context.Context, args SourceArgs) (m.Snippet, error) {
	if args.Path != "" {
		data, err := w.fs.ReadFile(ctx, args.Path)
		if err != nil {
			return m.Snippet{}, fmt.Errorf("read %s: %w", args.Path, err)
		}

		return m.Snippet{Path: args.Path, Code: string(data)}, nil
	}

	if args.Stdin == nil {
		return m.Snippet{}, errors.New("no input: pass a file or pipe code on stdin")
	}

	data, err := w.fs.ReadAll(ctx, args.Stdin)
	if err != nil {
		return m.Snippet{}, fmt.Errorf("read stdin: %w", err)
	}

	return m.Snippet{Code: string(data)}, nil
}

func (w *workflow) Classify(ctx context.Context, args SourceArgs) (bool, error) {
	snippet, err := w.readSource(ctx, args)
	if err != nil {
		return false, err
	}

	isCode := w.classifier.IsCode(ctx, snippet.Code)
	w.ui.DisplayClassification(ctx, snippet.Path, isCode)

	return isCode, nil
}

func (w *workflow) Inspect(ctx context.Context, args InspectArgs) error {
	snippet, err := w.readSource(ctx, args.SourceArgs)
	if err != nil {
		return err
	}

	return w.ui.DisplayAnalysis(ctx, snippet.Path, w.analyzer.Analyze(ctx, snippet.Code), args.Format)
}

func (w *workflow) View(ctx context.Context, args SourceArgs) error {
	snippet, err := w.readSource(ctx, args)
	if err != nil {
		return err
	}

	result := w.generator.Fallback(ctx, snippet)

	return w.ui.ViewModule(ctx, "test skeleton: "+displayPath(snippet.Path), result.TestCode)
}

func (w *workflow) Watch(ctx context.Context, args WatchArgs) error {
	if args.Path == "" {
		return errors.New("watch needs a file path")
	}

	regenerate := func(ctx context.Context) {
		if err := w.regenerate(ctx, args); err != nil {
			slog.ErrorContext(ctx, "regenerate failed", "path", args.Path, "error", err)
		}
	}

	regenerate(ctx)

	if err := ctx.Err(); err != nil {
		return nil
	}

	return w.watcher.Watch(ctx, args.Path, regenerate)
}

func (w *workflow) regenerate(ctx context.Context, args WatchArgs) error {
	snippet, err := w.readSource(ctx, SourceArgs{Path: args.Path})
	if err != nil {
		return err
	}

	result, err := w.generator.Generate(ctx, snippet)
	if err != nil {
		return err
	}

	return w.emit(ctx, result, args.Stdout, false)
}

func moduleFileContent(testCode string) string {
	if strings.HasSuffix(testCode, "\n") {
		return testCode
	}

	return testCode + "\n"
}
