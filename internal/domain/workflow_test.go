package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	"pyskel.dev/pkg/pyskel/internal/controller"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

// recordingUI captures what the workflow hands to the UI.
type recordingUI struct {
	mu              sync.Mutex
	modules         []m.GenerateResult
	written         []m.Path
	diffs           map[m.Path][2]string
	classifications map[m.Path]bool
	analyses        []m.Analysis
	formats         []controller.OutputFormat
	viewed          []string
}

func newRecordingUI() *recordingUI {
	return &recordingUI{
		diffs:           map[m.Path][2]string{},
		classifications: map[m.Path]bool{},
	}
}

func (r *recordingUI) DisplayModule(_ context.Context, result m.GenerateResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, result)

	return nil
}

func (r *recordingUI) DisplayWritten(_ context.Context, target m.Path, _ m.GenerateResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, target)
}

func (r *recordingUI) DisplayDiff(_ context.Context, target m.Path, existing, generated string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diffs[target] = [2]string{existing, generated}

	return nil
}

func (r *recordingUI) DisplayClassification(_ context.Context, path m.Path, isCode bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classifications[path] = isCode
}

func (r *recordingUI) DisplayAnalysis(_ context.Context, _ m.Path, analysis m.Analysis, format controller.OutputFormat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, analysis)
	r.formats = append(r.formats, format)

	return nil
}

func (r *recordingUI) ViewModule(_ context.Context, title string, module string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewed = append(r.viewed, title, module)

	return nil
}

// triggerWatcher fires onChange a fixed number of times, then returns.
type triggerWatcher struct {
	fires int
	path  m.Path
}

func (w *triggerWatcher) Watch(ctx context.Context, path m.Path, onChange func(context.Context)) error {
	w.path = path
	for range w.fires {
		onChange(ctx)
	}

	return nil
}

func newTestWorkflow(ui controller.UI, watcher adapter.SourceWatcher) Workflow {
	pythonAdapter := adapter.NewLocalPythonFileAdapter()
	classifier := NewClassifier(pythonAdapter)
	analyzer := NewAnalyzer(pythonAdapter, classifier)
	generator := NewGenerator(nil, classifier, NewSynthesizer(analyzer), GeneratorConfig{})

	return NewWorkflow(adapter.NewLocalSourceFSAdapter(), watcher, ui, generator, analyzer, classifier)
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWorkflow_GenerateWritesTestModules(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "calc.py"), "def add(x, y):\n    return x + y\n")
	writeSource(t, filepath.Join(dir, "pkg", "util.py"), "def a():\n    return 1\n")
	writeSource(t, filepath.Join(dir, "test_existing.py"), "def test_x(): pass\n")
	writeSource(t, filepath.Join(dir, "notes.txt"), "not python")

	ui := newRecordingUI()
	err := newTestWorkflow(ui, nil).Generate(context.Background(), GenerateArgs{
		Paths:     []m.Path{m.Path(dir)},
		Recursive: true,
		Threads:   2,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []m.Path{
		m.Path(filepath.Join(dir, "test_calc.py")),
		m.Path(filepath.Join(dir, "pkg", "test_util.py")),
	}, ui.written)

	data, err := os.ReadFile(filepath.Join(dir, "test_calc.py"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "import pytest\n"))
	assert.Contains(t, string(data), "def test_add_smoke_placeholders():")
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	_, err = os.Stat(filepath.Join(dir, "test_test_existing.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestWorkflow_GenerateNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "calc.py"), "x = 1\n")
	writeSource(t, filepath.Join(dir, "pkg", "util.py"), "y = 2\n")

	ui := newRecordingUI()
	require.NoError(t, newTestWorkflow(ui, nil).Generate(context.Background(), GenerateArgs{Paths: []m.Path{m.Path(dir)}}))

	assert.Equal(t, []m.Path{m.Path(filepath.Join(dir, "test_calc.py"))}, ui.written)
}

func TestWorkflow_GenerateStdout(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "calc.py")
	writeSource(t, source, "def a(): return 1")

	ui := newRecordingUI()
	require.NoError(t, newTestWorkflow(ui, nil).Generate(context.Background(), GenerateArgs{
		Paths:  []m.Path{m.Path(source)},
		Stdout: true,
	}))

	require.Len(t, ui.modules, 1)
	assert.Equal(t, expectedNoArgModule, ui.modules[0].TestCode)
	assert.Empty(t, ui.written)

	_, err := os.Stat(filepath.Join(dir, "test_calc.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestWorkflow_GenerateFromStdin(t *testing.T) {
	ui := newRecordingUI()
	require.NoError(t, newTestWorkflow(ui, nil).Generate(context.Background(), GenerateArgs{
		Stdin: strings.NewReader("def a(): return 1"),
	}))

	require.Len(t, ui.modules, 1)
	assert.Equal(t, m.Path(""), ui.modules[0].Snippet.Path)
	assert.Equal(t, expectedNoArgModule, ui.modules[0].TestCode)
}

func TestWorkflow_GenerateDiff(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "calc.py")
	target := filepath.Join(dir, "test_calc.py")
	writeSource(t, source, "def a(): return 1")
	writeSource(t, target, "import pytest\n")

	ui := newRecordingUI()
	require.NoError(t, newTestWorkflow(ui, nil).Generate(context.Background(), GenerateArgs{
		Paths: []m.Path{m.Path(source)},
		Diff:  true,
	}))

	diff, ok := ui.diffs[m.Path(target)]
	require.True(t, ok)
	assert.Equal(t, "import pytest\n", diff[0])
	assert.Equal(t, expectedNoArgModule, diff[1])

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "import pytest\n", string(data), "diff mode must not overwrite")
}

func TestWorkflow_GenerateDiffWithoutExistingFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "calc.py")
	writeSource(t, source, "x = 1")

	ui := newRecordingUI()
	require.NoError(t, newTestWorkflow(ui, nil).Generate(context.Background(), GenerateArgs{
		Paths: []m.Path{m.Path(source)},
		Diff:  true,
	}))

	assert.Empty(t, ui.diffs[m.Path(filepath.Join(dir, "test_calc.py"))][0])
}

func TestWorkflow_GenerateErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		err := newTestWorkflow(newRecordingUI(), nil).Generate(context.Background(), GenerateArgs{
			Paths: []m.Path{m.Path(filepath.Join(t.TempDir(), "nope.py"))},
		})
		assert.Error(t, err)
	})

	t.Run("directory without sources", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, filepath.Join(dir, "README.md"), "# hi")

		err := newTestWorkflow(newRecordingUI(), nil).Generate(context.Background(), GenerateArgs{
			Paths: []m.Path{m.Path(dir)},
		})
		assert.ErrorIs(t, err, ErrNoSources)
	})

	t.Run("no stdin", func(t *testing.T) {
		err := newTestWorkflow(newRecordingUI(), nil).Generate(context.Background(), GenerateArgs{})
		assert.Error(t, err)
	})
}

func TestWorkflow_Classify(t *testing.T) {
	ui := newRecordingUI()
	wf := newTestWorkflow(ui, nil)

	isCode, err := wf.Classify(context.Background(), SourceArgs{Stdin: strings.NewReader("x = 1")})
	require.NoError(t, err)
	assert.True(t, isCode)

	broken := filepath.Join("..", "..", "examples", "broken", "snippet.py")
	isCode, err = wf.Classify(context.Background(), SourceArgs{Path: m.Path(broken)})
	require.NoError(t, err)
	assert.False(t, isCode)

	assert.Equal(t, map[m.Path]bool{"": true, m.Path(broken): false}, ui.classifications)
}

func TestWorkflow_Inspect(t *testing.T) {
	ui := newRecordingUI()

	err := newTestWorkflow(ui, nil).Inspect(context.Background(), InspectArgs{
		SourceArgs: SourceArgs{Path: m.Path(filepath.Join("..", "..", "examples", "args", "snippet.py"))},
		Format:     controller.FormatYAML,
	})
	require.NoError(t, err)

	require.Len(t, ui.analyses, 1)
	assert.Equal(t, m.TierFunctions, ui.analyses[0].Tier)
	assert.Len(t, ui.analyses[0].Functions, 2)
	assert.Equal(t, []controller.OutputFormat{controller.FormatYAML}, ui.formats)
}

func TestWorkflow_View(t *testing.T) {
	ui := newRecordingUI()

	require.NoError(t, newTestWorkflow(ui, nil).View(context.Background(), SourceArgs{Stdin: strings.NewReader("def a(): return 1")}))

	assert.Equal(t, []string{"test skeleton: <stdin>", expectedNoArgModule}, ui.viewed)
}

func TestWorkflow_Watch(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "calc.py")
	writeSource(t, source, "def a(): return 1")

	ui := newRecordingUI()
	watcher := &triggerWatcher{fires: 2}

	require.NoError(t, newTestWorkflow(ui, watcher).Watch(context.Background(), WatchArgs{Path: m.Path(source)}))

	assert.Equal(t, m.Path(source), watcher.path)
	assert.Len(t, ui.written, 3)

	data, err := os.ReadFile(filepath.Join(dir, "test_calc.py"))
	require.NoError(t, err)
	assert.Equal(t, expectedNoArgModule, string(data))
}

func TestWorkflow_WatchNeedsPath(t *testing.T) {
	assert.Error(t, newTestWorkflow(newRecordingUI(), &triggerWatcher{}).Watch(context.Background(), WatchArgs{}))
}
