// Package adapter contains infrastructure adapters for the pyskel CLI and server.
package adapter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

const (
	pythonExt      = ".py"
	testFilePrefix = "test_"
	testFileSuffix = "_test.py"
)

// SourceFSAdapter abstracts filesystem-specific operations the CLI relies on
// when reading snippets and writing generated modules. It hides direct `os`
// access so command logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Walk traverses root. When recursive is false only the root directory is visited.
	Walk(ctx context.Context, root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// ReadAll drains r, typically stdin.
	ReadAll(ctx context.Context, r io.Reader) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// TestFilePath returns the pytest module path for a Python source file
	// (dir/foo.py -> dir/test_foo.py).
	TestFilePath(sourcePath m.Path) m.Path

	// IsTestFile reports whether path already looks like a pytest module.
	IsTestFile(path m.Path) bool
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the commands.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(ctx context.Context, root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && path != rootStr {
			base := filepath.Base(path)
			if !recursive || base == ".git" || base == "__pycache__" || base == ".venv" || base == "node_modules" {
				return filepath.SkipDir
			}
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// ReadAll drains r.
func (a *LocalSourceFSAdapter) ReadAll(ctx context.Context, r io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// TestFilePath derives the companion test_*.py path for a source file.
func (a *LocalSourceFSAdapter) TestFilePath(sourcePath m.Path) m.Path {
	source := string(sourcePath)
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	return m.Path(filepath.Join(filepath.Dir(source), testFilePrefix+base+pythonExt))
}

// IsTestFile matches pytest's default discovery patterns.
func (a *LocalSourceFSAdapter) IsTestFile(path m.Path) bool {
	base := filepath.Base(string(path))

	return strings.HasPrefix(base, testFilePrefix) || strings.HasSuffix(base, testFileSuffix)
}

// IsPythonSource reports whether path has the .py extension.
func IsPythonSource(path string) bool {
	return filepath.Ext(path) == pythonExt
}
