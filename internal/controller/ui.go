// Package controller provides the output adapters of pyskel: terminal
// renderers for the CLI and the HTTP API.
package controller

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

// OutputFormat selects how analysis results are rendered.
type OutputFormat string

// Supported output formats.
const (
	FormatTable OutputFormat = "table"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a user supplied format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(value) {
	case FormatTable, FormatYAML:
		return OutputFormat(value), nil
	case "":
		return FormatTable, nil
	}

	return "", fmt.Errorf("unsupported output format %q (want %s or %s)", value, FormatTable, FormatYAML)
}

// UI defines how command results are presented to the user.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayModule(ctx context.Context, result m.GenerateResult) error
	DisplayWritten(ctx context.Context, target m.Path, result m.GenerateResult)
	DisplayDiff(ctx context.Context, target m.Path, existing, generated string) error
	DisplayClassification(ctx context.Context, path m.Path, isCode bool)
	DisplayAnalysis(ctx context.Context, path m.Path, analysis m.Analysis, format OutputFormat) error
	ViewModule(ctx context.Context, title string, module string) error
}

// NewUI returns the interactive UI when attached to a terminal and the plain
// one otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is connected to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
