package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

const (
	codeLabel    = "code"
	notCodeLabel = "not code"
	diffContext  = 3
)

// SimpleUI implements UI using cobra Command's writers.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayModule prints a generated test module to stdout and its warning, if
// any, to stderr.
func (s *SimpleUI) DisplayModule(ctx context.Context, result m.GenerateResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.warn(result)
	s.printf("%s", withTrailingNewline(result.TestCode))

	return nil
}

// DisplayWritten reports a test module written to disk.
func (s *SimpleUI) DisplayWritten(ctx context.Context, target m.Path, result m.GenerateResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.warn(result)
	s.printf("wrote %s (%s)\n", target, result.Origin)
}

// DisplayDiff prints a unified diff between an existing test file and a newly
// generated module.
func (s *SimpleUI) DisplayDiff(ctx context.Context, target m.Path, existing, generated string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diff, err := unifiedDiff(target, existing, generated)
	if err != nil {
		return err
	}

	if diff == "" {
		s.printf("no changes: %s\n", target)
		return nil
	}

	s.printf("%s", diff)

	return nil
}

func unifiedDiff(target m.Path, existing, generated string) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(withTrailingNewline(existing)),
		B:        difflib.SplitLines(withTrailingNewline(generated)),
		FromFile: string(target),
		ToFile:   string(target) + " (generated)",
		Context:  diffContext,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", target, err)
	}

	return diff, nil
}

// DisplayClassification prints whether the input is parseable Python.
func (s *SimpleUI) DisplayClassification(ctx context.Context, path m.Path, isCode bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	label := notCodeLabel
	if isCode {
		label = codeLabel
	}

	if path == "" {
		s.printf("%s\n", label)
		return
	}

	s.printf("%s: %s\n", path, label)
}

// DisplayAnalysis prints the tier and detected signatures of a snippet.
func (s *SimpleUI) DisplayAnalysis(ctx context.Context, path m.Path, analysis m.Analysis, format OutputFormat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if format == FormatYAML {
		out, err := renderAnalysisYAML(path, analysis)
		if err != nil {
			return err
		}

		s.printf("%s", out)

		return nil
	}

	s.printf("%s", renderAnalysisTable(analysis))

	return nil
}

// ViewModule prints the module; there is nothing to page through without a terminal.
func (s *SimpleUI) ViewModule(ctx context.Context, _ string, module string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", withTrailingNewline(module))

	return nil
}

type analysisReport struct {
	Path      string                `yaml:"path,omitempty"`
	Tier      string                `yaml:"tier"`
	Functions []m.FunctionSignature `yaml:"functions"`
}

func renderAnalysisYAML(path m.Path, analysis m.Analysis) (string, error) {
	functions := analysis.Functions
	if functions == nil {
		functions = []m.FunctionSignature{}
	}

	out, err := yaml.Marshal(analysisReport{
		Path:      string(path),
		Tier:      analysis.Tier.String(),
		Functions: functions,
	})
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}

	return string(out), nil
}

func renderAnalysisTable(analysis m.Analysis) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Function", "Line", "Params", "Required", "*args", "**kwargs", "Keyword-only"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
	})

	for _, fn := range analysis.Functions {
		table.Append([]string{
			fn.Name,
			strconv.Itoa(fn.Line),
			joinOrDash(fn.PositionalParams),
			strconv.Itoa(fn.NumRequired()),
			yesNo(fn.HasVarArgs),
			yesNo(fn.HasVarKwargs),
			joinOrDash(fn.KeywordOnlyParams),
		})
	}

	table.SetFooter([]string{
		"Tier " + analysis.Tier.String(),
		"",
		"",
		"",
		"",
		"",
		fmt.Sprintf("%d function(s)", len(analysis.Functions)),
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) warn(result m.GenerateResult) {
	if result.Warning == "" {
		return
	}

	path := string(result.Snippet.Path)
	if path == "" {
		path = "<stdin>"
	}

	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "warning: %s: %s\n", path, result.Warning)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func withTrailingNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}

	return text + "\n"
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}

	return strings.Join(values, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}
