package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	// header and footer lines around the viewport.
	viewerChromeHeight = 4
	defaultViewerWidth = 80
	defaultViewerRows  = 24
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9E9E9E"))
	testNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2196F3")).
			Bold(true)
	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFC107"))
	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2a3850"))
)

// TUI implements UI with an interactive Bubble Tea pager for ViewModule and
// falls back to SimpleUI for everything else.
type TUI struct {
	*SimpleUI

	output io.Writer
	input  io.Reader
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		output:   cmd.OutOrStdout(),
		input:    cmd.InOrStdin(),
	}
}

// ViewModule pages through a test module. Short modules are printed directly.
func (p *TUI) ViewModule(ctx context.Context, title string, module string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	viewer := newSkeletonViewer(title, module)

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			viewer = viewer.resize(width, height)
		}
	}

	if !viewer.needsPagination() {
		_, err := fmt.Fprint(p.output, viewer.content)
		return err
	}

	program := tea.NewProgram(viewer,
		tea.WithContext(ctx),
		tea.WithOutput(p.output),
		tea.WithInput(p.input),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}

	return nil
}

// skeletonViewer is the Bubble Tea model paging through a test module.
type skeletonViewer struct {
	title    string
	content  string
	lines    int
	viewport viewport.Model
	quitting bool
}

func newSkeletonViewer(title, module string) skeletonViewer {
	content := withTrailingNewline(module)

	viewer := skeletonViewer{
		title:   title,
		content: content,
		lines:   strings.Count(content, "\n"),
	}

	return viewer.resize(defaultViewerWidth, defaultViewerRows)
}

func (sv skeletonViewer) resize(width, height int) skeletonViewer {
	bodyHeight := max(1, height-viewerChromeHeight)

	if sv.viewport.Width == 0 && sv.viewport.Height == 0 {
		sv.viewport = viewport.New(width, bodyHeight)
		sv.viewport.SetContent(highlightSkeleton(sv.content))

		return sv
	}

	sv.viewport.Width = width
	sv.viewport.Height = bodyHeight

	return sv
}

func (sv skeletonViewer) needsPagination() bool {
	return sv.lines > sv.viewport.Height
}

func (sv skeletonViewer) Init() tea.Cmd {
	return nil
}

func (sv skeletonViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return sv.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			sv.quitting = true
			return sv, tea.Quit
		case "g", "home":
			sv.viewport.GotoTop()
			return sv, nil
		case "G", "end":
			sv.viewport.GotoBottom()
			return sv, nil
		}
	}

	var cmd tea.Cmd
	sv.viewport, cmd = sv.viewport.Update(msg)

	return sv, cmd
}

func (sv skeletonViewer) View() string {
	if sv.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(sv.title))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", max(0, sv.viewport.Width))))
	b.WriteString("\n")
	b.WriteString(sv.viewport.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"%3.f%%  %d lines  ↑/↓ scroll  g/G top/bottom  q quit",
		sv.viewport.ScrollPercent()*100, sv.lines,
	)))

	return b.String()
}

// highlightSkeleton colours test definitions and skip calls.
func highlightSkeleton(module string) string {
	lines := strings.Split(module, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "def test_"):
			lines[i] = testNameStyle.Render(line)
		case strings.HasPrefix(trimmed, "pytest.skip("):
			lines[i] = skipStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}
