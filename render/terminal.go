package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorWarning = lipgloss.Color("#FFC107")
	colorDanger  = lipgloss.Color("#e53935")

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// Terminal draws alert boxes with lipgloss. Steps go through glamour when a
// markdown renderer is configured.
type Terminal struct {
	md *glamour.TermRenderer
}

type TerminalOption func(*Terminal)

// WithMarkdown renders step lists with glamour's automatic style. Word
// wrapping stays off so every step keeps to one line. A renderer that fails
// to build leaves steps as plain lines.
func WithMarkdown() TerminalOption {
	return func(t *Terminal) {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
		if err == nil {
			t.md = r
		}
	}
}

func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) Name() string { return "terminal" }

func (t *Terminal) RenderStep(i int, step string) string {
	if t.md != nil {
		return fmt.Sprintf("%d. `%s`", i+1, step)
	}
	return fmt.Sprintf("%2d. %s", i+1, step)
}

func (t *Terminal) Render(vm ViewModel) string {
	switch vm.Kind {
	case KindWarning:
		return alertStyle.BorderForeground(colorWarning).Render(vm.Message)
	case KindFailure, KindError:
		return alertStyle.BorderForeground(colorDanger).Render(vm.Message)
	}

	body := strings.Join([]string{
		labelStyle.Render("Input:") + " " + vm.Input,
		labelStyle.Render("Result:") + " " + vm.Result,
		labelStyle.Render("Method:") + " " + vm.Method,
	}, "\n")
	out := alertStyle.BorderForeground(colorSuccess).Render(body)
	if len(vm.Steps) == 0 {
		return out
	}
	return out + "\n" + t.renderSteps(vm.Steps)
}

func (t *Terminal) renderSteps(steps []string) string {
	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = t.RenderStep(i, s)
	}
	if t.md != nil {
		md, err := t.md.Render("**Steps**\n\n" + strings.Join(lines, "\n"))
		if err == nil {
			return md
		}
		for i, s := range steps {
			lines[i] = fmt.Sprintf("%2d. %s", i+1, s)
		}
	}
	return labelStyle.Render("Steps:") + "\n" + strings.Join(lines, "\n")
}
