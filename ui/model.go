// Package ui is the interactive terminal front end of the solver.
package ui

import (
	"context"
	"log/slog"
	"strings"

	"integral-solver/api"
	"integral-solver/render"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Solver is satisfied by *client.Client.
type Solver interface {
	Solve(ctx context.Context, expression string) (*api.SolveResponse, error)
}

type solvedMsg struct {
	expression string
	resp       *api.SolveResponse
	err        error
}

type Model struct {
	ctx       context.Context
	solver    Solver
	formatter render.Formatter

	input    *InputField
	display  *render.Display
	examples *render.Panel
	steps    *render.Panel
	last     *render.ViewModel

	spinner spinner.Model
	help    help.Model
	pending int
	width   int
}

func NewModel(ctx context.Context, s Solver, f render.Formatter) Model {
	return Model{
		ctx:       ctx,
		solver:    s,
		formatter: f,
		input:     NewInputField(),
		display:   render.NewDisplay(nil),
		examples:  render.NewPanel(false),
		steps:     render.NewPanel(true),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(PromptStyle)),
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Input() *InputField { return m.input }

func (m Model) Display() *render.Display { return m.display }

func (m Model) ExamplesVisible() bool { return m.examples.Visible() }

func (m Model) Pending() int { return m.pending }

// solve runs one request off the update loop. Overlapping requests are not
// serialized; each reply replaces the display when it lands.
func (m Model) solve(expression string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.solver.Solve(m.ctx, expression)
		if err != nil {
			slog.Debug("solve failed", "expression", expression, "err", err)
		}
		return solvedMsg{expression: expression, resp: resp, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case solvedMsg:
		if m.pending > 0 {
			m.pending--
		}
		vm := render.FromOutcome(msg.resp, msg.err)
		m.last = &vm
		m.show()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Submit):
		m.pending++
		return m, tea.Batch(m.solve(m.input.Value()), m.spinner.Tick)
	case key.Matches(msg, keys.Examples):
		m.examples.Toggle()
		return m, nil
	case key.Matches(msg, keys.Steps):
		m.steps.Toggle()
		m.show()
		return m, nil
	case key.Matches(msg, keys.Clear):
		m.input.Reset()
		return m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Left):
		m.input.Left()
		return m, nil
	case key.Matches(msg, keys.Right):
		m.input.Right()
		return m, nil
	case key.Matches(msg, keys.Home):
		m.input.Home()
		return m, nil
	case key.Matches(msg, keys.End):
		m.input.End()
		return m, nil
	}
	for _, s := range Symbols {
		if key.Matches(msg, s.Key) {
			m.input.InsertSymbol(s.Token)
			return m, nil
		}
	}

	switch msg.Type {
	case tea.KeyBackspace:
		m.input.Backspace()
	case tea.KeyDelete:
		m.input.Delete()
	case tea.KeySpace:
		m.input.InsertRunes([]rune{' '})
	case tea.KeyRunes:
		if !msg.Alt {
			m.input.InsertRunes(msg.Runes)
		}
	}
	return m, nil
}

// show redraws the last outcome, leaving steps out while that panel is
// collapsed.
func (m Model) show() {
	if m.last == nil {
		return
	}
	vm := *m.last
	if !m.steps.Visible() {
		vm.Steps = nil
	}
	m.display.Show(m.formatter.Render(vm))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Integral Solver"))
	b.WriteString("\n")
	b.WriteString(PromptStyle.Render("∫ "))
	b.WriteString(InputBoxStyle.Render(m.input.View(func(s string) string { return CursorStyle.Render(s) })))
	b.WriteString(PromptStyle.Render(" dx"))
	b.WriteString("\n")

	palette := make([]string, len(Symbols))
	for i, s := range Symbols {
		palette[i] = s.Key.Help().Key + " " + s.Label
	}
	b.WriteString(PaletteStyle.Render(strings.Join(palette, "  ")))
	b.WriteString("\n\n")

	if m.pending > 0 {
		b.WriteString(m.spinner.View() + " Solving...\n\n")
	}
	if out := m.display.Content(); out != "" {
		b.WriteString(out)
		b.WriteString("\n\n")
	}
	if m.examples.Visible() {
		b.WriteString(PanelStyle.Render(render.ExamplesText()))
		b.WriteString("\n\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}
