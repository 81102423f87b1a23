package ui

import (
	"context"
	"errors"
	"testing"

	"integral-solver/api"
	"integral-solver/client"
	"integral-solver/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSolver struct {
	calls []string
	resp  *api.SolveResponse
	err   error
}

func (s *stubSolver) Solve(_ context.Context, expression string) (*api.SolveResponse, error) {
	s.calls = append(s.calls, expression)
	return s.resp, s.err
}

// drain runs cmd and any batched commands, returning the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(m tea.Model, k tea.KeyMsg) (Model, []tea.Msg) {
	next, cmd := m.Update(k)
	return next.(Model), drain(cmd)
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func deliver(m Model, msgs []tea.Msg) Model {
	for _, msg := range msgs {
		if _, ok := msg.(solvedMsg); ok {
			next, _ := m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestEnterSubmits(t *testing.T) {
	s := &stubSolver{resp: &api.SolveResponse{
		Success: true,
		Input:   "∫ x*sin(x) dx",
		Result:  "-x*cos(x)+sin(x)+C",
		Method:  "Integration by Parts",
		Steps:   []string{"Let u = x and dv = sin(x) dx"},
	}}
	m := NewModel(context.Background(), s, render.NewTerminal())
	m = typeText(m, "x*sin(x)")

	m, msgs := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.Pending())
	require.Equal(t, []string{"x*sin(x)"}, s.calls)

	m = deliver(m, msgs)
	assert.Equal(t, 0, m.Pending())
	out := m.Display().Content()
	assert.Contains(t, out, "-x*cos(x)+sin(x)+C")
	assert.Contains(t, out, "Integration by Parts")
	assert.Contains(t, out, "Let u = x and dv = sin(x) dx")
	assert.Contains(t, m.View(), "Integration by Parts")
}

func TestEnterOnEmptyShowsWarning(t *testing.T) {
	c := client.New("http://127.0.0.1:1")
	m := NewModel(context.Background(), c, render.NewTerminal())

	m, msgs := press(m, tea.KeyMsg{Type: tea.KeySpace})
	m, msgs = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(m, msgs)
	assert.Contains(t, m.Display().Content(), render.MsgEmptyExpression)
}

func TestErrorReplacesPreviousResult(t *testing.T) {
	s := &stubSolver{resp: &api.SolveResponse{Success: true, Input: "∫ x^2 dx", Result: "x^3/3 + C", Method: "Power Rule"}}
	m := NewModel(context.Background(), s, render.PlainHTML{})
	m = typeText(m, "x^2")
	m, msgs := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(m, msgs)
	require.Contains(t, m.Display().Content(), "x^3/3 + C")

	s.resp, s.err = nil, &client.TransportError{Op: "send", Err: errors.New("refused")}
	m, msgs = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(m, msgs)
	assert.Equal(t, `<div class="alert alert-danger" role="alert">An error occurred while processing your request</div>`, m.Display().Content())
}

func TestStepsToggle(t *testing.T) {
	s := &stubSolver{resp: &api.SolveResponse{Success: true, Input: "i", Result: "r", Method: "m", Steps: []string{"first step"}}}
	m := NewModel(context.Background(), s, render.TemplatedHTML{})
	m = typeText(m, "x")
	m, msgs := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(m, msgs)
	require.Contains(t, m.Display().Content(), "first step")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.NotContains(t, m.Display().Content(), "first step")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, m.Display().Content(), "first step")
}

func TestExamplesToggle(t *testing.T) {
	m := NewModel(context.Background(), &stubSolver{}, render.NewTerminal())
	assert.False(t, m.ExamplesVisible())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.True(t, m.ExamplesVisible())
	assert.Contains(t, m.View(), "Integration by Parts: x*sin(x), x*exp(x)")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.False(t, m.ExamplesVisible())
}

func TestSymbolHotkey(t *testing.T) {
	m := NewModel(context.Background(), &stubSolver{}, render.NewTerminal())
	m = typeText(m, "x2")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true})
	assert.Equal(t, "x^2", m.Input().Value())
	assert.Equal(t, 3, m.Input().Caret())
}

func TestQuit(t *testing.T) {
	m := NewModel(context.Background(), &stubSolver{}, render.NewTerminal())
	_, msgs := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Len(t, msgs, 1)
	assert.IsType(t, tea.QuitMsg{}, msgs[0])
}

func TestViewShowsInput(t *testing.T) {
	m := NewModel(context.Background(), &stubSolver{}, render.NewTerminal())
	m = typeText(m, "x^2")
	view := m.View()
	assert.Contains(t, view, "Integral Solver")
	assert.Contains(t, view, "∫ ")
	assert.Contains(t, view, "x^2")
	assert.Contains(t, view, " dx")
}
