package render

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"integral-solver/solver"
)

// Panel is a collapsible section such as the examples or the step list.
type Panel struct {
	mu      sync.Mutex
	visible bool
}

func NewPanel(visible bool) *Panel {
	return &Panel{visible: visible}
}

// Toggle flips visibility and reports the new state.
func (p *Panel) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = !p.visible
	return p.visible
}

func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func ExamplesHTML() string {
	var b strings.Builder
	b.WriteString(`<div class="example-box">` + "\n<h5>Example Inputs:</h5>\n<ul>\n")
	for _, g := range solver.Examples {
		fmt.Fprintf(&b, "<li>%s: %s</li>\n", html.EscapeString(g.Category), html.EscapeString(strings.Join(g.Expressions, ", ")))
	}
	fmt.Fprintf(&b, "</ul>\n<p><strong>Note:</strong> %s</p>\n</div>", html.EscapeString(solver.ExamplesNote))
	return b.String()
}

func ExamplesText() string {
	var b strings.Builder
	b.WriteString("Example Inputs:\n")
	for _, g := range solver.Examples {
		fmt.Fprintf(&b, "  %s: %s\n", g.Category, strings.Join(g.Expressions, ", "))
	}
	b.WriteString("Note: " + solver.ExamplesNote)
	return b.String()
}
