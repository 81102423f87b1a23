package render

import (
	"fmt"
	"html"
	"strings"
)

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`^`, `\^{}`,
	`~`, `\~{}`,
)

func latexText(s string) string {
	return `\text{` + latexEscaper.Replace(s) + `}`
}

// katexBlock emits an element the page script typesets from data-katex. The
// plain text stays as the element body until then.
func katexBlock(class, source, fallback string) string {
	return fmt.Sprintf(`<div class="%s" data-katex="%s">%s</div>`,
		class, html.EscapeString(source), html.EscapeString(fallback))
}

// LaTeX lays a solution out as classification, rule application,
// integration statement and final answer.
type LaTeX struct{}

func (LaTeX) Name() string { return "latex" }

func (LaTeX) RenderStep(i int, step string) string {
	return katexBlock("step-content", latexText(fmt.Sprintf("%d. %s", i+1, step)), step)
}

func (f LaTeX) Render(vm ViewModel) string {
	if vm.Kind != KindSuccess {
		return executeHTML(vm, nil)
	}
	input := vm.InputLaTeX
	if input == "" {
		input = latexText(vm.Input)
	}
	result := vm.ResultLaTeX
	if result == "" {
		result = latexText(vm.Result)
	}

	var b strings.Builder
	b.WriteString(`<div class="solution">` + "\n")
	b.WriteString(`<div class="step-1" id="step1"><h5>Step 1: Classify the problem</h5>` + "\n")
	b.WriteString(katexBlock("step-content", latexText("Method: "+vm.Method), vm.Method))
	b.WriteString("\n</div>\n")

	b.WriteString(`<div class="step-2" id="step2"><h5>Step 2: Apply the rules</h5>` + "\n")
	if len(vm.Steps) == 0 {
		b.WriteString(katexBlock("step-content", latexText(vm.Method), vm.Method))
		b.WriteString("\n")
	}
	for i, s := range vm.Steps {
		b.WriteString(f.RenderStep(i, s))
		b.WriteString("\n")
	}
	b.WriteString("</div>\n")

	b.WriteString(`<div class="step-3" id="step3"><h5>Step 3: Integrate</h5>` + "\n")
	b.WriteString(katexBlock("step-content", input+" = "+result, vm.Input+" = "+vm.Result))
	b.WriteString("\n</div>\n")

	b.WriteString(`<div class="answer" id="final"><h5>Answer</h5>` + "\n")
	b.WriteString(katexBlock("answer-content", result, vm.Result))
	b.WriteString("\n</div>\n</div>")
	return b.String()
}
