package render

import (
	"fmt"
	"html"
	"strings"
	"text/template"
)

// Values pass through esc only; every byte other than <>&'" reaches the page
// unchanged.
var htmlTemplates = template.Must(template.New("alerts").Funcs(template.FuncMap{
	"esc": html.EscapeString,
}).Parse(`
{{- define "warning"}}<div class="alert alert-warning" role="alert">{{esc .Message}}</div>{{end}}
{{- define "danger"}}<div class="alert alert-danger" role="alert">{{esc .Message}}</div>{{end}}
{{- define "solution"}}<div class="alert alert-success" role="alert">
<h5>Input:</h5>
<div class="mb-2">{{esc .Input}}</div>
<h5>Result:</h5>
<div class="mb-2">{{esc .Result}}</div>
<h5>Method:</h5>
<div>{{esc .Method}}</div>
{{- if .StepHTML}}
<h5>Steps:</h5>
<div class="steps">
{{range .StepHTML}}{{.}}
{{end}}</div>
{{- end}}
</div>{{end}}`))

type htmlView struct {
	ViewModel
	StepHTML []string
}

func executeHTML(vm ViewModel, steps []string) string {
	name := "solution"
	switch vm.Kind {
	case KindWarning:
		name = "warning"
	case KindFailure, KindError:
		name = "danger"
	}
	var b strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&b, name, htmlView{ViewModel: vm, StepHTML: steps}); err != nil {
		return fmt.Sprintf(`<div class="alert alert-danger" role="alert">%s</div>`, MsgGenericError)
	}
	return b.String()
}

// PlainHTML shows input, result and method only.
type PlainHTML struct{}

func (PlainHTML) Name() string { return "plain" }

func (PlainHTML) RenderStep(i int, step string) string { return "" }

func (PlainHTML) Render(vm ViewModel) string { return executeHTML(vm, nil) }

// TemplatedHTML adds one line per step.
type TemplatedHTML struct{}

func (TemplatedHTML) Name() string { return "html" }

func (TemplatedHTML) RenderStep(i int, step string) string {
	return fmt.Sprintf(`<div class="step" data-step="%d">%s</div>`, i+1, html.EscapeString(step))
}

func (f TemplatedHTML) Render(vm ViewModel) string {
	steps := make([]string, len(vm.Steps))
	for i, s := range vm.Steps {
		steps[i] = f.RenderStep(i, s)
	}
	return executeHTML(vm, steps)
}
