package render

import (
	"fmt"
	"sort"
)

// Formatter draws a view model for one kind of surface.
type Formatter interface {
	Name() string
	RenderStep(i int, step string) string
	Render(vm ViewModel) string
}

type factory func() Formatter

var formatters = map[string]factory{
	"plain":    func() Formatter { return PlainHTML{} },
	"html":     func() Formatter { return TemplatedHTML{} },
	"latex":    func() Formatter { return LaTeX{} },
	"terminal": func() Formatter { return NewTerminal(WithMarkdown()) },
}

// Lookup returns the formatter registered under name.
func Lookup(name string) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter %q, want one of %v", name, Names())
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
