package ui

import "github.com/charmbracelet/bubbles/key"

// Symbol is an entry of the insertion palette.
type Symbol struct {
	Label string
	Token string
	Key   key.Binding
}

var Symbols = []Symbol{
	newSymbol("^", "^", "alt+1"),
	newSymbol("*", "*", "alt+2"),
	newSymbol("/", "/", "alt+3"),
	newSymbol("( )", "(", "alt+4"),
	newSymbol("sin", "sin(", "alt+5"),
	newSymbol("cos", "cos(", "alt+6"),
	newSymbol("exp", "exp(", "alt+7"),
	newSymbol("ln", "log(", "alt+8"),
	newSymbol("√", "sqrt(", "alt+9"),
	newSymbol("π", "pi", "alt+0"),
}

func newSymbol(label, token, k string) Symbol {
	return Symbol{
		Label: label,
		Token: token,
		Key:   key.NewBinding(key.WithKeys(k), key.WithHelp(k, label)),
	}
}

type keyMap struct {
	Submit   key.Binding
	Examples key.Binding
	Steps    key.Binding
	Clear    key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "solve")),
	Examples: key.NewBinding(key.WithKeys("ctrl+e", "f2"), key.WithHelp("ctrl+e", "examples")),
	Steps:    key.NewBinding(key.WithKeys("ctrl+s", "f3"), key.WithHelp("ctrl+s", "steps")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
	Left:     key.NewBinding(key.WithKeys("left", "ctrl+b")),
	Right:    key.NewBinding(key.WithKeys("right", "ctrl+f")),
	Home:     key.NewBinding(key.WithKeys("home", "ctrl+a")),
	End:      key.NewBinding(key.WithKeys("end")),
	Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "more")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Examples, k.Steps, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	palette := make([]key.Binding, len(Symbols))
	for i, s := range Symbols {
		palette[i] = s.Key
	}
	return [][]key.Binding{
		{k.Submit, k.Examples, k.Steps, k.Clear},
		palette[:5],
		palette[5:],
		{k.Help, k.Quit},
	}
}
