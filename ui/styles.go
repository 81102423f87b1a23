package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#2196F3")
	Muted   = lipgloss.Color("#6c757d")
	Accent  = lipgloss.Color("#8BC34A")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	PromptStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	CursorStyle = lipgloss.NewStyle().Reverse(true)

	PaletteStyle = lipgloss.NewStyle().Foreground(Muted)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)
)
