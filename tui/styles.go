package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sarchlab/cncsim/panel"
)

var (
	panelBorder = lipgloss.Color("#2D6A80")
	accent      = lipgloss.Color("#50E3C2")
	mutedText   = lipgloss.Color("#8CA1AE")
	disabled    = lipgloss.Color("#4B5563")
	danger      = lipgloss.Color("#EF4444")
)

var indicatorColors = map[panel.Color]lipgloss.Color{
	panel.Yellow: lipgloss.Color("#EAB308"),
	panel.Green:  lipgloss.Color("#22C55E"),
	panel.Red:    lipgloss.Color("#EF4444"),
	panel.Gray:   lipgloss.Color("#6B7280"),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	enabledKeyStyle = lipgloss.NewStyle().
			Bold(true)

	disabledKeyStyle = lipgloss.NewStyle().
				Foreground(disabled).
				Strikethrough(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedText)
)
