package tui

import "github.com/charmbracelet/lipgloss"

var (
	clrBorder = lipgloss.Color("#30363d")
	clrSubtle = lipgloss.Color("#8b949e")
	clrGold   = lipgloss.Color("#e3b341")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrWhite  = lipgloss.Color("#e6edf3")
	clrTitle  = lipgloss.Color("#58a6ff")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

var (
	titleStyle   = bold(clrTitle).MarginBottom(1)
	helpStyle    = fg(clrSubtle).MarginTop(1)
	errorStyle   = bold(clrRed)
	successStyle = bold(clrGreen)
	cursorStyle  = bold(clrGold)
	textStyle    = fg(clrWhite)
	mutedStyle   = fg(clrSubtle)
)

// box wraps content in a rounded border.
func box(content string, w int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(clrBorder).
		Padding(0, 1)
	if w > 0 {
		style = style.Width(w)
	}
	return style.Render(content)
}
