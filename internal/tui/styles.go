package tui

import "github.com/charmbracelet/lipgloss"

var (
	focusedBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("6"))

	unfocusedBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("8"))

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	asstStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	toolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	activeMark = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("●")
)

// box draws a panel border sized so the whole block is width x height cells.
func box(content string, width, height int, focused bool) string {
	style := unfocusedBorder
	if focused {
		style = focusedBorder
	}
	return style.
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		MaxHeight(max(height, 0)).
		Render(content)
}
