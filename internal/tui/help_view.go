package tui

import (
	"github.com/charmbracelet/lipgloss"
)

const helpText = `Global
  Tab / Shift+Tab   move focus between panels
  F1                toggle this help
  Ctrl+C            quit (settings are saved)

Top bar
  Up/Down           switch between server URL and directory input
  Enter             apply server URL / add directory
  Ctrl+R            refresh models

Agents
  Up/Down           highlight agent
  Enter             activate agent
  m / M             next / previous model for the highlighted agent
  e                 edit system prompt (Ctrl+S save, Esc cancel)

Chat
  Enter             send message
  PgUp/PgDn         scroll history

Browser
  Up/Down           select directory
  x                 remove directory
  /                 search labels (comma separated terms)
  Esc               clear search

Labeling
  Enter / l         label every unlabeled image`

type HelpView struct {
	width  int
	height int
}

func NewHelpView() HelpView {
	return HelpView{}
}

func (h *HelpView) SetSize(width, height int) {
	h.width = width
	h.height = height
}

func (h HelpView) View() string {
	if h.width == 0 || h.height == 0 {
		return ""
	}

	content := titleStyle.Render("Keys") + "\n\n" + helpText + "\n\n" + dimStyle.Render("Press F1 or Esc to close")

	inner := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 2).
		Render(content)

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, inner)
}
