package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette of the dashboard. Muted greys for chrome, one accent for the
// focused row and active column.
var (
	colorHeader   = lipgloss.Color("252")
	colorMuted    = lipgloss.Color("242")
	colorAccent   = lipgloss.Color("33")
	colorSelected = lipgloss.Color("42")
	colorError    = lipgloss.Color("196")
	colorSuccess  = lipgloss.Color("42")
	colorWarning  = lipgloss.Color("220")
)

// DisableColors forces monochrome output, used by --no-color.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// stylizeBold applies optional bold color styling.
func stylizeBold(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(text)
}
