package views

import "github.com/charmbracelet/lipgloss"

// Palette for the terminal client.
var (
	colorAccent  = lipgloss.Color("#2CD7C7")
	colorPrimary = lipgloss.Color("#20B9B4")
	colorBorder  = lipgloss.Color("#16858E")
	colorMuted   = lipgloss.Color("#5C7A84")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
)

// Styles shared by the views and the shell.
var Styles = struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Nav     lipgloss.Style
	Card    lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Heading: lipgloss.NewStyle().Foreground(colorPrimary),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Success: lipgloss.NewStyle().Foreground(colorAccent),
	Nav: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorBorder).
		Padding(0, 1),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1),
}
