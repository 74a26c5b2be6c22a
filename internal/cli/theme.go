package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type theme struct {
	OK    lipgloss.Style
	Fail  lipgloss.Style
	Title lipgloss.Style
	Faint lipgloss.Style
}

// newTheme binds styles to w so that colors are dropped when w is not a terminal.
func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		OK:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Fail:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Title: r.NewStyle().Bold(true),
		Faint: r.NewStyle().Faint(true),
	}
}
