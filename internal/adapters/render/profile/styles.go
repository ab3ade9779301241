package profile

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	rule    lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	empty   lipgloss.Style
	offset  lipgloss.Style
	kind    lipgloss.Style
	meta    lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		empty:   lipgloss.NewStyle().Faint(true),
		offset:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		kind:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		good:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}
