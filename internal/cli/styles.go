package cli

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor = lipgloss.Color("#3B82F6")
	SubtleColor  = lipgloss.Color("#64748B")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	statusStyles = map[string]lipgloss.Style{
		"pending":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		"approved": lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		"rejected": lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
)
