package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#6b7280")
	destructive = lipgloss.Color("#e53935")
)

// Styles groups the dashboard's lipgloss styles.
type Styles struct {
	Title       lipgloss.Style
	Panel       lipgloss.Style
	ActivePanel lipgloss.Style
	Label       lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// DefaultStyles returns the dashboard palette.
func DefaultStyles() Styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1)
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
		Panel:       panel,
		ActivePanel: panel.BorderForeground(accent),
		Label:       lipgloss.NewStyle().Width(10).Foreground(muted),
		Status:      lipgloss.NewStyle().Foreground(accent),
		Error:       lipgloss.NewStyle().Foreground(destructive),
		Help:        lipgloss.NewStyle().Foreground(muted),
	}
}
