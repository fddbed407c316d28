package cmd

import "charm.land/lipgloss/v2"

// Output styling, kept deliberately sparse for plain-terminal readability.
var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
)

// masteryBar renders a ten-cell progress bar for a 0..1 score.
func masteryBar(score float64) string {
	filled := int(score*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	bar := ""
	for i := 0; i < 10; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	switch {
	case score >= 0.7:
		return goodStyle.Render(bar)
	case score >= 0.4:
		return warnStyle.Render(bar)
	default:
		return badStyle.Render(bar)
	}
}
