package menu

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	awakeColor   = lipgloss.Color("#10B981") // Green
	mutedColor   = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	itemSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#3B3B3B")).
				Bold(true).
				Padding(0, 1)

	statusAwakeStyle = lipgloss.NewStyle().
				Foreground(awakeColor)

	statusSleepStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
