package view

import "github.com/charmbracelet/lipgloss"

const (
	// cardWidth and cardHeight include the border.
	cardWidth  = 34
	cardHeight = 7

	highlightFormatter = "terminal256"
	highlightStyle     = "monokai"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8CFF"}
	subtle = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	danger = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	selectedCardStyle = cardStyle.BorderForeground(accent)

	headerStyle = lipgloss.NewStyle().Foreground(subtle)
	pinStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	linkStyle   = lipgloss.NewStyle().Foreground(accent).Underline(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	noticeStyle = lipgloss.NewStyle().Foreground(accent)
	errorStyle  = lipgloss.NewStyle().Foreground(danger)
	statusStyle = lipgloss.NewStyle().Foreground(subtle)
)
