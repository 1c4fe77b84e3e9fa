package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#2D9CDB")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF5C5C")
	gray   = lipgloss.Color("#626262")
)

// Styles are grouped by surface: header, stage line, and cue preview.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1).
			MarginBottom(1)

	// badgeStyle marks the ready/complete states.
	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
	dimStyle    = lipgloss.NewStyle().Foreground(gray)

	// Cue preview: timing line dimmed, translated line tinted so the two
	// tracks read apart at a glance.
	previewBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	cueTimeStyle    = lipgloss.NewStyle().Foreground(gray)
	translatedStyle = lipgloss.NewStyle().Foreground(green).Italic(true)
)
