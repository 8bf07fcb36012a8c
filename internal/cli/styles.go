package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hlop3z/relite/internal/engine"
)

var (
	colorSuccess = lipgloss.Color("10") // Green
	colorWarning = lipgloss.Color("11") // Yellow
	colorError   = lipgloss.Color("9")  // Red
	colorWhite   = lipgloss.Color("15") // White
)

// Badge styles for status indicators
var (
	badgeApplied = lipgloss.NewStyle().
			Background(colorSuccess).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Bold(true)

	badgePending = lipgloss.NewStyle().
			Background(colorWarning).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Bold(true)

	badgeMissing = lipgloss.NewStyle().
			Background(colorError).
			Foreground(colorWhite).
			Padding(0, 1).
			Bold(true)
)

// RenderBadge renders a styled badge, or [TEXT] without colors.
func RenderBadge(text string, style lipgloss.Style) string {
	if !EnableColors() {
		return "[" + text + "]"
	}
	return style.Render(text)
}

// StatusBadge renders the badge for a ledger status.
func StatusBadge(s engine.PlanStatus) string {
	switch s {
	case engine.StatusApplied:
		return RenderBadge("APPLIED", badgeApplied)
	case engine.StatusMissing:
		return RenderBadge("MISSING", badgeMissing)
	default:
		return RenderBadge("PENDING", badgePending)
	}
}
