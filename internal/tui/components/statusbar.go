package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/proforma/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, the
// projection status (colored by outcome) and source on the right.
func RenderStatusBar(width int, status, source string) string {
	t := theme.Active

	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	statusStyle := lipgloss.NewStyle().Foreground(t.Green).Bold(true)
	if strings.HasPrefix(status, "ERROR") {
		statusStyle = statusStyle.Foreground(t.Red)
	}

	left := muted.Render(" [?]help  [r]eload  [q]uit")
	right := statusStyle.Render(status)
	if source != "" {
		right += muted.Render("  " + source + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return lipgloss.NewStyle().MaxWidth(width).Render(left + strings.Repeat(" ", padding) + right)
}
