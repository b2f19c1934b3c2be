package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/proforma/internal/tui/theme"
)

// ShareBar renders a labeled bar showing share (0-1) of a whole, used for
// the cost-mix breakdown.
func ShareBar(label string, share float64, labelW, barWidth int, color lipgloss.Color) string {
	t := theme.Active

	share = max(0, min(share, 1))

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(share) + " " +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", share*100))
}
