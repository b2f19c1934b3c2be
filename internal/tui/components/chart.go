package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/proforma/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled between the minimum and
// maximum of values, so negative cash still shows its shape.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// SignedBars renders one horizontal bar per value around a shared zero
// axis: negatives extend left in red, positives right in green. width is
// the total line width including labels.
func SignedBars(labels []string, values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	for _, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
	}
	valueW := 0
	for _, v := range values {
		valueW = max(valueW, len(formatChartLabel(v)))
	}

	barArea := width - labelW - valueW - 4
	if barArea < 4 {
		barArea = 4
	}

	var neg, pos float64
	for _, v := range values {
		neg = math.Max(neg, -v)
		pos = math.Max(pos, v)
	}
	total := neg + pos
	if total == 0 {
		total = 1
	}
	leftW := int(math.Round(neg / total * float64(barArea)))
	rightW := barArea - leftW

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, label)))

		barStyle := lipgloss.NewStyle().Foreground(t.Signed(v))
		if v < 0 {
			n := int(math.Round(-v / total * float64(barArea)))
			n = min(n, leftW)
			b.WriteString(strings.Repeat(" ", leftW-n))
			b.WriteString(barStyle.Render(strings.Repeat("█", n)))
			b.WriteString(axisStyle.Render("│"))
			b.WriteString(strings.Repeat(" ", rightW))
		} else {
			n := int(math.Round(v / total * float64(barArea)))
			n = min(n, rightW)
			b.WriteString(strings.Repeat(" ", leftW))
			b.WriteString(axisStyle.Render("│"))
			b.WriteString(barStyle.Render(strings.Repeat("█", n)))
			b.WriteString(strings.Repeat(" ", rightW-n))
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %*s", valueW, formatChartLabel(v))))
		if i < len(values)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
