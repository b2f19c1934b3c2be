package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/tui/components"
	"github.com/theirongolddev/proforma/internal/tui/theme"
	"github.com/theirongolddev/proforma/internal/workbook"
)

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.result

	minCash, minPeriod := r.MinCash()
	metrics := []components.Metric{
		{
			Label:    "Ending Cash",
			Value:    cli.FormatMoney(r.FinalCash()),
			Delta:    "after " + r.Periods[r.Len()-1],
			Negative: r.FinalCash() < 0,
		},
		{
			Label:    "Min Cash",
			Value:    cli.FormatMoney(minCash),
			Delta:    "in " + minPeriod,
			Negative: minCash < 0,
		},
		{
			Label: "Revenue",
			Value: cli.FormatCompactMoney(sum(r.TotalRevenue)),
			Delta: cli.FormatCompactMoney(last(r.TotalRevenue)) + " last period",
		},
		{
			Label: "Headcount",
			Value: cli.FormatCount(last(r.TotalHeadcount)),
			Delta: cli.FormatCompactMoney(last(r.Payroll)) + " payroll",
		},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	sparkW := components.CardInnerWidth(halves[0])
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Ending Cash", sparkRow(r.EndingCash, t.Signed(minCash), sparkW), halves[0]),
		components.ContentCard("Revenue", sparkRow(r.TotalRevenue, t.Accent, components.CardInnerWidth(halves[1])), halves[1]),
	}))
	b.WriteString("\n")

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Cost Mix", costMix(sum(r.Payroll), sum(r.Marketing), sum(r.COGS), components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Funding", fundingEvents(r.Periods, r.Funding), halves[1]),
	}))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Cash by Period",
		components.SignedBars(r.Periods, r.EndingCash, components.CardInnerWidth(cw)), cw))
	return b.String()
}

// sparkRow fits values into width by sampling evenly when there are more
// periods than columns.
func sparkRow(values []float64, color lipgloss.Color, width int) string {
	if len(values) > width && width > 1 {
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[i*(len(values)-1)/(width-1)]
		}
		values = sampled
	}
	return components.Sparkline(values, color)
}

func costMix(payroll, marketing, cogs float64, width int) string {
	total := payroll + marketing + cogs
	if total == 0 {
		return lipgloss.NewStyle().Foreground(theme.Active.TextDim).Render("no spend")
	}
	t := theme.Active
	barW := max(width-10-5, 4)
	return strings.Join([]string{
		components.ShareBar("Payroll", payroll/total, 9, barW, t.Blue),
		components.ShareBar("Marketing", marketing/total, 9, barW, t.Orange),
		components.ShareBar("COGS", cogs/total, 9, barW, t.Magenta),
	}, "\n")
}

func fundingEvents(periods []string, funding []float64) string {
	t := theme.Active
	var lines []string
	for i, amt := range funding {
		if amt == 0 {
			continue
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(t.TextMuted).Render(fmt.Sprintf("%-4s", periods[i]))+" "+
			lipgloss.NewStyle().Foreground(t.Green).Render(cli.FormatMoney(amt)))
	}
	if len(lines) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("no funding events in horizon")
	}
	return strings.Join(lines, "\n")
}

func (a App) renderError(cw int) string {
	t := theme.Active
	body := lipgloss.NewStyle().Foreground(t.Red).Bold(true).Render(workbook.ErrorStatus(a.err)) + "\n\n" +
		lipgloss.NewStyle().Foreground(t.TextMuted).Render("Fix the inputs and press r to reload.")
	return components.ContentCard("Projection failed", body, cw)
}
