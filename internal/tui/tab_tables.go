package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/tui/components"
	"github.com/theirongolddev/proforma/internal/tui/theme"
)

// styledTable renders rows with the period or key column muted; numeric
// tables right-align every other column.
func styledTable(headers []string, rows [][]string, numeric bool) *table.Table {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			case numeric:
				return cellStyle.Align(lipgloss.Right)
			default:
				return cellStyle
			}
		})
}

func renderSeriesTab(et engine.Table, cw int) string {
	tbl := cli.ProjectionTable(et)
	title := lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Bold(true).
		Render(fmt.Sprintf(" %s  (%d periods)", tbl.Title, len(tbl.Rows)))
	return title + "\n" + lipgloss.NewStyle().MaxWidth(cw).Render(styledTable(tbl.Headers, tbl.Rows, true).Render())
}

func (a App) renderInputsTab(cw int) string {
	if a.inputs == nil {
		return components.ContentCard("Inputs", "no inputs loaded", cw)
	}

	known := make(map[string]bool, len(engine.DefaultFields))
	var rows [][]string
	for _, f := range engine.DefaultFields {
		known[f.Key] = true
		if v, ok := a.inputs[f.Key]; ok {
			rows = append(rows, []string{f.Key, fmt.Sprint(v), f.Description})
		}
	}
	var extra []string
	for k := range a.inputs {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		rows = append(rows, []string{k, fmt.Sprint(a.inputs[k]), ""})
	}

	return lipgloss.NewStyle().MaxWidth(cw).Render(
		styledTable([]string{"Variable", "Value", "Description"}, rows, false).Render())
}
