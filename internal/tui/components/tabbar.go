package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/proforma/internal/tui/theme"
)

// Tab is a single entry in the tab bar. The shortcut is the first letter
// of Name, lowercased.
type Tab struct {
	Name string
	Key  rune
}

// Tabs are the viewer's tabs in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o'},
	{Name: "Funnel", Key: 'f'},
	{Name: "Headcount", Key: 'h'},
	{Name: "Statement", Key: 's'},
	{Name: "Inputs", Key: 'i'},
}

// renderTab renders one tab. Active tabs are plain accent text; inactive
// tabs show their shortcut as "[k]" before the rest of the name.
func renderTab(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().
			Foreground(t.Accent).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	pad := lipgloss.NewStyle().Padding(0, 1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	rest := tab.Name[1:]
	return pad.Render(dimStyle.Render("[") + keyStyle.Render(tab.Name[:1]) + dimStyle.Render("]") + nameStyle.Render(rest))
}

// TabVisualWidth is the rendered width of tab, excluding separators.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index on a single
// row, separated by one column.
func RenderTabBar(activeIdx int, width int) string {
	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	row := strings.Join(parts, " ")
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
