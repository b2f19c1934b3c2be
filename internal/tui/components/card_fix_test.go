package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/proforma/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {81, 4}, {7, 7}, {10, 1}} {
		widths := LayoutRow(tc.total, tc.n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total || len(widths) != tc.n {
			t.Errorf("LayoutRow(%d, %d) = %v", tc.total, tc.n, widths)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowHeightMatchesTallest(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}
	for i, line := range lines {
		if !strings.Contains(line, "\x1b[") {
			t.Errorf("Line %d has no ANSI codes", i)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "Ending Cash", Value: "$1,200"},
		{Label: "Min Cash", Value: "-$50", Negative: true, Delta: "M3"},
	}, 60)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Errorf("line %d width = %d, want 60", i, w)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('s'); got != 3 {
		t.Errorf("TabIdxByKey('s') = %d, want 3", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
	for _, tab := range Tabs {
		if TabVisualWidth(tab, false) != len(tab.Name)+4 {
			t.Errorf("inactive %s width = %d", tab.Name, TabVisualWidth(tab, false))
		}
		if TabVisualWidth(tab, true) != len(tab.Name)+2 {
			t.Errorf("active %s width = %d", tab.Name, TabVisualWidth(tab, true))
		}
	}
}

func TestSparklineAndBars(t *testing.T) {
	if Sparkline(nil, theme.Active.Accent) != "" {
		t.Error("Sparkline(nil) should be empty")
	}
	spark := Sparkline([]float64{-5, 0, 5}, theme.Active.Accent)
	if !strings.Contains(spark, "▁") || !strings.Contains(spark, "█") {
		t.Errorf("Sparkline = %q, want full range", spark)
	}

	bars := SignedBars([]string{"M1", "M2"}, []float64{-1000, 3000}, 40)
	lines := strings.Split(bars, "\n")
	if len(lines) != 2 {
		t.Fatalf("SignedBars lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "-1k") || !strings.Contains(lines[1], "3k") {
		t.Errorf("SignedBars labels missing: %q", bars)
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width(lines[1]) {
		t.Errorf("SignedBars rows differ in width: %d vs %d", lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	}
}
