// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// FormatMoney formats a currency amount rounded to whole units.
// e.g., 1234567.8 -> "$1,234,568", -500 -> "-$500"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

// FormatCompactMoney formats a currency amount with K/M/B suffixes.
// e.g., 1234 -> "$1.2K", 2500000 -> "$2.5M"
func FormatCompactMoney(v float64) string {
	if v < 0 {
		return "-" + FormatCompactMoney(-v)
	}
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// FormatCount formats a fractional count (users, headcount) with up to two
// decimals and thousands separators, dropping trailing zeros.
// e.g., 12 -> "12", 0.5 -> "0.5", 1234.567 -> "1,234.57"
func FormatCount(v float64) string {
	return humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats a money delta with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return FormatMoney(delta)
}

// FormatRaw prints a float the shortest way that round-trips, for
// machine-readable output.
func FormatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
