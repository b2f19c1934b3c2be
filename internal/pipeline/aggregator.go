// Package pipeline orchestrates batch projection, ledger caching, and
// cross-file summaries.
package pipeline

import (
	"sort"
	"strings"
)

// Summary aggregates a batch run.
type Summary struct {
	Files     int
	Projected int
	Failed    int

	TotalEndingCash float64
	Best            *FileResult // highest ending cash
	Worst           *FileResult // lowest ending cash
	Underwater      int         // files whose cash dips below zero at some period
}

// Summarize computes batch totals over the successful projections.
func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}
	for i := range results {
		fr := &results[i]
		if fr.Err != nil || fr.Result == nil {
			s.Failed++
			continue
		}
		s.Projected++

		cash := fr.Result.FinalCash()
		s.TotalEndingCash += cash
		if s.Best == nil || cash > s.Best.Result.FinalCash() {
			s.Best = fr
		}
		if s.Worst == nil || cash < s.Worst.Result.FinalCash() {
			s.Worst = fr
		}
		if low, _ := fr.Result.MinCash(); low < 0 {
			s.Underwater++
		}
	}
	return s
}

// SortByEndingCash returns successful results ordered by final cash,
// highest first. Failed results follow in their original order.
func SortByEndingCash(results []FileResult) []FileResult {
	out := make([]FileResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return false
		}
		return a.Result.FinalCash() > b.Result.FinalCash()
	})
	return out
}

// FilterByName returns results whose file name contains substr
// (case-insensitive).
func FilterByName(results []FileResult, substr string) []FileResult {
	if substr == "" {
		return results
	}
	var out []FileResult
	for _, fr := range results {
		if containsIgnoreCase(fr.File.Name, substr) {
			out = append(out, fr)
		}
	}
	return out
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
