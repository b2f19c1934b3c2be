package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidAssumptions is matched by every validation failure returned from
// Parse, Compute and Project.
var ErrInvalidAssumptions = errors.New("invalid assumptions")

// Problem describes one offending assumption key.
type Problem struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// InvalidAssumptionsError lists every problem found while validating inputs.
type InvalidAssumptionsError struct {
	Problems []Problem
}

func (e *InvalidAssumptionsError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Key == "" {
			parts = append(parts, p.Reason)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Key, p.Reason))
	}
	return ErrInvalidAssumptions.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrInvalidAssumptions.
func (e *InvalidAssumptionsError) Unwrap() error {
	return ErrInvalidAssumptions
}

// Keys returns the offending keys, sorted and de-duplicated.
func (e *InvalidAssumptionsError) Keys() []string {
	seen := make(map[string]struct{}, len(e.Problems))
	keys := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Key == "" {
			continue
		}
		if _, ok := seen[p.Key]; ok {
			continue
		}
		seen[p.Key] = struct{}{}
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	return keys
}

type problems []Problem

func (ps *problems) add(key, format string, args ...any) {
	*ps = append(*ps, Problem{Key: key, Reason: fmt.Sprintf(format, args...)})
}

func (ps problems) err() error {
	if len(ps) == 0 {
		return nil
	}
	return &InvalidAssumptionsError{Problems: ps}
}
