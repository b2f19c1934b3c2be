package engine

import (
	"fmt"
	"strings"
)

// FundingPolicy decides what happens when two funding events land on the
// same period.
type FundingPolicy string

const (
	// FundingAccumulate sums events on the same period.
	FundingAccumulate FundingPolicy = "accumulate"
	// FundingOverwrite keeps only the last event listed for a period.
	FundingOverwrite FundingPolicy = "overwrite"
)

// ParseFundingPolicy accepts "accumulate" or "overwrite" (case-insensitive).
// The empty string maps to FundingAccumulate.
func ParseFundingPolicy(s string) (FundingPolicy, error) {
	switch FundingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FundingAccumulate:
		return FundingAccumulate, nil
	case FundingOverwrite:
		return FundingOverwrite, nil
	default:
		return "", fmt.Errorf("unknown funding policy %q (want accumulate or overwrite)", s)
	}
}

// Options control the projection horizon and funding policy.
type Options struct {
	Months   int
	Quarters int
	Funding  FundingPolicy
}

// Default horizon: two years monthly, then three years quarterly.
const (
	DefaultMonths   = 24
	DefaultQuarters = 12
)

// MaxPeriods caps Months+Quarters; fifty years of monthly periods.
const MaxPeriods = 600

// DefaultOptions returns the standard 36-period horizon.
func DefaultOptions() Options {
	return Options{
		Months:   DefaultMonths,
		Quarters: DefaultQuarters,
		Funding:  FundingAccumulate,
	}
}

// String identifies the horizon and policy, e.g. "24m+12q/accumulate".
func (o Options) String() string {
	policy, err := ParseFundingPolicy(string(o.Funding))
	if err != nil {
		policy = o.Funding
	}
	return fmt.Sprintf("%dm+%dq/%s", o.Months, o.Quarters, policy)
}

// Periods is the total number of projected periods.
func (o Options) Periods() int {
	return o.Months + o.Quarters
}

// Labels returns "M1".."Mk" followed by "Q1".."Qn".
func (o Options) Labels() []string {
	labels := make([]string, 0, o.Periods())
	for i := 0; i < o.Months; i++ {
		labels = append(labels, fmt.Sprintf("M%d", i+1))
	}
	for i := 0; i < o.Quarters; i++ {
		labels = append(labels, fmt.Sprintf("Q%d", i+1))
	}
	return labels
}

// normalize checks the horizon and policy and returns opts with the policy
// in canonical form.
func (o Options) normalize() (Options, error) {
	var ps problems
	if o.Months < 0 {
		ps.add("", "horizon months must not be negative, got %d", o.Months)
	}
	if o.Quarters < 0 {
		ps.add("", "horizon quarters must not be negative, got %d", o.Quarters)
	}
	if o.Months >= 0 && o.Quarters >= 0 {
		// Compare each part first so the sum cannot overflow.
		switch {
		case o.Months > MaxPeriods || o.Quarters > MaxPeriods || o.Periods() > MaxPeriods:
			ps.add("", "horizon %dm+%dq exceeds %d periods", o.Months, o.Quarters, MaxPeriods)
		case o.Periods() == 0:
			ps.add("", "horizon has no periods")
		}
	}
	policy, err := ParseFundingPolicy(string(o.Funding))
	if err != nil {
		ps.add("", "%v", err)
	}
	o.Funding = policy
	return o, ps.err()
}
