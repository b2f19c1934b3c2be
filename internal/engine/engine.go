// Package engine implements the deterministic multi-period pro-forma
// projection: funnel, revenue, headcount, margin and cash roll-forward.
package engine

import "math"

// Result holds every projected series, aligned on Periods.
type Result struct {
	Periods []string `json:"periods"`

	Marketing []float64 `json:"marketing"`
	Funding   []float64 `json:"funding"`

	// Funnel stages
	Free  []float64 `json:"free"`
	MF    []float64 `json:"mf"`
	CF    []float64 `json:"cf"`
	Ready []float64 `json:"ready"`
	Go    []float64 `json:"go"`

	// Revenue
	ARRReady     []float64 `json:"arr_ready"`
	GoRevenue    []float64 `json:"go_revenue"`
	TotalRevenue []float64 `json:"total_revenue"`

	// Headcount by role
	CS             []float64 `json:"cs"`
	Eng            []float64 `json:"eng"`
	SDR            []float64 `json:"sdr"`
	AE             []float64 `json:"ae"`
	GA             []float64 `json:"ga"`
	TotalHeadcount []float64 `json:"total_headcount"`
	Payroll        []float64 `json:"payroll"`

	COGS        []float64 `json:"cogs"`
	Opex        []float64 `json:"opex"`
	GrossMargin []float64 `json:"gross_margin"`
	EBITDA      []float64 `json:"ebitda"`

	Collections []float64 `json:"collections"`
	EndingCash  []float64 `json:"ending_cash"`
}

// Len is the number of periods in the result.
func (r *Result) Len() int {
	return len(r.Periods)
}

// FinalCash is the ending cash of the last period, the headline KPI.
func (r *Result) FinalCash() float64 {
	if len(r.EndingCash) == 0 {
		return 0
	}
	return r.EndingCash[len(r.EndingCash)-1]
}

// MinCash returns the lowest ending cash and the period label it occurs in.
func (r *Result) MinCash() (float64, string) {
	if len(r.EndingCash) == 0 {
		return 0, ""
	}
	idx := 0
	for i, v := range r.EndingCash {
		if v < r.EndingCash[idx] {
			idx = i
		}
	}
	return r.EndingCash[idx], r.Periods[idx]
}

// Project parses raw inputs and computes the projection.
func Project(in Inputs, opts Options) (*Result, error) {
	a, err := Parse(in)
	if err != nil {
		return nil, err
	}
	return Compute(a, opts)
}

// Compute runs every stage over the horizon described by opts. It never
// modifies a.
func Compute(a Assumptions, opts Options) (*Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}

	n := opts.Periods()
	r := &Result{Periods: opts.Labels()}

	r.Marketing = marketingRamp(a.MarketingStart, a.MarketingEnd, opts.Months, n)
	r.Funding = fundingSchedule(a.FundingMonths, a.FundingAmounts, n, opts.Funding)

	projectFunnel(r, a, n)
	projectRevenue(r, a, n)
	projectHeadcount(r, a, n)
	projectMargins(r, a, n)
	rollForwardCash(r, a, n)

	return r, nil
}

// marketingRamp spreads start..end linearly across the monthly periods,
// endpoints included, and holds end for the rest of the horizon.
func marketingRamp(start, end float64, months, n int) []float64 {
	out := make([]float64, n)
	switch {
	case months == 1:
		out[0] = start
	case months > 1:
		step := (end - start) / float64(months-1)
		for i := 0; i < months; i++ {
			out[i] = start + step*float64(i)
		}
		out[months-1] = end
	}
	for i := months; i < n; i++ {
		out[i] = end
	}
	return out
}

func fundingSchedule(months []int, amounts []float64, n int, policy FundingPolicy) []float64 {
	out := make([]float64, n)
	for i, m := range months {
		if m < 1 || m > n {
			continue
		}
		if policy == FundingOverwrite {
			out[m-1] = amounts[i]
			continue
		}
		out[m-1] += amounts[i]
	}
	return out
}

// projectFunnel applies the one-period lag recurrence; every lagged stage
// reads only the previous period of the stage before it.
func projectFunnel(r *Result, a Assumptions, n int) {
	r.Free = make([]float64, n)
	r.MF = make([]float64, n)
	r.CF = make([]float64, n)
	r.Ready = make([]float64, n)
	r.Go = make([]float64, n)

	for t := 0; t < n; t++ {
		r.Free[t] = r.Marketing[t] / a.OperatorCAC
	}
	for t := 1; t < n; t++ {
		r.MF[t] = r.Free[t-1] * (1 - a.MFChurnRate)
		r.CF[t] = r.MF[t-1] * a.ConversionMFCF
		r.Ready[t] = r.CF[t-1] * a.ConversionCFReady
		r.Go[t] = r.Ready[t-1] * a.ConversionReadyGo
	}
}

func projectRevenue(r *Result, a Assumptions, n int) {
	r.ARRReady = make([]float64, n)
	r.GoRevenue = make([]float64, n)
	r.TotalRevenue = make([]float64, n)
	for t := 0; t < n; t++ {
		r.ARRReady[t] = r.Ready[t] * a.PriceReady
		r.GoRevenue[t] = r.Go[t] * a.GoDealSize * a.GoFee
		r.TotalRevenue[t] = r.ARRReady[t] + r.GoRevenue[t]
	}
}

func projectHeadcount(r *Result, a Assumptions, n int) {
	r.CS = make([]float64, n)
	r.Eng = make([]float64, n)
	r.SDR = make([]float64, n)
	r.AE = make([]float64, n)
	r.GA = make([]float64, n)
	r.TotalHeadcount = make([]float64, n)
	r.Payroll = make([]float64, n)

	for t := 0; t < n; t++ {
		customers := r.Ready[t]
		r.CS[t] = math.Ceil(customers / a.CustomersPerCS)
		r.Eng[t] = math.Ceil(customers / a.CustomersPerEng)
		r.SDR[t] = math.Max(1, math.Ceil(customers/a.CustomersPerSDR))
		if customers >= a.AEThreshold {
			r.AE[t] = 1
		}
		r.GA[t] = a.GAHeadcount

		r.TotalHeadcount[t] = r.CS[t] + r.Eng[t] + r.SDR[t] + r.AE[t] + r.GA[t]
		r.Payroll[t] = r.CS[t]*a.SalaryCS +
			r.Eng[t]*a.SalaryEng +
			r.SDR[t]*a.SalarySDR +
			r.AE[t]*a.SalaryAE +
			r.GA[t]*a.SalaryGA
	}
}

func projectMargins(r *Result, a Assumptions, n int) {
	r.COGS = make([]float64, n)
	r.Opex = make([]float64, n)
	r.GrossMargin = make([]float64, n)
	r.EBITDA = make([]float64, n)
	for t := 0; t < n; t++ {
		r.COGS[t] = r.TotalRevenue[t] * a.COGSPct
		r.Opex[t] = r.Payroll[t] + r.Marketing[t]
		r.GrossMargin[t] = r.TotalRevenue[t] - r.COGS[t]
		r.EBITDA[t] = r.GrossMargin[t] - r.Opex[t]
	}
}

// rollForwardCash must run in period order: each balance carries the last.
func rollForwardCash(r *Result, a Assumptions, n int) {
	r.Collections = make([]float64, n)
	r.EndingCash = make([]float64, n)
	prev := 0.0
	for t := 0; t < n; t++ {
		r.Collections[t] = r.TotalRevenue[t] * a.CollectionUpfront
		net := (r.Collections[t] + r.Funding[t]) - (r.Opex[t] + r.COGS[t])
		r.EndingCash[t] = prev + net
		prev = r.EndingCash[t]
	}
}
