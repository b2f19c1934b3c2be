package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"reflect"
	"testing"
)

func mustProject(t *testing.T, in Inputs, opts Options) *Result {
	t.Helper()
	r, err := Project(in, opts)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	return r
}

func allSeries(r *Result) map[string][]float64 {
	return map[string][]float64{
		"marketing": r.Marketing, "funding": r.Funding,
		"free": r.Free, "mf": r.MF, "cf": r.CF, "ready": r.Ready, "go": r.Go,
		"arr_ready": r.ARRReady, "go_revenue": r.GoRevenue, "total_revenue": r.TotalRevenue,
		"cs": r.CS, "eng": r.Eng, "sdr": r.SDR, "ae": r.AE, "ga": r.GA,
		"total_headcount": r.TotalHeadcount, "payroll": r.Payroll,
		"cogs": r.COGS, "opex": r.Opex, "gross_margin": r.GrossMargin, "ebitda": r.EBITDA,
		"collections": r.Collections, "ending_cash": r.EndingCash,
	}
}

// zeroFunnel returns defaults with no marketing and no conversion.
func zeroFunnel() Inputs {
	in := DefaultInputs()
	in[KeyMarketingStart] = 0.0
	in[KeyMarketingEnd] = 0.0
	in[KeyMFChurnRate] = 1.0
	in[KeyConversionMFCF] = 0.0
	in[KeyConversionCFReady] = 0.0
	in[KeyConversionReadyGo] = 0.0
	return in
}

func TestProject_SeriesLengthMatchesHorizon(t *testing.T) {
	cases := []Options{
		DefaultOptions(),
		{Months: 3},
		{Quarters: 4},
		{Months: 1, Quarters: 1},
		{Months: 60, Quarters: 20, Funding: FundingOverwrite},
	}
	for _, opts := range cases {
		r := mustProject(t, DefaultInputs(), opts)
		want := opts.Periods()
		if r.Len() != want {
			t.Errorf("%+v: Len() = %d, want %d", opts, r.Len(), want)
		}
		for name, s := range allSeries(r) {
			if len(s) != want {
				t.Errorf("%+v: len(%s) = %d, want %d", opts, name, len(s), want)
			}
		}
	}
}

func TestProject_Labels(t *testing.T) {
	r := mustProject(t, DefaultInputs(), Options{Months: 2, Quarters: 2})
	want := []string{"M1", "M2", "Q1", "Q2"}
	if !reflect.DeepEqual(r.Periods, want) {
		t.Fatalf("Periods = %v, want %v", r.Periods, want)
	}
}

func TestProject_LaggedStagesStartAtZero(t *testing.T) {
	r := mustProject(t, DefaultInputs(), DefaultOptions())
	for name, s := range map[string][]float64{"mf": r.MF, "cf": r.CF, "ready": r.Ready, "go": r.Go} {
		if s[0] != 0 {
			t.Errorf("%s[0] = %v, want 0", name, s[0])
		}
	}
	if r.Free[0] != 10 {
		t.Errorf("Free[0] = %v, want 10 (10000 / 1000)", r.Free[0])
	}
}

func TestProject_FunnelRecurrence(t *testing.T) {
	in := DefaultInputs()
	r := mustProject(t, in, DefaultOptions())
	a, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < r.Len(); i++ {
		if got, want := r.MF[i], r.Free[i-1]*(1-a.MFChurnRate); got != want {
			t.Fatalf("MF[%d] = %v, want %v", i, got, want)
		}
		if got, want := r.CF[i], r.MF[i-1]*a.ConversionMFCF; got != want {
			t.Fatalf("CF[%d] = %v, want %v", i, got, want)
		}
		if got, want := r.Ready[i], r.CF[i-1]*a.ConversionCFReady; got != want {
			t.Fatalf("Ready[%d] = %v, want %v", i, got, want)
		}
		if got, want := r.Go[i], r.Ready[i-1]*a.ConversionReadyGo; got != want {
			t.Fatalf("Go[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestProject_FunnelNonNegative(t *testing.T) {
	r := mustProject(t, DefaultInputs(), DefaultOptions())
	for name, s := range map[string][]float64{"free": r.Free, "mf": r.MF, "cf": r.CF, "ready": r.Ready, "go": r.Go} {
		for i, v := range s {
			if v < 0 {
				t.Errorf("%s[%d] = %v, want >= 0", name, i, v)
			}
		}
	}
}

func TestProject_CashIsCumulative(t *testing.T) {
	r := mustProject(t, DefaultInputs(), DefaultOptions())
	first := r.Collections[0] + r.Funding[0] - r.Opex[0] - r.COGS[0]
	if r.EndingCash[0] != first {
		t.Fatalf("EndingCash[0] = %v, want %v", r.EndingCash[0], first)
	}
	for i := 1; i < r.Len(); i++ {
		delta := r.EndingCash[i] - r.EndingCash[i-1]
		flow := r.Collections[i] + r.Funding[i] - r.Opex[i] - r.COGS[i]
		if math.Abs(delta-flow) > 1e-6 {
			t.Fatalf("period %d: cash delta %v != net flow %v", i, delta, flow)
		}
	}
	if r.FinalCash() != r.EndingCash[r.Len()-1] {
		t.Fatalf("FinalCash() = %v, want last EndingCash %v", r.FinalCash(), r.EndingCash[r.Len()-1])
	}
}

func TestProject_FundingPlacement(t *testing.T) {
	in := DefaultInputs()
	in[KeyFundingMonths] = "2"
	in[KeyFundingAmounts] = "1000"

	r := mustProject(t, in, Options{Months: 4})
	want := []float64{0, 1000, 0, 0}
	if !reflect.DeepEqual(r.Funding, want) {
		t.Fatalf("Funding = %v, want %v", r.Funding, want)
	}
}

func TestProject_FundingOutsideHorizonIgnored(t *testing.T) {
	in := DefaultInputs()
	in[KeyFundingMonths] = "0, 5, 3"
	in[KeyFundingAmounts] = "10, 20, 30"

	r := mustProject(t, in, Options{Months: 3})
	want := []float64{0, 0, 30}
	if !reflect.DeepEqual(r.Funding, want) {
		t.Fatalf("Funding = %v, want %v", r.Funding, want)
	}
}

func TestProject_FundingPolicy(t *testing.T) {
	in := DefaultInputs()
	in[KeyFundingMonths] = []any{2, 2}
	in[KeyFundingAmounts] = []any{100.0, 250.0}

	acc := mustProject(t, in, Options{Months: 3, Funding: FundingAccumulate})
	if acc.Funding[1] != 350 {
		t.Errorf("accumulate: Funding[1] = %v, want 350", acc.Funding[1])
	}
	over := mustProject(t, in, Options{Months: 3, Funding: FundingOverwrite})
	if over.Funding[1] != 250 {
		t.Errorf("overwrite: Funding[1] = %v, want 250", over.Funding[1])
	}
}

func TestProject_ZeroFunnelScenario(t *testing.T) {
	in := zeroFunnel()
	in[KeyFundingMonths] = "1, 3, 9"
	in[KeyFundingAmounts] = "500, 700, 900"

	r := mustProject(t, in, Options{Months: 3})
	for name, s := range map[string][]float64{
		"free": r.Free, "mf": r.MF, "cf": r.CF, "ready": r.Ready, "go": r.Go,
		"total_revenue": r.TotalRevenue, "cogs": r.COGS,
	} {
		for i, v := range s {
			if v != 0 {
				t.Errorf("%s[%d] = %v, want 0", name, i, v)
			}
		}
	}

	// Only the SDR floor and fractional G&A remain on payroll.
	floor := 1*8000.0 + 0.5*10000.0
	payroll := 0.0
	for i := range r.Payroll {
		if r.Payroll[i] != floor {
			t.Errorf("Payroll[%d] = %v, want %v", i, r.Payroll[i], floor)
		}
		if r.EBITDA[i] != -floor {
			t.Errorf("EBITDA[%d] = %v, want %v", i, r.EBITDA[i], -floor)
		}
		payroll += r.Payroll[i]
	}
	if got, want := r.FinalCash(), 1200-payroll; got != want {
		t.Errorf("FinalCash() = %v, want %v", got, want)
	}
}

func TestProject_ZeroFunnelNoPayrollEndsWithFunding(t *testing.T) {
	in := zeroFunnel()
	for _, k := range []string{KeySalarySDR, KeySalaryCS, KeySalaryEng, KeySalaryAE, KeySalaryGA} {
		in[k] = 0.0
	}
	in[KeyFundingMonths] = "2, 3"
	in[KeyFundingAmounts] = "1000, 250"

	r := mustProject(t, in, Options{Months: 3})
	if r.FinalCash() != 1250 {
		t.Fatalf("FinalCash() = %v, want 1250", r.FinalCash())
	}
	for i, v := range r.EBITDA {
		if v != 0 {
			t.Errorf("EBITDA[%d] = %v, want 0", i, v)
		}
	}
}

func TestProject_MarketingRamp(t *testing.T) {
	in := DefaultInputs()
	in[KeyMarketingStart] = 100.0
	in[KeyMarketingEnd] = 400.0

	r := mustProject(t, in, Options{Months: 4, Quarters: 2})
	want := []float64{100, 200, 300, 400, 400, 400}
	if !reflect.DeepEqual(r.Marketing, want) {
		t.Fatalf("Marketing = %v, want %v", r.Marketing, want)
	}

	single := mustProject(t, in, Options{Months: 1, Quarters: 1})
	if !reflect.DeepEqual(single.Marketing, []float64{100, 400}) {
		t.Fatalf("single-month Marketing = %v, want [100 400]", single.Marketing)
	}

	quarterly := mustProject(t, in, Options{Quarters: 2})
	if !reflect.DeepEqual(quarterly.Marketing, []float64{400, 400}) {
		t.Fatalf("quarterly-only Marketing = %v, want [400 400]", quarterly.Marketing)
	}
}

func TestProject_HeadcountSteps(t *testing.T) {
	a, err := Parse(DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	r := &Result{Ready: []float64{0, 5, 20, 41}}
	projectHeadcount(r, a, 4)

	tests := []struct {
		name string
		got  []float64
		want []float64
	}{
		{"cs", r.CS, []float64{0, 1, 1, 3}},
		{"eng", r.Eng, []float64{0, 1, 1, 2}},
		{"sdr", r.SDR, []float64{1, 1, 2, 5}},
		{"ae", r.AE, []float64{0, 0, 1, 1}},
		{"ga", r.GA, []float64{0.5, 0.5, 0.5, 0.5}},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	wantPayroll := 3*10000.0 + 2*12000.0 + 5*8000.0 + 1*12000.0 + 0.5*10000.0
	if r.Payroll[3] != wantPayroll {
		t.Errorf("Payroll[3] = %v, want %v", r.Payroll[3], wantPayroll)
	}
	if r.TotalHeadcount[3] != 11.5 {
		t.Errorf("TotalHeadcount[3] = %v, want 11.5", r.TotalHeadcount[3])
	}
}

func TestProject_RevenueAndMargins(t *testing.T) {
	r := mustProject(t, DefaultInputs(), DefaultOptions())
	for i := 0; i < r.Len(); i++ {
		if got, want := r.TotalRevenue[i], r.Ready[i]*50000+r.Go[i]*75000000*0.015; math.Abs(got-want) > 1e-6 {
			t.Fatalf("TotalRevenue[%d] = %v, want %v", i, got, want)
		}
		if got, want := r.EBITDA[i], r.GrossMargin[i]-r.Opex[i]; got != want {
			t.Fatalf("EBITDA[%d] = %v, want %v", i, got, want)
		}
		if got, want := r.Opex[i], r.Payroll[i]+r.Marketing[i]; got != want {
			t.Fatalf("Opex[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestProject_Idempotent(t *testing.T) {
	in := DefaultInputs()
	first := mustProject(t, in, DefaultOptions())
	second := mustProject(t, in, DefaultOptions())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two projections of identical inputs differ")
	}
	if !reflect.DeepEqual(in, DefaultInputs()) {
		t.Fatal("Project mutated its inputs")
	}
}

func TestProject_InvalidHorizon(t *testing.T) {
	_, err := Project(DefaultInputs(), Options{})
	if !errors.Is(err, ErrInvalidAssumptions) {
		t.Fatalf("err = %v, want ErrInvalidAssumptions", err)
	}
	_, err = Project(DefaultInputs(), Options{Months: 3, Funding: "sometimes"})
	if !errors.Is(err, ErrInvalidAssumptions) {
		t.Fatalf("err = %v, want ErrInvalidAssumptions for bad policy", err)
	}
}

func TestCompute_MismatchedFundingLists(t *testing.T) {
	a, err := Parse(DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	a.FundingAmounts = a.FundingAmounts[:1]
	if _, err := Compute(a, DefaultOptions()); !errors.Is(err, ErrInvalidAssumptions) {
		t.Fatalf("err = %v, want ErrInvalidAssumptions", err)
	}
}

func TestMinCash(t *testing.T) {
	r := &Result{Periods: []string{"M1", "M2", "M3"}, EndingCash: []float64{5, -3, 2}}
	v, label := r.MinCash()
	if v != -3 || label != "M2" {
		t.Fatalf("MinCash() = (%v, %q), want (-3, M2)", v, label)
	}
}

func TestTables_Shape(t *testing.T) {
	r := mustProject(t, DefaultInputs(), Options{Months: 3, Quarters: 1})
	tables := r.Tables()
	if len(tables) != 3 {
		t.Fatalf("len(Tables()) = %d, want 3", len(tables))
	}
	names := []string{FunnelSheet, HeadcountSheet, StatementSheet}
	for i, tbl := range tables {
		if tbl.Name != names[i] {
			t.Errorf("table %d name = %q, want %q", i, tbl.Name, names[i])
		}
		if len(tbl.Rows) != 4 {
			t.Errorf("%s rows = %d, want 4", tbl.Name, len(tbl.Rows))
		}
		if tbl.Headers[0] != "Period" {
			t.Errorf("%s first header = %q, want Period", tbl.Name, tbl.Headers[0])
		}
		for _, row := range tbl.Rows {
			if len(row) != len(tbl.Headers)-1 {
				t.Fatalf("%s row width = %d, want %d", tbl.Name, len(row), len(tbl.Headers)-1)
			}
		}
	}
	stmt := r.StatementTable()
	last := stmt.Rows[len(stmt.Rows)-1]
	if last[len(last)-1] != r.FinalCash() {
		t.Errorf("statement Ending_Cash = %v, want %v", last[len(last)-1], r.FinalCash())
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a, err := Parse(DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	fp1 := Fingerprint(a, DefaultOptions())
	fp2 := Fingerprint(a, DefaultOptions())
	if fp1 != fp2 {
		t.Fatal("fingerprint changed between calls")
	}
	if fp1 == Fingerprint(a, Options{Months: 12}) {
		t.Fatal("fingerprint ignores options")
	}
	a.GoFee = 0.02
	if fp1 == Fingerprint(a, DefaultOptions()) {
		t.Fatal("fingerprint ignores assumptions")
	}
}

func TestOptionsString(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{DefaultOptions(), "24m+12q/accumulate"},
		{Options{Months: 3}, "3m+0q/accumulate"},
		{Options{Months: 1, Quarters: 2, Funding: "OVERWRITE"}, "1m+2q/overwrite"},
	}
	for _, tt := range tests {
		if got := tt.opts.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestProject_FundingPolicyIgnoresCase(t *testing.T) {
	in := DefaultInputs()
	in[KeyFundingMonths] = []any{2, 2}
	in[KeyFundingAmounts] = []any{100.0, 200.0}

	for _, policy := range []FundingPolicy{"Overwrite", "OVERWRITE", " overwrite "} {
		r := mustProject(t, in, Options{Months: 3, Funding: policy})
		if want := []float64{0, 200, 0}; !reflect.DeepEqual(r.Funding, want) {
			t.Errorf("policy %q: Funding = %v, want %v", policy, r.Funding, want)
		}
	}
}

func TestProject_HorizonTooLong(t *testing.T) {
	tests := []Options{
		{Months: MaxPeriods + 1},
		{Months: MaxPeriods, Quarters: 1},
		{Months: math.MaxInt, Quarters: 1},
		{Quarters: math.MaxInt},
	}
	for _, opts := range tests {
		_, err := Project(DefaultInputs(), opts)
		if !errors.Is(err, ErrInvalidAssumptions) {
			t.Errorf("%dm+%dq: err = %v, want ErrInvalidAssumptions", opts.Months, opts.Quarters, err)
		}
	}
	r := mustProject(t, DefaultInputs(), Options{Months: MaxPeriods - 10, Quarters: 10})
	if r.Len() != MaxPeriods {
		t.Errorf("Len() = %d, want %d", r.Len(), MaxPeriods)
	}
}

func TestCompute_NonPositiveDivisor(t *testing.T) {
	base, err := Parse(DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		mutate func(*Assumptions)
		key    string
	}{
		{"zero CAC", func(a *Assumptions) { a.OperatorCAC = 0 }, KeyOperatorCAC},
		{"zero CS capacity", func(a *Assumptions) { a.CustomersPerCS = 0 }, KeyCustomersPerCS},
		{"negative Eng capacity", func(a *Assumptions) { a.CustomersPerEng = -1 }, KeyCustomersPerEng},
		{"zero SDR capacity", func(a *Assumptions) { a.CustomersPerSDR = 0 }, KeyCustomersPerSDR},
		{"NaN salary", func(a *Assumptions) { a.SalaryAE = math.NaN() }, KeySalaryAE},
		{"infinite funding", func(a *Assumptions) { a.FundingAmounts = []float64{math.Inf(1), 1} }, KeyFundingAmounts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			a.FundingAmounts = append([]float64(nil), base.FundingAmounts...)
			tt.mutate(&a)

			r, err := Compute(a, Options{Months: 3})
			if r != nil {
				t.Fatalf("Compute returned a result: cash %v", r.EndingCash)
			}
			var iae *InvalidAssumptionsError
			if !errors.As(err, &iae) {
				t.Fatalf("err = %v, want *InvalidAssumptionsError", err)
			}
			if !reflect.DeepEqual(iae.Keys(), []string{tt.key}) {
				t.Errorf("Keys() = %v, want [%s]", iae.Keys(), tt.key)
			}
		})
	}
}

func TestFingerprint_NonFiniteAndPolicySpelling(t *testing.T) {
	a, err := Parse(DefaultInputs())
	if err != nil {
		t.Fatal(err)
	}
	if Fingerprint(a, Options{Months: 3, Funding: "Overwrite"}) != Fingerprint(a, Options{Months: 3, Funding: FundingOverwrite}) {
		t.Error("policy spelling changed the fingerprint")
	}

	nan := a
	nan.GoFee = math.NaN()
	inf := a
	inf.GoFee = math.Inf(1)
	empty := sha256Hex(nil)
	for _, fp := range []string{Fingerprint(nan, DefaultOptions()), Fingerprint(inf, DefaultOptions())} {
		if fp == empty || fp == Fingerprint(a, DefaultOptions()) {
			t.Errorf("non-finite assumptions fingerprint = %s", fp)
		}
	}
	if Fingerprint(nan, DefaultOptions()) == Fingerprint(inf, DefaultOptions()) {
		t.Error("NaN and Inf assumptions share a fingerprint")
	}
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
