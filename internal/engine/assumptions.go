package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Inputs is the raw, untyped assumption mapping handed over by a host:
// sheet rows, YAML/TOML documents or JSON request bodies.
type Inputs map[string]any

// Assumption keys recognized by Parse.
const (
	KeyOperatorCAC       = "Operator_CAC"
	KeyInvestorCAC       = "Investor_CAC"
	KeyMFChurnRate       = "MF_Churn_Rate"
	KeyConversionMFCF    = "Conversion_MF_CF"
	KeyConversionCFReady = "Conversion_CF_Ready"
	KeyConversionReadyGo = "Conversion_Ready_Go"
	KeyPriceMF           = "Price_MF"
	KeyPriceCF           = "Price_CF"
	KeyPriceReady        = "Price_Ready"
	KeyGoDealSize        = "Go_Deal_Size"
	KeyGoFee             = "Go_Fee"
	KeySalarySDR         = "Salary_SDR"
	KeySalaryCS          = "Salary_CS"
	KeySalaryEng         = "Salary_Eng"
	KeySalaryAE          = "Salary_AE"
	KeySalaryGA          = "Salary_GA"
	KeyCustomersPerCS    = "Customers_Per_CS"
	KeyCustomersPerEng   = "Customers_Per_Eng"
	KeyCustomersPerSDR   = "Customers_Per_SDR"
	KeyAEThreshold       = "AE_Threshold"
	KeyGAHeadcount       = "GA_Headcount"
	KeyMarketingStart    = "Marketing_Start"
	KeyMarketingEnd      = "Marketing_End"
	KeyFundingMonths     = "Funding_Months"
	KeyFundingAmounts    = "Funding_Amounts"
	KeyCollectionUpfront = "Collection_Upfront"
	KeyCOGSPct           = "COGS_Pct"
)

// Defaults for the optional staffing keys.
const (
	DefaultCustomersPerSDR = 10
	DefaultAEThreshold     = 20
	DefaultGAHeadcount     = 0.5
)

// Assumptions is the validated, typed form of Inputs.
type Assumptions struct {
	OperatorCAC       float64
	MFChurnRate       float64
	ConversionMFCF    float64
	ConversionCFReady float64
	ConversionReadyGo float64

	PriceReady float64
	GoDealSize float64
	GoFee      float64

	SalarySDR float64
	SalaryCS  float64
	SalaryEng float64
	SalaryAE  float64
	SalaryGA  float64

	CustomersPerCS  float64
	CustomersPerEng float64
	CustomersPerSDR float64
	AEThreshold     float64
	GAHeadcount     float64

	MarketingStart float64
	MarketingEnd   float64

	FundingMonths  []int
	FundingAmounts []float64

	CollectionUpfront float64
	COGSPct           float64
}

type scalarField struct {
	key      string
	dst      func(*Assumptions) *float64
	positive bool
}

var requiredScalars = []scalarField{
	{KeyOperatorCAC, func(a *Assumptions) *float64 { return &a.OperatorCAC }, true},
	{KeyMFChurnRate, func(a *Assumptions) *float64 { return &a.MFChurnRate }, false},
	{KeyConversionMFCF, func(a *Assumptions) *float64 { return &a.ConversionMFCF }, false},
	{KeyConversionCFReady, func(a *Assumptions) *float64 { return &a.ConversionCFReady }, false},
	{KeyConversionReadyGo, func(a *Assumptions) *float64 { return &a.ConversionReadyGo }, false},
	{KeyPriceReady, func(a *Assumptions) *float64 { return &a.PriceReady }, false},
	{KeyGoDealSize, func(a *Assumptions) *float64 { return &a.GoDealSize }, false},
	{KeyGoFee, func(a *Assumptions) *float64 { return &a.GoFee }, false},
	{KeySalarySDR, func(a *Assumptions) *float64 { return &a.SalarySDR }, false},
	{KeySalaryCS, func(a *Assumptions) *float64 { return &a.SalaryCS }, false},
	{KeySalaryEng, func(a *Assumptions) *float64 { return &a.SalaryEng }, false},
	{KeySalaryAE, func(a *Assumptions) *float64 { return &a.SalaryAE }, false},
	{KeySalaryGA, func(a *Assumptions) *float64 { return &a.SalaryGA }, false},
	{KeyCustomersPerCS, func(a *Assumptions) *float64 { return &a.CustomersPerCS }, true},
	{KeyCustomersPerEng, func(a *Assumptions) *float64 { return &a.CustomersPerEng }, true},
	{KeyMarketingStart, func(a *Assumptions) *float64 { return &a.MarketingStart }, false},
	{KeyMarketingEnd, func(a *Assumptions) *float64 { return &a.MarketingEnd }, false},
	{KeyCollectionUpfront, func(a *Assumptions) *float64 { return &a.CollectionUpfront }, false},
	{KeyCOGSPct, func(a *Assumptions) *float64 { return &a.COGSPct }, false},
}

type optionalScalar struct {
	scalarField
	def float64
}

var optionalScalars = []optionalScalar{
	{scalarField{KeyCustomersPerSDR, func(a *Assumptions) *float64 { return &a.CustomersPerSDR }, true}, DefaultCustomersPerSDR},
	{scalarField{KeyAEThreshold, func(a *Assumptions) *float64 { return &a.AEThreshold }, false}, DefaultAEThreshold},
	{scalarField{KeyGAHeadcount, func(a *Assumptions) *float64 { return &a.GAHeadcount }, false}, DefaultGAHeadcount},
}

// RequiredKeys returns the keys Parse refuses to run without, in input-sheet order.
func RequiredKeys() []string {
	keys := make([]string, 0, len(requiredScalars)+2)
	for _, f := range requiredScalars {
		keys = append(keys, f.key)
	}
	return append(keys, KeyFundingMonths, KeyFundingAmounts)
}

// Parse validates raw inputs and converts them to Assumptions. Scalars may
// be numbers or numeric strings; the funding lists may be numeric slices or
// comma-separated strings. All problems are reported together.
func Parse(in Inputs) (Assumptions, error) {
	var a Assumptions
	var ps problems

	for _, f := range requiredScalars {
		raw, ok := in[f.key]
		if !ok || raw == nil {
			ps.add(f.key, "missing")
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			ps.add(f.key, "%v", err)
			continue
		}
		if !checkScalar(&ps, f, v) {
			continue
		}
		*f.dst(&a) = v
	}

	for _, f := range optionalScalars {
		*f.dst(&a) = f.def
		raw, ok := in[f.key]
		if !ok || raw == nil || raw == "" {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			ps.add(f.key, "%v", err)
			continue
		}
		if !checkScalar(&ps, f.scalarField, v) {
			continue
		}
		*f.dst(&a) = v
	}

	months, monthsOK := parseList(in, KeyFundingMonths, &ps)
	amounts, amountsOK := parseList(in, KeyFundingAmounts, &ps)
	if monthsOK {
		a.FundingMonths = make([]int, 0, len(months))
		for i, m := range months {
			if m != math.Trunc(m) {
				ps.add(KeyFundingMonths, "entry %d (%v) is not a whole month", i+1, m)
				monthsOK = false
				break
			}
			a.FundingMonths = append(a.FundingMonths, int(m))
		}
	}
	if amountsOK {
		a.FundingAmounts = amounts
	}
	if monthsOK && amountsOK {
		checkFundingLengths(&ps, len(months), len(amounts))
	}

	if err := ps.err(); err != nil {
		return Assumptions{}, err
	}
	return a, nil
}

// checkScalar reports a value the projection cannot run with and returns
// false for it.
func checkScalar(ps *problems, f scalarField, v float64) bool {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		ps.add(f.key, "not a finite number: %v", v)
	case f.positive && v <= 0:
		ps.add(f.key, "must be greater than zero, got %v", v)
	default:
		return true
	}
	return false
}

func checkFundingLengths(ps *problems, months, amounts int) {
	if months != amounts {
		ps.add(KeyFundingMonths, "has %d entries but %s has %d", months, KeyFundingAmounts, amounts)
	}
}

// check applies the value rules of Parse to assumptions that may have been
// built directly. Funding months are whole by type.
func (a Assumptions) check() error {
	var ps problems
	for _, f := range requiredScalars {
		checkScalar(&ps, f, *f.dst(&a))
	}
	for _, f := range optionalScalars {
		checkScalar(&ps, f.scalarField, *f.dst(&a))
	}
	for i, v := range a.FundingAmounts {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			ps.add(KeyFundingAmounts, "entry %d is not a finite number: %v", i+1, v)
			break
		}
	}
	checkFundingLengths(&ps, len(a.FundingMonths), len(a.FundingAmounts))
	return ps.err()
}

func parseList(in Inputs, key string, ps *problems) ([]float64, bool) {
	raw, ok := in[key]
	if !ok || raw == nil {
		ps.add(key, "missing")
		return nil, false
	}
	vals, err := toFloatList(raw)
	if err != nil {
		ps.add(key, "%v", err)
		return nil, false
	}
	return vals, true
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, fmt.Errorf("empty value")
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}

func toFloatList(v any) ([]float64, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return []float64{}, nil
		}
		parts := strings.Split(s, ",")
		out := make([]float64, 0, len(parts))
		for _, p := range parts {
			f, err := toFloat(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	case []float64:
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, 0, len(x))
		for _, item := range x {
			f, err := toFloat(item)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	default:
		// A lone number is a one-element list (a single-event funding cell).
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return []float64{f}, nil
	}
}

// Inputs converts typed assumptions back to the raw mapping, using the
// comma-separated form for the funding lists.
func (a Assumptions) Inputs() Inputs {
	in := make(Inputs, len(requiredScalars)+len(optionalScalars)+2)
	for _, f := range requiredScalars {
		in[f.key] = *f.dst(&a)
	}
	for _, f := range optionalScalars {
		in[f.key] = *f.dst(&a)
	}
	months := make([]string, len(a.FundingMonths))
	for i, m := range a.FundingMonths {
		months[i] = strconv.Itoa(m)
	}
	amounts := make([]string, len(a.FundingAmounts))
	for i, v := range a.FundingAmounts {
		amounts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	in[KeyFundingMonths] = strings.Join(months, ", ")
	in[KeyFundingAmounts] = strings.Join(amounts, ", ")
	return in
}
