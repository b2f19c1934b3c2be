// Package scenario projects named annual revenue scenarios from a YAML
// file: operator ARR by fit tier, transaction fees and investor revenue.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for omitted document fields.
const (
	DefaultStartYear = 2025
	DefaultYears     = 5
)

// Pricing holds the per-customer prices shared by every scenario.
type Pricing struct {
	MarketPrice  float64 `yaml:"market_price"`
	CompanyPrice float64 `yaml:"company_price"`
	ReadyPrice   float64 `yaml:"ready_price"`
	GoFeePct     float64 `yaml:"go_fee_pct"`
	DealSize     float64 `yaml:"deal_size"`
}

// DefaultPricing returns the standard price book.
func DefaultPricing() Pricing {
	return Pricing{
		MarketPrice:  10_000,
		CompanyPrice: 30_000,
		ReadyPrice:   50_000,
		GoFeePct:     0.015,
		DealSize:     100_000_000,
	}
}

// Document is a decoded scenarios file.
type Document struct {
	StartYear int       `yaml:"start_year"`
	Years     int       `yaml:"years"`
	Pricing   Pricing   `yaml:"pricing"`
	Scenarios Scenarios `yaml:"scenarios"`
}

// Scenario is one named set of yearly drivers.
type Scenario struct {
	Name             string  `yaml:"-"`
	OperatorStart    float64 `yaml:"operator_start"`
	OperatorEnd      float64 `yaml:"operator_end"`
	GraduationRate   Series  `yaml:"graduation_rate"`
	ReadyCustomers   Series  `yaml:"ready_customers"`
	GoProbability    Series  `yaml:"go_probability"`
	InvestorServices Series  `yaml:"investor_services"`
	InvestorLicenses Series  `yaml:"investor_licenses"`
}

// UnmarshalYAML implements yaml.Unmarshaler. It also accepts the older
// operator_end_2025 spelling of operator_end.
func (sc *Scenario) UnmarshalYAML(value *yaml.Node) error {
	type plain Scenario
	var raw struct {
		Fields    plain    `yaml:",inline"`
		LegacyEnd *float64 `yaml:"operator_end_2025"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*sc = Scenario(raw.Fields)
	if raw.LegacyEnd != nil {
		if hasKey(value, "operator_end") {
			return fmt.Errorf("line %d: operator_end and operator_end_2025 are both set", value.Line)
		}
		sc.OperatorEnd = *raw.LegacyEnd
	}
	return nil
}

func hasKey(m *yaml.Node, key string) bool {
	if m.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Scenarios decodes from a YAML mapping of name to scenario, keeping the
// order the file lists them in.
type Scenarios []Scenario

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scenarios) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: scenarios must map names to scenarios", value.Line)
	}
	out := make(Scenarios, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var sc Scenario
		if err := value.Content[i+1].Decode(&sc); err != nil {
			return fmt.Errorf("scenario %q: %w", value.Content[i].Value, err)
		}
		sc.Name = value.Content[i].Value
		out = append(out, sc)
	}
	*s = out
	return nil
}

// Series is a per-year driver. A single value applies to every year; an
// empty series is zero throughout.
type Series []float64

// UnmarshalYAML accepts either a scalar or a sequence of numbers.
func (s *Series) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*s = Series{v}
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := value.Decode(&vs); err != nil {
			return err
		}
		*s = vs
		return nil
	default:
		return fmt.Errorf("line %d: want a number or a list of numbers", value.Line)
	}
}

// At returns the value for year index i. A series shorter than the
// horizon holds its last value.
func (s Series) At(i int) float64 {
	switch {
	case len(s) == 0 || i < 0:
		return 0
	case i >= len(s):
		return s[len(s)-1]
	default:
		return s[i]
	}
}

// Load reads and validates a scenarios file.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-chosen scenarios file
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenarios document, filling defaults for
// start_year, years and any omitted price. A document whose top level maps
// scenario names directly, with no document keys, is read as the scenarios
// mapping.
func Parse(data []byte) (Document, error) {
	doc := Document{
		StartYear: DefaultStartYear,
		Years:     DefaultYears,
		Pricing:   DefaultPricing(),
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("parsing scenarios: %w", err)
	}
	if len(root.Content) > 0 {
		top := root.Content[0]
		var err error
		if bareScenarios(top) {
			err = top.Decode(&doc.Scenarios)
		} else {
			err = top.Decode(&doc)
		}
		if err != nil {
			return Document{}, fmt.Errorf("parsing scenarios: %w", err)
		}
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

var documentKeys = []string{"start_year", "years", "pricing", "scenarios"}

func bareScenarios(top *yaml.Node) bool {
	if top.Kind != yaml.MappingNode || len(top.Content) == 0 {
		return false
	}
	for _, k := range documentKeys {
		if hasKey(top, k) {
			return false
		}
	}
	return true
}

// Validate reports every problem in the document at once.
func (d Document) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if d.Years < 1 {
		bad("years must be at least 1, got %d", d.Years)
	}
	prices := []struct {
		key string
		v   float64
	}{
		{"market_price", d.Pricing.MarketPrice},
		{"company_price", d.Pricing.CompanyPrice},
		{"ready_price", d.Pricing.ReadyPrice},
		{"go_fee_pct", d.Pricing.GoFeePct},
		{"deal_size", d.Pricing.DealSize},
	}
	for _, p := range prices {
		if p.v < 0 {
			bad("pricing.%s must not be negative, got %v", p.key, p.v)
		}
	}
	if len(d.Scenarios) == 0 {
		bad("no scenarios defined")
	}

	seen := make(map[string]bool, len(d.Scenarios))
	for _, sc := range d.Scenarios {
		if seen[sc.Name] {
			bad("scenario %q defined twice", sc.Name)
		}
		seen[sc.Name] = true

		if sc.OperatorStart < 0 || sc.OperatorEnd < 0 {
			bad("%s: operator counts must not be negative", sc.Name)
		}
		series := []struct {
			key      string
			s        Series
			fraction bool
		}{
			{"graduation_rate", sc.GraduationRate, true},
			{"ready_customers", sc.ReadyCustomers, false},
			{"go_probability", sc.GoProbability, false},
			{"investor_services", sc.InvestorServices, false},
			{"investor_licenses", sc.InvestorLicenses, false},
		}
		for _, f := range series {
			if n := len(f.s); n > 1 && d.Years >= 1 && n != d.Years {
				bad("%s: %s has %d values, want 1 or %d", sc.Name, f.key, n, d.Years)
			}
			for _, v := range f.s {
				if v < 0 {
					bad("%s: %s must not be negative, got %v", sc.Name, f.key, v)
					break
				}
				if f.fraction && v > 1 {
					bad("%s: %s must be within [0, 1], got %v", sc.Name, f.key, v)
					break
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Row is one projected year.
type Row struct {
	Year               int     `json:"year"`
	Operators          float64 `json:"operators"`
	OperatorARR        float64 `json:"operator_arr"`
	TransactionRevenue float64 `json:"transaction_revenue"`
	InvestorServices   float64 `json:"investor_services"`
	InvestorLicenses   float64 `json:"investor_licenses"`
	TotalRevenue       float64 `json:"total_revenue"`
}

// Projection is a scenario's yearly rows.
type Projection struct {
	Scenario string `json:"scenario"`
	Rows     []Row  `json:"rows"`
}

// Total sums TotalRevenue across all years.
func (p Projection) Total() float64 {
	var sum float64
	for _, r := range p.Rows {
		sum += r.TotalRevenue
	}
	return sum
}

// Project computes one scenario over years starting at startYear.
func Project(sc Scenario, pricing Pricing, startYear, years int) Projection {
	p := Projection{Scenario: sc.Name, Rows: make([]Row, years)}
	for i := 0; i < years; i++ {
		ops := linspace(sc.OperatorStart, sc.OperatorEnd, years, i)
		marketFit := ops * pricing.MarketPrice
		companyFit := ops * sc.GraduationRate.At(i) * pricing.CompanyPrice
		ready := sc.ReadyCustomers.At(i) * pricing.ReadyPrice

		operatorARR := marketFit + companyFit + ready
		transaction := sc.GoProbability.At(i) * pricing.DealSize * pricing.GoFeePct

		// ARR and transaction revenue are reported in whole units; the total
		// sums the unrounded amounts.
		r := Row{
			Year:               startYear + i,
			Operators:          ops,
			OperatorARR:        math.RoundToEven(operatorARR),
			TransactionRevenue: math.RoundToEven(transaction),
			InvestorServices:   sc.InvestorServices.At(i),
			InvestorLicenses:   sc.InvestorLicenses.At(i),
		}
		r.TotalRevenue = operatorARR + transaction + r.InvestorServices + r.InvestorLicenses
		p.Rows[i] = r
	}
	return p
}

// ProjectAll projects every scenario in document order.
func (d Document) ProjectAll() []Projection {
	out := make([]Projection, len(d.Scenarios))
	for i, sc := range d.Scenarios {
		out[i] = Project(sc, d.Pricing, d.StartYear, d.Years)
	}
	return out
}

// linspace returns the i-th of n evenly spaced points from start to end.
func linspace(start, end float64, n, i int) float64 {
	if n <= 1 {
		return start
	}
	if i == n-1 {
		return end
	}
	return start + (end-start)*float64(i)/float64(n-1)
}
