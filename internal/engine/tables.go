package engine

// Table is a period-indexed view over a Result: one row per period, the
// first column being the period label.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]float64
	Labels  []string
}

type column struct {
	header string
	series []float64
}

func buildTable(name string, labels []string, cols []column) Table {
	t := Table{
		Name:    name,
		Headers: make([]string, 0, len(cols)+1),
		Rows:    make([][]float64, len(labels)),
		Labels:  labels,
	}
	t.Headers = append(t.Headers, "Period")
	for _, c := range cols {
		t.Headers = append(t.Headers, c.header)
	}
	for i := range labels {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c.series[i]
		}
		t.Rows[i] = row
	}
	return t
}

// Sheet names the host writes each table under.
const (
	FunnelSheet    = "Revenue_Cohorts"
	HeadcountSheet = "Headcount_Payroll"
	StatementSheet = "3_Statement"
)

// FunnelTable is the funnel and revenue view.
func (r *Result) FunnelTable() Table {
	return buildTable(FunnelSheet, r.Periods, []column{
		{"Free", r.Free},
		{"MF", r.MF},
		{"CF", r.CF},
		{"Ready", r.Ready},
		{"Go", r.Go},
		{"ARR_Ready", r.ARRReady},
		{"Go_Revenue", r.GoRevenue},
		{"Total_Revenue", r.TotalRevenue},
	})
}

// HeadcountTable is the headcount and payroll view.
func (r *Result) HeadcountTable() Table {
	return buildTable(HeadcountSheet, r.Periods, []column{
		{"CS", r.CS},
		{"Eng", r.Eng},
		{"SDR", r.SDR},
		{"AE", r.AE},
		{"G&A", r.GA},
		{"Total_Headcount", r.TotalHeadcount},
		{"Payroll", r.Payroll},
	})
}

// StatementTable is the revenue/cost/EBITDA/cash statement.
func (r *Result) StatementTable() Table {
	return buildTable(StatementSheet, r.Periods, []column{
		{"Revenue", r.TotalRevenue},
		{"COGS", r.COGS},
		{"Gross_Margin", r.GrossMargin},
		{"Opex", r.Opex},
		{"EBITDA", r.EBITDA},
		{"Funding", r.Funding},
		{"Ending_Cash", r.EndingCash},
	})
}

// Tables returns the three views in sheet order.
func (r *Result) Tables() []Table {
	return []Table{r.FunnelTable(), r.HeadcountTable(), r.StatementTable()}
}
