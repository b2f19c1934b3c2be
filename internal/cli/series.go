package cli

import "github.com/theirongolddev/proforma/internal/engine"

// countColumns hold people rather than money.
var countColumns = map[string]bool{
	"Free": true, "MF": true, "CF": true, "Ready": true, "Go": true,
	"CS": true, "Eng": true, "SDR": true, "AE": true, "G&A": true,
	"Total_Headcount": true,
}

// FormatSeriesValue formats a projection cell according to its column.
func FormatSeriesValue(header string, v float64) string {
	if countColumns[header] {
		return FormatCount(v)
	}
	return FormatMoney(v)
}

// ProjectionTable converts an engine table into a renderable Table with
// the period label as first column.
func ProjectionTable(t engine.Table) Table {
	out := Table{
		Title:   t.Name,
		Headers: t.Headers,
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, vals := range t.Rows {
		row := make([]string, 0, len(vals)+1)
		row = append(row, t.Labels[i])
		for j, v := range vals {
			row = append(row, FormatSeriesValue(t.Headers[j+1], v))
		}
		out.Rows[i] = row
	}
	return out
}

// RawProjectionTable is ProjectionTable with unformatted numbers, for
// machine-readable output.
func RawProjectionTable(t engine.Table) Table {
	out := Table{
		Title:   t.Name,
		Headers: t.Headers,
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, vals := range t.Rows {
		row := make([]string, 0, len(vals)+1)
		row = append(row, t.Labels[i])
		for _, v := range vals {
			row = append(row, FormatRaw(v))
		}
		out.Rows[i] = row
	}
	return out
}
