package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/proforma/internal/scenario"
)

var scenarioHeaders = []any{
	"Year", "Operators", "Operator ARR", "Transaction Revenue",
	"Investor Services", "Investor Licenses", "Total Revenue",
}

// sheetName trims a scenario name to excel's 31 character sheet limit.
func sheetName(name string) string {
	r := []rune(name)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}

// WriteScenarios saves one sheet per projected scenario at path.
func WriteScenarios(path string, projections []scenario.Projection) error {
	if len(projections) == 0 {
		return fmt.Errorf("no scenarios to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	for i, p := range projections {
		name := sheetName(p.Scenario)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}

		header := scenarioHeaders
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", "G1", st.header); err != nil {
			return err
		}
		for j, r := range p.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, j+2)
			row := []any{r.Year, r.Operators, r.OperatorARR, r.TransactionRevenue,
				r.InvestorServices, r.InvestorLicenses, r.TotalRevenue}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
		if len(p.Rows) > 0 {
			last, _ := excelize.CoordinatesToCellName(7, len(p.Rows)+1)
			if err := f.SetCellStyle(name, "C2", last, st.number); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(name, "A", "G", 20); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
