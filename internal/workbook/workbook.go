// Package workbook is the spreadsheet boundary: it builds the Inputs
// template, writes projection tables back as sheets and reports the run
// status in the Key Metrics block.
package workbook

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/source"
)

// Key Metrics block on the Inputs sheet.
const (
	MetricsTitleCell = "E1"
	StatusLabelCell  = "E2"
	StatusCell       = "F2"
	KPILabelCell     = "E3"
	KPICell          = "F3"

	StatusSuccess = "Success!"
	errorPrefix   = "ERROR: "
)

// builtin "#,##0.00"
const numFmtMoney = 4

type styles struct {
	header int
	label  int
	number int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"14375A"}, Pattern: 1},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("label style: %w", err)
	}
	s.number, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return s, fmt.Errorf("number style: %w", err)
	}
	return s, nil
}

// NewTemplate builds an in-memory workbook whose Inputs sheet lists in.
// Known keys come first in their usual order, then any extra keys sorted.
func NewTemplate(in engine.Inputs) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := writeInputs(f, in); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeInputs(f *excelize.File, in engine.Inputs) error {
	if err := f.SetSheetName(f.GetSheetName(0), source.InputsSheet); err != nil {
		return fmt.Errorf("naming inputs sheet: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	sheet := source.InputsSheet
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Variable", "Value", "Description"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", st.header); err != nil {
		return err
	}

	row := 2
	for _, key := range orderedKeys(in) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &[]any{key, cellValue(in[key]), engine.Describe(key)}); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
		row++
	}
	if row > 2 {
		last, _ := excelize.CoordinatesToCellName(2, row-1)
		if err := f.SetCellStyle(sheet, "B2", last, st.number); err != nil {
			return err
		}
	}

	for cell, v := range map[string]string{
		MetricsTitleCell: "Key Metrics",
		StatusLabelCell:  "Status:",
		KPILabelCell:     "Ending Cash:",
	} {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, MetricsTitleCell, KPILabelCell, st.label); err != nil {
		return err
	}

	for col, width := range map[string]float64{"A": 24, "B": 18, "C": 56, "E": 14, "F": 20} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func orderedKeys(in engine.Inputs) []string {
	keys := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, fd := range engine.DefaultFields {
		if _, ok := in[fd.Key]; ok {
			keys = append(keys, fd.Key)
			seen[fd.Key] = true
		}
	}
	var extra []string
	for k := range in {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// cellValue flattens list values into the comma-separated cell form.
func cellValue(v any) any {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case []float64:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = strconv.FormatFloat(item, 'f', -1, 64)
		}
		return strings.Join(parts, ", ")
	case []int:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = strconv.Itoa(item)
		}
		return strings.Join(parts, ", ")
	}
	return v
}

// CreateTemplate writes a new workbook at path with an Inputs sheet
// populated from in.
func CreateTemplate(path string, in engine.Inputs) error {
	f, err := NewTemplate(in)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// WriteResult replaces the three output sheets with r's tables and records
// success and ending cash in the Key Metrics block.
func WriteResult(f *excelize.File, r *engine.Result) error {
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	for _, t := range r.Tables() {
		if err := writeTable(f, t, st); err != nil {
			return fmt.Errorf("writing %s: %w", t.Name, err)
		}
	}

	if err := f.SetCellValue(source.InputsSheet, StatusCell, StatusSuccess); err != nil {
		return err
	}
	if err := f.SetCellValue(source.InputsSheet, KPICell, r.FinalCash()); err != nil {
		return err
	}
	if err := f.SetCellStyle(source.InputsSheet, KPICell, KPICell, st.number); err != nil {
		return err
	}
	return activateInputs(f)
}

func writeTable(f *excelize.File, t engine.Table, st styles) error {
	if idx, err := f.GetSheetIndex(t.Name); err == nil && idx >= 0 {
		if err := f.DeleteSheet(t.Name); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(t.Name); err != nil {
		return err
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
	if err := f.SetCellStyle(t.Name, "A1", lastHeader, st.header); err != nil {
		return err
	}

	for i, vals := range t.Rows {
		row := make([]any, 0, len(vals)+1)
		row = append(row, t.Labels[i])
		for _, v := range vals {
			row = append(row, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}
	if len(t.Rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), len(t.Rows)+1)
		if err := f.SetCellStyle(t.Name, "B2", last, st.number); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
	return f.SetColWidth(t.Name, "A", lastCol, 16)
}

func activateInputs(f *excelize.File) error {
	idx, err := f.GetSheetIndex(source.InputsSheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return nil
}

// WriteError reports err in the status cell. Output sheets from an
// earlier successful run are left alone.
func WriteError(f *excelize.File, err error) error {
	return f.SetCellValue(source.InputsSheet, StatusCell, ErrorStatus(err))
}

// ErrorStatus is the status-cell text for a failed run.
func ErrorStatus(err error) string {
	return errorPrefix + err.Error()
}

// ReadStatus returns the current status cell text.
func ReadStatus(f *excelize.File) (string, error) {
	return f.GetCellValue(source.InputsSheet, StatusCell)
}

// Outcome describes one recalculation. Failure is set when the inputs were
// rejected; Status then carries the same message as the status cell.
type Outcome struct {
	Inputs  engine.Inputs
	Result  *engine.Result
	Status  string
	Failure error
}

// Recalculate opens the workbook at path, projects its Inputs sheet and
// saves the outputs back into the same file. Invalid assumptions are
// written to the status cell and reported through Outcome.Failure; the
// returned error covers only workbook I/O.
func Recalculate(path string, opts engine.Options) (Outcome, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	out, err := Apply(f, opts)
	if err != nil {
		return out, err
	}
	if err := f.Save(); err != nil {
		return out, fmt.Errorf("saving %s: %w", path, err)
	}
	return out, nil
}

// Apply is Recalculate for an already open workbook; it does not save.
func Apply(f *excelize.File, opts engine.Options) (Outcome, error) {
	in, err := source.ReadInputsSheet(f)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Inputs: in}

	r, err := engine.Project(in, opts)
	if err != nil {
		if !errors.Is(err, engine.ErrInvalidAssumptions) {
			return out, err
		}
		out.Failure = err
		out.Status = ErrorStatus(err)
		return out, WriteError(f, err)
	}

	out.Result = r
	out.Status = StatusSuccess
	return out, WriteResult(f, r)
}

// Export writes a fresh workbook holding in and the projection r.
func Export(path string, in engine.Inputs, r *engine.Result) error {
	f, err := NewTemplate(in)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := WriteResult(f, r); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
