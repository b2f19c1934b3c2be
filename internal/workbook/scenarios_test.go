package workbook

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/proforma/internal/scenario"
)

func TestWriteScenarios(t *testing.T) {
	pricing := scenario.DefaultPricing()
	projections := []scenario.Projection{
		scenario.Project(scenario.Scenario{Name: "base", OperatorStart: 1, OperatorEnd: 3}, pricing, 2025, 3),
		scenario.Project(scenario.Scenario{Name: "a-very-long-scenario-name-that-overflows", OperatorStart: 2}, pricing, 2025, 3),
	}

	path := filepath.Join(t.TempDir(), "scenarios.xlsx")
	if err := WriteScenarios(path, projections); err != nil {
		t.Fatalf("WriteScenarios: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "base" || len([]rune(sheets[1])) != 31 {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("base")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 || rows[0][0] != "Year" || rows[3][0] != "2027" {
		t.Errorf("rows = %v", rows)
	}
}

func TestWriteScenarios_Empty(t *testing.T) {
	if err := WriteScenarios(filepath.Join(t.TempDir(), "x.xlsx"), nil); err == nil {
		t.Fatal("WriteScenarios(nil) returned nil error")
	}
}
