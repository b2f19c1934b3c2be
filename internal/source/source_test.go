package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/proforma/internal/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func writeInputsWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", InputsSheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(InputsSheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yaml"), "Operator_CAC: 1000\n")
	writeFile(t, filepath.Join(dir, "nested", "upside.toml"), "Operator_CAC = 900\n")
	writeFile(t, filepath.Join(dir, "model.xlsx"), "")
	writeFile(t, filepath.Join(dir, "~$model.xlsx"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(dir, ".hidden", "secret.yaml"), "x: 1\n")

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, f.Name+":"+string(f.Format))
	}
	got := strings.Join(names, ",")
	want := "base:yaml,model:xlsx,upside:toml"
	if got != want {
		t.Fatalf("ScanDir = %s, want %s", got, want)
	}

	counts := CountFormats(files)
	if counts[FormatYAML] != 1 || counts[FormatWorkbook] != 1 || counts[FormatTOML] != 1 {
		t.Errorf("CountFormats = %v", counts)
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil || files != nil {
		t.Fatalf("ScanDir(missing) = %v, %v; want nil, nil", files, err)
	}
}

func TestReadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yml")
	writeFile(t, path, "Operator_CAC: 1000\nGo_Fee: 0.015\nFunding_Months: [7, 18]\nFunding_Amounts: \"750000, 1250000\"\n")

	in, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if in[engine.KeyOperatorCAC] != 1000 {
		t.Errorf("Operator_CAC = %#v, want int 1000", in[engine.KeyOperatorCAC])
	}
	if in[engine.KeyGoFee] != 0.015 {
		t.Errorf("Go_Fee = %#v, want 0.015", in[engine.KeyGoFee])
	}
	if _, ok := in[engine.KeyFundingMonths].([]any); !ok {
		t.Errorf("Funding_Months = %#v, want a list", in[engine.KeyFundingMonths])
	}
}

func TestReadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.toml")
	writeFile(t, path, "Operator_CAC = 1000\nFunding_Months = [7, 18]\n")

	in, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if in[engine.KeyOperatorCAC] != int64(1000) {
		t.Errorf("Operator_CAC = %#v, want int64 1000", in[engine.KeyOperatorCAC])
	}
}

func TestRead_Unsupported(t *testing.T) {
	if _, err := Read("inputs.csv"); err == nil {
		t.Fatal("Read(.csv) returned no error")
	}
}

func TestReadWorkbook_DefaultsProject(t *testing.T) {
	rows := [][]any{{"Variable", "Value", "Description"}}
	for _, f := range engine.DefaultFields {
		rows = append(rows, []any{f.Key, f.Value, f.Description})
	}
	rows = append(rows, []any{}, []any{"", "orphan"})

	path := filepath.Join(t.TempDir(), "model.xlsx")
	writeInputsWorkbook(t, path, rows)

	in, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(in) != len(engine.DefaultFields) {
		t.Fatalf("read %d keys, want %d", len(in), len(engine.DefaultFields))
	}
	if in[engine.KeyFundingMonths] != "7, 18" {
		t.Errorf("Funding_Months = %#v, want \"7, 18\"", in[engine.KeyFundingMonths])
	}

	want, err := engine.Project(engine.DefaultInputs(), engine.DefaultOptions())
	if err != nil {
		t.Fatalf("Project(defaults): %v", err)
	}
	got, err := engine.Project(in, engine.DefaultOptions())
	if err != nil {
		t.Fatalf("Project(workbook): %v", err)
	}
	if got.FinalCash() != want.FinalCash() {
		t.Errorf("FinalCash = %v, want %v", got.FinalCash(), want.FinalCash())
	}
}

func TestReadWorkbook_NoInputsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	_, err := ReadWorkbook(path)
	if err == nil || !strings.Contains(err.Error(), "no Inputs sheet") {
		t.Fatalf("err = %v, want missing sheet error", err)
	}
}
