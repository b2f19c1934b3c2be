package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/proforma/internal/engine"
)

// Read loads raw assumptions from path, choosing the decoder by extension.
func Read(path string) (engine.Inputs, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported input format %q", path, extOf(path))
	}
	switch format {
	case FormatWorkbook:
		return ReadWorkbook(path)
	case FormatYAML:
		return ReadYAML(path)
	default:
		return ReadTOML(path)
	}
}

// ReadWorkbook reads the Inputs sheet of an .xlsx workbook. The first
// column holds the key, the second the value; a header row whose first
// cell is "Variable" is skipped, as are rows with an empty key.
func ReadWorkbook(path string) (engine.Inputs, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadInputsSheet(f)
}

// ReadInputsSheet is ReadWorkbook for an already open workbook.
func ReadInputsSheet(f *excelize.File) (engine.Inputs, error) {
	idx, err := f.GetSheetIndex(InputsSheet)
	if err != nil {
		return nil, fmt.Errorf("locating %s sheet: %w", InputsSheet, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("workbook has no %s sheet", InputsSheet)
	}

	rows, err := f.GetRows(InputsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", InputsSheet, err)
	}

	in := make(engine.Inputs, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		key := strings.TrimSpace(row[0])
		if key == "" || (i == 0 && strings.EqualFold(key, "Variable")) {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = strings.TrimSpace(row[1])
		}
		in[key] = value
	}
	return in, nil
}

// ReadYAML reads a flat mapping of key to value.
func ReadYAML(path string) (engine.Inputs, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-chosen input file
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var in engine.Inputs
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if in == nil {
		in = engine.Inputs{}
	}
	return in, nil
}

// ReadTOML reads top-level TOML keys.
func ReadTOML(path string) (engine.Inputs, error) {
	in := engine.Inputs{}
	if _, err := toml.DecodeFile(path, &in); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return in, nil
}
