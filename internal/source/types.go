package source

// Format identifies how an input file is decoded.
type Format string

const (
	FormatWorkbook Format = "xlsx"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
)

// InputsSheet is the workbook sheet holding the Variable/Value/Description rows.
const InputsSheet = "Inputs"

// DiscoveredFile represents an input file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Name   string // file name without extension
	Format Format
}

// FormatOf maps a file extension to its Format. ok is false for files
// proforma does not read.
func FormatOf(path string) (Format, bool) {
	switch extOf(path) {
	case ".xlsx", ".xlsm":
		return FormatWorkbook, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}
