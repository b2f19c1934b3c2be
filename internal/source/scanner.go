package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dir and discovers every readable assumptions file. Hidden
// directories and spreadsheet lock files (~$Book.xlsx) are skipped. Results
// are sorted by path so batch output is stable.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			return nil
		}
		format, ok := FormatOf(name)
		if !ok {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:   path,
			Name:   strings.TrimSuffix(name, filepath.Ext(name)),
			Format: format,
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// CountFormats returns how many discovered files there are per format.
func CountFormats(files []DiscoveredFile) map[Format]int {
	counts := make(map[Format]int)
	for _, f := range files {
		counts[f.Format]++
	}
	return counts
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
