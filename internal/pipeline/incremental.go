package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/source"
	"github.com/theirongolddev/proforma/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits   int
	Reprojected int
}

// LoadWithCache discovers input files, reuses the recorded run for files
// whose mtime, size and horizon are unchanged, projects the rest and
// records them in the ledger.
func LoadWithCache(dir string, opts engine.Options, ledger *store.Ledger, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := ledger.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	key := opts.String()
	results := make([]FileResult, len(files))
	stats := make([]os.FileInfo, len(files))
	var toProject []int

	for i, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			results[i] = FileResult{File: f, Err: err}
			continue
		}
		stats[i] = info

		fi, ok := tracked[f.Path]
		if ok && fi.Options == key && fi.MtimeNs == info.ModTime().UnixNano() && fi.SizeBytes == info.Size() {
			if fr, hit := cachedResult(ledger, f, fi.RunID); hit {
				results[i] = fr
				result.CacheHits++
				continue
			}
		}
		toProject = append(toProject, i)
	}
	result.Reprojected = len(toProject)

	if len(toProject) > 0 {
		pending := make([]source.DiscoveredFile, len(toProject))
		for j, i := range toProject {
			pending[j] = files[i]
		}

		projected := projectAll(pending, opts, func(n int) {
			if progressFn != nil {
				progressFn(n+result.CacheHits, result.TotalFiles)
			}
		})

		for j, fr := range projected {
			i := toProject[j]
			run := store.NewRun(fr.File.Path, fr.Fingerprint, fr.Result, fr.Err)
			fi := store.FileInfo{
				MtimeNs:   stats[i].ModTime().UnixNano(),
				SizeBytes: stats[i].Size(),
				Options:   key,
			}
			if err := ledger.SaveFileRun(&run, fr.File.Path, fi); err == nil {
				fr.RunID = run.ID
			}
			results[i] = fr
		}
	}

	result.Files = results
	result.tally()
	return result, nil
}

// cachedResult rebuilds a FileResult from a recorded run. hit is false when
// the run is gone or unreadable, in which case the file is projected again.
func cachedResult(ledger *store.Ledger, f source.DiscoveredFile, runID string) (FileResult, bool) {
	run, ok, err := ledger.RunByID(runID)
	if err != nil || !ok {
		return FileResult{}, false
	}
	fr := FileResult{
		File:        f,
		Fingerprint: run.Fingerprint,
		RunID:       run.ID,
		Cached:      true,
	}
	switch {
	case run.Status == store.StatusError:
		fr.Err = errors.New(run.Message)
	case run.Result == nil:
		return FileResult{}, false
	default:
		fr.Result = run.Result
	}
	return fr, true
}
