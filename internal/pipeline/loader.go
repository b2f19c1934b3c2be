package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/source"
)

// FileResult is the outcome of projecting one discovered input file.
type FileResult struct {
	File        source.DiscoveredFile
	Fingerprint string
	Result      *engine.Result
	Err         error
	RunID       string // set when the run was recorded or reused
	Cached      bool
}

// LoadResult holds the output of a batch projection.
type LoadResult struct {
	Files      []FileResult // discovery order
	TotalFiles int
	Projected  int
	Failed     int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// ProjectFile reads, validates and projects a single input file.
func ProjectFile(f source.DiscoveredFile, opts engine.Options) FileResult {
	fr := FileResult{File: f}

	in, err := source.Read(f.Path)
	if err != nil {
		fr.Err = err
		return fr
	}
	a, err := engine.Parse(in)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Fingerprint = engine.Fingerprint(a, opts)
	fr.Result, fr.Err = engine.Compute(a, opts)
	return fr
}

// Load discovers and projects every input file under dir.
// It uses a bounded worker pool for parallel projection.
func Load(dir string, opts engine.Options, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	result.Files = projectAll(files, opts, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})
	result.tally()
	return result, nil
}

// projectAll fans files out to GOMAXPROCS workers. Results are written by
// index so they keep input order.
func projectAll(files []source.DiscoveredFile, opts engine.Options, done func(n int)) []FileResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = ProjectFile(files[idx], opts)
				done(int(processed.Add(1)))
			}
		}()
	}

	wg.Wait()
	return results
}

func (r *LoadResult) tally() {
	r.Projected, r.Failed = 0, 0
	for _, fr := range r.Files {
		if fr.Err != nil {
			r.Failed++
		} else {
			r.Projected++
		}
	}
}
