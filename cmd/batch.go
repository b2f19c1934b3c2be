package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/pipeline"
	"github.com/theirongolddev/proforma/internal/source"
)

var (
	flagBatchFilter string
	flagBatchSort   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Project every inputs file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&flagBatchFilter, "filter", "", "Only show files whose name contains this substring")
	batchCmd.Flags().BoolVar(&flagBatchSort, "sort", false, "Order by ending cash, highest first")
	rootCmd.AddCommand(batchCmd)
}

// loadBatch is the shared batch path. It uses the run ledger when
// available and falls back to projecting everything.
func loadBatch(dir string, opts engine.Options) (*pipeline.LoadResult, error) {
	progressf("  Scanning %s...\n", dir)

	progressFn := func(current, total int) {
		if current%10 == 0 || current == total {
			progressf("\r  Projecting [%d/%d]", current, total)
		}
	}

	if ledger := openLedger(); ledger != nil {
		defer func() { _ = ledger.Close() }()

		cr, err := pipeline.LoadWithCache(dir, opts, ledger, progressFn)
		if err == nil {
			if cr.TotalFiles > 0 {
				progressf("\r  %s from ledger + %d projected    \n",
					formatNumber(int64(cr.CacheHits)), cr.Reprojected)
			}
			return &cr.LoadResult, nil
		}
		progressf("\n  Ledger error, falling back to full projection: %v\n", err)
	}

	result, err := pipeline.Load(dir, opts, progressFn)
	if err != nil {
		return nil, err
	}
	if result.TotalFiles > 0 {
		progressf("\r  Projected %s files    \n", formatNumber(int64(result.TotalFiles)))
	}
	return result, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	opts, err := projectionOptions(cmd)
	if err != nil {
		return err
	}

	result, err := loadBatch(args[0], opts)
	if err != nil {
		return err
	}
	if result.TotalFiles == 0 {
		fmt.Println("\n  No inputs files found (.xlsx, .xlsm, .yaml, .yml, .toml).")
		return nil
	}

	files := result.Files
	if flagBatchFilter != "" {
		files = pipeline.FilterByName(files, flagBatchFilter)
	}
	if flagBatchSort {
		files = pipeline.SortByEndingCash(files)
	}

	rows := make([][]string, 0, len(files))
	for _, fr := range files {
		if fr.Err != nil {
			rows = append(rows, []string{fr.File.Name, string(fr.File.Format), "error", "", "", truncate(fr.Err.Error(), 60)})
			continue
		}
		low, at := fr.Result.MinCash()
		origin := "projected"
		if fr.Cached {
			origin = "cached"
		}
		rows = append(rows, []string{
			fr.File.Name,
			string(fr.File.Format),
			origin,
			cli.FormatMoney(fr.Result.FinalCash()),
			cli.FormatMoney(low) + " @" + at,
			"",
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BATCH  %s  %s", args[0], opts)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"File", "Format", "Status", "Ending Cash", "Min Cash", "Error"},
		Rows:    rows,
	}))

	sum := pipeline.Summarize(files)
	counts := source.CountFormats(fileList(files))
	fmt.Println()
	fmt.Printf("  %d files (%d xlsx, %d yaml, %d toml): %d projected, %d failed\n",
		sum.Files, counts[source.FormatWorkbook], counts[source.FormatYAML], counts[source.FormatTOML],
		sum.Projected, sum.Failed)
	if sum.Best != nil {
		fmt.Println(cli.RenderKPI("Best  "+sum.Best.File.Name, sum.Best.Result.FinalCash()))
		fmt.Println(cli.RenderKPI("Worst "+sum.Worst.File.Name, sum.Worst.Result.FinalCash()))
	}
	if sum.Underwater > 0 {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%d scenarios run out of cash during the horizon", sum.Underwater)))
	}
	if sum.Failed > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be projected\n", sum.Failed)
	}
	return nil
}

func fileList(results []pipeline.FileResult) []source.DiscoveredFile {
	out := make([]source.DiscoveredFile, len(results))
	for i, fr := range results {
		out[i] = fr.File
	}
	return out
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
