package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/store"
	"github.com/theirongolddev/proforma/internal/workbook"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded projection runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntVarP(&flagRunsLimit, "limit", "l", 20, "Maximum runs to list")
	runsShowCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the stored run as JSON")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func requireLedger() (*store.Ledger, error) {
	if flagNoCache || appCfg.Store.Disabled {
		return nil, errors.New("run ledger is disabled")
	}
	return store.Open(appCfg.StorePath())
}

func runRuns(_ *cobra.Command, _ []string) error {
	ledger, err := requireLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	runs, err := ledger.LatestRuns(flagRunsLimit)
	if err != nil {
		return err
	}
	total, err := ledger.RunCount()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\n  No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		cash := ""
		if r.Status == store.StatusOK {
			cash = cli.FormatMoney(r.EndingCash)
		}
		rows = append(rows, []string{
			r.ID[:8],
			humanize.Time(r.CreatedAt),
			truncate(r.Source, 40),
			r.Status,
			fmt.Sprint(r.Periods),
			cash,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Runs (%d of %s)", len(runs), formatNumber(int64(total))),
		Headers: []string{"ID", "When", "Source", "Status", "Periods", "Ending Cash"},
		Rows:    rows,
	}))
	return nil
}

func runRunsShow(_ *cobra.Command, args []string) error {
	ledger, err := requireLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	run, ok, err := findRun(ledger, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no run %q", args[0])
	}
	if flagJSON {
		return printJSON(run)
	}

	fmt.Printf("  ID:          %s\n", run.ID)
	fmt.Printf("  Source:      %s\n", run.Source)
	fmt.Printf("  Recorded:    %s (%s)\n", run.CreatedAt.Local().Format(time.RFC3339), humanize.Time(run.CreatedAt))
	fmt.Printf("  Fingerprint: %s\n", run.Fingerprint)
	if run.Status != store.StatusOK {
		fmt.Println(cli.RenderStatus(workbook.ErrorStatus(errors.New(run.Message))))
		return nil
	}
	fmt.Println(cli.RenderStatus(workbook.StatusSuccess))
	fmt.Println(cli.RenderKPI("Ending Cash", run.EndingCash))
	if run.Result != nil {
		fmt.Printf("  %s\n\n", cli.RenderSparkline(run.Result.EndingCash))
		fmt.Print(cli.RenderTable(cli.ProjectionTable(run.Result.StatementTable())))
	}
	return nil
}

// findRun resolves a full id or a unique prefix of the recent runs.
func findRun(ledger *store.Ledger, id string) (store.Run, bool, error) {
	run, ok, err := ledger.RunByID(id)
	if err != nil || ok {
		return run, ok, err
	}
	recent, err := ledger.LatestRuns(500)
	if err != nil {
		return store.Run{}, false, err
	}
	var match string
	for _, r := range recent {
		if len(id) <= len(r.ID) && r.ID[:len(id)] == id {
			if match != "" {
				return store.Run{}, false, fmt.Errorf("run prefix %q is ambiguous", id)
			}
			match = r.ID
		}
	}
	if match == "" {
		return store.Run{}, false, nil
	}
	return ledger.RunByID(match)
}
