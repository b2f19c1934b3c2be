package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/apiclient"
	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/daemon"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/store"
	"github.com/theirongolddev/proforma/internal/workbook"
)

var (
	flagTables []string
	flagJSON   bool
	flagRaw    bool
	flagRemote string
)

var projectCmd = &cobra.Command{
	Use:   "project [file]",
	Short: "Project an inputs file (xlsx, yaml or toml) and print the tables",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProject,
}

func init() {
	addProjectFlags(projectCmd)
	rootCmd.AddCommand(projectCmd)
}

func addProjectFlags(c *cobra.Command) {
	c.Flags().StringSliceVarP(&flagTables, "table", "t", []string{"statement"}, "Tables to print: funnel, headcount, statement or all")
	c.Flags().BoolVar(&flagJSON, "json", false, "Print the full result as JSON")
	c.Flags().BoolVar(&flagRaw, "raw", false, "Print unformatted numbers")
	c.Flags().StringVar(&flagRemote, "remote", "", "Project on a running proforma server at this `address` instead of locally")
}

// projectionTables resolves --table names to result views.
func projectionTables(r *engine.Result, names []string) ([]engine.Table, error) {
	var out []engine.Table
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			return r.Tables(), nil
		case "funnel", "revenue":
			out = append(out, r.FunnelTable())
		case "headcount", "payroll":
			out = append(out, r.HeadcountTable())
		case "statement", "cash":
			out = append(out, r.StatementTable())
		default:
			return nil, fmt.Errorf("unknown table %q (want funnel, headcount, statement or all)", name)
		}
	}
	return out, nil
}

func runProject(cmd *cobra.Command, args []string) error {
	opts, err := projectionOptions(cmd)
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	in, name, err := readInputs(path)
	if err != nil {
		return err
	}

	var r *engine.Result
	var projErr error
	if flagRemote != "" {
		r, projErr = projectRemote(cmd.Context(), name, in, opts)
	} else {
		r, projErr = engine.Project(in, opts)
		recordRun(name, in, opts, r, projErr)
	}

	if projErr != nil {
		if !flagJSON {
			fmt.Println()
			fmt.Println(cli.RenderStatus(workbook.ErrorStatus(projErr)))
		}
		return projErr
	}

	if flagJSON {
		return printJSON(r)
	}

	tables, err := projectionTables(r, flagTables)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PRO FORMA  %s  %s", name, opts)))
	fmt.Println()
	fmt.Println(cli.RenderStatus(workbook.StatusSuccess))
	fmt.Println(cli.RenderKPI("Ending Cash", r.FinalCash()))
	minCash, minPeriod := r.MinCash()
	fmt.Println(cli.RenderKPI("Min Cash ("+minPeriod+")", minCash))
	if minCash < 0 {
		fmt.Println(cli.RenderWarning("Cash goes negative during the horizon"))
	}
	fmt.Printf("  %s\n\n", cli.RenderSparkline(r.EndingCash))

	for _, t := range tables {
		tbl := cli.ProjectionTable(t)
		if flagRaw {
			tbl = cli.RawProjectionTable(t)
		}
		fmt.Print(cli.RenderTable(tbl))
		fmt.Println()
	}
	return nil
}

// recordRun stores the run in the ledger when one is available.
func recordRun(source string, in engine.Inputs, opts engine.Options, r *engine.Result, projErr error) {
	ledger := openLedger()
	if ledger == nil {
		return
	}
	defer func() { _ = ledger.Close() }()

	fp := ""
	if a, err := engine.Parse(in); err == nil {
		fp = engine.Fingerprint(a, opts)
	}
	run := store.NewRun(source, fp, r, projErr)
	if err := ledger.SaveRun(&run); err != nil {
		progressf("  Could not record run: %v\n", err)
	}
}

// projectRemote runs the projection on a server, which records the run in
// its own ledger.
func projectRemote(ctx context.Context, source string, in engine.Inputs, opts engine.Options) (*engine.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	progressf("  Projecting on %s...\n", flagRemote)
	resp, err := apiclient.NewClient(flagRemote).Project(ctx, daemon.ProjectRequest{
		Source:        source,
		Inputs:        in,
		Months:        &opts.Months,
		Quarters:      &opts.Quarters,
		FundingPolicy: string(opts.Funding),
	})
	if err != nil {
		return nil, err
	}
	if resp.RunID != "" {
		progressf("  Recorded as run %s\n", resp.RunID)
	}
	return resp.Result, nil
}
