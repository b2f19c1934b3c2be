package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/config"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/source"
	"github.com/theirongolddev/proforma/internal/store"
)

var (
	flagMonths        int
	flagQuarters      int
	flagFundingPolicy string
	flagNoCache       bool
	flagQuiet         bool
	flagEnvFile       string
)

// appCfg is the resolved configuration: file, then .env/environment.
// Command flags are applied on top by projectionOptions.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "proforma [file]",
	Short: "Pro-forma financial projection CLI",
	Long: "Project funnel, revenue, headcount and cash from a set of assumptions.\n" +
		"With no subcommand, projects the given inputs file (or the built-in defaults).",
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runProject,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagMonths, "months", engine.DefaultMonths, "Monthly periods in the horizon")
	rootCmd.PersistentFlags().IntVar(&flagQuarters, "quarters", engine.DefaultQuarters, "Quarterly periods after the monthly ones")
	rootCmd.PersistentFlags().StringVar(&flagFundingPolicy, "funding-policy", "", "Same-month funding events: accumulate or overwrite")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the run ledger")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before reading PROFORMA_* variables")

	addProjectFlags(rootCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appCfg = cfg
	return nil
}

// projectionOptions merges config with any horizon flags set explicitly.
func projectionOptions(cmd *cobra.Command) (engine.Options, error) {
	opts, err := appCfg.Options()
	if err != nil {
		return opts, err
	}
	flags := cmd.Flags()
	if flags.Changed("months") {
		opts.Months = flagMonths
	}
	if flags.Changed("quarters") {
		opts.Quarters = flagQuarters
	}
	if flags.Changed("funding-policy") {
		if opts.Funding, err = engine.ParseFundingPolicy(flagFundingPolicy); err != nil {
			return opts, err
		}
	}
	if opts.Months < 0 || opts.Quarters < 0 || opts.Periods() == 0 {
		return opts, fmt.Errorf("horizon %s projects no periods", opts)
	}
	if opts.Months > engine.MaxPeriods || opts.Quarters > engine.MaxPeriods || opts.Periods() > engine.MaxPeriods {
		return opts, fmt.Errorf("horizon %s exceeds %d periods", opts, engine.MaxPeriods)
	}
	return opts, nil
}

// openLedger opens the run ledger unless disabled. Failures are not fatal:
// the caller continues without history and a note goes to stderr.
func openLedger() *store.Ledger {
	if flagNoCache || appCfg.Store.Disabled {
		return nil
	}
	ledger, err := store.Open(appCfg.StorePath())
	if err != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Run ledger unavailable, continuing without history: %v\n", err)
		}
		return nil
	}
	return ledger
}

// readInputs loads the inputs file at path, or the defaults when path is "".
func readInputs(path string) (engine.Inputs, string, error) {
	if path == "" {
		return engine.DefaultInputs(), "defaults", nil
	}
	in, err := source.Read(path)
	if err != nil {
		return nil, path, err
	}
	return in, path, nil
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
