// Package cmd implements the proforma CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	opts, err := projectionOptions(cmd)
	if err != nil {
		return err
	}
	fmt.Println("  [Horizon]")
	fmt.Printf("    Months:         %d\n", cfg.Horizon.Months)
	fmt.Printf("    Quarters:       %d\n", cfg.Horizon.Quarters)
	fmt.Printf("    Funding policy: %s\n", cfg.Engine.FundingPolicy)
	fmt.Printf("    Effective:      %s (%d periods)\n", opts, opts.Periods())
	fmt.Println()

	fmt.Println("  [Store]")
	if cfg.Store.Disabled {
		fmt.Println("    Ledger: disabled")
	} else {
		fmt.Printf("    Ledger: %s\n", cfg.StorePath())
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()
	fmt.Println("  PROFORMA_* environment variables and .env override the file.")
	fmt.Println("  Run `proforma setup` to change settings.")

	return nil
}
