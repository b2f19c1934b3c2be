package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/config"
	"github.com/theirongolddev/proforma/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	vals := tui.ValuesFromConfig(appCfg)
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	cfg, err := vals.Save()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Printf("  Horizon: %dm+%dq, funding %s, theme %s\n",
		cfg.Horizon.Months, cfg.Horizon.Quarters, cfg.Engine.FundingPolicy, cfg.Appearance.Theme)
	fmt.Println("  Run `proforma setup` anytime to reconfigure.")
	return nil
}
