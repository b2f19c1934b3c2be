package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/tui"
	"github.com/theirongolddev/proforma/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Browse a projection in an interactive viewer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := projectionOptions(cmd)
	if err != nil {
		return err
	}
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so every styled segment emits ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	p := tea.NewProgram(tui.NewApp(path, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
