package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/scenario"
	"github.com/theirongolddev/proforma/internal/workbook"
)

var flagScenariosOut string

var scenariosCmd = &cobra.Command{
	Use:   "scenarios <file.yaml>",
	Short: "Project yearly revenue for each scenario in a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarios,
}

func init() {
	scenariosCmd.Flags().StringVarP(&flagScenariosOut, "out", "o", "", "Also write one sheet per scenario to this workbook")
	scenariosCmd.Flags().BoolVar(&flagJSON, "json", false, "Print projections as JSON")
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(_ *cobra.Command, args []string) error {
	doc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	projections := doc.ProjectAll()

	if flagJSON {
		return printJSON(projections)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIOS  %d-%d", doc.StartYear, doc.StartYear+doc.Years-1)))
	fmt.Println()

	for _, p := range projections {
		rows := make([][]string, 0, len(p.Rows)+2)
		for _, r := range p.Rows {
			rows = append(rows, []string{
				fmt.Sprint(r.Year),
				cli.FormatCount(r.Operators),
				cli.FormatMoney(r.OperatorARR),
				cli.FormatMoney(r.TransactionRevenue),
				cli.FormatMoney(r.InvestorServices),
				cli.FormatMoney(r.InvestorLicenses),
				cli.FormatMoney(r.TotalRevenue),
			})
		}

		fmt.Print(cli.RenderTable(cli.Table{
			Title:   p.Scenario,
			Headers: []string{"Year", "Operators", "Operator ARR", "Transaction", "Services", "Licenses", "Total"},
			Rows:    rows,
			Footer:  [][]string{{"Total", "", "", "", "", "", cli.FormatMoney(p.Total())}},
		}))
		fmt.Println()
	}

	if flagScenariosOut != "" {
		if err := workbook.WriteScenarios(flagScenariosOut, projections); err != nil {
			return err
		}
		fmt.Printf("  Wrote %d scenarios to %s\n", len(projections), flagScenariosOut)
	}
	return nil
}
