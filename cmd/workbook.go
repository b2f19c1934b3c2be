package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/cli"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/workbook"
)

var flagForce bool

var initCmd = &cobra.Command{
	Use:   "init <file.xlsx>",
	Short: "Create a workbook with an Inputs sheet of default assumptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

var recalcCmd = &cobra.Command{
	Use:   "recalc <file.xlsx>",
	Short: "Project a workbook's Inputs sheet and write the result sheets back",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecalc,
}

var exportCmd = &cobra.Command{
	Use:   "export <input> <file.xlsx>",
	Short: "Project an inputs file into a new workbook",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	initCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing file")
	exportCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd, recalcCmd, exportCmd)
}

func refuseOverwrite(path string) error {
	if flagForce {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func runInit(_ *cobra.Command, args []string) error {
	path := args[0]
	if err := refuseOverwrite(path); err != nil {
		return err
	}
	if err := workbook.CreateTemplate(path, engine.DefaultInputs()); err != nil {
		return err
	}
	fmt.Printf("  Created %s with %d default inputs\n", path, len(engine.DefaultFields))
	fmt.Printf("  Edit the Inputs sheet, then run: proforma recalc %s\n", path)
	return nil
}

func runRecalc(cmd *cobra.Command, args []string) error {
	opts, err := projectionOptions(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	progressf("  Recalculating %s (%s)...\n", path, opts)
	out, err := workbook.Recalculate(path, opts)
	if err != nil {
		return err
	}
	recordRun(path, out.Inputs, opts, out.Result, out.Failure)

	fmt.Println(cli.RenderStatus(out.Status))
	if out.Failure != nil {
		// The status cell carries the message; still exit non-zero.
		return out.Failure
	}
	fmt.Println(cli.RenderKPI("Ending Cash", out.Result.FinalCash()))
	fmt.Printf("  Wrote %d periods to %s\n", out.Result.Len(), path)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	opts, err := projectionOptions(cmd)
	if err != nil {
		return err
	}

	src, dst := args[0], args[1]
	if err := refuseOverwrite(dst); err != nil {
		return err
	}
	in, _, err := readInputs(src)
	if err != nil {
		return err
	}
	r, err := engine.Project(in, opts)
	recordRun(src, in, opts, r, err)
	if err != nil {
		return err
	}
	if err := workbook.Export(dst, in, r); err != nil {
		return err
	}

	fmt.Println(cli.RenderStatus(workbook.StatusSuccess))
	fmt.Println(cli.RenderKPI("Ending Cash", r.FinalCash()))
	fmt.Printf("  Exported %d periods to %s\n", r.Len(), dst)
	return nil
}
