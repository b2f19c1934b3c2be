package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/proforma/internal/config"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/store"
)

func horizonCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().IntVar(&flagMonths, "months", engine.DefaultMonths, "")
	c.Flags().IntVar(&flagQuarters, "quarters", engine.DefaultQuarters, "")
	c.Flags().StringVar(&flagFundingPolicy, "funding-policy", "", "")
	return c
}

func TestProjectionOptions_FlagsOverrideConfig(t *testing.T) {
	appCfg = config.DefaultConfig()
	appCfg.Horizon.Months = 12
	appCfg.Engine.FundingPolicy = "overwrite"
	defer func() { appCfg = config.DefaultConfig() }()

	c := horizonCommand()
	opts, err := projectionOptions(c)
	if err != nil {
		t.Fatal(err)
	}
	if opts.String() != "12m+12q/overwrite" {
		t.Errorf("config only: %s", opts)
	}

	if err := c.Flags().Set("quarters", "0"); err != nil {
		t.Fatal(err)
	}
	if err := c.Flags().Set("funding-policy", "accumulate"); err != nil {
		t.Fatal(err)
	}
	opts, err = projectionOptions(c)
	if err != nil {
		t.Fatal(err)
	}
	if opts.String() != "12m+0q/accumulate" {
		t.Errorf("with flags: %s", opts)
	}

	if err := c.Flags().Set("months", "0"); err != nil {
		t.Fatal(err)
	}
	if _, err := projectionOptions(c); err == nil || !strings.Contains(err.Error(), "no periods") {
		t.Errorf("empty horizon err = %v", err)
	}
}

func TestProjectionOptions_BadPolicyFlag(t *testing.T) {
	appCfg = config.DefaultConfig()
	c := horizonCommand()
	if err := c.Flags().Set("funding-policy", "halve"); err != nil {
		t.Fatal(err)
	}
	if _, err := projectionOptions(c); err == nil {
		t.Fatal("accepted unknown funding policy")
	}
}

func TestProjectionTables(t *testing.T) {
	r, err := engine.Project(engine.DefaultInputs(), engine.Options{Months: 3})
	if err != nil {
		t.Fatal(err)
	}

	got, err := projectionTables(r, []string{"funnel", "Cash"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != engine.FunnelSheet || got[1].Name != engine.StatementSheet {
		t.Errorf("tables = %v", []string{got[0].Name, got[1].Name})
	}

	all, _ := projectionTables(r, []string{"statement", "all"})
	if len(all) != 3 {
		t.Errorf("all -> %d tables", len(all))
	}

	if _, err := projectionTables(r, []string{"balance"}); err == nil {
		t.Error("unknown table accepted")
	}
}

func TestRefuseOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.xlsx")
	flagForce = false
	if err := refuseOverwrite(path); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := refuseOverwrite(path); err == nil {
		t.Fatal("existing file not refused")
	}
	flagForce = true
	defer func() { flagForce = false }()
	if err := refuseOverwrite(path); err != nil {
		t.Fatalf("--force: %v", err)
	}
}

func TestFindRunByPrefix(t *testing.T) {
	ledger, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	r, err := engine.Project(engine.DefaultInputs(), engine.Options{Months: 2})
	if err != nil {
		t.Fatal(err)
	}
	run := store.NewRun("defaults", "fp", r, nil)
	if err := ledger.SaveRun(&run); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findRun(ledger, run.ID[:8])
	if err != nil || !ok {
		t.Fatalf("findRun prefix: ok=%v err=%v", ok, err)
	}
	if got.ID != run.ID || got.Result == nil {
		t.Errorf("found %+v", got)
	}
	if _, ok, _ := findRun(ledger, "zzzz"); ok {
		t.Error("found a run for an unknown prefix")
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Error("short string changed")
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestProjectionOptions_HorizonTooLong(t *testing.T) {
	appCfg = config.DefaultConfig()
	c := horizonCommand()
	if err := c.Flags().Set("months", "100000"); err != nil {
		t.Fatal(err)
	}
	if _, err := projectionOptions(c); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("err = %v, want horizon limit error", err)
	}
}
