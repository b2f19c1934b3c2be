package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/proforma/internal/engine"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Horizon.Months != engine.DefaultMonths || cfg.Horizon.Quarters != engine.DefaultQuarters {
		t.Fatalf("horizon = %+v, want defaults", cfg.Horizon)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proforma", "config.toml")
	cfg := DefaultConfig()
	cfg.Horizon.Months = 12
	cfg.Engine.FundingPolicy = "overwrite"
	cfg.Store.Path = "/tmp/ledger.db"

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Horizon.Months != 12 || got.Engine.FundingPolicy != "overwrite" || got.StorePath() != "/tmp/ledger.db" {
		t.Fatalf("loaded %+v, want saved values", got)
	}
}

func TestLoadFile_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[horizon\nmonths = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("err = %v, want parsing config error", err)
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("PROFORMA_MONTHS", "6")
	t.Setenv("PROFORMA_FUNDING_POLICY", "overwrite")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Horizon.Months != 6 {
		t.Errorf("Months = %d, want 6", cfg.Horizon.Months)
	}
	if cfg.Horizon.Quarters != engine.DefaultQuarters {
		t.Errorf("Quarters = %d, want default %d", cfg.Horizon.Quarters, engine.DefaultQuarters)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Funding != engine.FundingOverwrite {
		t.Errorf("Funding = %q, want overwrite", opts.Funding)
	}
}

func TestApplyEnv_Error(t *testing.T) {
	t.Setenv("PROFORMA_QUARTERS", "lots")
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("err = %v, want parse env error", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("missing .env: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PROFORMA_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROFORMA_TEST_DOTENV", "")
	os.Unsetenv("PROFORMA_TEST_DOTENV")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("PROFORMA_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("PROFORMA_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestOptions_BadPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.FundingPolicy = "sometimes"
	if _, err := cfg.Options(); err == nil {
		t.Fatal("Options() accepted an unknown funding policy")
	}
}
