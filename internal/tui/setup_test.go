package tui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/proforma/internal/config"
)

func TestSetupValues_Apply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValues{Months: " 12 ", Quarters: "4", FundingPolicy: "overwrite", Theme: "nope", StorePath: " /tmp/x.db "}
	if err := vals.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Horizon.Months != 12 || cfg.Horizon.Quarters != 4 {
		t.Errorf("horizon = %+v", cfg.Horizon)
	}
	if cfg.Engine.FundingPolicy != "overwrite" || cfg.Store.Path != "/tmp/x.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("unknown theme should fall back, got %q", cfg.Appearance.Theme)
	}
}

func TestSetupValues_ApplyRejects(t *testing.T) {
	tests := []struct {
		name string
		vals SetupValues
		want string
	}{
		{"words", SetupValues{Months: "two", Quarters: "0"}, "months"},
		{"empty horizon", SetupValues{Months: "0", Quarters: "0"}, "no periods"},
		{"policy", SetupValues{Months: "1", Quarters: "0", FundingPolicy: "split"}, "unknown funding policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := tt.vals.Apply(&cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSetupValues_SaveTo(t *testing.T) {
	withConfig(t, false)
	path := filepath.Join(t.TempDir(), "config.toml")
	vals := ValuesFromConfig(config.DefaultConfig())
	vals.Months = "3"
	vals.Theme = "terminal"

	if _, err := vals.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Horizon.Months != 3 || got.Appearance.Theme != "terminal" {
		t.Errorf("saved config = %+v", got)
	}
}

func TestValidateCount(t *testing.T) {
	if validateCount("12") != nil {
		t.Error("12 rejected")
	}
	if validateCount("-1") == nil || validateCount("x") == nil {
		t.Error("bad counts accepted")
	}
}

func TestNewSetupFormBuilds(t *testing.T) {
	if NewSetupForm(ValuesFromConfig(config.DefaultConfig())) == nil {
		t.Fatal("nil form")
	}
}
