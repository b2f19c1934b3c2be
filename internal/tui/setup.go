package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/proforma/internal/config"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/tui/theme"
)

// SetupValues backs the setup form fields. Numbers are kept as strings
// because huh inputs edit text.
type SetupValues struct {
	Months        string
	Quarters      string
	FundingPolicy string
	Theme         string
	StorePath     string
}

// ValuesFromConfig seeds the form with the current configuration.
func ValuesFromConfig(cfg config.Config) *SetupValues {
	return &SetupValues{
		Months:        strconv.Itoa(cfg.Horizon.Months),
		Quarters:      strconv.Itoa(cfg.Horizon.Quarters),
		FundingPolicy: cfg.Engine.FundingPolicy,
		Theme:         cfg.Appearance.Theme,
		StorePath:     cfg.Store.Path,
	}
}

func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// NewSetupForm builds the first-run configuration form.
func NewSetupForm(vals *SetupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to proforma").
				Description("Set the projection horizon and appearance.\nRun `proforma setup` anytime to change them."),
			huh.NewInput().
				Title("Monthly periods").
				Description("Months projected one period each").
				Value(&vals.Months).
				Validate(validateCount),
			huh.NewInput().
				Title("Quarterly periods").
				Description("Quarters projected after the monthly periods").
				Value(&vals.Quarters).
				Validate(validateCount),
			huh.NewSelect[string]().
				Title("Funding policy").
				Description("How two funding events in the same month combine").
				Options(
					huh.NewOption("accumulate (sum amounts)", string(engine.FundingAccumulate)),
					huh.NewOption("overwrite (last event wins)", string(engine.FundingOverwrite)),
				).
				Value(&vals.FundingPolicy),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Run ledger path").
				Description("Leave blank for the default cache location").
				Value(&vals.StorePath),
		),
	).WithShowHelp(true)
}

// Apply copies the form values onto cfg. The horizon must still project
// at least one period.
func (v SetupValues) Apply(cfg *config.Config) error {
	months, err := strconv.Atoi(strings.TrimSpace(v.Months))
	if err != nil {
		return fmt.Errorf("months: %w", err)
	}
	quarters, err := strconv.Atoi(strings.TrimSpace(v.Quarters))
	if err != nil {
		return fmt.Errorf("quarters: %w", err)
	}
	if months < 0 || quarters < 0 || months+quarters == 0 {
		return fmt.Errorf("horizon %dm+%dq projects no periods", months, quarters)
	}
	policy, err := engine.ParseFundingPolicy(v.FundingPolicy)
	if err != nil {
		return err
	}

	cfg.Horizon.Months = months
	cfg.Horizon.Quarters = quarters
	cfg.Engine.FundingPolicy = string(policy)
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	cfg.Store.Path = strings.TrimSpace(v.StorePath)
	return nil
}

// Save applies the values to the on-disk config and writes it back.
func (v SetupValues) Save() (config.Config, error) {
	return v.SaveTo(config.Path())
}

// SaveTo is Save for an explicit config path.
func (v SetupValues) SaveTo(path string) (config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := v.Apply(&cfg); err != nil {
		return cfg, err
	}
	if err := config.SaveFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}
	return cfg, nil
}
