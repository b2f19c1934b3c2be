// Package config loads proforma settings from the TOML config file, a
// working-directory .env file and PROFORMA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/proforma/internal/engine"
)

// Config holds all proforma configuration.
type Config struct {
	Horizon    HorizonConfig    `toml:"horizon"`
	Engine     EngineConfig     `toml:"engine"`
	Store      StoreConfig      `toml:"store"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// HorizonConfig sets the projection length.
type HorizonConfig struct {
	Months   int `toml:"months"   env:"PROFORMA_MONTHS"`
	Quarters int `toml:"quarters" env:"PROFORMA_QUARTERS"`
}

// EngineConfig holds projection behavior switches.
type EngineConfig struct {
	FundingPolicy string `toml:"funding_policy" env:"PROFORMA_FUNDING_POLICY"`
}

// StoreConfig locates the run ledger database.
type StoreConfig struct {
	Path     string `toml:"path,omitempty" env:"PROFORMA_DB"`
	Disabled bool   `toml:"disabled"       env:"PROFORMA_NO_CACHE"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr"          env:"PROFORMA_ADDR"`
	EventsBuffer int    `toml:"events_buffer" env:"PROFORMA_EVENTS_BUFFER"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"PROFORMA_THEME"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Horizon: HorizonConfig{
			Months:   engine.DefaultMonths,
			Quarters: engine.DefaultQuarters,
		},
		Engine: EngineConfig{
			FundingPolicy: string(engine.FundingAccumulate),
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "proforma")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "proforma")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "proforma")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "proforma")
}

// StorePath returns the configured ledger path or the default under CacheDir.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(CacheDir(), "runs.db")
}

// Options converts the horizon and engine sections into engine options.
func (c Config) Options() (engine.Options, error) {
	policy, err := engine.ParseFundingPolicy(c.Engine.FundingPolicy)
	if err != nil {
		return engine.Options{}, fmt.Errorf("engine.funding_policy: %w", err)
	}
	return engine.Options{
		Months:   c.Horizon.Months,
		Quarters: c.Horizon.Quarters,
		Funding:  policy,
	}, nil
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies environment overrides.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile is Save for an explicit path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
