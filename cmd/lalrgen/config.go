package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the defaults a --config TOML file can set, so tedious
// flags don't need repeating on every invocation (SPEC_FULL.md's
// ambient stack: "flags always override file values"). Grounded on the
// teacher's server.Config / FillDefaults split (server/config.go).
type Config struct {
	// Strict makes unresolved conflicts an error (exit code 2) instead
	// of a warning.
	Strict bool `toml:"strict"`
	// NoColor disables pterm color output.
	NoColor bool `toml:"no_color"`
	// SearchBudgetMillis overrides the counterexample search's hard
	// deadline. Zero means "use the package default".
	SearchBudgetMillis int `toml:"search_budget_millis"`
	// CacheDir overrides the on-disk cache location.
	CacheDir string `toml:"cache_dir"`
}

// FillDefaults returns a copy of cfg with unset fields set to their
// defaults, the same shape as the teacher's Config.FillDefaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.CacheDir == "" {
		out.CacheDir = ".lalrgen-cache"
	}
	return out
}

// LoadConfig reads and parses a TOML config file. A missing path is not
// an error: it returns the zero Config, which FillDefaults then fills
// in with package defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}
