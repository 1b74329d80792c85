// Package config loads jetsetter settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid marks a config value outside its allowed set.
var ErrInvalid = errors.New("invalid config")

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the application configuration.
// File values are overridden by JETSETTER_* environment variables.
type Config struct {
	StateFile string `toml:"state_file" env:"JETSETTER_STATE_FILE"` // empty: in-memory only
	Theme     string `toml:"theme" env:"JETSETTER_THEME"`
	Group     bool   `toml:"group" env:"JETSETTER_GROUP"`
	LogFile   string `toml:"log_file" env:"JETSETTER_LOG_FILE"`
	Seed      bool   `toml:"seed" env:"JETSETTER_SEED"` // start from the seed list when no snapshot exists
	Color     string `toml:"color" env:"JETSETTER_COLOR"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Theme: "classic",
		Seed:  true,
		Color: ColorAuto,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/jetsetter/config.toml, falling back to
// ~/.config when the user config dir cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "jetsetter", "config.toml")
}

// Load reads path on top of Default, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	cfg.Color = strings.ToLower(strings.TrimSpace(cfg.Color))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	switch c.Theme {
	case "", "classic", "neon", "mono":
	default:
		return fmt.Errorf("%w: theme %q (want classic, neon or mono)", ErrInvalid, c.Theme)
	}
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color %q (want auto, always or never)", ErrInvalid, c.Color)
	}
	return nil
}

// Save writes c as TOML to path, creating the directory.
func Save(path string, c Config) error {
	b, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
