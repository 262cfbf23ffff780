package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values, so the tool can be driven
// entirely from the environment and flags.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// 1. Resolve config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists)
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// 3. Apply env overrides
	overrideString(&cfg.Cell.URL, env.Cell)
	overrideString(&cfg.Cell.Username, env.Username)
	overrideString(&cfg.Cell.Password, env.Password)

	// 4. Apply CLI overrides
	overrideString(&cfg.Cell.URL, cli.Cell)
	overrideString(&cfg.Cell.Box, cli.Box)
	overrideString(&cfg.Cell.Username, cli.Username)
	overrideString(&cfg.Auth.Mode, cli.Mode)

	// Cell URLs are prefixes ({cell}__token, {cell}{box}/), so they must end
	// in a slash.
	if cfg.Cell.URL != "" && !strings.HasSuffix(cfg.Cell.URL, "/") {
		cfg.Cell.URL += "/"
	}

	// 5. Re-validate: env and CLI values have not been checked yet.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	resolved := &Resolved{Config: *cfg, ConfigPath: cfgPath}

	// Both parse without error after Validate.
	resolved.Timeout, _ = parseTimeout(cfg.Network.Timeout)     //nolint:errcheck // validated
	resolved.Location, _ = loadLocation(cfg.Locations.Timezone) //nolint:errcheck // validated

	if err := ValidateResolved(resolved); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return resolved, nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
