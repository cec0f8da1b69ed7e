package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal errors with "did you mean?"
// suggestions.
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

	cfg.Path = path

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
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
// An explicitly named config file (flag or env) must exist.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfgPath := DefaultConfigPath()
	explicit := false

	if env.ConfigPath != "" {
		cfgPath, explicit = env.ConfigPath, true
	}

	if cli.ConfigPath != "" {
		cfgPath, explicit = cli.ConfigPath, true
	}

	var (
		cfg *Config
		err error
	)

	if explicit {
		cfg, err = Load(cfgPath)
	} else {
		cfg, err = LoadOrDefault(cfgPath)
	}

	if err != nil {
		return nil, err
	}

	override(&cfg.Auth.ClientID, env.ClientID, cli.ClientID)
	override(&cfg.Auth.TenantID, env.TenantID, cli.TenantID)
	override(&cfg.Auth.ClientSecret, env.ClientSecret, cli.ClientSecret)

	return cfg, nil
}

// override applies the non-empty values in order, so later layers win.
func override(dst *string, layers ...string) {
	for _, v := range layers {
		if v != "" {
			*dst = v
		}
	}
}
