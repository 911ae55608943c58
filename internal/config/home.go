package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// HomeEnv overrides the configuration directory.
	HomeEnv = "KGLS_CONFIG_HOME"

	fileBase = "config"
)

// Dir returns the kgls configuration directory
// Priority order:
//  1. KGLS_CONFIG_HOME environment variable (if set)
//  2. $XDG_CONFIG_HOME/kgls (if XDG_CONFIG_HOME is set)
//  3. ~/.config/kgls
func Dir() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kgls"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kgls"), nil
}

// DefaultPath returns the config file in Dir: config.yaml, or config.toml
// when only that one exists. When neither exists the .yaml path is
// returned, which is also where --init-config writes.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	yamlPath := filepath.Join(dir, fileBase+".yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath, nil
	}
	tomlPath := filepath.Join(dir, fileBase+".toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	return yamlPath, nil
}

// Load resolves and loads the configuration. An explicit path must exist;
// the default location may be absent, in which case defaults are used.
// It returns the path that was consulted.
func Load(explicitPath string) (*Config, string, error) {
	if explicitPath != "" {
		cfg, err := LoadConfig(explicitPath, true)
		return cfg, explicitPath, err
	}
	path, err := DefaultPath()
	if err != nil {
		// no home directory: nothing to load
		return DefaultConfig(), "", nil
	}
	cfg, err := LoadConfig(path, false)
	return cfg, path, err
}
