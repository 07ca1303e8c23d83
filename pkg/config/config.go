// Package config loads the pass's configuration from a
// .rscactions.yaml file found by searching upward from a starting
// directory, merged over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the transform's entire external configuration surface.
type Config struct {
	// IsReactServerLayer selects which runtime imports and wrapper
	// calls the transform emits: server-layer proxies register a
	// server reference, client-layer proxies create one.
	IsReactServerLayer bool `yaml:"is_react_server_layer"`

	// Enabled gates whether "use server"/"use cache" are allowed at
	// all. A recognized directive while disabled is still stripped
	// but reported as KindFeatureDisabled.
	Enabled bool `yaml:"enabled"`

	// HashSalt is mixed into every action id, letting a build
	// pipeline rotate ids without touching source.
	HashSalt string `yaml:"hash_salt"`
}

// DefaultConfig returns the configuration used when no project file is found.
func DefaultConfig() *Config {
	return &Config{
		IsReactServerLayer: true,
		Enabled:            true,
		HashSalt:           "",
	}
}

// LoadConfig loads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// configFileNames are tried, in order, at every directory level.
var configFileNames = []string{".rscactions.yaml", "rscactions.yaml"}

// FindConfig searches startDir and its parents for a configuration
// file, returning "" (no error) when none exists anywhere up to the
// filesystem root.
func FindConfig(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadConfigWithDefaults finds the nearest configuration file starting
// at projectRoot and loads it, falling back to DefaultConfig when none
// is found.
func LoadConfigWithDefaults(projectRoot string) (*Config, error) {
	path, err := FindConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
