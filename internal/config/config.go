// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for sirseer-projectsync
// with support for multiple configuration sources and a well-defined
// precedence order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file (YAML or TOML)
//  4. Built-in defaults
//
// Sync profiles live only in the configuration file: each one names a
// repository, a project board and the issue attributes copied into board
// fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-projectsync.yaml, .yml or .toml (current directory)
//   - ~/.sirseer/projectsync.yaml, .yml or .toml
//
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Environment variables are applied after loading the config file.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home := homeDir()
		var defaultPaths []string
		for _, ext := range []string{".yaml", ".yml", ".toml"} {
			defaultPaths = append(defaultPaths, ".sirseer-projectsync"+ext)
		}
		for _, ext := range []string{".yaml", ".yml", ".toml"} {
			defaultPaths = append(defaultPaths, filepath.Join(home, ".sirseer", "projectsync"+ext))
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Defaults.StateDir = expandPath(cfg.Defaults.StateDir)
	cfg.Defaults.LogFile = expandPath(cfg.Defaults.LogFile)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML or TOML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("%w: failed to parse TOML config file %s: %v", projerrors.ErrInvalidConfig, path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: failed to parse config file %s: %v", projerrors.ErrInvalidConfig, path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	if concurrency := os.Getenv("SIRSEER_CONCURRENCY"); concurrency != "" {
		if n, err := parsePositiveInt(concurrency); err == nil {
			cfg.Defaults.Concurrency = n
		}
	}
	if stateDir := os.Getenv("SIRSEER_STATE_DIR"); stateDir != "" {
		cfg.Defaults.StateDir = stateDir
	}
	if level := os.Getenv("SIRSEER_LOG_LEVEL"); level != "" {
		cfg.Defaults.LogLevel = level
	}
	if logFile := os.Getenv("SIRSEER_LOG_FILE"); logFile != "" {
		cfg.Defaults.LogFile = logFile
	}
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// Token returns the access token: flagValue when set, otherwise the
// environment variable named by GitHub.TokenEnv. The result may be empty;
// the session rejects an empty token.
func (c *Config) Token(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}

// Profile returns the named sync profile after validating it.
func (c *Config) Profile(name string) (ProjectConfig, error) {
	p, ok := c.Projects[name]
	if !ok {
		return ProjectConfig{}, fmt.Errorf("%w: no project profile named %q", projerrors.ErrInvalidConfig, name)
	}
	if err := p.Validate(); err != nil {
		return ProjectConfig{}, fmt.Errorf("project profile %q: %w", name, err)
	}
	return p, nil
}

// ProfileNames returns the configured profile names in no particular order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Projects))
	for name := range c.Projects {
		names = append(names, name)
	}
	return names
}

// Validate checks a sync profile: the repository and board must be named
// and the field mapping must be usable.
func (p ProjectConfig) Validate() error {
	if p.Owner == "" || p.Repo == "" {
		return fmt.Errorf("%w: owner and repo are required", projerrors.ErrInvalidConfig)
	}
	if p.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", projerrors.ErrInvalidConfig)
	}
	return p.Mapping().Validate()
}

// ValidateSettings checks the settings every command relies on. Profiles
// are left to Profile, so a broken profile only fails the runs that use it.
func (c *Config) ValidateSettings() error {
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("%w: GitHub GraphQL endpoint cannot be empty", projerrors.ErrInvalidConfig)
	}
	if c.Defaults.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got: %d", projerrors.ErrInvalidConfig, c.Defaults.Concurrency)
	}
	return nil
}

// Validate checks the settings and every sync profile.
func (c *Config) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	for name, p := range c.Projects {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project profile %q: %w", name, err)
		}
	}
	return nil
}
