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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-projectsync/internal/boardsync"
	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
)

// isolate points HOME and the working directory at empty temp dirs so the
// developer's own configuration files are never picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{"GITHUB_GRAPHQL_ENDPOINT", "SIRSEER_CONCURRENCY", "SIRSEER_STATE_DIR", "SIRSEER_LOG_LEVEL", "SIRSEER_LOG_FILE"} {
		t.Setenv(key, "")
	}
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GitHub.GraphQLEndpoint != "https://api.github.com/graphql" {
		t.Errorf("GraphQLEndpoint = %s, want https://api.github.com/graphql", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.GitHub.TokenEnv != "GITHUB_TOKEN" {
		t.Errorf("TokenEnv = %s, want GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	}
	if cfg.Defaults.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Defaults.Concurrency)
	}
	if cfg.Defaults.StateDir != "~/.sirseer/projectsync" {
		t.Errorf("StateDir = %s, want ~/.sirseer/projectsync", cfg.Defaults.StateDir)
	}
	if cfg.Defaults.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.Defaults.LogLevel)
	}
	if len(cfg.Projects) != 0 {
		t.Errorf("Projects = %v, want none", cfg.Projects)
	}
}

const yamlConfig = `
github:
  graphql_endpoint: https://github.enterprise.com/api/graphql
  token_env: GITHUB_ENTERPRISE_TOKEN

defaults:
  concurrency: 4
  state_dir: /custom/state
  log_level: debug

projects:
  pins:
    owner: machow
    repo: pins-python
    project_id: PVT_kwHOACSu
    add_missing: true
    query_fragment: |
      updatedAt
      author { login }
    fields:
      - path: .updatedAt
        field_id: PVTF_updated
      - path: .comments.nodes[] | .author.login
        field_id: PVTF_commenter
`

const tomlConfig = `
[github]
graphql_endpoint = "https://github.enterprise.com/api/graphql"
token_env = "GITHUB_ENTERPRISE_TOKEN"

[defaults]
concurrency = 4
state_dir = "/custom/state"
log_level = "debug"

[projects.pins]
owner = "machow"
repo = "pins-python"
project_id = "PVT_kwHOACSu"
add_missing = true
query_fragment = """
updatedAt
author { login }
"""

[[projects.pins.fields]]
path = ".updatedAt"
field_id = "PVTF_updated"

[[projects.pins.fields]]
path = ".comments.nodes[] | .author.login"
field_id = "PVTF_commenter"
`

func TestLoadConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "config.yaml", content: yamlConfig},
		{name: "toml", file: "config.toml", content: tomlConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			configPath := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if cfg.GitHub.GraphQLEndpoint != "https://github.enterprise.com/api/graphql" {
				t.Errorf("GraphQLEndpoint = %s", cfg.GitHub.GraphQLEndpoint)
			}
			if cfg.GitHub.TokenEnv != "GITHUB_ENTERPRISE_TOKEN" {
				t.Errorf("TokenEnv = %s, want GITHUB_ENTERPRISE_TOKEN", cfg.GitHub.TokenEnv)
			}
			if cfg.Defaults.Concurrency != 4 {
				t.Errorf("Concurrency = %d, want 4", cfg.Defaults.Concurrency)
			}
			if cfg.Defaults.LogLevel != "debug" {
				t.Errorf("LogLevel = %s, want debug", cfg.Defaults.LogLevel)
			}

			p, err := cfg.Profile("pins")
			if err != nil {
				t.Fatalf("Profile(pins) failed: %v", err)
			}
			if p.Repository() != "machow/pins-python" {
				t.Errorf("Repository() = %s", p.Repository())
			}
			if !p.AddMissing {
				t.Error("AddMissing = false, want true")
			}
			if !strings.Contains(p.QueryFragment, "author { login }") {
				t.Errorf("QueryFragment = %q", p.QueryFragment)
			}
			mapping := p.Mapping()
			if len(mapping) != 2 {
				t.Fatalf("mapping has %d entries, want 2", len(mapping))
			}
			if mapping[1].Path != ".comments.nodes[] | .author.login" || mapping[1].FieldID != "PVTF_commenter" {
				t.Errorf("mapping[1] = %+v", mapping[1])
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestLoadConfig_SearchPath(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".sirseer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "projectsync.toml"), []byte("[defaults]\nconcurrency = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Defaults.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3 from home config", cfg.Defaults.Concurrency)
	}
	if want := filepath.Join(home, ".sirseer", "projectsync"); cfg.Defaults.StateDir != want {
		t.Errorf("StateDir = %s, want %s", cfg.Defaults.StateDir, want)
	}

	// A file in the working directory wins over the home directory.
	if err := os.WriteFile(".sirseer-projectsync.yaml", []byte("defaults:\n  concurrency: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Defaults.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5 from local config", cfg.Defaults.Concurrency)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	isolate(t)

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[defaults\nconcurrency = "), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(bad)
	if !errors.Is(err, projerrors.ErrInvalidConfig) {
		t.Errorf("LoadConfig(bad.toml) = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_GRAPHQL_ENDPOINT", "https://custom.graphql.com")
	t.Setenv("SIRSEER_CONCURRENCY", "8")
	t.Setenv("SIRSEER_STATE_DIR", "/env/state")
	t.Setenv("SIRSEER_LOG_LEVEL", "warn")
	t.Setenv("SIRSEER_LOG_FILE", "/env/projectsync.log")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.GitHub.GraphQLEndpoint != "https://custom.graphql.com" {
		t.Errorf("GraphQLEndpoint = %s, want https://custom.graphql.com", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.Defaults.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Defaults.Concurrency)
	}
	if cfg.Defaults.StateDir != "/env/state" {
		t.Errorf("StateDir = %s, want /env/state", cfg.Defaults.StateDir)
	}
	if cfg.Defaults.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", cfg.Defaults.LogLevel)
	}
	if cfg.Defaults.LogFile != "/env/projectsync.log" {
		t.Errorf("LogFile = %s", cfg.Defaults.LogFile)
	}
}

func TestEnvironmentOverrides_InvalidConcurrencyIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("SIRSEER_CONCURRENCY", "-2")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Defaults.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want default 1", cfg.Defaults.Concurrency)
	}
}

func TestToken(t *testing.T) {
	t.Setenv("PROJECTSYNC_TEST_TOKEN", "from-env")
	cfg := DefaultConfig()
	cfg.GitHub.TokenEnv = "PROJECTSYNC_TEST_TOKEN"

	if got := cfg.Token("from-flag"); got != "from-flag" {
		t.Errorf("Token(flag) = %s, want from-flag", got)
	}
	if got := cfg.Token(""); got != "from-env" {
		t.Errorf("Token(\"\") = %s, want from-env", got)
	}

	cfg.GitHub.TokenEnv = ""
	if got := cfg.Token(""); got != "" {
		t.Errorf("Token with no env var = %s, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	withProject := func(mutate func(*ProjectConfig)) *Config {
		cfg := DefaultConfig()
		p := ProjectConfig{Owner: "machow", Repo: "siuba", ProjectID: "PVT_1"}
		p.Fields = append(p.Fields, boardsync.FieldMap{Path: "updatedAt", FieldID: "F1"})
		mutate(&p)
		cfg.Projects["siuba"] = p
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr error
		wantMsg string
	}{
		{
			name:   "valid config",
			config: withProject(func(*ProjectConfig) {}),
		},
		{
			name:    "empty GraphQL endpoint",
			config:  &Config{Defaults: DefaultsConfig{Concurrency: 1}},
			wantErr: projerrors.ErrInvalidConfig,
			wantMsg: "GraphQL endpoint cannot be empty",
		},
		{
			name:    "zero concurrency",
			config:  &Config{GitHub: GitHubConfig{GraphQLEndpoint: "http://graphql"}},
			wantErr: projerrors.ErrInvalidConfig,
			wantMsg: "concurrency must be at least 1",
		},
		{
			name:    "missing project id",
			config:  withProject(func(p *ProjectConfig) { p.ProjectID = "" }),
			wantErr: projerrors.ErrInvalidConfig,
			wantMsg: `project profile "siuba"`,
		},
		{
			name:    "no fields",
			config:  withProject(func(p *ProjectConfig) { p.Fields = nil }),
			wantErr: projerrors.ErrEmptyMapping,
		},
		{
			name: "duplicate destination",
			config: withProject(func(p *ProjectConfig) {
				p.Fields = append(p.Fields, boardsync.FieldMap{Path: "closedAt", FieldID: "F1"})
			}),
			wantErr: projerrors.ErrDuplicateField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !projerrors.IsConfigError(err) {
				t.Errorf("IsConfigError(%v) = false", err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestProfile_Unknown(t *testing.T) {
	_, err := DefaultConfig().Profile("nope")
	if !errors.Is(err, projerrors.ErrInvalidConfig) {
		t.Errorf("Profile(nope) = %v, want ErrInvalidConfig", err)
	}
}

func TestValidateSettings_IgnoresProfiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Projects = map[string]ProjectConfig{
		"broken": {Owner: "machow", Repo: "siuba"},
		"pins": {
			Owner: "rstudio", Repo: "pins", ProjectID: "PVT_2",
			Fields: []boardsync.FieldMap{{Path: "title", FieldID: "F1"}},
		},
	}

	if err := cfg.ValidateSettings(); err != nil {
		t.Fatalf("ValidateSettings() = %v, want nil", err)
	}
	if _, err := cfg.Profile("pins"); err != nil {
		t.Errorf("Profile(pins) = %v, want nil", err)
	}
	if _, err := cfg.Profile("broken"); !errors.Is(err, projerrors.ErrInvalidConfig) {
		t.Errorf("Profile(broken) = %v, want ErrInvalidConfig", err)
	}
	if err := cfg.Validate(); !errors.Is(err, projerrors.ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}
}
