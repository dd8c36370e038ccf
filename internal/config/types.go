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

// Package config types define the configuration structures used throughout
// sirseer-projectsync. These types represent settings that can be loaded from
// YAML or TOML configuration files, environment variables, or command-line
// flags.
package config

import (
	"github.com/sirseerhq/sirseer-projectsync/internal/boardsync"
	"github.com/sirseerhq/sirseer-projectsync/internal/github"
)

// Config represents the complete configuration for sirseer-projectsync.
type Config struct {
	GitHub   GitHubConfig             `yaml:"github" toml:"github"`
	Defaults DefaultsConfig           `yaml:"defaults" toml:"defaults"`
	Projects map[string]ProjectConfig `yaml:"projects" toml:"projects"`
}

// GitHubConfig contains the GraphQL endpoint and the name of the
// environment variable holding the access token. Point GraphQLEndpoint at
// a GitHub Enterprise server to sync boards there.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint" toml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env" toml:"token_env"`
}

// DefaultsConfig contains settings shared by every command.
type DefaultsConfig struct {
	// Concurrency bounds parallel field updates; 1 keeps them sequential.
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
	StateDir    string `yaml:"state_dir" toml:"state_dir"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`
	// LogFile, when set, receives logs instead of stderr.
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// ProjectConfig is one named sync profile: a repository, the board its
// issues are mirrored to and the issue attributes copied into board fields.
type ProjectConfig struct {
	Owner     string `yaml:"owner" toml:"owner"`
	Repo      string `yaml:"repo" toml:"repo"`
	ProjectID string `yaml:"project_id" toml:"project_id"`

	// AddMissing puts issues that are not on the board yet onto it before
	// fields are synced.
	AddMissing bool `yaml:"add_missing" toml:"add_missing"`

	// QueryFragment is spliced into the issue selection and must select
	// every attribute Fields reads.
	QueryFragment string               `yaml:"query_fragment" toml:"query_fragment"`
	Fields        []boardsync.FieldMap `yaml:"fields" toml:"fields"`
}

// Mapping returns the profile's fields as a FieldMapping.
func (p ProjectConfig) Mapping() boardsync.FieldMapping {
	return boardsync.FieldMapping(p.Fields)
}

// Repository returns the profile's repository as "owner/repo".
func (p ProjectConfig) Repository() string {
	return p.Owner + "/" + p.Repo
}

// DefaultConfig returns a Config with defaults suitable for github.com.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: github.DefaultEndpoint,
			TokenEnv:        "GITHUB_TOKEN",
		},
		Defaults: DefaultsConfig{
			Concurrency: 1,
			StateDir:    "~/.sirseer/projectsync",
			LogLevel:    "info",
		},
		Projects: make(map[string]ProjectConfig),
	}
}
