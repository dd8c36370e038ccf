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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-projectsync/internal/config"
	"github.com/sirseerhq/sirseer-projectsync/internal/github"
	"github.com/sirseerhq/sirseer-projectsync/internal/logging"
	"github.com/sirseerhq/sirseer-projectsync/internal/output"
)

// app holds the global flags and what is built from them before a
// subcommand runs.
type app struct {
	configPath string
	token      string
	logLevel   string
	outputFile string

	cfg       *config.Config
	logCloser io.Closer
}

// load reads the configuration, checks its global settings and installs the
// logger. Profiles are validated when a command selects one.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Defaults.LogLevel = a.logLevel
	}
	if err := cfg.ValidateSettings(); err != nil {
		return err
	}

	closer, err := logging.Setup(logging.Options{
		Level:  cfg.Defaults.LogLevel,
		File:   cfg.Defaults.LogFile,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logCloser = closer
	slog.Debug("Loaded configuration", "endpoint", cfg.GitHub.GraphQLEndpoint, "profiles", len(cfg.Projects))
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// session opens the authenticated GraphQL session.
func (a *app) session() (*github.Session, error) {
	return github.NewSession(github.SessionConfig{
		Endpoint: a.cfg.GitHub.GraphQLEndpoint,
		Token:    a.cfg.Token(a.token),
	})
}

// client returns a Client over a fresh session.
func (a *app) client() (*github.Client, error) {
	session, err := a.session()
	if err != nil {
		return nil, err
	}
	return github.NewClient(session), nil
}

// writer opens the NDJSON destination selected by --output.
func (a *app) writer(cmd *cobra.Command) (*output.Writer, error) {
	w, err := output.Open(a.outputFile, cmd.OutOrStdout())
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return w, nil
}

// status returns the human-facing status line on the command's stderr.
func (a *app) status(cmd *cobra.Command) *output.Status {
	if f, ok := cmd.ErrOrStderr().(*os.File); ok {
		return output.NewStatus(f)
	}
	return output.NewPlainStatus(cmd.ErrOrStderr())
}
