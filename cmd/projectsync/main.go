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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
	"github.com/sirseerhq/sirseer-projectsync/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

// run executes the command line args with the given standard streams.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	rootCmd := newRootCommand(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sirseer-projectsync",
		Short: "Sync GitHub issue data into a GitHub Projects board",
		Long: `SirSeer ProjectSync copies values out of a repository's issues into the
custom text fields of a GitHub Projects board. Which values land in which
fields is declared per profile in the configuration file.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: .sirseer-projectsync.yaml, then ~/.sirseer/projectsync.yaml)")
	flags.StringVar(&a.token, "token", "", "GitHub access token (overrides the token_env variable)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.outputFile, "output", "", "Output file path (default: stdout)")

	rootCmd.AddCommand(
		newSyncCommand(a),
		newAddCommand(a),
		newIssuesCommand(a),
		newItemsCommand(a),
		newFieldsCommand(a),
		newProjectCommand(a),
		newWhoamiCommand(a),
		newStatusCommand(a),
	)
	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}
	if projerrors.IsConfigError(err) {
		return 2
	}
	return 1
}
