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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-projectsync/internal/github"
)

func newProjectCommand(a *app) *cobra.Command {
	var org bool

	cmd := &cobra.Command{
		Use:   "project <owner> <number>",
		Short: "Resolve a project board number to its node id",
		Long: `Resolve the board shown at github.com/users/<owner>/projects/<number>
(or github.com/orgs/<owner>/projects/<number> with --org) and print its
node id, the value profiles use as project_id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("invalid project number: %s", args[1])
			}

			ownerType := github.OwnerUser
			if org {
				ownerType = github.OwnerOrganization
			}

			session, err := a.session()
			if err != nil {
				return err
			}
			writer, err := a.writer(cmd)
			if err != nil {
				return err
			}
			defer writer.Close()

			project, err := session.LookupProject(cmd.Context(), args[0], number, ownerType)
			if err != nil {
				return err
			}
			return writer.Write(project)
		},
	}

	cmd.Flags().BoolVar(&org, "org", false, "The owner is an organization")
	return cmd
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the login the token authenticates as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			login, err := session.Viewer(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), login)
			return nil
		},
	}
}
