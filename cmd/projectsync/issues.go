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
	"strings"

	"github.com/spf13/cobra"
)

func newIssuesCommand(a *app) *cobra.Command {
	var fragment string

	cmd := &cobra.Command{
		Use:   "issues <owner>/<repo>",
		Short: "Fetch every issue of a repository as NDJSON",
		Long: `Fetch every issue of a repository and output one NDJSON line per issue.

Each issue selects its id plus whatever --fragment adds, for example:

  sirseer-projectsync issues machow/siuba --fragment 'updatedAt author { login }'

This is the same query sync runs, which makes it useful for checking a
profile's query_fragment and paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			writer, err := a.writer(cmd)
			if err != nil {
				return err
			}
			defer writer.Close()

			issues, err := client.FetchAllIssues(cmd.Context(), owner, repo, fragment)
			if err != nil {
				return err
			}
			if err := writer.WriteAll(issues); err != nil {
				return err
			}
			a.status(cmd).Success("Fetched %d issues from %s/%s", len(issues), owner, repo)
			return nil
		},
	}

	cmd.Flags().StringVar(&fragment, "fragment", "", "GraphQL selection added to each issue next to id")
	return cmd
}

// parseRepository parses an owner/repo string into owner and repo components
func parseRepository(repoArg string) (owner, repo string, err error) {
	parts := strings.Split(repoArg, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	return owner, repo, nil
}
