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
	"sort"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-projectsync/internal/metadata"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [profile]",
		Short: "Show the last recorded sync of a profile",
		Long: `Show the metadata of the most recent sync run with --save-metadata.
Without a profile, every configured profile is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = a.cfg.ProfileNames()
				sort.Strings(names)
			}

			status := a.status(cmd)
			for _, name := range names {
				last, err := metadata.LoadLatestMetadata(a.cfg.Defaults.StateDir, name)
				if err != nil {
					return err
				}
				if last == nil {
					status.Warn("No recorded sync for profile %s", name)
					continue
				}
				if err := metadata.WriteMetadataToWriter(last, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
