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
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-projectsync/internal/boardsync"
	"github.com/sirseerhq/sirseer-projectsync/internal/config"
	"github.com/sirseerhq/sirseer-projectsync/internal/github"
	"github.com/sirseerhq/sirseer-projectsync/internal/metadata"
	"github.com/sirseerhq/sirseer-projectsync/pkg/version"
)

type syncFlags struct {
	concurrency  int
	saveMetadata bool
	skipAdd      bool
}

func newSyncCommand(a *app) *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync <profile>",
		Short: "Sync a repository's issues into its project board",
		Long: `Sync fetches every issue of the profile's repository, extracts the mapped
values and writes them into the matching board items, one mutation per item.

When the profile sets add_missing, issues that are not on the board yet are
added first. The sync stops at the first issue without a board item or the
first failed update; updates already sent are not rolled back.

Each successful update response is written as one NDJSON line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, a, args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Maximum field updates in flight (default: from config)")
	cmd.Flags().BoolVar(&flags.saveMetadata, "save-metadata", false, "Record this run in the state directory")
	cmd.Flags().BoolVar(&flags.skipAdd, "skip-add", false, "Do not add missing issues even if the profile sets add_missing")

	return cmd
}

// runSync executes the sync command
func runSync(cmd *cobra.Command, a *app, name string, flags syncFlags) error {
	profile, err := a.cfg.Profile(name)
	if err != nil {
		return err
	}

	concurrency := flags.concurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Defaults.Concurrency
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

	var previous *metadata.SyncRef
	if flags.saveMetadata {
		last, err := metadata.LoadLatestMetadata(a.cfg.Defaults.StateDir, name)
		if err != nil {
			slog.Warn("Could not read previous sync metadata", "error", err)
		} else if last != nil {
			previous = last.Ref()
		}
	}

	tracker := metadata.New()
	status := a.status(cmd)
	syncer := boardsync.NewSyncer(github.NewClient(tracker.CountCalls(session)), boardsync.Options{
		Concurrency: concurrency,
		Progress: func(done, total int) {
			tracker.AddItemsUpdated(1)
			status.Progress("Updating project items", done, total)
		},
		Fetched: func(issues, _ int) {
			tracker.AddIssuesFetched(issues)
		},
	})

	results, runErr := syncProfile(cmd.Context(), syncer, tracker, profile, flags.skipAdd)
	status.Clear()

	if runErr == nil {
		runErr = writer.WriteAll(results)
	}

	if flags.saveMetadata {
		meta := tracker.GenerateMetadata(version.Version, metadata.SyncParams{
			Profile:     name,
			Repository:  profile.Repository(),
			ProjectID:   profile.ProjectID,
			Concurrency: concurrency,
			FieldCount:  len(profile.Fields),
		}, runErr, previous)

		path, err := metadata.SaveMetadata(meta, a.cfg.Defaults.StateDir)
		if err != nil {
			slog.Error("Failed to save sync metadata", "error", err)
		} else {
			slog.Debug("Saved sync metadata", "path", path)
		}
	}

	if runErr != nil {
		return runErr
	}

	status.Success("Updated %d project items from %s", len(results), profile.Repository())
	return nil
}

func syncProfile(ctx context.Context, syncer *boardsync.Syncer, tracker *metadata.Tracker, profile config.ProjectConfig, skipAdd bool) ([]json.RawMessage, error) {
	if profile.AddMissing && !skipAdd {
		added, err := syncer.AddMissing(ctx, profile.Owner, profile.Repo, profile.ProjectID)
		tracker.AddItemsAdded(len(added))
		if err != nil {
			return nil, err
		}
	}

	return syncer.Sync(ctx, boardsync.Request{
		Owner:         profile.Owner,
		Repo:          profile.Repo,
		ProjectID:     profile.ProjectID,
		Mapping:       profile.Mapping(),
		QueryFragment: profile.QueryFragment,
	})
}
