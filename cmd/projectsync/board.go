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
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-projectsync/internal/output"
)

func newAddCommand(a *app) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "add --project <id> <issue-id>...",
		Short: "Add issues to a project board",
		Long: `Add issues, by GraphQL node id, to a project board, one request per issue.

Adding stops at the first failure. Issues added before it stay on the board
and their responses are still written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			writer, err := a.writer(cmd)
			if err != nil {
				return err
			}
			defer writer.Close()

			results, addErr := client.AddIssuesToProject(cmd.Context(), projectID, args)
			if err := writer.WriteAll(results); err != nil {
				return err
			}
			if addErr != nil {
				return addErr
			}
			a.status(cmd).Success("Added %d issues to %s", len(results), projectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project node id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newItemsCommand(a *app) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "items --project <id>",
		Short: "List a board's items and the issues they hold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			writer, err := a.writer(cmd)
			if err != nil {
				return err
			}
			defer writer.Close()

			items, err := client.FetchProjectItemIssues(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if err := writeRecords(writer, items); err != nil {
				return err
			}
			a.status(cmd).Success("Listed %d items of %s", writer.Count(), projectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project node id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newFieldsCommand(a *app) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "fields --project <id>",
		Short: "List a board's fields",
		Long: `List a board's fields with their ids, for use as field_id values in a
profile's field mapping. Only TEXT fields can be written by sync.

Values are written as text: strings as-is, numbers and booleans in their
JSON form (true and false, lowercase), objects and arrays as compact JSON,
and null or unmatched paths as an empty string.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			writer, err := a.writer(cmd)
			if err != nil {
				return err
			}
			defer writer.Close()

			fields, err := client.FetchProjectFields(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			return writeRecords(writer, fields)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project node id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func writeRecords[T any](w output.RecordWriter, records []T) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
