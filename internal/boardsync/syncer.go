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

package boardsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
	"github.com/sirseerhq/sirseer-projectsync/internal/github"
)

// Options tune a Syncer.
type Options struct {
	// Concurrency bounds the number of field updates in flight. Values
	// below 2 send updates one at a time in fetch order.
	Concurrency int

	// Progress, when set, is called once per committed item update, also
	// when the run fails later.
	Progress func(done, total int)

	// Fetched, when set, is called once issues and board items are loaded.
	Fetched func(issues, items int)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Request describes one repository to board sync.
type Request struct {
	Owner     string
	Repo      string
	ProjectID string
	Mapping   FieldMapping

	// QueryFragment is spliced into the issue selection next to "id" and
	// must select everything Mapping's paths read.
	QueryFragment string
}

// Syncer runs board syncs through a github.Client.
type Syncer struct {
	client *github.Client
	opts   Options
	log    *slog.Logger
}

// NewSyncer returns a Syncer that sends every request through client.
func NewSyncer(client *github.Client, opts Options) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{client: client, opts: opts, log: logger}
}

type update struct {
	index   int
	issueID string
	itemID  string
	row     Row
}

// Sync pushes the mapped attributes of every issue of req.Owner/req.Repo
// into the matching board items and returns one update result per issue,
// in fetch order.
//
// Every issue must already have an item on the board. The first issue
// without one fails the run with ErrItemNotFound before its update is sent;
// updates sent for earlier issues remain applied.
func (s *Syncer) Sync(ctx context.Context, req Request) ([]json.RawMessage, error) {
	if err := req.Mapping.Validate(); err != nil {
		return nil, err
	}

	issues, err := s.client.FetchAllIssues(ctx, req.Owner, req.Repo, req.QueryFragment)
	if err != nil {
		return nil, err
	}
	issueIDs, err := github.IssueIDs(issues)
	if err != nil {
		return nil, err
	}
	rows := req.Mapping.ExtractRows(issues)

	items, err := s.client.FetchProjectItemIssues(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	itemByIssue := make(map[string]string, len(items))
	for _, item := range items {
		if item.IssueID != "" {
			itemByIssue[item.IssueID] = item.ItemID
		}
	}

	if s.opts.Fetched != nil {
		s.opts.Fetched(len(issueIDs), len(items))
	}

	if len(rows) != len(issueIDs) {
		return nil, fmt.Errorf("%w: %d rows for %d issues", projerrors.ErrInconsistentRows, len(rows), len(issueIDs))
	}

	s.log.Info("Syncing issues to project",
		"owner", req.Owner, "repo", req.Repo, "project", req.ProjectID,
		"issues", len(issueIDs), "items", len(items), "fields", len(req.Mapping))

	updates := func(yield func(update) error) error {
		for i, issueID := range issueIDs {
			itemID, ok := itemByIssue[issueID]
			if !ok {
				return fmt.Errorf("%w: issue %s has no item on project %s", projerrors.ErrItemNotFound, issueID, req.ProjectID)
			}
			if err := yield(update{index: i, issueID: issueID, itemID: itemID, row: rows[i]}); err != nil {
				return err
			}
		}
		return nil
	}

	if s.opts.Concurrency > 1 {
		return s.updateConcurrently(ctx, req.ProjectID, len(issueIDs), updates)
	}
	return s.updateSequentially(ctx, req.ProjectID, len(issueIDs), updates)
}

func (s *Syncer) updateSequentially(ctx context.Context, projectID string, total int, updates func(func(update) error) error) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, 0, total)
	err := updates(func(u update) error {
		res, err := s.client.UpdateProjectItemFields(ctx, projectID, u.itemID, u.row)
		if err != nil {
			return fmt.Errorf("issue %s: %w", u.issueID, err)
		}
		results = append(results, res)
		s.log.Debug("Updated project item", "issue", u.issueID, "item", u.itemID)
		s.progress(len(results), total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Syncer) updateConcurrently(ctx context.Context, projectID string, total int, updates func(func(update) error) error) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, total)

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	dispatchErr := updates(func(u update) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			res, err := s.client.UpdateProjectItemFields(gctx, projectID, u.itemID, u.row)
			if err != nil {
				return fmt.Errorf("issue %s: %w", u.issueID, err)
			}
			results[u.index] = res

			s.log.Debug("Updated project item", "issue", u.issueID, "item", u.itemID)

			mu.Lock()
			defer mu.Unlock()
			done++
			s.progress(done, total)
			return nil
		})
		return nil
	})

	// In-flight updates finish even when dispatch stopped early.
	waitErr := g.Wait()
	if waitErr != nil {
		return nil, waitErr
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}
	return results, nil
}

func (s *Syncer) progress(done, total int) {
	if s.opts.Progress != nil {
		s.opts.Progress(done, total)
	}
}

// AddMissing puts every issue of owner/repo that is not on the board yet
// onto it and returns the ids it added.
func (s *Syncer) AddMissing(ctx context.Context, owner, repo, projectID string) ([]string, error) {
	added, err := s.client.AddMissingIssues(ctx, owner, repo, projectID)
	s.log.Info("Added missing issues to project", "project", projectID, "added", len(added))
	return added, err
}
