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

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sirseerhq/sirseer-projectsync/internal/jsonpath"
)

// issuesQuery is completed with the caller's selection fragments. The
// fragments are spliced in as-is.
const issuesQuery = `
query($nextCursor: String, $owner: String!, $repo: String!) {
  repository(owner: $owner, name: $repo) {
    issues(first: %d, after: $nextCursor) {
      nodes {
        id
%s
      }
      pageInfo {
        endCursor
        hasNextPage
      }
    }
  }
}`

// FetchAllIssues returns every issue of owner/repo as raw JSON objects, in
// page order then in-page order. Each object holds "id" plus whatever the
// fragments select.
func (c *Client) FetchAllIssues(ctx context.Context, owner, repo string, fragments ...string) ([]json.RawMessage, error) {
	slog.Debug("Fetching repository issues", "owner", owner, "repo", repo, "fragments", len(fragments))

	pages, err := PaginatedQuery(ctx, c.exec, PageRequest{
		Document:       fmt.Sprintf(issuesQuery, issuesPageSize, strings.Join(fragments, "\n")),
		NextCursorPath: "repository.issues.pageInfo.endCursor",
		HasNextPath:    "repository.issues.pageInfo.hasNextPage",
		Variables: map[string]any{
			"owner": owner,
			"repo":  repo,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues for %s/%s: %w", owner, repo, err)
	}

	var issues []json.RawMessage
	for _, page := range pages {
		for _, node := range connectionNodes(page, "repository.issues.nodes[]") {
			issues = append(issues, json.RawMessage(node.Raw))
		}
	}

	slog.Debug("Repository issues fetched", "count", len(issues), "pages", len(pages))
	return issues, nil
}

// FetchAllIssueIDs returns the node id of every issue in owner/repo.
func (c *Client) FetchAllIssueIDs(ctx context.Context, owner, repo string) ([]string, error) {
	issues, err := c.FetchAllIssues(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	return IssueIDs(issues)
}

// IssueIDs extracts the required "id" member of each issue.
func IssueIDs(issues []json.RawMessage) ([]string, error) {
	ids := make([]string, 0, len(issues))
	for i, issue := range issues {
		id, err := jsonpath.ResolveRequired(issue, "id")
		if err != nil {
			return nil, fmt.Errorf("issue %d: %w", i, err)
		}
		ids = append(ids, id.String())
	}
	return ids, nil
}

// connectionNodes lists the non-null members of a connection's nodes list.
// GitHub returns null for nodes the token cannot see.
func connectionNodes(data []byte, path string) []gjson.Result {
	var nodes []gjson.Result
	for _, node := range jsonpath.ResolveAll(data, path) {
		if node.Type != gjson.Null {
			nodes = append(nodes, node)
		}
	}
	return nodes
}
