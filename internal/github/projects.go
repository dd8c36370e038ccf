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
)

const addItemMutation = `
mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item {
      id
    }
  }
}`

var projectFieldsQuery = fmt.Sprintf(`
query($projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      fields(first: %d) {
        nodes {
          ... on ProjectV2FieldCommon {
            id
            name
            dataType
          }
        }
      }
    }
  }
}`, maxProjectFields)

var projectItemsQuery = fmt.Sprintf(`
query($nextCursor: String, $projectId: ID!) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: %d, after: $nextCursor) {
        nodes {
          id
          content {
            ... on Issue {
              id
            }
          }
        }
        pageInfo {
          endCursor
          hasNextPage
        }
      }
    }
  }
}`, itemsPageSize)

// AddIssuesToProject adds each issue to the project with one mutation per
// issue, in order. The first failure stops the loop: the results collected
// so far are returned with the error, and the issues already added stay on
// the board.
func (c *Client) AddIssuesToProject(ctx context.Context, projectID string, issueIDs []string) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, 0, len(issueIDs))
	for _, issueID := range issueIDs {
		res, err := c.exec.Query(ctx, addItemMutation, map[string]any{
			"projectId": projectID,
			"contentId": issueID,
		})
		if err == nil {
			err = ValidateResult(res)
		}
		if err != nil {
			return results, fmt.Errorf("failed to add issue %s to project %s: %w", issueID, projectID, err)
		}

		slog.Debug("Added issue to project", "issue", issueID, "project", projectID)
		results = append(results, res)
	}
	return results, nil
}

// UpdateProjectItemFields sets every value on one project item with a
// single batched mutation and returns the raw response.
func (c *Client) UpdateProjectItemFields(ctx context.Context, projectID, itemID string, values []FieldValue) (json.RawMessage, error) {
	document, err := BuildFieldMutation(len(values))
	if err != nil {
		return nil, err
	}

	res, err := c.exec.Query(ctx, document, fieldMutationVariables(projectID, itemID, values))
	if err != nil {
		return nil, fmt.Errorf("failed to update fields of item %s: %w", itemID, err)
	}
	if err := ValidateResult(res); err != nil {
		return nil, fmt.Errorf("failed to update fields of item %s: %w", itemID, err)
	}

	return res, nil
}

// FetchProjectFields lists the fields of a project board with a single,
// non-paginated query.
func (c *Client) FetchProjectFields(ctx context.Context, projectID string) ([]ProjectField, error) {
	res, err := c.exec.Query(ctx, projectFieldsQuery, map[string]any{"projectId": projectID})
	if err == nil {
		err = ValidateResult(res)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fields of project %s: %w", projectID, err)
	}

	nodes := connectionNodes(res, "data.node.fields.nodes[]")
	fields := make([]ProjectField, 0, len(nodes))
	for _, node := range nodes {
		var field ProjectField
		if err := json.Unmarshal([]byte(node.Raw), &field); err != nil {
			return nil, fmt.Errorf("failed to decode project field: %w", err)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// FetchProjectItemIssues lists every item of a project with the id of the
// issue behind it.
func (c *Client) FetchProjectItemIssues(ctx context.Context, projectID string) ([]ItemIssue, error) {
	pages, err := PaginatedQuery(ctx, c.exec, PageRequest{
		Document:       projectItemsQuery,
		NextCursorPath: "node.items.pageInfo.endCursor",
		HasNextPath:    "node.items.pageInfo.hasNextPage",
		Variables:      map[string]any{"projectId": projectID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items of project %s: %w", projectID, err)
	}

	var items []ItemIssue
	for _, page := range pages {
		for _, node := range connectionNodes(page, "node.items.nodes[]") {
			items = append(items, ItemIssue{
				ItemID:  node.Get("id").String(),
				IssueID: node.Get("content.id").String(),
			})
		}
	}

	slog.Debug("Project items fetched", "project", projectID, "count", len(items))
	return items, nil
}

// MissingIssueIDs returns the issue ids, in their original order, that no
// project item refers to.
func MissingIssueIDs(issueIDs []string, items []ItemIssue) []string {
	onBoard := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.IssueID != "" {
			onBoard[item.IssueID] = struct{}{}
		}
	}

	var missing []string
	for _, id := range issueIDs {
		if _, ok := onBoard[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// AddMissingIssues adds every issue of owner/repo that has no item on the
// project board yet and returns the ids it added.
func (c *Client) AddMissingIssues(ctx context.Context, owner, repo, projectID string) ([]string, error) {
	issueIDs, err := c.FetchAllIssueIDs(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	items, err := c.FetchProjectItemIssues(ctx, projectID)
	if err != nil {
		return nil, err
	}

	missing := MissingIssueIDs(issueIDs, items)
	if len(missing) == 0 {
		slog.Debug("No issues missing from project", "project", projectID)
		return nil, nil
	}

	added, err := c.AddIssuesToProject(ctx, projectID, missing)
	return missing[:len(added)], err
}
