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

// FieldValue is one value destined for a project field. A nil Value means
// the source attribute was absent.
type FieldValue struct {
	FieldID string  `json:"field_id"`
	Value   *string `json:"value"`
}

// Text returns the value to send to the API. Absent values become the empty
// string because text field updates do not accept null.
func (v FieldValue) Text() string {
	if v.Value == nil {
		return ""
	}
	return *v.Value
}

// ItemIssue links a project item to the issue it represents. IssueID is
// empty for items whose content is not an issue (draft issues, pull requests).
type ItemIssue struct {
	ItemID  string `json:"item_id"`
	IssueID string `json:"issue_id"`
}

// ProjectField describes one column of a project board.
type ProjectField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// ProjectInfo identifies a project board found by owner and number.
type ProjectInfo struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Closed bool   `json:"closed"`
}

// OwnerType selects whether a project number is resolved under a user or an organization.
type OwnerType string

const (
	// OwnerUser represents a user-owned project
	OwnerUser OwnerType = "user"
	// OwnerOrganization represents an organization-owned project
	OwnerOrganization OwnerType = "organization"
)

// Page sizes used by the paginated queries. 100 is the GraphQL API maximum.
const (
	issuesPageSize = 100
	itemsPageSize  = 100

	// Boards are assumed to have at most this many fields.
	maxProjectFields = 20
)
