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
	"fmt"

	"github.com/shurcooL/graphql"
)

// projectV2Node is the typed selection shared by user and organization lookups.
type projectV2Node struct {
	ID     graphql.ID
	Number graphql.Int
	Title  graphql.String
	URL    graphql.String
	Closed graphql.Boolean
}

func (n projectV2Node) info() *ProjectInfo {
	return &ProjectInfo{
		ID:     fmt.Sprint(n.ID),
		Number: int(n.Number),
		Title:  string(n.Title),
		URL:    string(n.URL),
		Closed: bool(n.Closed),
	}
}

// LookupProject resolves a project board's node id from its owner and
// number, the values visible in the board's URL.
func (s *Session) LookupProject(ctx context.Context, owner string, number int, ownerType OwnerType) (*ProjectInfo, error) {
	variables := map[string]interface{}{
		"login":  graphql.String(owner),
		"number": graphql.Int(int32(number)), // #nosec G115 - project numbers are small
	}

	var node projectV2Node
	switch ownerType {
	case OwnerOrganization:
		var query struct {
			Organization struct {
				ProjectV2 projectV2Node `graphql:"projectV2(number: $number)"`
			} `graphql:"organization(login: $login)"`
		}
		if err := s.gql.Query(ctx, &query, variables); err != nil {
			return nil, fmt.Errorf("failed to look up project %d of organization %s: %w", number, owner, err)
		}
		node = query.Organization.ProjectV2
	case OwnerUser, "":
		var query struct {
			User struct {
				ProjectV2 projectV2Node `graphql:"projectV2(number: $number)"`
			} `graphql:"user(login: $login)"`
		}
		if err := s.gql.Query(ctx, &query, variables); err != nil {
			return nil, fmt.Errorf("failed to look up project %d of user %s: %w", number, owner, err)
		}
		node = query.User.ProjectV2
	default:
		return nil, fmt.Errorf("unknown project owner type %q", ownerType)
	}

	return node.info(), nil
}

// Viewer returns the login of the user the session's token belongs to.
func (s *Session) Viewer(ctx context.Context) (string, error) {
	var query struct {
		Viewer struct {
			Login graphql.String
		}
	}
	if err := s.gql.Query(ctx, &query, nil); err != nil {
		return "", fmt.Errorf("failed to query viewer: %w", err)
	}
	return string(query.Viewer.Login), nil
}
