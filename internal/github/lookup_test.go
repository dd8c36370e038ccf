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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookupServer answers every request with body and records the decoded request.
func lookupServer(t *testing.T, body string, seen *queryRequest) *Session {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	session, err := NewSession(SessionConfig{Endpoint: server.URL, Token: "test-token"})
	require.NoError(t, err)
	return session
}

func TestSession_LookupProject(t *testing.T) {
	tests := []struct {
		name       string
		ownerType  OwnerType
		response   string
		wantInDoc  string
		wantTitle  string
		wantClosed bool
	}{
		{
			name:      "user project",
			ownerType: OwnerUser,
			response:  `{"data":{"user":{"projectV2":{"id":"PVT_user","number":1,"title":"siuba","url":"https://github.com/users/machow/projects/1","closed":false}}}}`,
			wantInDoc: "user(login: $login)",
			wantTitle: "siuba",
		},
		{
			name:       "organization project",
			ownerType:  OwnerOrganization,
			response:   `{"data":{"organization":{"projectV2":{"id":"PVT_org","number":1,"title":"Roadmap","url":"https://github.com/orgs/rstudio/projects/1","closed":true}}}}`,
			wantInDoc:  "organization(login: $login)",
			wantTitle:  "Roadmap",
			wantClosed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen queryRequest
			session := lookupServer(t, tt.response, &seen)

			info, err := session.LookupProject(context.Background(), "machow", 1, tt.ownerType)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, info.Title)
			assert.Equal(t, 1, info.Number)
			assert.Equal(t, tt.wantClosed, info.Closed)
			assert.NotEmpty(t, info.ID)
			assert.Contains(t, seen.Query, tt.wantInDoc)
			assert.Equal(t, "machow", seen.Variables["login"])
		})
	}
}

func TestSession_LookupProject_Errors(t *testing.T) {
	t.Run("unknown owner type", func(t *testing.T) {
		var seen queryRequest
		session := lookupServer(t, `{}`, &seen)

		_, err := session.LookupProject(context.Background(), "machow", 1, OwnerType("team"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown project owner type")
	})

	t.Run("graphql error", func(t *testing.T) {
		var seen queryRequest
		session := lookupServer(t, `{"data":{"user":null},"errors":[{"message":"Could not resolve to a User with the login of 'ghost'."}]}`, &seen)

		_, err := session.LookupProject(context.Background(), "ghost", 3, OwnerUser)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project 3 of user ghost")
	})
}

func TestSession_Viewer(t *testing.T) {
	var seen queryRequest
	session := lookupServer(t, `{"data":{"viewer":{"login":"machow"}}}`, &seen)

	login, err := session.Viewer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "machow", login)
	assert.Contains(t, seen.Query, "viewer")
}
