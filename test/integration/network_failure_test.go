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

package integration

import (
	"net/http"
	"testing"

	"github.com/sirseerhq/sirseer-projectsync/test/testutil"
)

func TestNetworkFailure_Unreachable(t *testing.T) {
	skipShort(t)

	server := testutil.NewMockServer(t, func(http.ResponseWriter, *http.Request) {})
	endpoint := server.URL + "/graphql"
	server.Close()

	result := testutil.RunCLI(t, []string{"issues", "machow/siuba"}, map[string]string{
		"GITHUB_TOKEN":            "test-token",
		"GITHUB_GRAPHQL_ENDPOINT": endpoint,
		"HOME":                    t.TempDir(),
	})
	testutil.AssertCLIError(t, result, "network connection failed")
	testutil.AssertExitCode(t, result, 1)
}

func TestNetworkFailure_HTTPStatus(t *testing.T) {
	skipShort(t)

	tests := []struct {
		name    string
		status  int
		wantErr string
	}{
		{
			name:    "bad credentials",
			status:  http.StatusUnauthorized,
			wantErr: "unexpected http status 401",
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			wantErr: "unexpected http status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewErrorServer(t, tt.status)

			result := testutil.RunCLI(t, []string{"issues", "machow/siuba"}, map[string]string{
				"GITHUB_TOKEN":            "test-token",
				"GITHUB_GRAPHQL_ENDPOINT": server.URL + "/graphql",
				"HOME":                    t.TempDir(),
			})
			testutil.AssertCLIError(t, result, tt.wantErr)
			testutil.AssertExitCode(t, result, 1)

			if server.RequestCount() != 1 {
				t.Errorf("Expected exactly one request, got %d", server.RequestCount())
			}
		})
	}
}

func TestNetworkFailure_GraphQLErrors(t *testing.T) {
	skipShort(t)

	server := testutil.NewScriptedServer(t, testutil.ErrorResponse("Could not resolve to a Repository with the name 'machow/nope'."))

	result := testutil.RunCLI(t, []string{"issues", "machow/nope"}, map[string]string{
		"GITHUB_TOKEN":            "test-token",
		"GITHUB_GRAPHQL_ENDPOINT": server.URL + "/graphql",
		"HOME":                    t.TempDir(),
	})
	testutil.AssertCLIError(t, result, "machow/nope")
	testutil.AssertExitCode(t, result, 1)
}
