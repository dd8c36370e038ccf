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

// Package github talks to GitHub's GraphQL API on behalf of the project
// board synchronization.
//
// The package includes:
//   - Session, one authenticated HTTP channel that runs raw GraphQL documents
//     and returns their bodies verbatim
//   - PaginatedQuery, a cursor pagination driver over any Executor
//   - the batched field-update mutation generator
//   - Client, the issue and project board actions
//   - typed project lookups built on the shurcooL/graphql library
//   - ScriptedExecutor for tests
//
// Nothing in this package retries, waits for rate limits or caches results.
// Requests are issued one at a time.
//
// Basic usage:
//
//	session, err := github.NewSession(github.SessionConfig{Token: token})
//	if err != nil {
//	    // Handle error
//	}
//	client := github.NewClient(session)
//	issues, err := client.FetchAllIssues(ctx, "machow", "siuba", "updatedAt")
package github
