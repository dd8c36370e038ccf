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
)

// Executor runs one GraphQL document and returns the raw response body.
// Session is the network implementation; ScriptedExecutor replaces it in tests.
type Executor interface {
	// Query sends document with variables and returns the response body
	// verbatim, including any "errors" member. It does not validate the result.
	Query(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error)
}

// Client groups the project synchronization actions. Every action issues its
// requests through the same Executor, one at a time.
type Client struct {
	exec Executor
}

// NewClient returns a Client that sends all requests through exec.
func NewClient(exec Executor) *Client {
	return &Client{exec: exec}
}
