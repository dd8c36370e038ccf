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

package metadata

import (
	"time"
)

// SyncMetadata is the audit record of one sync run: what was synced, when,
// and how much it touched. It is written after the run whether or not the
// run succeeded.
type SyncMetadata struct {
	Version string `json:"version"`
	SyncID  string `json:"sync_id"`

	Profile     string `json:"profile"`
	Repository  string `json:"repository"`
	ProjectID   string `json:"project_id"`
	Concurrency int    `json:"concurrency"`
	FieldCount  int    `json:"fields_mapped"`

	SyncStarted   time.Time `json:"sync_started"`
	SyncCompleted time.Time `json:"sync_completed"`
	Duration      string    `json:"sync_duration"`

	APICallCount  int `json:"api_calls_made"`
	IssuesFetched int `json:"issues_fetched"`
	ItemsAdded    int `json:"items_added"`
	ItemsUpdated  int `json:"items_updated"`

	// Error holds the failure that ended the run; empty on success.
	Error string `json:"error,omitempty"`

	PreviousSync *SyncRef `json:"previous_sync,omitempty"`
}

// Succeeded reports whether the run finished without error.
func (m *SyncMetadata) Succeeded() bool {
	return m.Error == ""
}

// SyncParams are the inputs of a sync run.
type SyncParams struct {
	Profile     string
	Repository  string
	ProjectID   string
	Concurrency int
	FieldCount  int
}

// SyncRef points at an earlier run of the same profile.
type SyncRef struct {
	SyncID        string    `json:"sync_id"`
	SyncCompleted time.Time `json:"sync_completed"`
}
