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

// Package metadata records what each sync run did. A record lists the
// profile, repository and board, the API calls made, and the number of
// issues fetched, items added and items updated.
//
// Records are saved as JSON files in the state directory so that the status
// command and external tools can inspect sync history. They are never read
// back to skip work: every run starts from a full fetch.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirseerhq/sirseer-projectsync/internal/github"
)

const filePattern = "sync-metadata-*.json"

// Tracker collects statistics during a sync run. Its counters are safe to
// update from concurrent field updates.
type Tracker struct {
	startTime     time.Time
	apiCalls      atomic.Int64
	issuesFetched atomic.Int64
	itemsAdded    atomic.Int64
	itemsUpdated  atomic.Int64
}

// New creates a new tracker and starts its clock.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// IncrementAPICall records that a GraphQL request was sent.
func (t *Tracker) IncrementAPICall() {
	t.apiCalls.Add(1)
}

// AddIssuesFetched records n fetched issues.
func (t *Tracker) AddIssuesFetched(n int) {
	t.issuesFetched.Add(int64(n))
}

// AddItemsAdded records n issues added to the board.
func (t *Tracker) AddItemsAdded(n int) {
	t.itemsAdded.Add(int64(n))
}

// AddItemsUpdated records n items whose fields were written.
func (t *Tracker) AddItemsUpdated(n int) {
	t.itemsUpdated.Add(int64(n))
}

// APICalls returns the number of requests recorded so far.
func (t *Tracker) APICalls() int {
	return int(t.apiCalls.Load())
}

// CountCalls wraps exec so that every request it sends is recorded.
func (t *Tracker) CountCalls(exec github.Executor) github.Executor {
	return &countingExecutor{exec: exec, tracker: t}
}

type countingExecutor struct {
	exec    github.Executor
	tracker *Tracker
}

func (c *countingExecutor) Query(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	c.tracker.IncrementAPICall()
	return c.exec.Query(ctx, document, variables)
}

// GenerateMetadata creates the record of the run. runErr is the error that
// ended the run, if any; previous links to the profile's prior run.
func (t *Tracker) GenerateMetadata(version string, params SyncParams, runErr error, previous *SyncRef) *SyncMetadata {
	completedAt := time.Now()

	m := &SyncMetadata{
		Version:       version,
		SyncID:        fmt.Sprintf("%s-%d", params.Profile, t.startTime.UnixMilli()),
		Profile:       params.Profile,
		Repository:    params.Repository,
		ProjectID:     params.ProjectID,
		Concurrency:   params.Concurrency,
		FieldCount:    params.FieldCount,
		SyncStarted:   t.startTime,
		SyncCompleted: completedAt,
		Duration:      completedAt.Sub(t.startTime).String(),
		APICallCount:  int(t.apiCalls.Load()),
		IssuesFetched: int(t.issuesFetched.Load()),
		ItemsAdded:    int(t.itemsAdded.Load()),
		ItemsUpdated:  int(t.itemsUpdated.Load()),
		PreviousSync:  previous,
	}
	if runErr != nil {
		m.Error = runErr.Error()
	}
	return m
}

// Ref returns a reference to m for linking the next run.
func (m *SyncMetadata) Ref() *SyncRef {
	return &SyncRef{SyncID: m.SyncID, SyncCompleted: m.SyncCompleted}
}

// SaveMetadata writes metadata atomically to
// stateDir/sync-metadata-<start unix millis>.json and returns the path.
func SaveMetadata(metadata *SyncMetadata, stateDir string) (string, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	filename := fmt.Sprintf("sync-metadata-%d.json", metadata.SyncStarted.UnixMilli())
	path := filepath.Join(stateDir, filename)

	// Write to temporary file first for atomicity
	tmpFile := path + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return "", fmt.Errorf("failed to save metadata file: %w", err)
	}

	return path, nil
}

// LoadLatestMetadata returns the most recent record of profile in stateDir,
// or nil when the profile has never been synced. Records of other profiles
// and unreadable files are skipped.
func LoadLatestMetadata(stateDir, profile string) (*SyncMetadata, error) {
	files, err := filepath.Glob(filepath.Join(stateDir, filePattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata files: %w", err)
	}

	var records []*SyncMetadata
	for _, file := range files {
		m, err := readMetadata(file)
		if err != nil {
			continue
		}
		if m.Profile == profile {
			records = append(records, m)
		}
	}
	if len(records) == 0 {
		return nil, nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SyncStarted.After(records[j].SyncStarted)
	})
	return records[0], nil
}

func readMetadata(path string) (*SyncMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	var m SyncMetadata
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	return &m, nil
}

// WriteMetadataToWriter serializes metadata as indented JSON.
func WriteMetadataToWriter(metadata *SyncMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
