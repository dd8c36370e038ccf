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

package boardsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
	"github.com/sirseerhq/sirseer-projectsync/internal/github"
	"github.com/sirseerhq/sirseer-projectsync/test/testutil"
)

var testMapping = FieldMapping{
	{Path: "author.login", FieldID: "F_author"},
	{Path: "updatedAt", FieldID: "F_updated"},
	{Path: ".comments.nodes[] | .author.login", FieldID: "F_commenter"},
}

const testFragment = "updatedAt\nauthor { login }\ncomments(last: 1) { nodes { author { login } } }"

func threeIssues() []string {
	return []string{
		testutil.NewIssueBuilder(1).WithAuthor("alice").WithComments("bob").Build(),
		testutil.NewIssueBuilder(2).WithAuthor("bob").Build(),
		testutil.NewIssueBuilder(3).WithAuthor("").WithComments("carol").Build(),
	}
}

// boardHandler routes scripted calls by document: issues and items are
// served from single pages, every update succeeds.
func boardHandler(issues []string, items []testutil.BoardItem) func(github.ScriptedCall) (json.RawMessage, error) {
	return func(call github.ScriptedCall) (json.RawMessage, error) {
		switch {
		case strings.Contains(call.Document, "updateProjectV2ItemFieldValue"):
			return json.RawMessage(`{"data":{"field0":{"projectV2Item":{"id":"` + call.Variables["contentId"].(string) + `"}}}}`), nil
		case strings.Contains(call.Document, "issues(first:"):
			return json.RawMessage(testutil.IssuesPage("", false, issues...)), nil
		case strings.Contains(call.Document, "items(first:"):
			return json.RawMessage(testutil.ItemsPage("", false, items...)), nil
		}
		return json.RawMessage(testutil.ErrorResponse("unexpected document")), nil
	}
}

func updateCalls(calls []github.ScriptedCall) []github.ScriptedCall {
	var updates []github.ScriptedCall
	for _, call := range calls {
		if strings.Contains(call.Document, "updateProjectV2ItemFieldValue") {
			updates = append(updates, call)
		}
	}
	return updates
}

func TestSyncer_Sync_RoundTrip(t *testing.T) {
	exec := github.NewScriptedExecutor(github.WithHandler(boardHandler(threeIssues(), []testutil.BoardItem{
		{ItemID: "P3", IssueID: "I3"},
		{ItemID: "P1", IssueID: "I1"},
		{ItemID: "P2", IssueID: "I2"},
	})))
	syncer := NewSyncer(github.NewClient(exec), Options{})

	results, err := syncer.Sync(context.Background(), Request{
		Owner:         "machow",
		Repo:          "siuba",
		ProjectID:     "PVT_1",
		Mapping:       testMapping,
		QueryFragment: testFragment,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	updates := updateCalls(exec.Recorded())
	require.Len(t, updates, 3)

	want := []map[string]any{
		{"contentId": "P1", "value0": "alice", "value1": "2022-01-01T13:00:00Z", "value2": "bob"},
		{"contentId": "P2", "value0": "bob", "value1": "2022-01-02T13:00:00Z", "value2": ""},
		{"contentId": "P3", "value0": "", "value1": "2022-01-03T13:00:00Z", "value2": "carol"},
	}
	for i, call := range updates {
		for k, v := range want[i] {
			assert.Equal(t, v, call.Variables[k], "update %d %s", i, k)
		}
		assert.Equal(t, "PVT_1", call.Variables["projectId"])
		assert.Equal(t, "F_author", call.Variables["field0"])
		assert.Equal(t, "F_updated", call.Variables["field1"])
		assert.Equal(t, "F_commenter", call.Variables["field2"])
		assert.Contains(t, string(results[i]), want[i]["contentId"])
	}

	assert.Contains(t, exec.Recorded()[0].Document, "comments(last: 1)")
}

func TestSyncer_Sync_DuplicateMappingMakesNoCalls(t *testing.T) {
	exec := github.NewScriptedExecutor()
	syncer := NewSyncer(github.NewClient(exec), Options{})

	_, err := syncer.Sync(context.Background(), Request{
		Owner:     "machow",
		Repo:      "siuba",
		ProjectID: "PVT_1",
		Mapping:   FieldMapping{{Path: "path1", FieldID: "F1"}, {Path: "path2", FieldID: "F1"}},
	})
	require.ErrorIs(t, err, projerrors.ErrDuplicateField)
	assert.True(t, projerrors.IsConfigError(err))
	assert.Zero(t, exec.CallCount())
}

func TestSyncer_Sync_MissingItemAbortsAfterEarlierUpdates(t *testing.T) {
	exec := github.NewScriptedExecutor(github.WithHandler(boardHandler(threeIssues(), []testutil.BoardItem{
		{ItemID: "P1", IssueID: "I1"},
		{ItemID: "P3", IssueID: "I3"},
		{ItemID: "PD", IssueID: ""},
	})))
	syncer := NewSyncer(github.NewClient(exec), Options{})

	results, err := syncer.Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1",
		Mapping: testMapping, QueryFragment: testFragment,
	})
	require.ErrorIs(t, err, projerrors.ErrItemNotFound)
	assert.Contains(t, err.Error(), "I2")
	assert.Nil(t, results)

	updates := updateCalls(exec.Recorded())
	require.Len(t, updates, 1, "I1 was updated before I2 failed; I3 was never attempted")
	assert.Equal(t, "P1", updates[0].Variables["contentId"])
}

func TestSyncer_Sync_UpdateFailureStops(t *testing.T) {
	handler := boardHandler(threeIssues(), []testutil.BoardItem{
		{ItemID: "P1", IssueID: "I1"},
		{ItemID: "P2", IssueID: "I2"},
		{ItemID: "P3", IssueID: "I3"},
	})
	exec := github.NewScriptedExecutor(github.WithHandler(func(call github.ScriptedCall) (json.RawMessage, error) {
		if call.Variables["contentId"] == "P2" {
			return json.RawMessage(testutil.ErrorResponse("Field is not a text field")), nil
		}
		return handler(call)
	}))

	var committed int
	results, err := NewSyncer(github.NewClient(exec), Options{
		Progress: func(int, int) { committed++ },
	}).Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1", Mapping: testMapping,
	})
	require.ErrorIs(t, err, projerrors.ErrQueryFailed)
	assert.Contains(t, err.Error(), "issue I2")
	assert.Len(t, updateCalls(exec.Recorded()), 2)
	assert.Nil(t, results)
	assert.Equal(t, 1, committed, "progress reports the update committed before the failure")
}

func TestSyncer_Sync_FetchFailure(t *testing.T) {
	exec := github.NewScriptedExecutor(github.WithFailure(projerrors.ErrNetworkFailure))

	_, err := NewSyncer(github.NewClient(exec), Options{}).Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1", Mapping: testMapping,
	})
	require.ErrorIs(t, err, projerrors.ErrNetworkFailure)
	assert.Equal(t, 1, exec.CallCount())
}

func TestSyncer_Sync_Progress(t *testing.T) {
	exec := github.NewScriptedExecutor(github.WithHandler(boardHandler(threeIssues(), []testutil.BoardItem{
		{ItemID: "P1", IssueID: "I1"},
		{ItemID: "P2", IssueID: "I2"},
		{ItemID: "P3", IssueID: "I3"},
	})))

	var seen [][2]int
	syncer := NewSyncer(github.NewClient(exec), Options{
		Progress: func(done, total int) { seen = append(seen, [2]int{done, total}) },
	})

	_, err := syncer.Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1", Mapping: testMapping,
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, seen)
}

func TestSyncer_Sync_Concurrent(t *testing.T) {
	const workers = 3
	issues := make([]string, 0, 12)
	items := make([]testutil.BoardItem, 0, 12)
	for i := 1; i <= 12; i++ {
		issues = append(issues, testutil.NewIssueBuilder(i).Build())
		items = append(items, testutil.BoardItem{ItemID: fmt.Sprintf("P%d", i), IssueID: fmt.Sprintf("I%d", i)})
	}

	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	handler := boardHandler(issues, items)
	exec := github.NewScriptedExecutor(github.WithHandler(func(call github.ScriptedCall) (json.RawMessage, error) {
		if !strings.Contains(call.Document, "updateProjectV2ItemFieldValue") {
			return handler(call)
		}
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return handler(call)
	}))

	results, err := NewSyncer(github.NewClient(exec), Options{Concurrency: workers}).Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1", Mapping: testMapping,
	})
	require.NoError(t, err)
	require.Len(t, results, 12)

	for i, res := range results {
		assert.Contains(t, string(res), items[i].ItemID+`"`, "results keep fetch order")
	}
	assert.LessOrEqual(t, peak, workers)
	assert.Len(t, updateCalls(exec.Recorded()), 12)
}

func TestSyncer_Sync_ConcurrentMissingItem(t *testing.T) {
	exec := github.NewScriptedExecutor(github.WithHandler(boardHandler(threeIssues(), []testutil.BoardItem{
		{ItemID: "P1", IssueID: "I1"},
		{ItemID: "P3", IssueID: "I3"},
	})))

	_, err := NewSyncer(github.NewClient(exec), Options{Concurrency: 4}).Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1", Mapping: testMapping,
	})
	require.ErrorIs(t, err, projerrors.ErrItemNotFound)

	updates := updateCalls(exec.Recorded())
	require.Len(t, updates, 1, "dispatch stops at the first issue without an item")
	assert.Equal(t, "P1", updates[0].Variables["contentId"])
}

func TestSyncer_AddMissing(t *testing.T) {
	server := testutil.NewBoardServer(t)
	server.AddIssues(threeIssues()...)
	server.AddItems(testutil.BoardItem{ItemID: "P1", IssueID: "I1"})

	session, err := github.NewSession(github.SessionConfig{Endpoint: server.Endpoint(), Token: "test-token"})
	require.NoError(t, err)
	syncer := NewSyncer(github.NewClient(session), Options{})

	added, err := syncer.AddMissing(context.Background(), "machow", "siuba", "PVT_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"I2", "I3"}, added)
	assert.Len(t, server.Items(), 3)

	results, err := syncer.Sync(context.Background(), Request{
		Owner: "machow", Repo: "siuba", ProjectID: "PVT_1",
		Mapping: testMapping, QueryFragment: testFragment,
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	assert.Equal(t, map[string]string{
		"F_author":    "alice",
		"F_updated":   "2022-01-01T13:00:00Z",
		"F_commenter": "bob",
	}, server.FieldValues("P1"))
	third := server.FieldValues("PVTI_new2")
	require.Contains(t, third, "F_author")
	assert.Equal(t, "", third["F_author"], "deleted authors are written as empty text")
	assert.Equal(t, "carol", third["F_commenter"])
}

func TestSyncer_Sync_FetchedHook(t *testing.T) {
	exec := github.NewScriptedExecutor(github.WithHandler(boardHandler(threeIssues(), []testutil.BoardItem{
		{ItemID: "P1", IssueID: "I1"},
		{ItemID: "PD"},
	})))

	var issues, items int
	_, err := NewSyncer(github.NewClient(exec), Options{
		Fetched: func(i, n int) { issues, items = i, n },
	}).Sync(context.Background(), Request{Owner: "machow", Repo: "siuba", ProjectID: "PVT_1", Mapping: testMapping})

	require.ErrorIs(t, err, projerrors.ErrItemNotFound)
	assert.Equal(t, 3, issues)
	assert.Equal(t, 2, items)
}
