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

package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/sjson"
)

// GraphQLRequest represents a parsed GraphQL request
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// BoardServer is an in-memory GraphQL endpoint holding one repository's
// issues and one project board. It answers the documents the sync client
// sends and records every field update it receives.
type BoardServer struct {
	*httptest.Server

	// PageSize bounds the nodes returned per paginated page
	PageSize int
	// Login answers viewer queries
	Login string

	mu        sync.Mutex
	issues    []string
	items     []BoardItem
	fields    map[string]map[string]string
	failItems map[string]string
	history   []GraphQLRequest
	nextItem  int
}

// NewBoardServer creates a board server; the endpoint is URL + "/graphql"
func NewBoardServer(t *testing.T) *BoardServer {
	t.Helper()

	b := &BoardServer{
		PageSize:  2,
		Login:     "octocat",
		fields:    map[string]map[string]string{},
		failItems: map[string]string{},
	}

	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Endpoint returns the GraphQL URL of the server
func (b *BoardServer) Endpoint() string {
	return b.URL + "/graphql"
}

// AddIssues appends issues (raw JSON objects) to the repository
func (b *BoardServer) AddIssues(issues ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issues = append(b.issues, issues...)
}

// AddItems appends items to the board
func (b *BoardServer) AddItems(items ...BoardItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, items...)
}

// FailUpdates makes every field update of itemID return a GraphQL error
func (b *BoardServer) FailUpdates(itemID, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failItems[itemID] = message
}

// Items returns a snapshot of the board's items
func (b *BoardServer) Items() []BoardItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BoardItem(nil), b.items...)
}

// FieldValues returns the text values written to itemID, by field id
func (b *BoardServer) FieldValues(itemID string) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	values := make(map[string]string, len(b.fields[itemID]))
	for k, v := range b.fields[itemID] {
		values[k] = v
	}
	return values
}

// History returns every request received so far
func (b *BoardServer) History() []GraphQLRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]GraphQLRequest(nil), b.history...)
}

func (b *BoardServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials","documentation_url":"https://docs.github.com/graphql"}`))
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Problems parsing JSON"}`))
		return
	}

	b.mu.Lock()
	b.history = append(b.history, req)
	body := b.respond(req)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// respond must be called with b.mu held.
func (b *BoardServer) respond(req GraphQLRequest) string {
	q := req.Query
	switch {
	case strings.Contains(q, "updateProjectV2ItemFieldValue"):
		return b.updateFields(req.Variables)
	case strings.Contains(q, "addProjectV2ItemById"):
		return b.addItem(req.Variables)
	case strings.Contains(q, "issues(first:"):
		start := cursorOffset(req.Variables["nextCursor"])
		end := min(start+b.PageSize, len(b.issues))
		return IssuesPage(strconv.Itoa(end), end < len(b.issues), b.issues[start:end]...)
	case strings.Contains(q, "items(first:"):
		start := cursorOffset(req.Variables["nextCursor"])
		end := min(start+b.PageSize, len(b.items))
		return ItemsPage(strconv.Itoa(end), end < len(b.items), b.items[start:end]...)
	case strings.Contains(q, "fields(first:"):
		return `{"data":{"node":{"fields":{"nodes":[` +
			`{"id":"PVTF_title","name":"Title","dataType":"TITLE"},` +
			`{"id":"PVTF_author","name":"Author","dataType":"TEXT"},` +
			`{"id":"PVTF_updated","name":"Updated","dataType":"TEXT"}]}}}}`
	case strings.Contains(q, "viewer"):
		doc, _ := sjson.Set(`{}`, "data.viewer.login", b.Login)
		return doc
	case strings.Contains(q, "projectV2(number:"):
		owner := "user"
		if strings.Contains(q, "organization(") {
			owner = "organization"
		}
		doc, _ := sjson.Set(`{}`, "data."+owner+".projectV2", map[string]any{
			"id":     "PVT_test",
			"number": req.Variables["number"],
			"title":  "Test board",
			"url":    "https://github.com/users/octocat/projects/1",
			"closed": false,
		})
		return doc
	}
	return ErrorResponse("unsupported document")
}

func (b *BoardServer) addItem(vars map[string]any) string {
	issueID, _ := vars["contentId"].(string)
	for _, item := range b.items {
		if item.IssueID == issueID {
			doc, _ := sjson.Set(`{}`, "data.addProjectV2ItemById.item.id", item.ItemID)
			return doc
		}
	}
	if !strings.HasPrefix(issueID, "I") {
		return ErrorResponse(fmt.Sprintf("Could not resolve to a node with the global id of '%s'", issueID))
	}

	b.nextItem++
	itemID := fmt.Sprintf("PVTI_new%d", b.nextItem)
	b.items = append(b.items, BoardItem{ItemID: itemID, IssueID: issueID})

	doc, _ := sjson.Set(`{}`, "data.addProjectV2ItemById.item.id", itemID)
	return doc
}

func (b *BoardServer) updateFields(vars map[string]any) string {
	itemID, _ := vars["contentId"].(string)
	if msg, ok := b.failItems[itemID]; ok {
		return ErrorResponse(msg)
	}

	if b.fields[itemID] == nil {
		b.fields[itemID] = map[string]string{}
	}

	doc := `{"data":{}}`
	for i := 0; ; i++ {
		fieldID, ok := vars["field"+strconv.Itoa(i)].(string)
		if !ok {
			break
		}
		value, isString := vars["value"+strconv.Itoa(i)].(string)
		if !isString {
			return ErrorResponse(fmt.Sprintf("Variable $value%d of type String! was provided invalid value", i))
		}
		b.fields[itemID][fieldID] = value
		doc, _ = sjson.Set(doc, "data.field"+strconv.Itoa(i)+".projectV2Item.id", itemID)
	}
	return doc
}

func cursorOffset(cursor any) int {
	s, ok := cursor.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
