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
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/sjson"
)

// IssueBuilder provides a fluent API for creating test issues as raw JSON
type IssueBuilder struct {
	id        string
	number    int
	title     string
	author    string
	createdAt time.Time
	updatedAt time.Time
	closed    bool
	comments  []string
	extra     map[string]any
}

// NewIssueBuilder creates a new issue builder with defaults
func NewIssueBuilder(number int) *IssueBuilder {
	created := time.Date(2022, 1, number, 12, 0, 0, 0, time.UTC)
	return &IssueBuilder{
		id:        fmt.Sprintf("I%d", number),
		number:    number,
		title:     fmt.Sprintf("Issue %d", number),
		author:    fmt.Sprintf("user%d", number),
		createdAt: created,
		updatedAt: created.Add(time.Hour),
		extra:     map[string]any{},
	}
}

// WithID overrides the node id
func (b *IssueBuilder) WithID(id string) *IssueBuilder {
	b.id = id
	return b
}

// WithTitle sets the issue title
func (b *IssueBuilder) WithTitle(title string) *IssueBuilder {
	b.title = title
	return b
}

// WithAuthor sets the issue author login; empty means a deleted account
func (b *IssueBuilder) WithAuthor(login string) *IssueBuilder {
	b.author = login
	return b
}

// WithUpdatedAt sets when the issue was last updated
func (b *IssueBuilder) WithUpdatedAt(t time.Time) *IssueBuilder {
	b.updatedAt = t
	return b
}

// WithClosed marks the issue closed
func (b *IssueBuilder) WithClosed() *IssueBuilder {
	b.closed = true
	return b
}

// WithComments adds one comment per author login, oldest first
func (b *IssueBuilder) WithComments(authors ...string) *IssueBuilder {
	b.comments = append(b.comments, authors...)
	return b
}

// WithField sets an arbitrary attribute at a gjson/sjson path
func (b *IssueBuilder) WithField(path string, value any) *IssueBuilder {
	b.extra[path] = value
	return b
}

// Build renders the issue as a JSON object
func (b *IssueBuilder) Build() string {
	doc := `{}`
	doc, _ = sjson.Set(doc, "id", b.id)
	doc, _ = sjson.Set(doc, "number", b.number)
	doc, _ = sjson.Set(doc, "title", b.title)
	if b.author != "" {
		doc, _ = sjson.Set(doc, "author.login", b.author)
	} else {
		doc, _ = sjson.SetRaw(doc, "author", "null")
	}
	doc, _ = sjson.Set(doc, "createdAt", b.createdAt.Format(time.RFC3339))
	doc, _ = sjson.Set(doc, "updatedAt", b.updatedAt.Format(time.RFC3339))
	doc, _ = sjson.Set(doc, "closed", b.closed)

	doc, _ = sjson.SetRaw(doc, "comments.nodes", "[]")
	for i, login := range b.comments {
		doc, _ = sjson.Set(doc, "comments.nodes."+strconv.Itoa(i)+".author.login", login)
	}

	for path, value := range b.extra {
		doc, _ = sjson.Set(doc, path, value)
	}
	return doc
}

// BoardItem is one project item and the issue it links to. IssueID is
// empty for drafts and pull requests.
type BoardItem struct {
	ItemID  string
	IssueID string
}

// IssuesPage renders one page of the repository issues query
func IssuesPage(cursor string, hasNext bool, issues ...string) string {
	doc := `{"data":{"repository":{"issues":{"nodes":[]}}}}`
	for _, issue := range issues {
		doc, _ = sjson.SetRaw(doc, "data.repository.issues.nodes.-1", issue)
	}
	return withPageInfo(doc, "data.repository.issues.pageInfo", cursor, hasNext)
}

// ItemsPage renders one page of the project items query
func ItemsPage(cursor string, hasNext bool, items ...BoardItem) string {
	doc := `{"data":{"node":{"items":{"nodes":[]}}}}`
	for i, item := range items {
		prefix := "data.node.items.nodes." + strconv.Itoa(i)
		doc, _ = sjson.Set(doc, prefix+".id", item.ItemID)
		if item.IssueID != "" {
			doc, _ = sjson.Set(doc, prefix+".content.id", item.IssueID)
		} else {
			doc, _ = sjson.SetRaw(doc, prefix+".content", "{}")
		}
	}
	return withPageInfo(doc, "data.node.items.pageInfo", cursor, hasNext)
}

func withPageInfo(doc, path, cursor string, hasNext bool) string {
	if cursor == "" {
		doc, _ = sjson.SetRaw(doc, path+".endCursor", "null")
	} else {
		doc, _ = sjson.Set(doc, path+".endCursor", cursor)
	}
	doc, _ = sjson.Set(doc, path+".hasNextPage", hasNext)
	return doc
}

// ErrorResponse renders a GraphQL error envelope with one message per error
func ErrorResponse(messages ...string) string {
	doc := `{"data":null,"errors":[]}`
	for _, msg := range messages {
		doc, _ = sjson.Set(doc, "errors.-1", map[string]any{"message": msg})
	}
	return doc
}
