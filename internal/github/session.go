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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"

	"github.com/shurcooL/graphql"
	"github.com/tidwall/gjson"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
	"github.com/sirseerhq/sirseer-projectsync/internal/jsonpath"
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// DefaultCursorVariable is the variable name pagination binds the cursor to.
const DefaultCursorVariable = "nextCursor"

// SessionConfig carries everything a Session needs. The token is passed in
// explicitly; reading it from the environment is the caller's job.
type SessionConfig struct {
	Endpoint string
	Token    string
}

// Session owns one authenticated HTTP channel to the GraphQL endpoint.
// It is safe to reuse across actions for the lifetime of a program run.
type Session struct {
	endpoint   string
	httpClient *http.Client
	gql        *graphql.Client
}

// NewSession creates a Session. It fails with ErrMissingToken before any
// network traffic when cfg.Token is empty.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("cannot create GitHub session: %w", projerrors.ErrMissingToken)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	httpClient := &http.Client{
		Transport: &authTransport{
			token: cfg.Token,
			base:  newPooledTransport(),
		},
	}

	return &Session{
		endpoint:   endpoint,
		httpClient: httpClient,
		gql:        graphql.NewClient(endpoint, httpClient),
	}, nil
}

// Endpoint returns the GraphQL URL the session posts to.
func (s *Session) Endpoint() string {
	return s.endpoint
}

type queryRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Query implements Executor. The response body is returned untouched; a
// body carrying an "errors" array is not treated as a failure here, see
// ValidateResult.
func (s *Session) Query(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	if variables == nil {
		variables = map[string]any{}
	}

	payload, err := json.Marshal(queryRequest{Query: document, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", projerrors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graphql response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &projerrors.HTTPStatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("graphql response is not valid JSON: %.200s", body)
	}

	return json.RawMessage(body), nil
}

// PaginatedQuery drives req to completion over this session.
func (s *Session) PaginatedQuery(ctx context.Context, req PageRequest) ([]json.RawMessage, error) {
	return PaginatedQuery(ctx, s, req)
}

// ValidateResult returns a *QueryError carrying the full body when the
// response has a non-empty "errors" member.
func ValidateResult(body []byte) error {
	if !truthy(gjson.GetBytes(body, "errors")) {
		return nil
	}
	return &projerrors.QueryError{Body: body}
}

// truthy reports whether r is set to anything but an empty or zero value.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	}
	if r.IsArray() {
		return len(r.Array()) > 0
	}
	return len(r.Map()) > 0
}

// PageRequest describes one paginated query. The cursor and has-next paths
// are dotted paths relative to the response's "data" object and must be
// present on every page.
type PageRequest struct {
	Document       string
	NextCursorPath string
	HasNextPath    string

	// StartCursor resumes from a known position; empty starts at the beginning.
	StartCursor string
	Variables   map[string]any

	// CursorVariable defaults to DefaultCursorVariable.
	CursorVariable string
}

// PaginatedQuery repeatedly runs req.Document, binding the cursor from the
// previous page, until the has-next value is falsy. It returns the "data"
// object of every page in order. There is no page limit: an endpoint that
// never reports the last page keeps the loop running.
func PaginatedQuery(ctx context.Context, exec Executor, req PageRequest) ([]json.RawMessage, error) {
	cursorVar := req.CursorVariable
	if cursorVar == "" {
		cursorVar = DefaultCursorVariable
	}

	var cursor any
	if req.StartCursor != "" {
		cursor = req.StartCursor
	}

	var pages []json.RawMessage
	for hasNext := true; hasNext; {
		variables := make(map[string]any, len(req.Variables)+1)
		maps.Copy(variables, req.Variables)
		variables[cursorVar] = cursor

		body, err := exec.Query(ctx, req.Document, variables)
		if err != nil {
			return nil, err
		}
		if err := ValidateResult(body); err != nil {
			return nil, err
		}

		data, err := jsonpath.ResolveRequired(body, "data")
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", len(pages)+1, err)
		}
		page := json.RawMessage(data.Raw)
		pages = append(pages, page)

		next, err := jsonpath.ResolveRequired(page, req.NextCursorPath)
		if err != nil {
			return nil, fmt.Errorf("page %d cursor: %w", len(pages), err)
		}
		more, err := jsonpath.ResolveRequired(page, req.HasNextPath)
		if err != nil {
			return nil, fmt.Errorf("page %d continuation flag: %w", len(pages), err)
		}

		if next.Type == gjson.Null {
			cursor = nil
		} else {
			cursor = next.String()
		}
		hasNext = more.Bool()

		slog.Debug("GraphQL pagination", "page", len(pages), "cursor", cursor, "hasNextPage", hasNext)
	}

	return pages, nil
}
