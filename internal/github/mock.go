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
	"fmt"
	"maps"
	"sync"
)

// ScriptedCall records one request received by a ScriptedExecutor.
type ScriptedCall struct {
	Document  string
	Variables map[string]any
}

// ScriptedResponse is one canned reply.
type ScriptedResponse struct {
	Body json.RawMessage
	Err  error
}

// ScriptedExecutor is an in-memory Executor for testing. It answers with
// Handler when set, otherwise with the next entry of Responses, and records
// every call.
type ScriptedExecutor struct {
	mu sync.Mutex

	// Responses are consumed in order
	Responses []ScriptedResponse

	// Handler, when set, answers every call instead of Responses
	Handler func(call ScriptedCall) (json.RawMessage, error)

	// Calls made so far
	Calls []ScriptedCall
}

// Query implements Executor.
func (m *ScriptedExecutor) Query(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	call := ScriptedCall{Document: document, Variables: maps.Clone(variables)}

	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	index := len(m.Calls) - 1
	handler := m.Handler
	var resp *ScriptedResponse
	if handler == nil && index < len(m.Responses) {
		resp = &m.Responses[index]
	}
	m.mu.Unlock()

	if handler != nil {
		return handler(call)
	}
	if resp == nil {
		return nil, fmt.Errorf("scripted executor: no response for call %d", index+1)
	}
	return resp.Body, resp.Err
}

// CallCount returns the number of calls received.
func (m *ScriptedExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Recorded returns a copy of the calls received so far.
func (m *ScriptedExecutor) Recorded() []ScriptedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ScriptedCall(nil), m.Calls...)
}

// ScriptedOption configures a ScriptedExecutor
type ScriptedOption func(*ScriptedExecutor)

// WithBodies queues successful responses with the given JSON bodies
func WithBodies(bodies ...string) ScriptedOption {
	return func(m *ScriptedExecutor) {
		for _, b := range bodies {
			m.Responses = append(m.Responses, ScriptedResponse{Body: json.RawMessage(b)})
		}
	}
}

// WithFailure queues a transport-level failure
func WithFailure(err error) ScriptedOption {
	return func(m *ScriptedExecutor) {
		m.Responses = append(m.Responses, ScriptedResponse{Err: err})
	}
}

// WithHandler answers every call with fn
func WithHandler(fn func(call ScriptedCall) (json.RawMessage, error)) ScriptedOption {
	return func(m *ScriptedExecutor) {
		m.Handler = fn
	}
}

// NewScriptedExecutor creates a scripted executor with options
func NewScriptedExecutor(opts ...ScriptedOption) *ScriptedExecutor {
	m := &ScriptedExecutor{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
