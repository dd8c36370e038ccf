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

package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "direct missing token error",
			err:      ErrMissingToken,
			sentinel: ErrMissingToken,
			want:     true,
		},
		{
			name:     "wrapped duplicate field error",
			err:      fmt.Errorf("validate mapping: %w", ErrDuplicateField),
			sentinel: ErrDuplicateField,
			want:     true,
		},
		{
			name:     "query error matches ErrQueryFailed",
			err:      &QueryError{Body: []byte(`{"errors":[{"message":"boom"}]}`)},
			sentinel: ErrQueryFailed,
			want:     true,
		},
		{
			name:     "wrapped query error",
			err:      fmt.Errorf("add issue I1: %w", &QueryError{Body: []byte(`{}`)}),
			sentinel: ErrQueryFailed,
			want:     true,
		},
		{
			name:     "status error matches ErrUnexpectedStatus",
			err:      &HTTPStatusError{StatusCode: 401, Body: []byte("Bad credentials")},
			sentinel: ErrUnexpectedStatus,
			want:     true,
		},
		{
			name:     "different error type",
			err:      ErrItemNotFound,
			sentinel: ErrPathNotFound,
			want:     false,
		},
		{
			name:     "nil error",
			err:      nil,
			sentinel: ErrMissingToken,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.sentinel)
			if got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

func TestIsConfigError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrMissingToken, true},
		{fmt.Errorf("mapping: %w", ErrDuplicateField), true},
		{ErrEmptyMapping, true},
		{ErrNoFieldUpdates, true},
		{fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig), true},
		{&QueryError{}, false},
		{ErrNetworkFailure, false},
		{ErrItemNotFound, false},
		{nil, false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := IsConfigError(tt.err); got != tt.want {
				t.Errorf("IsConfigError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestQueryErrorCarriesBody(t *testing.T) {
	body := `{"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a node"}]}`
	err := &QueryError{Body: []byte(body)}

	if !strings.Contains(err.Error(), body) {
		t.Errorf("Error() = %q, want it to contain the full body", err.Error())
	}

	var qe *QueryError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &qe) {
		t.Fatal("errors.As failed to find *QueryError")
	}
	if string(qe.Body) != body {
		t.Errorf("Body = %s, want %s", qe.Body, body)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrMissingToken, "github token not configured"},
		{ErrDuplicateField, "duplicate destination field id in field mapping"},
		{ErrNetworkFailure, "network connection failed"},
		{ErrItemNotFound, "no project item for issue"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
