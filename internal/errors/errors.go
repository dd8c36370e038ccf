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

// Package errors defines sentinel errors for consistent error handling across the application.
// Configuration errors map to exit code 2 in the CLI; everything else maps to exit code 1.
package errors

import (
	"errors"
	"fmt"
)

// Configuration errors. These are raised before any network call is made.
var (
	// ErrMissingToken indicates no GitHub token was supplied to the session.
	ErrMissingToken = errors.New("github token not configured")

	// ErrDuplicateField indicates a field mapping routes two paths to the same project field.
	ErrDuplicateField = errors.New("duplicate destination field id in field mapping")

	// ErrEmptyMapping indicates a field mapping without entries.
	ErrEmptyMapping = errors.New("field mapping is empty")

	// ErrNoFieldUpdates indicates a batched field mutation was requested for zero fields.
	ErrNoFieldUpdates = errors.New("field update mutation needs at least one field")

	// ErrInvalidConfig indicates a configuration file or flag combination is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Remote and transport errors.
var (
	// ErrQueryFailed indicates the GraphQL response carried a non-empty errors array.
	ErrQueryFailed = errors.New("graphql query failed")

	// ErrUnexpectedStatus indicates the endpoint answered with a non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// ErrNetworkFailure indicates a network connection problem.
	ErrNetworkFailure = errors.New("network connection failed")
)

// Data errors raised while walking responses or correlating issues with board items.
var (
	// ErrPathNotFound indicates a required path segment is absent from a response.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotSubscriptable indicates a path walked into a value that is not an object.
	ErrNotSubscriptable = errors.New("value is not subscriptable")

	// ErrInconsistentRows indicates the flattened rows and the fetched issue ids disagree in length.
	ErrInconsistentRows = errors.New("row count does not match issue count")

	// ErrItemNotFound indicates an issue has no corresponding project item.
	ErrItemNotFound = errors.New("no project item for issue")
)

var configErrors = []error{
	ErrMissingToken,
	ErrDuplicateField,
	ErrEmptyMapping,
	ErrNoFieldUpdates,
	ErrInvalidConfig,
}

// IsConfigError reports whether err is one of the configuration errors.
func IsConfigError(err error) bool {
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// QueryError is returned when a GraphQL response carries a non-empty errors
// member.
// Body holds the complete response so callers can inspect it; no attempt is
// made to classify the failure.
type QueryError struct {
	Body []byte
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrQueryFailed, e.Body)
}

// Unwrap lets errors.Is match ErrQueryFailed.
func (e *QueryError) Unwrap() error {
	return ErrQueryFailed
}

// HTTPStatusError is returned when the endpoint answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *HTTPStatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
