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
	"encoding/json"
	"fmt"

	"github.com/sirseerhq/sirseer-projectsync/internal/github"
	"github.com/sirseerhq/sirseer-projectsync/internal/jsonpath"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
)

// FieldMap routes the first value found at Path in an issue to the project
// field FieldID. Path uses the jsonpath.ResolveAll grammar.
type FieldMap struct {
	Path    string `json:"path" yaml:"path" toml:"path"`
	FieldID string `json:"field_id" yaml:"field_id" toml:"field_id"`
}

// FieldMapping is an ordered list of FieldMaps. Row values follow its order.
type FieldMapping []FieldMap

// Validate rejects empty mappings, blank entries and destination field ids
// used more than once.
func (m FieldMapping) Validate() error {
	if len(m) == 0 {
		return projerrors.ErrEmptyMapping
	}

	seen := make(map[string]string, len(m))
	for i, fm := range m {
		if fm.Path == "" || fm.FieldID == "" {
			return fmt.Errorf("%w: mapping entry %d needs both path and field_id", projerrors.ErrInvalidConfig, i)
		}
		if prev, ok := seen[fm.FieldID]; ok {
			return fmt.Errorf("%w: %s is the destination of both %q and %q",
				projerrors.ErrDuplicateField, fm.FieldID, prev, fm.Path)
		}
		seen[fm.FieldID] = fm.Path
	}
	return nil
}

// Row holds the field values extracted from one issue, in mapping order.
type Row []github.FieldValue

// ExtractRow resolves every mapping entry against issue. Entries with no
// match produce a nil value.
func (m FieldMapping) ExtractRow(issue json.RawMessage) Row {
	row := make(Row, 0, len(m))
	for _, fm := range m {
		value := github.FieldValue{FieldID: fm.FieldID}
		if s, ok := jsonpath.First(issue, fm.Path); ok {
			value.Value = &s
		}
		row = append(row, value)
	}
	return row
}

// ExtractRows builds one Row per issue, in issue order.
func (m FieldMapping) ExtractRows(issues []json.RawMessage) []Row {
	rows := make([]Row, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, m.ExtractRow(issue))
	}
	return rows
}
