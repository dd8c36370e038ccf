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

// Package boardsync copies issue attributes into the custom fields of a
// GitHub project board.
//
// A sync run fetches every issue of a repository, extracts one row of field
// values per issue according to a FieldMapping, matches each issue to its
// board item and sends one batched field-update mutation per item. Updates
// already sent are never rolled back when a later issue fails.
package boardsync
