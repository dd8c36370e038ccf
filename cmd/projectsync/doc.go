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

// Package main implements the sirseer-projectsync command-line interface.
// The tool copies values out of a repository's issues into the custom
// text fields of a GitHub Projects board.
//
// The CLI supports:
//   - Syncing a configured profile, optionally adding missing issues first
//   - Bounded concurrent field updates with --concurrency
//   - Recording run metadata in the state directory with --save-metadata
//   - Inspecting issues, board items, board fields and projects as NDJSON
//
// Usage:
//
//	sirseer-projectsync sync <profile> [flags]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-projectsync sync siuba --save-metadata --output updates.ndjson
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Configuration error (bad config file, mapping or missing token)
package main
