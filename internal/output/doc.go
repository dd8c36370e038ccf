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

// Package output writes command results and human status lines.
//
// Records go to stdout or a file as NDJSON, one JSON object per line, so
// they can be piped into jq or loaded by other tools. Raw GraphQL results
// are passed through untouched apart from being compacted onto one line.
//
// Status lines go to stderr. Progress redraws only when stderr is a
// terminal so that logs captured by schedulers stay readable.
//
// Example usage:
//
//	w, err := output.Open(outputPath, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.WriteAll(results); err != nil {
//	    return err
//	}
//	output.NewStatus(os.Stderr).Success("Updated %d items", w.Count())
package output
