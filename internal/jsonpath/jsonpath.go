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

// Package jsonpath resolves dotted paths into raw GraphQL JSON payloads.
//
// Two operations are provided and they deliberately behave differently:
//
//   - ResolveRequired walks object keys only and fails when anything is
//     missing. Pagination control values (cursors, hasNextPage) use it.
//   - ResolveAll supports iterating arrays with a "[]" suffix, yields zero
//     or more matches and never fails. A key read on null or absent from an
//     object yields null, as in jq. Issue attribute flattening uses it.
//
// Paths may start with a dot and may use jq-style pipes, so
// ".comments.nodes[] | .author.login" and "comments.nodes[].author.login"
// are the same path.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	projerrors "github.com/sirseerhq/sirseer-projectsync/internal/errors"
)

// ResolveRequired returns the value at path, walking one object key per
// dot-separated segment. It returns ErrPathNotFound when a key is absent
// and ErrNotSubscriptable when a segment meets a value that is not an object.
func ResolveRequired(data []byte, path string) (gjson.Result, error) {
	cur := gjson.ParseBytes(data)

	trimmed := strings.TrimPrefix(path, ".")
	if trimmed == "" {
		return cur, nil
	}

	for _, seg := range strings.Split(trimmed, ".") {
		if !cur.IsObject() {
			return gjson.Result{}, fmt.Errorf("%w: segment %q of %q", projerrors.ErrNotSubscriptable, seg, path)
		}
		next, ok := lookup(cur, seg)
		if !ok {
			return gjson.Result{}, fmt.Errorf("%w: segment %q of %q", projerrors.ErrPathNotFound, seg, path)
		}
		cur = next
	}

	return cur, nil
}

// ResolveAll returns every value reachable through path, in document
// order. Reading a key from null, or a key an object lacks, yields null;
// indexing a scalar or iterating anything but an array ends the branch.
func ResolveAll(data []byte, path string) []gjson.Result {
	results := []gjson.Result{gjson.ParseBytes(data)}

	for _, st := range parse(path) {
		var next []gjson.Result
		for _, r := range results {
			v := r
			if st.key != "" {
				switch {
				case r.Type == gjson.Null:
					v = null
				case r.IsObject():
					var ok bool
					if v, ok = lookup(r, st.key); !ok {
						v = null
					}
				default:
					continue
				}
			}
			if !st.iterate {
				next = append(next, v)
				continue
			}
			if v.IsArray() {
				next = append(next, v.Array()...)
			}
		}
		results = next
	}
	return results
}

// First returns the first match of path rendered as a string. Strings are
// returned unquoted, numbers and booleans as their JSON literal and objects
// or arrays as compact JSON. ok is false when nothing matched or the first
// match is null; later matches are never consulted.
func First(data []byte, path string) (value string, ok bool) {
	matches := ResolveAll(data, path)
	if len(matches) == 0 || matches[0].Type == gjson.Null {
		return "", false
	}
	return Stringify(matches[0]), true
}

// Stringify renders a single result the way First does.
func Stringify(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.JSON:
		return gjson.Get(r.Raw, "@ugly").Raw
	default:
		return r.Raw
	}
}

var null = gjson.Result{Type: gjson.Null, Raw: "null"}

type step struct {
	key     string
	iterate bool
}

func parse(path string) []step {
	normalized := strings.ReplaceAll(path, "|", ".")

	var steps []step
	for _, seg := range strings.Split(normalized, ".") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		st := step{key: seg}
		if strings.HasSuffix(seg, "[]") {
			st.key = strings.TrimSuffix(seg, "[]")
			st.iterate = true
		}
		steps = append(steps, st)
	}
	return steps
}

// lookup finds key among the members of obj by exact comparison, so keys
// never go through gjson's path syntax.
func lookup(obj gjson.Result, key string) (gjson.Result, bool) {
	var (
		found gjson.Result
		ok    bool
	)
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}
