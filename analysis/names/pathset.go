// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package names

import (
	"strings"

	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/internal/funcutil"
)

// JoinPath returns the path string of the segments
func JoinPath(segments []string) string {
	return strings.Join(segments, ir.PathSeparator)
}

type entry struct {
	path    string
	pattern Pattern
}

// PathSet is an ordered collection of patterns. Membership tests return the first pattern, in insertion order,
// that matches.
type PathSet struct {
	entries []entry
}

// NewPathSet parses each path (given as a list of segments) and returns the set. It panics if a path cannot be
// parsed: path sets are built from constants.
func NewPathSet(paths ...[]string) PathSet {
	ps := PathSet{entries: make([]entry, 0, len(paths))}
	for _, segments := range paths {
		path := JoinPath(segments)
		ps.entries = append(ps.entries, entry{path: path, pattern: MustParse(path)})
	}
	return ps
}

// Contains returns the path string of the first pattern matching name, or none
func (ps PathSet) Contains(name ir.Name) funcutil.Optional[string] {
	for _, e := range ps.entries {
		if e.pattern.Matches(name) {
			return funcutil.Some(e.path)
		}
	}
	return funcutil.None[string]()
}

// Patterns returns the path strings of the set, in order
func (ps PathSet) Patterns() []string {
	return funcutil.Map(ps.entries, func(e entry) string { return e.path })
}

// Len returns the number of patterns in the set
func (ps PathSet) Len() int {
	return len(ps.entries)
}
