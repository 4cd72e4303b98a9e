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

/*
Package names implements matching of qualified names against path patterns.

A pattern is a "::"-separated sequence of segments, e.g. core::ptr::const_ptr::<_>::read. A pattern matches a name
when both have the same number of segments and every segment matches:
  - the segments "_" and "<_>" are wildcards matching any single segment,
  - in any other segment, a "_" standing alone as a generic argument is a hole matching any non-empty balanced
    text: <Vec<_>> matches <Vec<T>>, <Vec<Box<u8>>> and <Vec<T, A>>,
  - all other text must be equal.

There is no wildcard spanning several segments.
*/
package names

import (
	"fmt"
	"strings"

	"github.com/awslabs/unsafeflow/analysis/ir"
)

type segmentKind int

const (
	exact segmentKind = iota
	wildcard
	template
)

type segment struct {
	kind segmentKind
	// text is the segment text for exact segments
	text string
	// parts are the literal parts of a template; a hole sits between each consecutive pair
	parts []string
}

// Pattern is a parsed path pattern
type Pattern struct {
	raw      string
	segments []segment
}

// ParseError is returned when a path pattern is malformed
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid path pattern %q: %s", e.Path, e.Reason)
}

// Parse parses the path string into a Pattern
func Parse(path string) (Pattern, error) {
	if path == "" {
		return Pattern{}, &ParseError{Path: path, Reason: "empty path"}
	}
	raw := strings.Split(path, ir.PathSeparator)
	segments := make([]segment, len(raw))
	for i, s := range raw {
		seg, err := parseSegment(s)
		if err != nil {
			return Pattern{}, &ParseError{Path: path, Reason: fmt.Sprintf("segment %d: %s", i, err)}
		}
		segments[i] = seg
	}
	return Pattern{raw: path, segments: segments}, nil
}

// MustParse is like Parse but panics if the path cannot be parsed. It is meant for patterns compiled in the
// binary.
func MustParse(path string) Pattern {
	p, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(s string) (segment, error) {
	if s == "_" || s == "<_>" {
		return segment{kind: wildcard}, nil
	}
	depth := 0
	for _, c := range s {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return segment{}, fmt.Errorf("unbalanced '>'")
			}
		case ':':
			return segment{}, fmt.Errorf("stray ':'")
		}
	}
	if depth != 0 {
		return segment{}, fmt.Errorf("unbalanced '<'")
	}

	parts := splitHoles(s)
	if len(parts) == 1 {
		return segment{kind: exact, text: s}, nil
	}
	return segment{kind: template, parts: parts}, nil
}

// splitHoles splits s around every "_" that is a whole generic argument.
func splitHoles(s string) []string {
	var parts []string
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '_' || i == 0 || i == len(s)-1 {
			continue
		}
		if isArgStart(s[i-1]) && isArgEnd(s[i+1]) {
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

func isArgStart(c byte) bool { return c == '<' || c == ',' || c == ' ' || c == '[' || c == '(' }

func isArgEnd(c byte) bool { return c == '>' || c == ',' || c == ']' || c == ')' }

// String returns the path string the pattern was parsed from
func (p Pattern) String() string {
	return p.raw
}

// Len returns the number of segments of the pattern
func (p Pattern) Len() int {
	return len(p.segments)
}

// Matches returns true if name matches the pattern
func (p Pattern) Matches(name ir.Name) bool {
	if len(name) != len(p.segments) {
		return false
	}
	for i, elem := range name {
		if !p.segments[i].matches(elem.Segment()) {
			return false
		}
	}
	return true
}

func (s segment) matches(candidate string) bool {
	switch s.kind {
	case wildcard:
		return true
	case exact:
		return s.text == candidate
	default:
		if !strings.HasPrefix(candidate, s.parts[0]) {
			return false
		}
		return matchHoles(candidate[len(s.parts[0]):], s.parts[1:])
	}
}

// matchHoles returns true if rest is a sequence of one balanced generic argument followed by parts[0], then one
// argument followed by parts[1], and so on.
func matchHoles(rest string, parts []string) bool {
	if len(parts) == 0 {
		return rest == ""
	}
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			depth--
		case '-':
			// arrow of a function type
			if i+1 < len(rest) && rest[i+1] == '>' {
				i++
				continue
			}
		}
		if depth < 0 {
			return false
		}
		end := i + 1
		if depth == 0 && strings.HasPrefix(rest[end:], parts[0]) && matchHoles(rest[end+len(parts[0]):], parts[1:]) {
			return true
		}
	}
	return false
}
