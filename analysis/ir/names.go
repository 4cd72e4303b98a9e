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

package ir

import "strings"

// PathSeparator separates the segments of a qualified name
const PathSeparator = "::"

// PathElem is one element of a qualified name. Exactly one of Ident or Impl is set: Ident for named items
// (crates, modules, functions, types), Impl for inherent impl blocks, where Impl is the rendered self type
// (e.g. "Vec<T>", "*const T", "[T]"). Type parameters appear as placeholders in the rendered type.
type PathElem struct {
	Ident string
	Impl  string
}

// IsImpl returns true when the element denotes an impl block
func (e PathElem) IsImpl() bool {
	return e.Impl != ""
}

// Segment returns the text of the element as it appears in a qualified name
func (e PathElem) Segment() string {
	if e.IsImpl() {
		return "<" + e.Impl + ">"
	}
	return e.Ident
}

// Name is a qualified name, e.g. core::ptr::read
type Name []PathElem

// NameOf returns the name made of the segments provided. Segments of the form "<X>" become impl elements.
func NameOf(segments ...string) Name {
	n := make(Name, len(segments))
	for i, s := range segments {
		if len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
			n[i] = PathElem{Impl: s[1 : len(s)-1]}
		} else {
			n[i] = PathElem{Ident: s}
		}
	}
	return n
}

// Segments returns the segment strings of the name
func (n Name) Segments() []string {
	s := make([]string, len(n))
	for i, e := range n {
		s[i] = e.Segment()
	}
	return s
}

func (n Name) String() string {
	return strings.Join(n.Segments(), PathSeparator)
}
