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

package config

import "regexp"

// NameIdentifier identifies functions by qualified name and source file. Each non-empty field is a regex if it
// compiles as one, otherwise a string that must be equal.
type NameIdentifier struct {
	// Name matches the qualified name of the function, e.g. alloc::vec::<Vec<_>>::push
	Name string `yaml:"name"`
	// File matches the name of the file the function is declared in
	File string `yaml:"file"`
	// This will not be part of the yaml config
	computedRegexs *nameIdentifierRegex
}

type nameIdentifierRegex struct {
	nameRegex *regexp.Regexp
	fileRegex *regexp.Regexp
}

// compileRegexes compiles the strings in the identifier into regexes. It compiles all fields into regexes or none.
func compileRegexes(nid NameIdentifier) NameIdentifier {
	nameRegex, err := regexp.Compile(nid.Name)
	if err != nil {
		return nid
	}
	fileRegex, err := regexp.Compile(nid.File)
	if err != nil {
		return nid
	}
	nid.computedRegexs = &nameIdentifierRegex{nameRegex, fileRegex}
	return nid
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either matched by the corresponding
// argument's field, or the argument's field is empty
func (nid *NameIdentifier) equalOnNonEmptyFields(ref NameIdentifier) bool {
	if ref.computedRegexs != nil {
		return (ref.computedRegexs.nameRegex.MatchString(nid.Name) || ref.Name == "") &&
			(ref.computedRegexs.fileRegex.MatchString(nid.File) || ref.File == "")
	}
	return (nid.Name == ref.Name || ref.Name == "") &&
		(nid.File == ref.File || ref.File == "")
}

// ExistsNid is true if there is some x in a such that f(x) is true.
func ExistsNid(a []NameIdentifier, f func(identifier NameIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
