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

package unsafedataflow

import (
	"strings"

	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/awslabs/unsafeflow/internal/graphutil"
)

// BehaviorFlag is a set of lifetime bypass categories. The join of two flags is their union.
type BehaviorFlag uint16

const (
	// ReadFlow is set by raw pointer reads
	ReadFlow BehaviorFlag = 1 << iota
	// CopyFlow is set by intrinsic memory copies
	CopyFlow
	// VecFromRaw is set by vectors built from raw parts
	VecFromRaw
	// Transmute is set by transmutations
	Transmute
	// WriteFlow is set by raw pointer writes
	WriteFlow
	// PtrAsRef is set by reborrows of raw pointers as references
	PtrAsRef
	// SliceUnchecked is set by unchecked slice indexing
	SliceUnchecked
	// SliceFromRaw is set by slices built from raw parts
	SliceFromRaw
	// VecSetLen is set by vector length overrides
	VecSetLen
)

var _ graphutil.Taint[BehaviorFlag] = BehaviorFlag(0)

var flagNames = []struct {
	flag BehaviorFlag
	name string
}{
	{ReadFlow, "ReadFlow"},
	{CopyFlow, "CopyFlow"},
	{VecFromRaw, "VecFromRaw"},
	{Transmute, "Transmute"},
	{WriteFlow, "WriteFlow"},
	{PtrAsRef, "PtrAsRef"},
	{SliceUnchecked, "SliceUnchecked"},
	{SliceFromRaw, "SliceFromRaw"},
	{VecSetLen, "VecSetLen"},
}

const (
	highFlags   = VecFromRaw | VecSetLen
	mediumFlags = ReadFlow | CopyFlow | WriteFlow
)

// IsEmpty returns true if no flag is set
func (f BehaviorFlag) IsEmpty() bool {
	return f == 0
}

// Contains returns true if all the flags of other are set in f
func (f BehaviorFlag) Contains(other BehaviorFlag) bool {
	return f&other == other
}

// Join returns the union of f and other
func (f BehaviorFlag) Join(other BehaviorFlag) BehaviorFlag {
	return f | other
}

// ReportLevel returns the level of the most severe flag set: vectors built from raw parts or with an overridden
// length are errors, raw reads, writes and copies are warnings, and everything else is informational.
func (f BehaviorFlag) ReportLevel() report.Level {
	switch {
	case f&highFlags != 0:
		return report.Error
	case f&mediumFlags != 0:
		return report.Warning
	default:
		return report.Info
	}
}

// String returns the names of the flags set, separated by '|'
func (f BehaviorFlag) String() string {
	if f.IsEmpty() {
		return "None"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}
