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

package report

import (
	"fmt"

	"github.com/awslabs/unsafeflow/analysis/ir"
)

// Category labels the sub-spans of a diagnostic
type Category string

const (
	// StrongBypass labels calls that fabricate or duplicate owned values from unchecked memory
	StrongBypass Category = "strong-bypass"
	// WeakBypass labels calls that reinterpret or reborrow existing memory
	WeakBypass Category = "weak-bypass"
	// UnresolvedSink labels calls whose target cannot be resolved statically
	UnresolvedSink Category = "unresolved-sink"
)

// Location is a source range with its file name resolved
type Location struct {
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
	Col     int    `json:"col" yaml:"col"`
	EndLine int    `json:"end_line" yaml:"end_line"`
	EndCol  int    `json:"end_col" yaml:"end_col"`
}

// NewLocation resolves the file of span in the file table of prog
func NewLocation(prog *ir.Program, span ir.Span) Location {
	file := prog.FileName(span.File)
	if file == "" {
		file = fmt.Sprintf("<file %d>", span.File)
	}
	return Location{
		File:    file,
		Line:    span.Begin.Line,
		Col:     span.Begin.Col,
		EndLine: span.End.Line,
		EndCol:  span.End.Col,
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Range returns the location with its end position
func (l Location) Range() string {
	if l.EndLine == l.Line {
		return fmt.Sprintf("%s:%d:%d-%d", l.File, l.Line, l.Col, l.EndCol)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.Line, l.Col, l.EndLine, l.EndCol)
}

// SubSpan is a secondary location of a diagnostic
type SubSpan struct {
	Category Category `json:"category" yaml:"category"`
	Location Location `json:"location" yaml:"location"`
}

// Diagnostic is a finding of an analysis
type Diagnostic struct {
	Level Level `json:"level" yaml:"level"`

	// Analysis is the name of the analysis kind that produced the diagnostic, e.g. UnsafeDataflow
	Analysis string `json:"analysis" yaml:"analysis"`

	// Flags is the analysis-specific detail of the finding
	Flags string `json:"flags,omitempty" yaml:"flags,omitempty"`

	Message string `json:"message" yaml:"message"`

	// Function is the display name of the function the diagnostic is about
	Function string `json:"function" yaml:"function"`

	Primary  Location  `json:"primary" yaml:"primary"`
	SubSpans []SubSpan `json:"sub_spans" yaml:"sub_spans"`
}

// Count returns the number of sub-spans of the diagnostic in category c
func (d Diagnostic) Count(c Category) int {
	n := 0
	for _, s := range d.SubSpans {
		if s.Category == c {
			n++
		}
	}
	return n
}

// CountByLevel returns the number of diagnostics per level
func CountByLevel(diags []Diagnostic) map[Level]int {
	counts := map[Level]int{}
	for _, d := range diags {
		counts[d.Level]++
	}
	return counts
}
