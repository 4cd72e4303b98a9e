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

package analysis

import (
	"fmt"
	"io"

	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/internal/graphutil"
)

// Statistics are general statistics about the bodies of a program
type Statistics struct {
	NumberOfFunctions         uint
	NumberOfNonemptyFunctions uint
	NumberOfBlocks            uint
	NumberOfStatements        uint
	NumberOfCalls             uint
	NumberOfLoops             uint

	// NumberOfUnsupportedTerminators counts the blocks whose terminator is not modelled by the analyses
	NumberOfUnsupportedTerminators uint

	// CallsByKind counts the calls of each target kind
	CallsByKind map[ir.CallTargetKind]uint
}

// ProgramStatistics returns statistics about the function bodies of prog. Loops are the cyclic strongly connected
// components of each body's control-flow graph.
func ProgramStatistics(prog *ir.Program) Statistics {
	result := Statistics{CallsByKind: map[ir.CallTargetKind]uint{}}

	for _, f := range prog.Functions {
		result.NumberOfFunctions++
		if f.Body == nil || len(f.Body.Blocks) == 0 {
			continue
		}
		result.NumberOfNonemptyFunctions++
		for _, b := range f.Body.Blocks {
			result.NumberOfBlocks++
			result.NumberOfStatements += uint(len(b.Statements))
			b.Calls(func(call *ir.Call, _ ir.Span) {
				result.NumberOfCalls++
				result.CallsByKind[call.Target.Kind]++
			})
		}
		g := graphutil.NewBlockGraph(f.Body)
		result.NumberOfLoops += uint(len(g.Loops()))
		result.NumberOfUnsupportedTerminators += uint(len(g.Unsupported()))
	}

	return result
}

// Write prints the statistics in w, one per line
func (s Statistics) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "functions: %d\nfunctions with body: %d\nblocks: %d\nstatements: %d\n"+
		"calls: %d (direct %d, trait %d, builtin %d, indirect %d)\nloops: %d\nunsupported terminators: %d\n",
		s.NumberOfFunctions, s.NumberOfNonemptyFunctions, s.NumberOfBlocks, s.NumberOfStatements,
		s.NumberOfCalls, s.CallsByKind[ir.DirectCall], s.CallsByKind[ir.TraitCall], s.CallsByKind[ir.BuiltinCall],
		s.CallsByKind[ir.IndirectCall], s.NumberOfLoops, s.NumberOfUnsupportedTerminators)
	return err
}
