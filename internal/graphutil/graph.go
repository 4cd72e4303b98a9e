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

// Package graphutil contains the graph algorithms used by the analyses: the control-flow graph of a function body
// as a graph.Iterator, and the taint reachability engine.
package graphutil

import (
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/yourbasic/graph"
)

// BlockGraph is the control-flow graph of a function body. Node ids are block indices, and there is an edge from
// each block to each successor of its terminator. It implements graph.Iterator.
type BlockGraph struct {
	// Edges[x] are the successors of block x, without duplicates
	Edges [][]int

	// unsupported are the blocks whose terminator is not modelled
	unsupported []int

	// dropped counts the successor indices that did not refer to a block of the body
	dropped int
}

var _ graph.Iterator = (*BlockGraph)(nil)

// NewBlockGraph returns the control-flow graph of body. Terminators without successors (returns, aborts) and
// terminators that are not modelled have no outgoing edges.
func NewBlockGraph(body *ir.Body) *BlockGraph {
	n := len(body.Blocks)
	g := &BlockGraph{Edges: make([][]int, n)}
	for i, block := range body.Blocks {
		if block.Terminator.Kind == ir.TerminatorUnknown {
			g.unsupported = append(g.unsupported, i)
			continue
		}
		seen := map[int]bool{}
		for _, succ := range block.Terminator.Successors() {
			if succ < 0 || succ >= n {
				g.dropped++
				continue
			}
			if !seen[succ] {
				seen[succ] = true
				g.Edges[i] = append(g.Edges[i], succ)
			}
		}
	}
	return g
}

// Order returns the number of blocks
func (g *BlockGraph) Order() int {
	return len(g.Edges)
}

// Visit calls do for each successor w of block v, until do returns true
func (g *BlockGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(g.Edges) {
		return false
	}
	for _, w := range g.Edges[v] {
		if do(w, 0) {
			return true
		}
	}
	return false
}

// Unsupported returns the indices of the blocks whose terminator is not modelled. Those blocks are dead ends in
// the graph.
func (g *BlockGraph) Unsupported() []int {
	return g.unsupported
}

// Dropped returns the number of successors that were ignored because they were out of the body's range
func (g *BlockGraph) Dropped() int {
	return g.dropped
}

// Loops returns the strongly connected components of the graph that contain a cycle, i.e. the components with
// more than one block and the blocks that jump to themselves.
func (g *BlockGraph) Loops() [][]int {
	var loops [][]int
	for _, component := range graph.StrongComponents(g) {
		if len(component) > 1 {
			loops = append(loops, component)
			continue
		}
		v := component[0]
		for _, w := range g.Edges[v] {
			if w == v {
				loops = append(loops, component)
				break
			}
		}
	}
	return loops
}
