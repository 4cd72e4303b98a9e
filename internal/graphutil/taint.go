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

package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
)

// Taint is the interface of the values carried by a TaintGraph. Join must be associative, commutative and
// idempotent, and must not mutate its receiver.
type Taint[T any] interface {
	// IsEmpty returns true if the value carries no taint
	IsEmpty() bool

	// Contains returns true if every taint of other is in the receiver
	Contains(other T) bool

	// Join returns the union of the receiver and other
	Join(other T) T
}

// TaintGraph computes which taint values flow into sinks along the edges of a graph. Nodes are marked as sources of
// some taint value, or as sinks. Propagate returns the join of the source values of all the nodes from which some
// sink is reachable.
//
// A TaintGraph is meant to be used for a single analysis of a single graph and then discarded.
type TaintGraph[T Taint[T]] struct {
	g       graph.Iterator
	sources map[int]T
	sinks   intsets.Sparse
}

// NewTaintGraph returns a taint graph over g with no source and no sink
func NewTaintGraph[T Taint[T]](g graph.Iterator) *TaintGraph[T] {
	return &TaintGraph[T]{
		g:       g,
		sources: map[int]T{},
	}
}

// MarkSource joins taint into the source value of node
func (t *TaintGraph[T]) MarkSource(node int, taint T) {
	if node < 0 || node >= t.g.Order() {
		return
	}
	cur, ok := t.sources[node]
	if !ok {
		t.sources[node] = taint
		return
	}
	if !cur.Contains(taint) {
		t.sources[node] = cur.Join(taint)
	}
}

// MarkSink marks node as a sink
func (t *TaintGraph[T]) MarkSink(node int) {
	if node < 0 || node >= t.g.Order() {
		return
	}
	t.sinks.Insert(node)
}

// Source returns the source value of node and true, or false if node is not a source
func (t *TaintGraph[T]) Source(node int) (T, bool) {
	v, ok := t.sources[node]
	return v, ok
}

// Sources returns the source nodes in increasing order
func (t *TaintGraph[T]) Sources() []int {
	nodes := maps.Keys(t.sources)
	slices.Sort(nodes)
	return nodes
}

// IsSink returns true if node has been marked as a sink
func (t *TaintGraph[T]) IsSink(node int) bool {
	return t.sinks.Has(node)
}

// Sinks returns the sink nodes in increasing order
func (t *TaintGraph[T]) Sinks() []int {
	return t.sinks.AppendTo(nil)
}

// Propagate returns the join of the source values of every node that reaches some sink, the sinks included. The
// zero value of T is returned when no source reaches a sink.
//
// The computation is a single breadth-first search in the transposed graph, from a virtual root that has an edge
// to every sink. Every node and edge is visited at most once.
func (t *TaintGraph[T]) Propagate() T {
	var result T
	if t.sinks.IsEmpty() || len(t.sources) == 0 {
		return result
	}

	n := t.g.Order()
	root := n
	reversed := graph.New(n + 1)
	for v := 0; v < n; v++ {
		t.g.Visit(v, func(w int, _ int64) bool {
			reversed.Add(w, v)
			return false
		})
	}
	for _, s := range t.Sinks() {
		reversed.Add(root, s)
	}

	first := true
	graph.BFS(reversed, root, func(_, w int, _ int64) {
		taint, ok := t.sources[w]
		if !ok || taint.IsEmpty() {
			return
		}
		if first {
			result = taint
			first = false
		} else if !result.Contains(taint) {
			result = result.Join(taint)
		}
	})
	return result
}
