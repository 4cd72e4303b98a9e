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
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// DotNode is a node of a taint graph rendered in DOT format
type DotNode struct {
	id     int64
	label  string
	source bool
	sink   bool
}

var (
	_ graph.Node          = DotNode{}
	_ encoding.Attributer = DotNode{}
)

// ID returns the id of the node, which is its block index
func (n DotNode) ID() int64 {
	return n.id
}

// DOTID returns the name of the node in the DOT output
func (n DotNode) DOTID() string {
	return fmt.Sprintf("bb%d", n.id)
}

// Attributes returns the DOT attributes of the node. Sources are red boxes, sinks are cyan octagons, and nodes
// that are both are red octagons.
func (n DotNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: n.label}}
	switch {
	case n.source && n.sink:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "octagon"},
			encoding.Attribute{Key: "color", Value: "red"})
	case n.source:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"},
			encoding.Attribute{Key: "color", Value: "red"})
	case n.sink:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "octagon"},
			encoding.Attribute{Key: "color", Value: "cyan"})
	}
	return attrs
}

// ToGonum converts the taint graph into a gonum directed graph whose nodes are DotNodes. The label of a node is
// its block name, followed by its source value when it has one.
func ToGonum[T interface {
	Taint[T]
	fmt.Stringer
}](t *TaintGraph[T]) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	n := t.g.Order()
	nodes := make([]DotNode, n)
	for v := 0; v < n; v++ {
		label := fmt.Sprintf("bb%d", v)
		src, isSource := t.Source(v)
		if isSource {
			label += "\n" + src.String()
		}
		nodes[v] = DotNode{id: int64(v), label: label, source: isSource, sink: t.IsSink(v)}
		g.AddNode(nodes[v])
	}
	for v := 0; v < n; v++ {
		t.g.Visit(v, func(w int, _ int64) bool {
			if w != v {
				// simple graphs do not support self loops
				g.SetEdge(g.NewEdge(nodes[v], nodes[w]))
			}
			return false
		})
	}
	return g
}

// WriteDOT writes the taint graph in DOT format to w, as a digraph named name
func WriteDOT[T interface {
	Taint[T]
	fmt.Stringer
}](w io.Writer, name string, t *TaintGraph[T]) error {
	b, err := dot.Marshal(ToGonum(t), name, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal graph %s: %w", name, err)
	}
	_, err = w.Write(b)
	return err
}
