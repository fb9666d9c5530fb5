// Package node provides the vector transform nodes and a small graph to
// compose them.
//
// Every node is a pure function over vgraph.VectorData: Apply returns new
// data and never mutates its input, so the same graph evaluated on the
// same input always yields the same result.
package node

import "github.com/gogpu/vgraph"

// Node transforms vector data.
type Node interface {
	Apply(in vgraph.VectorData) vgraph.VectorData
}

// Func adapts an ordinary function to the Node interface.
type Func func(in vgraph.VectorData) vgraph.VectorData

// Apply calls f(in).
func (f Func) Apply(in vgraph.VectorData) vgraph.VectorData {
	return f(in)
}

// Chain applies nodes left to right.
func Chain(nodes ...Node) Node {
	nodes = append([]Node(nil), nodes...)
	return Func(func(in vgraph.VectorData) vgraph.VectorData {
		out := in
		for _, n := range nodes {
			out = n.Apply(out)
		}
		return out
	})
}
