package node

import (
	"errors"
	"fmt"

	"github.com/gogpu/vgraph"
)

var (
	// ErrUnknownNode is returned when an ID is not part of the graph.
	ErrUnknownNode = errors.New("node: unknown node")

	// ErrDuplicateNode is returned when an ID is added twice.
	ErrDuplicateNode = errors.New("node: duplicate node")

	// ErrCycle is returned when evaluation reaches a node twice on the
	// same upstream walk.
	ErrCycle = errors.New("node: cycle")
)

// ID names a node in a Graph.
type ID string

// Kind distinguishes source nodes from transform nodes.
type Kind int

const (
	KindSource Kind = iota
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindTransform:
		return "transform"
	default:
		return "unknown"
	}
}

type entry struct {
	kind  Kind
	data  vgraph.VectorData
	node  Node
	input ID
}

// Graph is a set of named nodes. Each transform node has exactly one
// upstream input; source nodes hold literal vector data. Inputs may be
// added in any order and are resolved at evaluation time.
//
// A Graph is not safe for concurrent mutation.
type Graph struct {
	entries map[ID]entry
	order   []ID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{entries: make(map[ID]entry)}
}

// AddSource adds a node that evaluates to a copy of data.
func (g *Graph) AddSource(id ID, data vgraph.VectorData) error {
	return g.add(id, entry{kind: KindSource, data: data.Clone()})
}

// Add adds a transform node fed by input.
func (g *Graph) Add(id ID, n Node, input ID) error {
	if n == nil {
		return fmt.Errorf("node: add %q: nil node", id)
	}
	return g.add(id, entry{kind: KindTransform, node: n, input: input})
}

func (g *Graph) add(id ID, e entry) error {
	if _, ok := g.entries[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	g.entries[id] = e
	g.order = append(g.order, id)
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// IDs returns the node IDs in insertion order.
func (g *Graph) IDs() []ID { return append([]ID(nil), g.order...) }

// Kind returns the kind of node id.
func (g *Graph) Kind(id ID) (Kind, bool) {
	e, ok := g.entries[id]
	return e.kind, ok
}

// Evaluate returns the output of node id.
func (g *Graph) Evaluate(id ID) (vgraph.VectorData, error) {
	return g.eval(id, make(map[ID]vgraph.VectorData))
}

// EvaluateAll evaluates every listed node, sharing upstream results
// between them. Each node is evaluated at most once.
func (g *Graph) EvaluateAll(ids ...ID) (map[ID]vgraph.VectorData, error) {
	memo := make(map[ID]vgraph.VectorData)
	out := make(map[ID]vgraph.VectorData, len(ids))
	for _, id := range ids {
		v, err := g.eval(id, memo)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

func (g *Graph) eval(id ID, memo map[ID]vgraph.VectorData) (vgraph.VectorData, error) {
	// Walk upstream until a source or an already evaluated node.
	var chain []ID
	seen := make(map[ID]bool)
	cur := id
	var base vgraph.VectorData
	for {
		if v, ok := memo[cur]; ok {
			base = v
			break
		}
		if seen[cur] {
			return vgraph.VectorData{}, fmt.Errorf("%w: through %q", ErrCycle, cur)
		}
		seen[cur] = true

		e, ok := g.entries[cur]
		if !ok {
			return vgraph.VectorData{}, fmt.Errorf("%w: %q", ErrUnknownNode, cur)
		}
		if e.kind == KindSource {
			base = e.data.Clone()
			memo[cur] = base
			break
		}
		chain = append(chain, cur)
		cur = e.input
	}

	// Apply transforms from the most upstream one down to id.
	out := base
	for i := len(chain) - 1; i >= 0; i-- {
		out = g.entries[chain[i]].node.Apply(out)
		memo[chain[i]] = out
	}
	return out.Clone(), nil
}
