package memory

import (
	"fmt"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
)

var _ graph.Graph = (*Graph)(nil)

// Builder accumulates the edges of a graph with a fixed node count. It is
// not safe for concurrent use.
type Builder struct {
	n     int
	succs [][]int
	edges int
}

// NewBuilder returns a builder for a graph with n nodes.
func NewBuilder(n int) (*Builder, error) {
	if n < 1 {
		return nil, fmt.Errorf("new builder with %d nodes: %w", n, graph.ErrEmptyGraph)
	}
	return &Builder{n: n, succs: make([][]int, n)}, nil
}

// AddEdge appends dst to the successor list of src. Duplicate edges and
// self-loops are kept.
func (b *Builder) AddEdge(src, dst int) error {
	if src < 0 || src >= b.n || dst < 0 || dst >= b.n {
		return fmt.Errorf("add edge %d -> %d (nodes: %d): %w", src, dst, b.n, graph.ErrNodeOutOfRange)
	}
	b.succs[src] = append(b.succs[src], dst)
	b.edges++
	return nil
}

// Build freezes the accumulated edges into an immutable Graph. The builder
// can keep being used afterwards; later edges do not affect graphs already
// built.
func (b *Builder) Build() *Graph {
	g := &Graph{
		offsets: make([]int, b.n+1),
		targets: make([]int, 0, b.edges),
	}
	for v, succ := range b.succs {
		g.targets = append(g.targets, succ...)
		g.offsets[v+1] = len(g.targets)
	}
	return g
}

// Graph is an immutable graph stored in compressed sparse row form: the
// successors of v are targets[offsets[v]:offsets[v+1]].
type Graph struct {
	offsets []int
	targets []int
}

// Stats summarizes the shape of a graph.
type Stats struct {
	Nodes     int
	Edges     int
	Dangling  int
	SelfLoops int
}

func (g *Graph) NodeCount() int { return len(g.offsets) - 1 }

func (g *Graph) EdgeCount() int { return len(g.targets) }

func (g *Graph) Successors(v int) []int {
	lo, hi := g.offsets[v], g.offsets[v+1]
	return g.targets[lo:hi:hi]
}

func (g *Graph) OutDegree(v int) int { return g.offsets[v+1] - g.offsets[v] }

func (g *Graph) Edges() graph.EdgeIterator {
	return &edgeIterator{g: g}
}

// Stats walks the graph once and returns its summary.
func (g *Graph) Stats() Stats {
	st := Stats{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
	for v := range st.Nodes {
		succ := g.Successors(v)
		if len(succ) == 0 {
			st.Dangling++
		}
		for _, dst := range succ {
			if dst == v {
				st.SelfLoops++
			}
		}
	}
	return st
}
