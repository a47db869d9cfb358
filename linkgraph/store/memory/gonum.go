package memory

import (
	"fmt"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
)

// FromGonum copies a gonum directed graph whose node ids are exactly
// [0, N) into an immutable Graph. Gonum does not define an iteration order,
// so successors are stored in ascending id order.
func FromGonum(g gonum.Directed) (*Graph, error) {
	nodes := gonum.NodesOf(g.Nodes())
	b, err := NewBuilder(len(nodes))
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(nodes))
	for _, u := range nodes {
		if u.ID() < 0 || u.ID() >= int64(len(nodes)) {
			return nil, fmt.Errorf("import gonum node %d (nodes: %d): %w", u.ID(), len(nodes), graph.ErrNodeOutOfRange)
		}
		ids = append(ids, u.ID())
	}
	slices.Sort(ids)

	for _, src := range ids {
		succ := gonum.NodesOf(g.From(src))
		dst := make([]int, len(succ))
		for i, v := range succ {
			dst[i] = int(v.ID())
		}
		slices.Sort(dst)
		for _, v := range dst {
			if err := b.AddEdge(int(src), v); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// ToGonum exports g as a gonum simple directed graph. Simple graphs cannot
// hold self-loops or parallel edges, so those are dropped.
func ToGonum(g graph.Graph) (*simple.DirectedGraph, error) {
	dg := simple.NewDirectedGraph()
	for v := range g.NodeCount() {
		dg.AddNode(simple.Node(v))
	}

	it := g.Edges()
	defer func() { _ = it.Close() }()
	for it.Next() {
		e := it.Edge()
		if e.Src == e.Dst || dg.HasEdgeFromTo(int64(e.Src), int64(e.Dst)) {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(e.Src), simple.Node(e.Dst)))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("export to gonum: %w", err)
	}
	return dg, nil
}
