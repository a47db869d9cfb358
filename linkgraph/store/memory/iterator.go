package memory

import "github.com/valkyraycho/surfrank/linkgraph/graph"

// edgeIterator walks the CSR arrays in ascending source order.
type edgeIterator struct {
	g        *Graph
	src      int
	curIndex int
	cur      graph.Edge
}

func (i *edgeIterator) Next() bool {
	if i.curIndex >= len(i.g.targets) {
		return false
	}
	for i.g.offsets[i.src+1] <= i.curIndex {
		i.src++
	}
	i.cur = graph.Edge{Src: i.src, Dst: i.g.targets[i.curIndex]}
	i.curIndex++
	return true
}

func (i *edgeIterator) Error() error {
	return nil
}

func (i *edgeIterator) Close() error {
	return nil
}

func (i *edgeIterator) Edge() graph.Edge {
	return i.cur
}
