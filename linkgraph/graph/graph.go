package graph

import "errors"

var (
	// ErrNodeOutOfRange is returned when a node id does not lie in [0, N).
	ErrNodeOutOfRange = errors.New("node id out of range")

	// ErrEmptyGraph is returned when a graph is requested with fewer than
	// one node.
	ErrEmptyGraph = errors.New("graph must contain at least one node")
)

// Graph is implemented by immutable successor-adjacency views over the node
// ids [0, NodeCount()).
//
// Every id in [0, NodeCount()) is a valid argument to Successors and
// OutDegree, including nodes that never appeared as an edge source.
// Implementations must be safe for concurrent readers.
type Graph interface {
	// NodeCount returns the number of nodes in the graph.
	NodeCount() int

	// Successors returns the ordered successors of node v. The returned
	// slice must not be modified by the caller. Dangling nodes yield an
	// empty slice.
	Successors(v int) []int

	// OutDegree returns len(Successors(v)).
	OutDegree(v int) int

	// Edges returns an iterator over every edge in ascending source id
	// order, then in successor order.
	Edges() EdgeIterator
}

// Edge is a directed edge between two nodes.
type Edge struct {
	Src int
	Dst int
}

// Iterator is implemented by graph iterators.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error
}

// EdgeIterator is implemented by objects that can iterate the graph edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched edge object.
	Edge() Edge
}

// IsDangling reports whether v has no outgoing edges.
func IsDangling(g Graph, v int) bool {
	return g.OutDegree(v) == 0
}

// InRange reports whether v is a valid node id for g.
func InRange(g Graph, v int) bool {
	return v >= 0 && v < g.NodeCount()
}
