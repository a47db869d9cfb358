package pagerank

import (
	"fmt"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
)

// matrixStepper holds M = beta * transpose(A) in CSR form, where A is the
// row-stochastic adjacency matrix of the graph. Row v lists the sources of
// v's incoming edges in ascending order; dangling sources contribute no
// entries.
type matrixStepper struct {
	rowPtr []int
	cols   []int
	vals   []float64
}

func newMatrixStepper(g graph.Graph, beta float64) (*matrixStepper, error) {
	n := g.NodeCount()
	m := &matrixStepper{rowPtr: make([]int, n+1)}

	it := g.Edges()
	for it.Next() {
		m.rowPtr[it.Edge().Dst+1]++
	}
	if err := closeIterator(it); err != nil {
		return nil, err
	}
	for v := range n {
		m.rowPtr[v+1] += m.rowPtr[v]
	}

	nnz := m.rowPtr[n]
	m.cols = make([]int, nnz)
	m.vals = make([]float64, nnz)
	fill := make([]int, n)
	copy(fill, m.rowPtr[:n])

	it = g.Edges()
	for it.Next() {
		e := it.Edge()
		k := fill[e.Dst]
		m.cols[k] = e.Src
		m.vals[k] = beta / float64(g.OutDegree(e.Src))
		fill[e.Dst]++
	}
	if err := closeIterator(it); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *matrixStepper) scatter(dst, src []float64) {
	for v := range dst {
		var sum float64
		for k := m.rowPtr[v]; k < m.rowPtr[v+1]; k++ {
			sum += m.vals[k] * src[m.cols[k]]
		}
		dst[v] = sum
	}
}

func (m *matrixStepper) close() {}

func closeIterator(it graph.EdgeIterator) error {
	if err := it.Error(); err != nil {
		_ = it.Close()
		return fmt.Errorf("building transition matrix: %w", err)
	}
	if err := it.Close(); err != nil {
		return fmt.Errorf("building transition matrix: %w", err)
	}
	return nil
}
