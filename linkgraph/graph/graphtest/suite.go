package graphtest

import (
	"errors"
	"sync"

	"github.com/valkyraycho/surfrank/linkgraph/graph"

	"gopkg.in/check.v1"
)

// BuildFunc constructs a graph implementation with n nodes and the given
// edges.
type BuildFunc func(n int, edges []graph.Edge) (graph.Graph, error)

// SuiteBase defines a re-usable set of graph-related tests that can be
// executed against any type that implements graph.Graph.
type SuiteBase struct {
	build BuildFunc
}

// SetBuilder configures the test-suite to build graphs with fn.
func (s *SuiteBase) SetBuilder(fn BuildFunc) {
	s.build = fn
}

func (s *SuiteBase) mustBuild(c *check.C, n int, edges ...graph.Edge) graph.Graph {
	g, err := s.build(n, edges)
	c.Assert(err, check.IsNil)
	c.Assert(g.NodeCount(), check.Equals, n)
	return g
}

func (s *SuiteBase) TestIsolatedNodesAreQueryable(c *check.C) {
	g := s.mustBuild(c, 5, graph.Edge{Src: 0, Dst: 1})

	for v := 1; v < 5; v++ {
		c.Assert(g.Successors(v), check.HasLen, 0, check.Commentf("node %d", v))
		c.Assert(g.OutDegree(v), check.Equals, 0, check.Commentf("node %d", v))
		c.Assert(graph.IsDangling(g, v), check.Equals, true, check.Commentf("node %d", v))
	}
	c.Assert(graph.IsDangling(g, 0), check.Equals, false)
}

func (s *SuiteBase) TestSuccessors(c *check.C) {
	g := s.mustBuild(c, 5,
		graph.Edge{Src: 0, Dst: 1},
		graph.Edge{Src: 0, Dst: 2},
		graph.Edge{Src: 0, Dst: 4},
		graph.Edge{Src: 3, Dst: 0},
	)

	c.Assert(g.Successors(0), check.DeepEquals, []int{1, 2, 4})
	c.Assert(g.OutDegree(0), check.Equals, 3)
	c.Assert(g.Successors(3), check.DeepEquals, []int{0})
	c.Assert(g.OutDegree(3), check.Equals, 1)
}

func (s *SuiteBase) TestEdgeIterationOrder(c *check.C) {
	g := s.mustBuild(c, 4,
		graph.Edge{Src: 2, Dst: 0},
		graph.Edge{Src: 0, Dst: 1},
		graph.Edge{Src: 1, Dst: 2},
		graph.Edge{Src: 0, Dst: 3},
	)

	var got []graph.Edge
	it := g.Edges()
	for it.Next() {
		got = append(got, it.Edge())
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)
	c.Assert(got, check.DeepEquals, []graph.Edge{
		{Src: 0, Dst: 1},
		{Src: 0, Dst: 3},
		{Src: 1, Dst: 2},
		{Src: 2, Dst: 0},
	})
}

func (s *SuiteBase) TestEmptyEdgeIterator(c *check.C) {
	g := s.mustBuild(c, 3)

	it := g.Edges()
	c.Assert(it.Next(), check.Equals, false)
	c.Assert(it.Error(), check.IsNil)
}

func (s *SuiteBase) TestEmptyGraph(c *check.C) {
	_, err := s.build(0, nil)
	c.Assert(errors.Is(err, graph.ErrEmptyGraph), check.Equals, true, check.Commentf("got %v", err))
}

func (s *SuiteBase) TestConcurrentReaders(c *check.C) {
	var edges []graph.Edge
	for v := range 100 {
		edges = append(edges, graph.Edge{Src: v, Dst: (v + 1) % 100}, graph.Edge{Src: v, Dst: (v + 7) % 100})
	}
	g := s.mustBuild(c, 100, edges...)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		totals []int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			total := 0
			for v := range g.NodeCount() {
				total += g.OutDegree(v) + len(g.Successors(v))
			}
			mu.Lock()
			totals = append(totals, total)
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, total := range totals {
		c.Assert(total, check.Equals, 400)
	}
}
