package pagerank_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
	"github.com/valkyraycho/surfrank/linkgraph/loader"
	"github.com/valkyraycho/surfrank/linkgraph/store/memory"
	"github.com/valkyraycho/surfrank/pagerank"

	"gopkg.in/check.v1"
)

var _ = check.Suite(new(CalculatorTestSuite))

type CalculatorTestSuite struct{}

var backends = []pagerank.Backend{pagerank.AdjacencyBackend, pagerank.MatrixBackend}

func (s *CalculatorTestSuite) TestThreeCycleConvergesToUniform(c *check.C) {
	g := buildGraph(c, 3, graph.Edge{Src: 0, Dst: 1}, graph.Edge{Src: 1, Dst: 2}, graph.Edge{Src: 2, Dst: 0})

	for _, backend := range backends {
		calc := calculator(c, func(cfg *pagerank.Config) { cfg.Backend = backend })
		res, err := calc.Solve(context.TODO(), g, uniform(c, 3))
		c.Assert(err, check.IsNil)

		c.Assert(res.Converged, check.Equals, true, check.Commentf("backend %s", backend))
		assertClose(c, res.Ranks, []float64{1 / 3.0, 1 / 3.0, 1 / 3.0}, 1e-9)
	}
}

func (s *CalculatorTestSuite) TestMassConservedAtEveryIteration(c *check.C) {
	// Nodes 3 and 5 are dangling; 4 is isolated.
	g := buildGraph(c, 6,
		graph.Edge{Src: 0, Dst: 1},
		graph.Edge{Src: 0, Dst: 3},
		graph.Edge{Src: 1, Dst: 2},
		graph.Edge{Src: 2, Dst: 0},
		graph.Edge{Src: 2, Dst: 5},
	)
	teleports := map[string]*pagerank.Teleport{
		"uniform": uniform(c, 6),
		"seeded":  seeded(c, 6, 1),
	}

	for _, backend := range backends {
		calc := calculator(c, func(cfg *pagerank.Config) { cfg.Backend = backend })
		for name, t := range teleports {
			ex, err := calc.Executor(g, t, pagerank.ExecutorCallbacks{})
			c.Assert(err, check.IsNil)

			assertStochastic(c, ex.Ranks(), name+" r0")
			for step := 1; step <= 25; step++ {
				c.Assert(ex.RunSteps(context.TODO(), 1), check.IsNil)
				assertStochastic(c, ex.Ranks(), name)
			}
			c.Assert(ex.Close(), check.IsNil)
		}
	}
}

func (s *CalculatorTestSuite) TestInitialVectorIsTeleport(c *check.C) {
	g := buildGraph(c, 4, graph.Edge{Src: 0, Dst: 1})
	t := seeded(c, 4, 2, 3)

	ex, err := calculator(c, nil).Executor(g, t, pagerank.ExecutorCallbacks{})
	c.Assert(err, check.IsNil)
	defer func() { _ = ex.Close() }()

	c.Assert(ex.Ranks(), check.DeepEquals, []float64{0, 0, 0.5, 0.5})
	c.Assert(ex.Iteration(), check.Equals, 0)
}

func (s *CalculatorTestSuite) TestDanglingNodesDoNotLeakMass(c *check.C) {
	withDangling := buildGraph(c, 2, graph.Edge{Src: 0, Dst: 1})
	res, err := calculator(c, nil).Solve(context.TODO(), withDangling, uniform(c, 2))
	c.Assert(err, check.IsNil)
	assertStochastic(c, res.Ranks, "dangling")

	// Node 1 only receives from 0 and gives everything back through
	// teleportation, so its rank must exceed node 0's.
	c.Assert(res.Ranks[1] > res.Ranks[0], check.Equals, true)
}

func (s *CalculatorTestSuite) TestPostConvergenceStability(c *check.C) {
	g := randomGraph(c, 200, 7)
	for _, t := range []*pagerank.Teleport{uniform(c, 200), seeded(c, 200, 3, 14, 159)} {
		calc := calculator(c, func(cfg *pagerank.Config) { cfg.MaxIterations = 500 })
		ex, err := calc.Executor(g, t, pagerank.ExecutorCallbacks{})
		c.Assert(err, check.IsNil)

		c.Assert(ex.RunToCompletion(context.TODO()), check.IsNil)
		c.Assert(ex.Converged(), check.Equals, true)
		converged := ex.Ranks()

		c.Assert(ex.RunSteps(context.TODO(), 1), check.IsNil)
		c.Assert(floats.Distance(converged, ex.Ranks(), 1) <= calc.Config().MinSADForConvergence, check.Equals, true)
		c.Assert(ex.Close(), check.IsNil)
	}
}

func (s *CalculatorTestSuite) TestSeedContainment(c *check.C) {
	// 3 has no incoming edges and 4 is isolated; neither is a seed.
	g := buildGraph(c, 5,
		graph.Edge{Src: 0, Dst: 1},
		graph.Edge{Src: 1, Dst: 2},
		graph.Edge{Src: 2, Dst: 0},
		graph.Edge{Src: 3, Dst: 0},
	)
	t := seeded(c, 5, 0)

	ex, err := calculator(c, nil).Executor(g, t, pagerank.ExecutorCallbacks{})
	c.Assert(err, check.IsNil)
	defer func() { _ = ex.Close() }()

	c.Assert(ex.RunSteps(context.TODO(), 1), check.IsNil)
	assertClose(c, ex.Ranks(), []float64{0.15, 0.85, 0, 0, 0}, 1e-12)

	for range 50 {
		c.Assert(ex.RunSteps(context.TODO(), 1), check.IsNil)
		ranks := ex.Ranks()
		c.Assert(ranks[3], check.Equals, 0.0)
		c.Assert(ranks[4], check.Equals, 0.0)
	}
}

func (s *CalculatorTestSuite) TestSeedKeepsTeleportFloor(c *check.C) {
	g := randomGraph(c, 100, 11)
	res, err := calculator(c, nil).Solve(context.TODO(), g, seeded(c, 100, 42))
	c.Assert(err, check.IsNil)
	assertStochastic(c, res.Ranks, "seeded")

	// At least the (1 - beta) teleport fraction is re-injected at the only
	// seed on every iteration.
	c.Assert(res.Ranks[42] >= 0.15-1e-12, check.Equals, true, check.Commentf("seed rank %v", res.Ranks[42]))
}

func (s *CalculatorTestSuite) TestDeterminism(c *check.C) {
	g := randomGraph(c, 500, 3)
	for _, workers := range []int{1, 4} {
		for _, backend := range backends {
			calc := calculator(c, func(cfg *pagerank.Config) {
				cfg.ComputeWorkers = workers
				cfg.Backend = backend
			})

			first, err := calc.Solve(context.TODO(), g, uniform(c, 500))
			c.Assert(err, check.IsNil)
			second, err := calc.Solve(context.TODO(), g, uniform(c, 500))
			c.Assert(err, check.IsNil)

			c.Assert(second.Ranks, check.DeepEquals, first.Ranks)
			c.Assert(second.Iterations, check.Equals, first.Iterations)
		}
	}
}

func (s *CalculatorTestSuite) TestBackendsAndWorkersAgree(c *check.C) {
	g := randomGraph(c, 400, 5)
	t := seeded(c, 400, 1, 2, 3, 200)

	solve := func(mutate func(*pagerank.Config)) []float64 {
		res, err := calculator(c, mutate).Solve(context.TODO(), g, t)
		c.Assert(err, check.IsNil)
		return res.Ranks
	}

	reference := solve(nil)
	assertClose(c, solve(func(cfg *pagerank.Config) { cfg.Backend = pagerank.MatrixBackend }), reference, 1e-12)
	assertClose(c, solve(func(cfg *pagerank.Config) { cfg.ComputeWorkers = 3 }), reference, 1e-12)
	assertClose(c, solve(func(cfg *pagerank.Config) { cfg.ComputeWorkers = 1000 }), reference, 1e-12)
}

func (s *CalculatorTestSuite) TestAgreesWithGonumPageRank(c *check.C) {
	g := randomGraph(c, 150, 13)
	dg, err := memory.ToGonum(g)
	c.Assert(err, check.IsNil)

	want := network.PageRank(dg, 0.85, 1e-12)
	var total float64
	for _, r := range want {
		total += r
	}

	res, err := calculator(c, func(cfg *pagerank.Config) {
		cfg.MinSADForConvergence = 1e-13
		cfg.MaxIterations = 2000
	}).Solve(context.TODO(), g, uniform(c, 150))
	c.Assert(err, check.IsNil)
	c.Assert(res.Converged, check.Equals, true)

	for v, r := range res.Ranks {
		c.Assert(math.Abs(r-want[int64(v)]/total) <= 1e-6, check.Equals, true,
			check.Commentf("node %d: got %v, gonum %v", v, r, want[int64(v)]/total))
	}
}

func (s *CalculatorTestSuite) TestNonConvergenceIsNotAnError(c *check.C) {
	g := randomGraph(c, 100, 17)
	res, err := calculator(c, func(cfg *pagerank.Config) {
		cfg.MaxIterations = 2
		cfg.MinSADForConvergence = 1e-15
	}).Solve(context.TODO(), g, uniform(c, 100))

	c.Assert(err, check.IsNil)
	c.Assert(res.Converged, check.Equals, false)
	c.Assert(res.Iterations, check.Equals, 2)
	c.Assert(res.Delta > 1e-15, check.Equals, true)
	assertStochastic(c, res.Ranks, "capped")
}

func (s *CalculatorTestSuite) TestCancelledContext(c *check.C) {
	ctx, cancel := context.WithCancel(context.TODO())
	cancel()

	_, err := calculator(c, nil).Solve(ctx, randomGraph(c, 10, 1), uniform(c, 10))
	c.Assert(errors.Is(err, context.Canceled), check.Equals, true, check.Commentf("got %v", err))
}

func (s *CalculatorTestSuite) TestCallbacks(c *check.C) {
	g := randomGraph(c, 50, 19)
	var (
		pre  []int
		post []pagerank.IterationStats
	)
	ex, err := calculator(c, nil).Executor(g, uniform(c, 50), pagerank.ExecutorCallbacks{
		PreStep: func(_ context.Context, iteration int) error {
			pre = append(pre, iteration)
			return nil
		},
		PostStep: func(_ context.Context, stats pagerank.IterationStats) error {
			post = append(post, stats)
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, stats pagerank.IterationStats) (bool, error) {
			return stats.Iteration < 3, nil
		},
	})
	c.Assert(err, check.IsNil)
	defer func() { _ = ex.Close() }()

	c.Assert(ex.RunToCompletion(context.TODO()), check.IsNil)
	c.Assert(pre, check.DeepEquals, []int{0, 1, 2})
	c.Assert(post, check.HasLen, 3)
	for i, stats := range post {
		c.Assert(stats.Iteration, check.Equals, i+1)
		c.Assert(stats.Leaked >= 0.15-1e-12, check.Equals, true)
	}

	expErr := errors.New("stop")
	ex2, err := calculator(c, nil).Executor(g, uniform(c, 50), pagerank.ExecutorCallbacks{
		PreStep: func(context.Context, int) error { return expErr },
	})
	c.Assert(err, check.IsNil)
	defer func() { _ = ex2.Close() }()
	c.Assert(errors.Is(ex2.RunToCompletion(context.TODO()), expErr), check.Equals, true)
	c.Assert(ex2.Iteration(), check.Equals, 0)
}

func (s *CalculatorTestSuite) TestTeleportMismatch(c *check.C) {
	g := buildGraph(c, 3)
	_, err := calculator(c, nil).Solve(context.TODO(), g, uniform(c, 4))
	c.Assert(errors.Is(err, pagerank.ErrTeleportMismatch), check.Equals, true)

	_, err = calculator(c, nil).Solve(context.TODO(), g, nil)
	c.Assert(errors.Is(err, pagerank.ErrInvalidTeleport), check.Equals, true)
}

func (s *CalculatorTestSuite) TestSampleGraph(c *check.C) {
	g, err := loader.LoadFile(filepath.Join("..", "data", "test"), 9)
	c.Assert(err, check.IsNil)

	solve := func(backend pagerank.Backend) *pagerank.Result {
		res, err := calculator(c, func(cfg *pagerank.Config) {
			cfg.MaxIterations = 10
			cfg.Backend = backend
		}).Solve(context.TODO(), g, uniform(c, 9))
		c.Assert(err, check.IsNil)
		return res
	}

	first := solve(pagerank.AdjacencyBackend)
	c.Assert(first.Ranks, check.HasLen, 9)
	c.Assert(first.Iterations <= 10, check.Equals, true)
	assertStochastic(c, first.Ranks, "sample")
	c.Assert(solve(pagerank.AdjacencyBackend).Ranks, check.DeepEquals, first.Ranks)
	assertClose(c, solve(pagerank.MatrixBackend).Ranks, first.Ranks, 1e-12)

	// The 0-1-2 cycle is fed by node 3 and absorbs the most rank.
	for v := 3; v < 9; v++ {
		c.Assert(first.Ranks[2] > first.Ranks[v], check.Equals, true, check.Commentf("node %d", v))
	}
}
