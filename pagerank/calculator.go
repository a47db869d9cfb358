package pagerank

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
)

// ErrTeleportMismatch is returned when the teleport distribution and the
// graph disagree on the node count.
var ErrTeleportMismatch = errors.New("teleport distribution does not match graph size")

// Result is the outcome of a solve. Reaching the iteration cap without
// converging is reported through Converged rather than as an error, so
// callers can decide whether to trust the vector.
type Result struct {
	Ranks      []float64
	Converged  bool
	Iterations int
	Delta      float64
}

// Sum returns the total rank mass.
func (r *Result) Sum() float64 { return floats.Sum(r.Ranks) }

// Calculator computes stationary random-surfer distributions by power
// iteration. The same calculator serves base ranking (uniform teleport) and
// the trust and topic variants (seeded teleport). A Calculator holds no
// per-solve state and can run concurrent solves over a shared graph.
type Calculator struct {
	cfg Config
}

// NewCalculator validates cfg and returns a calculator that uses it.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Calculator{cfg: cfg}, nil
}

// Config returns the validated configuration.
func (c *Calculator) Config() Config { return c.cfg }

// Executor prepares a solve of g under teleport distribution t without
// running any iteration. The returned executor must be closed.
func (c *Calculator) Executor(g graph.Graph, t *Teleport, cb ExecutorCallbacks) (*Executor, error) {
	if t == nil {
		return nil, fmt.Errorf("nil teleport: %w", ErrInvalidTeleport)
	}
	if t.Len() != g.NodeCount() {
		return nil, fmt.Errorf("teleport over %d nodes, graph has %d: %w", t.Len(), g.NodeCount(), ErrTeleportMismatch)
	}

	st, err := newStepper(c.cfg, g)
	if err != nil {
		return nil, err
	}
	return newExecutor(st, t, c.cfg, cb), nil
}

// Solve runs power iteration on g with teleport distribution t until
// convergence or the iteration cap. ctx is only checked between iterations.
func (c *Calculator) Solve(ctx context.Context, g graph.Graph, t *Teleport) (*Result, error) {
	ex, err := c.Executor(g, t, ExecutorCallbacks{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = ex.Close() }()

	if err := ex.RunToCompletion(ctx); err != nil {
		return nil, fmt.Errorf("rank solve interrupted after %d iterations: %w", ex.Iteration(), err)
	}

	res := ex.Result()
	c.cfg.Logger.Debug("rank solve finished",
		zap.Int("nodes", g.NodeCount()),
		zap.Bool("uniform", t.IsUniform()),
		zap.Bool("converged", res.Converged),
		zap.Int("iterations", res.Iterations),
		zap.Float64("delta", res.Delta),
	)
	return res, nil
}
