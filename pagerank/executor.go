package pagerank

import (
	"context"
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// IterationStats describes one committed power iteration.
type IterationStats struct {
	// Iteration is the 1-based index of the committed iteration.
	Iteration int

	// Delta is the L1 distance between the previous and the new vector.
	Delta float64

	// Leaked is the mass re-injected through the teleport distribution:
	// the teleport fraction plus whatever dangling nodes absorbed.
	Leaked float64
}

// ExecutorCallbacks are invoked at iteration boundaries. Nil callbacks are
// replaced with no-ops.
type ExecutorCallbacks struct {
	// PreStep, if defined, is invoked before running the next iteration.
	PreStep func(ctx context.Context, iteration int) error

	// PostStep, if defined, is invoked after committing an iteration.
	PostStep func(ctx context.Context, stats IterationStats) error

	// PostStepKeepRunning, if defined, is invoked after PostStep and
	// decides whether stepping should continue.
	PostStepKeepRunning func(ctx context.Context, stats IterationStats) (bool, error)
}

// Executor runs power iterations for a single solve. It owns its rank
// buffers exclusively; only the graph is shared. An Executor is not safe for
// concurrent use.
type Executor struct {
	st       stepper
	teleport *Teleport
	cb       ExecutorCallbacks
	logger   *zap.Logger

	epsilon       float64
	maxIterations int

	cur, next []float64
	iteration int
	delta     float64
	converged bool
}

func newExecutor(st stepper, t *Teleport, cfg Config, cb ExecutorCallbacks) *Executor {
	patchEmptyCallbacks(&cb)
	return &Executor{
		st:            st,
		teleport:      t,
		cb:            cb,
		logger:        cfg.Logger,
		epsilon:       cfg.MinSADForConvergence,
		maxIterations: cfg.MaxIterations,
		cur:           t.Vector(),
		next:          make([]float64, t.Len()),
		delta:         math.Inf(1),
	}
}

// Iteration returns the number of committed iterations.
func (ex *Executor) Iteration() int { return ex.iteration }

// Converged reports whether the last committed iteration moved the vector
// by at most the convergence threshold.
func (ex *Executor) Converged() bool { return ex.converged }

// Ranks returns a copy of the current rank vector.
func (ex *Executor) Ranks() []float64 { return slices.Clone(ex.cur) }

// Result snapshots the current state of the solve.
func (ex *Executor) Result() *Result {
	return &Result{
		Ranks:      ex.Ranks(),
		Converged:  ex.converged,
		Iterations: ex.iteration,
		Delta:      ex.delta,
	}
}

// RunSteps executes up to numSteps iterations, ignoring the convergence
// threshold and the iteration cap. It stops early only when a callback asks
// it to, returns an error, or ctx expires.
func (ex *Executor) RunSteps(ctx context.Context, numSteps int) error {
	return ex.run(ctx, numSteps, false)
}

// RunToCompletion iterates until the vector converges or the configured
// iteration cap is reached. Failing to converge is not an error.
func (ex *Executor) RunToCompletion(ctx context.Context) error {
	remaining := ex.maxIterations - ex.iteration
	if ex.converged || remaining <= 0 {
		return nil
	}
	return ex.run(ctx, remaining, true)
}

// Close releases the workers held by the executor.
func (ex *Executor) Close() error {
	ex.st.close()
	return nil
}

func (ex *Executor) run(ctx context.Context, maxSteps int, stopOnConvergence bool) error {
	var (
		keepRunning bool
		err         error
		cb          = ex.cb
	)

	for ; maxSteps > 0; maxSteps-- {
		if err = ensureContextNotExpired(ctx); err != nil {
			break
		} else if err = cb.PreStep(ctx, ex.iteration); err != nil {
			break
		}

		stats := ex.step()
		if err = cb.PostStep(ctx, stats); err != nil {
			break
		} else if stopOnConvergence && ex.converged {
			break
		} else if keepRunning, err = cb.PostStepKeepRunning(ctx, stats); !keepRunning || err != nil {
			break
		}
	}

	return err
}

// step commits one iteration: scatter beta-weighted rank along edges,
// re-inject the leaked mass through the teleport distribution and measure
// the L1 distance to the previous vector.
func (ex *Executor) step() IterationStats {
	clear(ex.next)
	ex.st.scatter(ex.next, ex.cur)

	leaked := 1 - floats.Sum(ex.next)
	ex.teleport.inject(ex.next, leaked)

	ex.delta = floats.Distance(ex.next, ex.cur, 1)
	ex.cur, ex.next = ex.next, ex.cur
	ex.iteration++
	ex.converged = ex.delta <= ex.epsilon

	ex.logger.Debug("rank iteration",
		zap.Int("iteration", ex.iteration),
		zap.Float64("delta", ex.delta),
		zap.Float64("leaked", leaked),
	)
	return IterationStats{Iteration: ex.iteration, Delta: ex.delta, Leaked: leaked}
}

func patchEmptyCallbacks(cb *ExecutorCallbacks) {
	if cb.PreStep == nil {
		cb.PreStep = func(context.Context, int) error { return nil }
	}
	if cb.PostStep == nil {
		cb.PostStep = func(context.Context, IterationStats) error { return nil }
	}
	if cb.PostStepKeepRunning == nil {
		cb.PostStepKeepRunning = func(context.Context, IterationStats) (bool, error) { return true, nil }
	}
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
