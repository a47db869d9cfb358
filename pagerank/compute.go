package pagerank

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
)

// stepper evaluates the edge-following half of an iteration: it adds
// beta*src[u]/deg(u) to dst[v] for every edge u -> v. dst is zeroed by the
// caller.
type stepper interface {
	scatter(dst, src []float64)
	close()
}

func newStepper(cfg Config, g graph.Graph) (stepper, error) {
	switch cfg.Backend {
	case MatrixBackend:
		return newMatrixStepper(g, cfg.DampingFactor)
	case AdjacencyBackend:
		return newAdjacencyStepper(g, cfg.DampingFactor, cfg.ComputeWorkers), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", cfg.Backend, ErrInvalidConfig)
	}
}

// partition is a contiguous range of source nodes scattered by one worker
// into its own buffer.
type partition struct {
	lo, hi int
	buf    []float64
}

// adjacencyStepper walks successor lists in ascending source order. With
// more than one worker the source range is split into contiguous
// partitions whose buffers are merged in partition order, so the floating
// point summation order only depends on the worker count.
type adjacencyStepper struct {
	g    graph.Graph
	beta float64

	parts []partition
	src   []float64

	wg              sync.WaitGroup
	partCh          chan *partition
	stepCompletedCh chan struct{}
	pendingInStep   int64
}

func newAdjacencyStepper(g graph.Graph, beta float64, workers int) *adjacencyStepper {
	s := &adjacencyStepper{g: g, beta: beta}

	n := g.NodeCount()
	workers = min(workers, n)
	if workers <= 1 {
		return s
	}

	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		s.parts = append(s.parts, partition{lo: lo, hi: min(lo+chunk, n), buf: make([]float64, n)})
	}
	s.startWorkers(len(s.parts))
	return s
}

func (s *adjacencyStepper) scatter(dst, src []float64) {
	if s.partCh == nil {
		scatterRange(s.g, s.beta, dst, src, 0, s.g.NodeCount())
		return
	}

	s.src = src
	s.pendingInStep = int64(len(s.parts))
	for i := range s.parts {
		s.partCh <- &s.parts[i]
	}
	<-s.stepCompletedCh

	for _, p := range s.parts {
		floats.Add(dst, p.buf)
	}
}

func (s *adjacencyStepper) close() {
	if s.partCh == nil {
		return
	}
	close(s.partCh)
	s.wg.Wait()
	s.partCh = nil
}

func (s *adjacencyStepper) startWorkers(numWorkers int) {
	s.partCh = make(chan *partition)
	s.stepCompletedCh = make(chan struct{})

	s.wg.Add(numWorkers)
	for range numWorkers {
		go s.stepWorker()
	}
}

func (s *adjacencyStepper) stepWorker() {
	for p := range s.partCh {
		clear(p.buf)
		scatterRange(s.g, s.beta, p.buf, s.src, p.lo, p.hi)
		if atomic.AddInt64(&s.pendingInStep, -1) == 0 {
			s.stepCompletedCh <- struct{}{}
		}
	}
	s.wg.Done()
}

func scatterRange(g graph.Graph, beta float64, dst, src []float64, lo, hi int) {
	for u := lo; u < hi; u++ {
		succ := g.Successors(u)
		if len(succ) == 0 {
			continue
		}
		share := beta * src[u] / float64(len(succ))
		for _, v := range succ {
			dst[v] += share
		}
	}
}
