// Package seed picks the highest ranked nodes of a rank vector to build the
// teleport set of a follow-up trust or topic-specific solve.
package seed

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/valkyraycho/surfrank/pagerank"
)

var (
	// ErrInvalidRule is returned by SizeRule.Validate.
	ErrInvalidRule = errors.New("invalid seed size rule")

	// ErrInvalidK is returned when a top-k selection is requested for k
	// outside [1, N].
	ErrInvalidK = errors.New("invalid top-k size")
)

// SizeRule sizes a seed set as ceil(N * ratio), using SmallRatio for graphs
// with fewer than Threshold nodes and LargeRatio otherwise.
type SizeRule struct {
	Threshold  int
	SmallRatio float64
	LargeRatio float64
}

// Validate checks that the threshold is non-negative and both ratios lie in
// (0, 1].
func (r SizeRule) Validate() error {
	var err error
	if r.Threshold < 0 {
		err = multierror.Append(err, fmt.Errorf("Threshold must be >= 0; got %d", r.Threshold))
	}
	if !validRatio(r.SmallRatio) {
		err = multierror.Append(err, fmt.Errorf("SmallRatio must be in the range (0, 1]; got %v", r.SmallRatio))
	}
	if !validRatio(r.LargeRatio) {
		err = multierror.Append(err, fmt.Errorf("LargeRatio must be in the range (0, 1]; got %v", r.LargeRatio))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return nil
}

func validRatio(ratio float64) bool {
	return ratio > 0 && ratio <= 1
}

// Ratio returns the ratio that applies to a graph with n nodes.
func (r SizeRule) Ratio(n int) float64 {
	if n < r.Threshold {
		return r.SmallRatio
	}
	return r.LargeRatio
}

// Size returns the seed set size for a graph with n nodes.
func (r SizeRule) Size(n int) (int, error) {
	k := int(math.Ceil(float64(n) * r.Ratio(n)))
	if k < 1 {
		return 0, fmt.Errorf("seed set for %d nodes with ratio %v is empty: %w", n, r.Ratio(n), pagerank.ErrInvalidSeedSet)
	}
	return min(k, n), nil
}

// Select returns the top rule.Size(len(ranks)) nodes of ranks.
func Select(ranks []float64, rule SizeRule) ([]int, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	k, err := rule.Size(len(ranks))
	if err != nil {
		return nil, err
	}
	return TopK(ranks, k)
}

// TopK returns the k nodes with the largest rank, ordered by descending rank
// and then by ascending id. ranks is not modified.
func TopK(ranks []float64, k int) ([]int, error) {
	if k < 1 || k > len(ranks) {
		return nil, fmt.Errorf("top %d of %d nodes: %w", k, len(ranks), ErrInvalidK)
	}

	h := make(rankHeap, 0, k)
	for v, r := range ranks {
		offer(&h, k, entry{id: v, rank: r})
	}
	return h.drain(), nil
}

// TopKOf is like TopK but only considers the candidate ids. Duplicate
// candidates are counted once.
func TopKOf(ranks []float64, candidates []int, k int) ([]int, error) {
	seen := make(map[int]struct{}, len(candidates))
	for _, v := range candidates {
		if v < 0 || v >= len(ranks) {
			return nil, fmt.Errorf("candidate %d outside [0, %d): %w", v, len(ranks), pagerank.ErrInvalidSeedSet)
		}
		seen[v] = struct{}{}
	}
	if k < 1 || k > len(seen) {
		return nil, fmt.Errorf("top %d of %d candidates: %w", k, len(seen), ErrInvalidK)
	}

	h := make(rankHeap, 0, k)
	for v := range seen {
		offer(&h, k, entry{id: v, rank: ranks[v]})
	}
	return h.drain(), nil
}

func offer(h *rankHeap, k int, e entry) {
	if h.Len() < k {
		heap.Push(h, e)
		return
	}
	if (*h)[0].less(e) {
		(*h)[0] = e
		heap.Fix(h, 0)
	}
}

type entry struct {
	id   int
	rank float64
}

// less orders entries from worst to best: lower rank first and, for equal
// ranks, higher id first.
func (e entry) less(other entry) bool {
	if e.rank != other.rank {
		return e.rank < other.rank
	}
	return e.id > other.id
}

// rankHeap is a min-heap holding the k best entries seen so far; its root is
// the worst of them.
type rankHeap []entry

func (h rankHeap) Len() int           { return len(h) }
func (h rankHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h rankHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *rankHeap) Push(x any)        { *h = append(*h, x.(entry)) }

func (h *rankHeap) Pop() any {
	old := *h
	e := old[len(old)-1]
	*h = old[:len(old)-1]
	return e
}

// drain empties the heap and returns ids from best to worst.
func (h *rankHeap) drain() []int {
	out := make([]int, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(entry).id
	}
	return out
}
