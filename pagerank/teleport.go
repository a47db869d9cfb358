package pagerank

import (
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidSeedSet is returned when a seeded teleport is requested
	// for an empty seed set or for seeds outside [0, N).
	ErrInvalidSeedSet = errors.New("invalid seed set")

	// ErrInvalidTeleport is returned when a teleport distribution is
	// requested for fewer than one node.
	ErrInvalidTeleport = errors.New("invalid teleport distribution")
)

// Teleport is the probability distribution the random surfer jumps
// according to when it does not follow an edge. It is either uniform over
// all N nodes or uniform over a seed set and zero elsewhere.
//
// Teleport values are immutable and can be shared between solves.
type Teleport struct {
	n       int
	support []int // nil for uniform
	weight  float64
}

// NewUniformTeleport returns a distribution with mass 1/n at every node.
func NewUniformTeleport(n int) (*Teleport, error) {
	if n < 1 {
		return nil, fmt.Errorf("uniform teleport over %d nodes: %w", n, ErrInvalidTeleport)
	}
	return &Teleport{n: n, weight: 1 / float64(n)}, nil
}

// NewSeededTeleport returns a distribution with mass 1/|S| at each node of
// the seed set S, where S is seeds with duplicates removed.
func NewSeededTeleport(n int, seeds []int) (*Teleport, error) {
	if n < 1 {
		return nil, fmt.Errorf("seeded teleport over %d nodes: %w", n, ErrInvalidTeleport)
	}

	set := mapset.NewThreadUnsafeSet[int]()
	for _, v := range seeds {
		if v < 0 || v >= n {
			return nil, fmt.Errorf("seed %d outside [0, %d): %w", v, n, ErrInvalidSeedSet)
		}
		set.Add(v)
	}
	if set.Cardinality() == 0 {
		return nil, fmt.Errorf("empty seed set: %w", ErrInvalidSeedSet)
	}

	support := set.ToSlice()
	slices.Sort(support)
	return &Teleport{n: n, support: support, weight: 1 / float64(len(support))}, nil
}

// Len returns the number of nodes the distribution is defined over.
func (t *Teleport) Len() int { return t.n }

// IsUniform reports whether every node receives teleport mass.
func (t *Teleport) IsUniform() bool { return t.support == nil }

// Support returns the ascending ids with non-zero mass.
func (t *Teleport) Support() []int {
	if t.IsUniform() {
		all := make([]int, t.n)
		for v := range all {
			all[v] = v
		}
		return all
	}
	return slices.Clone(t.support)
}

// Mass returns the teleport probability of node v.
func (t *Teleport) Mass(v int) float64 {
	if v < 0 || v >= t.n {
		return 0
	}
	if t.IsUniform() {
		return t.weight
	}
	if _, found := slices.BinarySearch(t.support, v); found {
		return t.weight
	}
	return 0
}

// Vector returns the distribution as a freshly allocated dense vector.
func (t *Teleport) Vector() []float64 {
	vec := make([]float64, t.n)
	t.inject(vec, 1)
	return vec
}

// inject adds mass*t[v] to dst[v] for every v in the support, re-adding
// exactly mass in total.
func (t *Teleport) inject(dst []float64, mass float64) {
	share := mass * t.weight
	if t.IsUniform() {
		floats.AddConst(share, dst)
		return
	}
	for _, v := range t.support {
		dst[v] += share
	}
}
