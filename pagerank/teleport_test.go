package pagerank_test

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/valkyraycho/surfrank/pagerank"

	"gopkg.in/check.v1"
)

var _ = check.Suite(new(TeleportTestSuite))

type TeleportTestSuite struct{}

func (s *TeleportTestSuite) TestUniform(c *check.C) {
	t := uniform(c, 4)

	c.Assert(t.IsUniform(), check.Equals, true)
	c.Assert(t.Len(), check.Equals, 4)
	c.Assert(t.Vector(), check.DeepEquals, []float64{0.25, 0.25, 0.25, 0.25})
	c.Assert(t.Support(), check.DeepEquals, []int{0, 1, 2, 3})
	c.Assert(t.Mass(4), check.Equals, 0.0)
}

func (s *TeleportTestSuite) TestSeededDeduplicatesAndSorts(c *check.C) {
	t := seeded(c, 6, 5, 1, 5, 3)

	c.Assert(t.IsUniform(), check.Equals, false)
	c.Assert(t.Support(), check.DeepEquals, []int{1, 3, 5})
	c.Assert(math.Abs(floats.Sum(t.Vector())-1) <= massTolerance, check.Equals, true)
	c.Assert(t.Mass(3), check.Equals, 1/3.0)
	c.Assert(t.Mass(2), check.Equals, 0.0)
	c.Assert(t.Vector()[0], check.Equals, 0.0)
}

func (s *TeleportTestSuite) TestSupportIsACopy(c *check.C) {
	t := seeded(c, 3, 0, 2)
	t.Support()[0] = 1
	c.Assert(t.Support(), check.DeepEquals, []int{0, 2})
}

func (s *TeleportTestSuite) TestInvalidSeedSets(c *check.C) {
	specs := []struct {
		descr string
		seeds []int
	}{
		{descr: "nil seeds", seeds: nil},
		{descr: "empty seeds", seeds: []int{}},
		{descr: "seed past the end", seeds: []int{0, 3}},
		{descr: "negative seed", seeds: []int{-1}},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		_, err := pagerank.NewSeededTeleport(3, spec.seeds)
		c.Assert(errors.Is(err, pagerank.ErrInvalidSeedSet), check.Equals, true, check.Commentf("got %v", err))
	}
}

func (s *TeleportTestSuite) TestInvalidNodeCount(c *check.C) {
	_, err := pagerank.NewUniformTeleport(0)
	c.Assert(errors.Is(err, pagerank.ErrInvalidTeleport), check.Equals, true)

	_, err = pagerank.NewSeededTeleport(0, []int{0})
	c.Assert(errors.Is(err, pagerank.ErrInvalidTeleport), check.Equals, true)
}
