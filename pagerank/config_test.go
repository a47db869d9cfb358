package pagerank_test

import (
	"errors"

	"github.com/valkyraycho/surfrank/pagerank"

	"gopkg.in/check.v1"
)

var _ = check.Suite(new(ConfigTestSuite))

type ConfigTestSuite struct{}

func (s *ConfigTestSuite) TestInvalidConfigs(c *check.C) {
	specs := []struct {
		descr  string
		mutate func(*pagerank.Config)
		match  string
	}{
		{descr: "zero damping", mutate: func(cfg *pagerank.Config) { cfg.DampingFactor = 0 }, match: "(?s).*DampingFactor.*"},
		{descr: "damping of one", mutate: func(cfg *pagerank.Config) { cfg.DampingFactor = 1 }, match: "(?s).*DampingFactor.*"},
		{descr: "negative damping", mutate: func(cfg *pagerank.Config) { cfg.DampingFactor = -0.5 }, match: "(?s).*DampingFactor.*"},
		{descr: "zero epsilon", mutate: func(cfg *pagerank.Config) { cfg.MinSADForConvergence = 0 }, match: "(?s).*MinSADForConvergence.*"},
		{descr: "negative epsilon", mutate: func(cfg *pagerank.Config) { cfg.MinSADForConvergence = -1e-6 }, match: "(?s).*MinSADForConvergence.*"},
		{descr: "zero iterations", mutate: func(cfg *pagerank.Config) { cfg.MaxIterations = 0 }, match: "(?s).*MaxIterations.*"},
		{descr: "unknown backend", mutate: func(cfg *pagerank.Config) { cfg.Backend = "gpu" }, match: "(?s).*unknown backend.*"},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		cfg := pagerank.DefaultConfig()
		spec.mutate(&cfg)

		_, err := pagerank.NewCalculator(cfg)
		c.Assert(errors.Is(err, pagerank.ErrInvalidConfig), check.Equals, true, check.Commentf("got %v", err))
		c.Assert(err, check.ErrorMatches, spec.match)
	}
}

func (s *ConfigTestSuite) TestAllViolationsReported(c *check.C) {
	_, err := pagerank.NewCalculator(pagerank.Config{})
	c.Assert(err, check.ErrorMatches, "(?s).*DampingFactor.*MinSADForConvergence.*MaxIterations.*")
}

func (s *ConfigTestSuite) TestDefaultsApplied(c *check.C) {
	cfg := pagerank.DefaultConfig()
	cfg.ComputeWorkers = 0
	cfg.Backend = ""
	cfg.Logger = nil

	calc, err := pagerank.NewCalculator(cfg)
	c.Assert(err, check.IsNil)
	c.Assert(calc.Config().ComputeWorkers, check.Equals, 1)
	c.Assert(calc.Config().Backend, check.Equals, pagerank.AdjacencyBackend)
	c.Assert(calc.Config().Logger, check.NotNil)
}
