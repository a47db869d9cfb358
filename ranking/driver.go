// Package ranking runs the full ranking workflow over a link graph: a base
// ranking, a trust ranking seeded with the best base-ranked nodes and one
// topic-specific ranking per topic group.
package ranking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
	"github.com/valkyraycho/surfrank/pagerank"
	"github.com/valkyraycho/surfrank/seed"
	"github.com/valkyraycho/surfrank/topic"
)

// Report collects the results of a ranking run.
type Report struct {
	RunID uuid.UUID

	// Base is the ranking under uniform teleport.
	Base *pagerank.Result

	// Seeds are the trust seeds picked from Base, best first.
	Seeds []int

	// Trust is the ranking under teleport restricted to Seeds.
	Trust *pagerank.Result

	// Topics holds one entry per topic group in partition order.
	Topics []TopicResult
}

// TopicResult is the ranking biased towards a single topic group.
type TopicResult struct {
	Topic  string
	Seeds  []int
	Result *pagerank.Result
}

// Unconverged returns the names of the solves that stopped at the
// iteration cap.
func (r *Report) Unconverged() []string {
	var out []string
	if r.Base != nil && !r.Base.Converged {
		out = append(out, "base")
	}
	if r.Trust != nil && !r.Trust.Converged {
		out = append(out, "trust")
	}
	for _, t := range r.Topics {
		if !t.Result.Converged {
			out = append(out, "topic:"+t.Topic)
		}
	}
	return out
}

// Driver orchestrates the solves of a ranking run. A Driver may be reused
// for several graphs.
type Driver struct {
	cfg  Config
	calc *pagerank.Calculator
}

// NewDriver validates cfg and returns a driver that uses it.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	calc, err := pagerank.NewCalculator(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Driver{cfg: cfg, calc: calc}, nil
}

// Run ranks g. If partitioner is nil no topic rankings are computed.
func (d *Driver) Run(ctx context.Context, g graph.Graph, partitioner topic.Partitioner) (*Report, error) {
	rep := &Report{RunID: uuid.New()}
	logger := d.cfg.Logger.With(zap.Stringer("run_id", rep.RunID))
	logger.Info("starting ranking run", zap.Int("nodes", g.NodeCount()))

	uniform, err := pagerank.NewUniformTeleport(g.NodeCount())
	if err != nil {
		return nil, err
	}
	if rep.Base, err = d.solve(ctx, logger, "base", g, uniform); err != nil {
		return nil, err
	}

	if rep.Seeds, err = seed.Select(rep.Base.Ranks, d.cfg.Seeds); err != nil {
		return nil, fmt.Errorf("select trust seeds: %w", err)
	}
	logger.Info("selected trust seeds", zap.Int("count", len(rep.Seeds)))

	trust, err := pagerank.NewSeededTeleport(g.NodeCount(), rep.Seeds)
	if err != nil {
		return nil, err
	}
	if rep.Trust, err = d.solve(ctx, logger, "trust", g, trust); err != nil {
		return nil, err
	}

	if partitioner != nil {
		groups, err := partitioner.Partition(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("partition topics: %w", err)
		}
		if rep.Topics, err = d.rankTopics(ctx, logger, g, rep.Base.Ranks, groups); err != nil {
			return nil, err
		}
	}
	logger.Info("ranking run finished", zap.Int("topics", len(rep.Topics)))
	return rep, nil
}

func (d *Driver) solve(ctx context.Context, logger *zap.Logger, name string, g graph.Graph, t *pagerank.Teleport) (*pagerank.Result, error) {
	res, err := d.calc.Solve(ctx, g, t)
	if err != nil {
		return nil, fmt.Errorf("%s ranking: %w", name, err)
	}

	fields := []zap.Field{
		zap.String("ranking", name),
		zap.Int("iterations", res.Iterations),
		zap.Float64("delta", res.Delta),
	}
	if !res.Converged {
		logger.Warn("ranking did not converge", fields...)
	} else {
		logger.Info("ranking converged", fields...)
	}
	return res, nil
}
