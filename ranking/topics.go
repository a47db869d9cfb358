package ranking

import (
	"context"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
	"github.com/valkyraycho/surfrank/pagerank"
	"github.com/valkyraycho/surfrank/pipeline"
	"github.com/valkyraycho/surfrank/seed"
	"github.com/valkyraycho/surfrank/topic"
)

type topicPayload struct {
	index int
	group topic.Group

	seeds  []int
	result *pagerank.Result
	done   bool
}

func (p *topicPayload) MarkAsProcessed() { p.done = true }

type topicRanker struct {
	d        *Driver
	logger   *zap.Logger
	g        graph.Graph
	baseRank []float64
}

func (r *topicRanker) Process(ctx context.Context, p *topicPayload) (*topicPayload, bool, error) {
	seeds, err := r.topicSeeds(p.group)
	if err != nil {
		return nil, false, fmt.Errorf("topic %q: %w", p.group.Name, err)
	}

	t, err := pagerank.NewSeededTeleport(r.g.NodeCount(), seeds)
	if err != nil {
		return nil, false, fmt.Errorf("topic %q: %w", p.group.Name, err)
	}
	res, err := r.d.solve(ctx, r.logger, "topic:"+p.group.Name, r.g, t)
	if err != nil {
		return nil, false, err
	}

	p.seeds, p.result = seeds, res
	return p, true, nil
}

func (r *topicRanker) topicSeeds(grp topic.Group) ([]int, error) {
	members := mapset.NewThreadUnsafeSet(grp.Nodes...).ToSlice()
	slices.Sort(members)
	if r.d.cfg.TopicSeeds == nil {
		return members, nil
	}

	k, err := r.d.cfg.TopicSeeds.Size(len(members))
	if err != nil {
		return nil, err
	}
	return seed.TopKOf(r.baseRank, members, k)
}

// rankTopics runs one seeded solve per group through a worker pool and
// returns the results in group order.
func (d *Driver) rankTopics(ctx context.Context, logger *zap.Logger, g graph.Graph, baseRank []float64, groups []topic.Group) ([]TopicResult, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	logger.Info("ranking topics", zap.Int("topics", len(groups)), zap.Int("workers", d.cfg.TopicWorkers))

	payloads := make([]*topicPayload, len(groups))
	for i, grp := range groups {
		payloads[i] = &topicPayload{index: i, group: grp}
	}

	out := make([]TopicResult, len(groups))
	sink := pipeline.SinkFunc[*topicPayload](func(_ context.Context, p *topicPayload) error {
		out[p.index] = TopicResult{Topic: p.group.Name, Seeds: p.seeds, Result: p.result}
		return nil
	})

	ranker := &topicRanker{d: d, logger: logger, g: g, baseRank: baseRank}
	pl := pipeline.New(pipeline.FixedWorkerPool[*topicPayload](ranker, d.cfg.TopicWorkers))
	if err := pl.Process(ctx, pipeline.NewSliceSource(payloads), sink); err != nil {
		return nil, fmt.Errorf("topic rankings: %w", err)
	}

	// A cancelled context stops the pipeline without an error.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("topic rankings: %w", err)
	}
	for _, p := range payloads {
		if !p.done {
			return nil, fmt.Errorf("topic %q was not ranked", p.group.Name)
		}
	}
	return out, nil
}
