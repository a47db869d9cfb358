package ranking

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/valkyraycho/surfrank/pagerank"
	"github.com/valkyraycho/surfrank/seed"
)

// ErrInvalidConfig is matched by every error returned by NewDriver for an
// invalid configuration.
var ErrInvalidConfig = errors.New("invalid ranking config")

// Config encapsulates the settings for a ranking run.
type Config struct {
	// Solver configures every power-iteration solve of the run. Its
	// Logger is replaced with Logger when unset.
	Solver pagerank.Config

	// Seeds sizes the trust seed set picked from the base ranking.
	Seeds seed.SizeRule

	// TopicSeeds, when set, restricts each topic's teleport set to the
	// best TopicSeeds.Size(|group|) group members by base rank. When nil
	// the whole group is used.
	TopicSeeds *seed.SizeRule

	// The number of topic solves that run concurrently. Defaults to 1.
	TopicWorkers int

	// Logger receives stage progress. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a config with pagerank.DefaultConfig as the solver
// and the seed sizing rule (100, 0.1, 0.01).
func DefaultConfig() Config {
	return Config{
		Solver:       pagerank.DefaultConfig(),
		Seeds:        seed.SizeRule{Threshold: 100, SmallRatio: 0.1, LargeRatio: 0.01},
		TopicWorkers: 1,
		Logger:       zap.NewNop(),
	}
}

func (c *Config) validate() error {
	var err error
	if rErr := c.Seeds.Validate(); rErr != nil {
		err = multierror.Append(err, fmt.Errorf("Seeds: %w", rErr))
	}
	if c.TopicSeeds != nil {
		if rErr := c.TopicSeeds.Validate(); rErr != nil {
			err = multierror.Append(err, fmt.Errorf("TopicSeeds: %w", rErr))
		}
	}
	if c.TopicWorkers < 0 {
		err = multierror.Append(err, fmt.Errorf("TopicWorkers must be >= 0; got %d", c.TopicWorkers))
	}
	if err != nil {
		return err
	}

	if c.TopicWorkers == 0 {
		c.TopicWorkers = 1
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Solver.Logger == nil {
		c.Solver.Logger = c.Logger
	}
	return nil
}
