package pagerank

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// ErrInvalidConfig is matched by every error returned by NewCalculator for
// an invalid configuration.
var ErrInvalidConfig = errors.New("invalid pagerank config")

// Backend selects how the edge-following part of each iteration is
// evaluated. All backends produce the same ranking.
type Backend string

const (
	// AdjacencyBackend scatters rank along successor lists without
	// materializing a matrix.
	AdjacencyBackend Backend = "adjacency"

	// MatrixBackend precomputes the transposed transition matrix in CSR
	// form and multiplies it with the rank vector on every iteration.
	MatrixBackend Backend = "matrix"
)

// Config encapsulates the required parameters for creating a new rank
// calculator instance.
type Config struct {
	// DampingFactor is the probability that the random surfer follows one
	// of the outgoing links of the node they are currently visiting instead
	// of teleporting. Must lie in (0, 1).
	DampingFactor float64

	// At each iteration the calculator tracks the sum of absolute
	// differences (SAD) between the previous and the new rank vector. The
	// algorithm stops once the SAD is less than or equal to
	// MinSADForConvergence. Must be > 0.
	MinSADForConvergence float64

	// MaxIterations caps the number of iterations regardless of
	// convergence. Must be >= 1.
	MaxIterations int

	// The number of workers that scatter rank along edges in parallel when
	// using the adjacency backend. If not specified, a default value of 1
	// will be used instead. Results are reproducible for a fixed worker
	// count.
	ComputeWorkers int

	// Backend defaults to AdjacencyBackend.
	Backend Backend

	// Logger receives per-iteration debug output. Defaults to a no-op
	// logger.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used by the reference driver:
// damping 0.85, convergence threshold 1e-6 and at most 100 iterations.
func DefaultConfig() Config {
	return Config{
		DampingFactor:        0.85,
		MinSADForConvergence: 1e-6,
		MaxIterations:        100,
		ComputeWorkers:       1,
		Backend:              AdjacencyBackend,
		Logger:               zap.NewNop(),
	}
}

// validate checks whether the calculator configuration is valid and sets the
// default values where required.
func (c *Config) validate() error {
	var err error
	if c.DampingFactor <= 0 || c.DampingFactor >= 1.0 {
		err = multierror.Append(err, fmt.Errorf("DampingFactor must be in the range (0, 1); got %v", c.DampingFactor))
	}

	if c.MinSADForConvergence <= 0 {
		err = multierror.Append(err, fmt.Errorf("MinSADForConvergence must be > 0; got %v", c.MinSADForConvergence))
	}

	if c.MaxIterations < 1 {
		err = multierror.Append(err, fmt.Errorf("MaxIterations must be >= 1; got %d", c.MaxIterations))
	}

	switch c.Backend {
	case "":
		c.Backend = AdjacencyBackend
	case AdjacencyBackend, MatrixBackend:
	default:
		err = multierror.Append(err, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return err
}
