// Package config loads the settings of the surfrank command line tool from
// viper, which merges flags, SURFRANK_* environment variables and an
// optional .surfrank.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/valkyraycho/surfrank/pagerank"
	"github.com/valkyraycho/surfrank/ranking"
	"github.com/valkyraycho/surfrank/seed"
)

// EnvPrefix is prepended to every environment variable consulted by Load.
// Nested keys use underscores, e.g. SURFRANK_SEEDS_THRESHOLD.
const EnvPrefix = "SURFRANK"

// ErrInvalid is matched by every error returned by Config.Validate.
var ErrInvalid = errors.New("invalid configuration")

// SeedsConfig sizes a seed set; see seed.SizeRule.
type SeedsConfig struct {
	Threshold  int     `mapstructure:"threshold"`
	SmallRatio float64 `mapstructure:"small_ratio"`
	LargeRatio float64 `mapstructure:"large_ratio"`
}

// Rule converts c to a seed.SizeRule.
func (c SeedsConfig) Rule() seed.SizeRule {
	return seed.SizeRule{Threshold: c.Threshold, SmallRatio: c.SmallRatio, LargeRatio: c.LargeRatio}
}

// TopicsConfig controls topic-specific rankings. When both ratios are zero
// every member of a topic group is a seed.
type TopicsConfig struct {
	File        string `mapstructure:"file"`
	Workers     int    `mapstructure:"workers"`
	SeedsConfig `mapstructure:",squash"`
}

// LogConfig selects the zap logger built by Logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config holds all runtime configuration for a ranking run.
type Config struct {
	Edges         string       `mapstructure:"edges"`
	Nodes         int          `mapstructure:"nodes"`
	Delimiter     string       `mapstructure:"delimiter"`
	Beta          float64      `mapstructure:"beta"`
	Epsilon       float64      `mapstructure:"epsilon"`
	MaxIterations int          `mapstructure:"max_iterations"`
	Workers       int          `mapstructure:"workers"`
	Backend       string       `mapstructure:"backend"`
	Seeds         SeedsConfig  `mapstructure:"seeds"`
	Topics        TopicsConfig `mapstructure:"topics"`
	Top           int          `mapstructure:"top"`
	Log           LogConfig    `mapstructure:"log"`
}

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	def := pagerank.DefaultConfig()
	viper.SetDefault("edges", "")
	viper.SetDefault("nodes", 0)
	viper.SetDefault("delimiter", "\t")
	viper.SetDefault("beta", def.DampingFactor)
	viper.SetDefault("epsilon", def.MinSADForConvergence)
	viper.SetDefault("max_iterations", def.MaxIterations)
	viper.SetDefault("workers", def.ComputeWorkers)
	viper.SetDefault("backend", string(def.Backend))
	viper.SetDefault("seeds.threshold", 100)
	viper.SetDefault("seeds.small_ratio", 0.1)
	viper.SetDefault("seeds.large_ratio", 0.01)
	viper.SetDefault("topics.file", "")
	viper.SetDefault("topics.workers", 1)
	viper.SetDefault("topics.threshold", 100)
	viper.SetDefault("topics.small_ratio", 0.0)
	viper.SetDefault("topics.large_ratio", 0.0)
	viper.SetDefault("top", 10)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
}

// BindEnv makes viper consult SURFRANK_* environment variables.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every setting that cannot be used for a ranking run.
// Solver and seed parameters are checked by ranking.NewDriver.
func (c Config) Validate() error {
	var err error
	if c.Edges == "" {
		err = multierror.Append(err, errors.New("edges: an edge list file is required"))
	}
	if c.Nodes < 1 {
		err = multierror.Append(err, fmt.Errorf("nodes must be >= 1; got %d", c.Nodes))
	}
	if c.Delimiter == "" {
		err = multierror.Append(err, errors.New("delimiter must not be empty"))
	}
	if c.Top < 0 {
		err = multierror.Append(err, fmt.Errorf("top must be >= 0; got %d", c.Top))
	}
	if _, lErr := zap.ParseAtomicLevel(c.Log.Level); lErr != nil {
		err = multierror.Append(err, fmt.Errorf("log.level: %w", lErr))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Ranking converts c into a driver configuration that logs to logger.
func (c Config) Ranking(logger *zap.Logger) ranking.Config {
	cfg := ranking.Config{
		Solver: pagerank.Config{
			DampingFactor:        c.Beta,
			MinSADForConvergence: c.Epsilon,
			MaxIterations:        c.MaxIterations,
			ComputeWorkers:       c.Workers,
			Backend:              pagerank.Backend(c.Backend),
			Logger:               logger,
		},
		Seeds:        c.Seeds.Rule(),
		TopicWorkers: c.Topics.Workers,
		Logger:       logger,
	}
	if c.Topics.SmallRatio != 0 || c.Topics.LargeRatio != 0 {
		rule := c.Topics.Rule()
		cfg.TopicSeeds = &rule
	}
	return cfg
}

// Logger builds a production or development zap logger at the configured
// level.
func (c LogConfig) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
