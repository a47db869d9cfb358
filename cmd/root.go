package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valkyraycho/surfrank/config"
)

var rootCmd = &cobra.Command{
	Use:   "surfrank",
	Short: "Random-surfer ranking for link graphs",
	Long: "Surfrank computes PageRank, TrustRank and topic-specific rankings for a directed graph " +
		"read from an edge list.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .surfrank.yaml)")
	flags.String("edges", "", "edge list file, one \"<src><delim><dst>\" record per line")
	flags.Int("nodes", 0, "number of nodes; ids must lie in [0, nodes)")
	flags.String("delimiter", "\t", "field delimiter of the edge list")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-development", false, "human friendly log output")
}

// rootFlagKeys maps viper keys to the persistent flags that set them.
var rootFlagKeys = map[string]string{
	"edges":           "edges",
	"nodes":           "nodes",
	"delimiter":       "delimiter",
	"log.level":       "log-level",
	"log.development": "log-development",
}

func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".surfrank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	bindFlags(rootCmd.PersistentFlags(), rootFlagKeys)
	bindFlags(rankCmd.Flags(), rankFlagKeys)
	config.BindEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
