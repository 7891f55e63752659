package main

import (
	"fmt"
	"os"

	"github.com/AnatoleLucet/reactive/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactive-bench",
		Short: "Measure how writes propagate through reactive dependency graphs",
		Long: `reactive-bench builds synthetic dependency graphs (chain, fanout,
diamond) on a reactive runtime, writes to their source and reports how
many watchers ran and how long each flush took.

Run a single bench with "run", or keep a runtime alive behind an HTTP
API exposing its Prometheus metrics with "serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// configFlags are the flags shared by run and serve.
type configFlags struct {
	path     string
	scenario string
	size     int
	writes   int
	sync     bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "config", "c", "", "Config file (yaml, json or toml)")
	cmd.Flags().StringVar(&f.scenario, "scenario", "", "Graph shape: chain, fanout or diamond")
	cmd.Flags().IntVar(&f.size, "size", 0, "Number of nodes in the graph")
	cmd.Flags().IntVar(&f.writes, "writes", 0, "Number of writes to the source")
	cmd.Flags().BoolVar(&f.sync, "sync", false, "Flush synchronously on every write")
}

// load reads the config file, if any, and applies the flags that were set.
func (f *configFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.path != "" {
		var err error
		if cfg, err = config.Load(f.path); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("scenario") {
		cfg.Scenario = f.scenario
	}
	if flags.Changed("size") {
		cfg.Size = f.size
	}
	if flags.Changed("writes") {
		cfg.Writes = f.writes
	}
	if flags.Changed("sync") {
		cfg.Sync = f.sync
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
