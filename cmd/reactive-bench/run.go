package main

import (
	"fmt"

	"github.com/AnatoleLucet/reactive"
	"github.com/AnatoleLucet/reactive/internal/bench"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one bench and print its stats",
		Example: `  reactive-bench run --scenario diamond --size 50 --writes 10000
  reactive-bench run -c bench.yaml --sync`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			rt := reactive.NewRuntime(append(bench.Options(cfg), reactive.WithLogger(logger))...)

			stats, err := bench.Run(cmd.Context(), rt, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
