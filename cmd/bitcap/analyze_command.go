package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/bitcap/internal/pipeline"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [folder]",
		Short: "Probe every candidate and show what a run would do",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.setup(args)
			if err != nil {
				return err
			}
			defer log.Close()
			return pipeline.Analyze(cmd.Context(), cfg, log)
		},
	}
}
