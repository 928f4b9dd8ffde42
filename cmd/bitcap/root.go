package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/bitcap/internal/check"
	"github.com/backmassage/bitcap/internal/display"
	"github.com/backmassage/bitcap/internal/pipeline"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{in: os.Stdin, out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:   "bitcap [folder]",
		Short: "Move or re-encode videos so none exceeds the bitrate cap",
		Long: `bitcap processes the video files directly inside a folder, one at a time.
Files whose video bitrate is already below the threshold are moved unchanged
into <folder>/compressed. All others are re-encoded there with ffmpeg and the
original is deleted once the encode succeeds. Files whose output already
exists are skipped, so an interrupted run can simply be started again.`,
		Version:       version + " (" + commit + ")",
		Args:          maxArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), ctx, args)
		},
	}
	ctx.flags = configFlags(rootCmd)

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	return rootCmd
}

func runBatch(cmdCtx context.Context, ctx *commandContext, args []string) error {
	cfg, log, err := ctx.setup(args)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(log.Writer())

	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		log.Error("Run 'bitcap check' for details")
		return errSilentExit
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-signalCtx.Done():
			if cmdCtx.Err() == nil {
				log.Warn("Interrupt received; stopping after the current file")
			}
		case <-done:
		}
	}()

	var failed bool
	if cfg.Watch {
		failed, err = pipeline.Watch(signalCtx, cfg, log)
	} else {
		var stats pipeline.RunStats
		stats, err = pipeline.Run(signalCtx, cfg, log)
		failed = stats.HasFailures()
	}
	if err != nil {
		log.Error("%v", err)
		return errSilentExit
	}
	if failed {
		return errSilentExit
	}
	return nil
}
