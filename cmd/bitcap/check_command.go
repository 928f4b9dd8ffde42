package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/bitcap/internal/check"
	"github.com/backmassage/bitcap/internal/config"
	"github.com/backmassage/bitcap/internal/logging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [folder]",
		Short: "Verify ffmpeg, ffprobe, the configured encoders, and optionally a folder",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) > 0 {
				folder = args[0]
			}
			cfg, err := ctx.loadConfig(folder)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			logConfig(log, cfg)
			if !check.RunCheck(cfg, log) {
				return errSilentExit
			}
			return nil
		},
	}
}

func logConfig(log *logging.Logger, cfg *config.Config) {
	th := cfg.Thresholds
	log.Info("Preset: %s (threshold %d kbps, target %d kbps, audio ceiling %d kbps, audio target %d kbps)",
		cfg.Preset, th.VideoBitrateThresholdKbps, th.TargetVideoBitrateKbps,
		th.AudioCopyCeilingKbps, th.TargetAudioBitrateKbps)
	log.Debug("Extensions: %v", cfg.Extensions)
}
