package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maauso/audio2video/internal/bootstrap"
	"github.com/maauso/audio2video/internal/config"
	"github.com/maauso/audio2video/internal/job"
)

func newRootCommand() *cobra.Command {
	// Environment first; flags bound below override it.
	cfg, loadErr := config.Load()
	if loadErr != nil {
		cfg = &config.Config{}
	}

	cmd := &cobra.Command{
		Use:   "audio2video [input-dir [output-dir]]",
		Short: "Convert audio files into black-screen MP4 videos",
		Long: `audio2video scans a directory for audio files (.mp3 by default, matched
case-insensitively) and converts each one into an MP4 with a black 1 fps
video track and the original audio, by running ffmpeg once per file.

A failed file is reported and the batch continues. The exit status is 0
once the batch completes, even when some files failed.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return fmt.Errorf("load config: %w", loadErr)
			}
			cfg.ApplyArgs(args)
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	config.BindFlags(cmd.Flags(), cfg)
	return cmd
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger, stdout, stderr)
	if err != nil {
		return err
	}

	report, err := deps.Converter.Run(ctx, job.Request{
		InputDir:   cfg.InputDir,
		OutputDir:  cfg.Destination(),
		Resolution: cfg.Resolution,
	})
	if err != nil {
		return err
	}

	// Failed files are part of a completed batch, not a command error.
	if report.FailedCount() > 0 {
		logger.Warn("some files failed",
			slog.String("run_id", report.RunID),
			slog.Int("failed", report.FailedCount()),
		)
	}
	return nil
}
