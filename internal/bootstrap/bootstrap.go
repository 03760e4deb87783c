// Package bootstrap provides dependency initialization for audio2video.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/maauso/audio2video/internal/config"
	"github.com/maauso/audio2video/internal/console"
	"github.com/maauso/audio2video/internal/job"
	"github.com/maauso/audio2video/internal/media"
	"github.com/maauso/audio2video/internal/storage"
)

// Dependencies holds all initialized dependencies for a conversion run.
type Dependencies struct {
	Converter *job.Converter
	Printer   *console.Printer
	// FFmpegPath is the resolved path of the encoder binary, or the
	// configured one when it could not be resolved.
	FFmpegPath string
	// Publishing is true when converted files are uploaded to S3.
	Publishing bool
}

// NewDependencies creates and initializes all dependencies for the application.
// Console output goes to stdout; failure diagnostics go to stderr.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) (*Dependencies, error) {
	// A missing encoder is not fatal: each job then fails on its own and
	// an empty input directory still completes.
	ffmpegPath, err := media.CheckAvailable(cfg.FFmpegPath)
	if err != nil {
		logger.Warn("ffmpeg not found, every conversion will fail",
			slog.String("ffmpeg_path", cfg.FFmpegPath),
			slog.String("error", err.Error()),
		)
		ffmpegPath = cfg.FFmpegPath
	} else {
		logger.Debug("ffmpeg resolved", slog.String("path", ffmpegPath))
	}

	runner := media.NewFFmpegRunner(ffmpegPath)
	printer := console.NewPrinter(stdout, stderr, !bool(cfg.NoColor) && console.ShouldColorize(stdout))

	opts := []job.Option{
		job.WithSourceExt(cfg.AudioExt),
		job.WithProgress(printer),
	}

	publisher, err := initPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		opts = append(opts, job.WithPublisher(publisher, cfg.S3Prefix))
	}

	return &Dependencies{
		Converter:  job.NewConverter(runner, logger, opts...),
		Printer:    printer,
		FFmpegPath: ffmpegPath,
		Publishing: publisher != nil,
	}, nil
}

// initPublisher creates the S3 publisher when S3 is configured.
// It returns nil when publishing is off.
func initPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Publisher, error) {
	if !cfg.S3Enabled() {
		return nil, nil
	}

	s3Cfg := storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	}
	publisher, err := storage.NewS3Publisher(ctx, s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("create S3 publisher: %w", err)
	}
	logger.Info("S3 publishing configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
		slog.String("prefix", cfg.S3Prefix),
	)
	return publisher, nil
}
