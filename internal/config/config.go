// Package config provides configuration loading from environment variables
// and command-line flags.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"

	"github.com/maauso/audio2video/internal/media"
)

// Static errors for configuration validation.
var (
	// ErrInputDirRequired is returned when no input directory is configured.
	ErrInputDirRequired = errors.New("config: input directory is required")
	// ErrInvalidResolution is returned when RESOLUTION is not <width>x<height>.
	ErrInvalidResolution = errors.New("config: resolution must be <width>x<height> with positive integers")
	// ErrAudioExtRequired is returned when AUDIO_EXT is empty.
	ErrAudioExtRequired = errors.New("config: audio extension is required")
	// ErrFFmpegPathRequired is returned when FFMPEG_PATH is empty.
	ErrFFmpegPathRequired = errors.New("config: ffmpeg path is required")
	// ErrInvalidLogFormat is returned when LOG_FORMAT is neither text nor json.
	ErrInvalidLogFormat = errors.New("config: log format must be text or json")
	// ErrS3RegionRequired is returned when S3_BUCKET is set without S3_REGION.
	ErrS3RegionRequired = errors.New("config: S3_REGION is required when S3_BUCKET is set")
)

// Config holds all configuration for the application.
type Config struct {
	// Conversion settings
	InputDir   string `env:"INPUT_DIR, default=." json:"input_dir" validate:"required"`
	OutputDir  string `env:"OUTPUT_DIR" json:"output_dir,omitempty"` // Empty means InputDir
	Resolution string `env:"RESOLUTION, default=1280x720" json:"resolution" validate:"resolution"`
	AudioExt   string `env:"AUDIO_EXT, default=.mp3" json:"audio_ext" validate:"required"`
	FFmpegPath string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path" validate:"required"`

	// Console settings
	NoColor Presence `env:"NO_COLOR" json:"no_color"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty" validate:"required_with=S3Bucket"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3Prefix           string `env:"S3_PREFIX" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=text json"`
	LogLevel  string `env:"LOG_LEVEL, default=warn" json:"log_level"` // "debug", "info", "warn", "error"
}

// Presence is a boolean set by the mere presence of a non-empty
// environment value, following the NO_COLOR convention.
type Presence bool

// EnvDecode implements envconfig.Decoder.
func (p *Presence) EnvDecode(val string) error {
	*p = Presence(val != "")
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// BindFlags registers command-line flags for every setting. The current
// values of cfg become the flag defaults, so flags override the environment.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.InputDir, "input", "i", cfg.InputDir, "directory scanned for audio files")
	fs.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "directory for the generated videos (default: input directory)")
	fs.StringVarP(&cfg.Resolution, "resolution", "r", cfg.Resolution, "video resolution as <width>x<height>")
	fs.StringVar(&cfg.AudioExt, "ext", cfg.AudioExt, "audio file extension to convert, matched case-insensitively")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "path to the ffmpeg binary")
	fs.BoolVar((*bool)(&cfg.NoColor), "no-color", bool(cfg.NoColor), "disable colored output")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "upload converted videos to this S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "custom S3-compatible endpoint URL")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "key prefix for uploaded videos")
}

// ApplyArgs sets the input and output directories from positional arguments.
func (c *Config) ApplyArgs(args []string) {
	if len(args) > 0 {
		c.InputDir = args[0]
	}
	if len(args) > 1 {
		c.OutputDir = args[1]
	}
}

// Destination returns the output directory, falling back to the input
// directory.
func (c *Config) Destination() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return c.InputDir
}

// S3Enabled returns true if S3 publishing is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resolution", func(fl validator.FieldLevel) bool {
		return media.ValidateResolution(fl.Field().String()) == nil
	})
	return v
}

// Validate checks the configuration and maps the first violation to a
// static error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("config: %w", err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "InputDir":
		return ErrInputDirRequired
	case "Resolution":
		return fmt.Errorf("%w: got %q", ErrInvalidResolution, c.Resolution)
	case "AudioExt":
		return ErrAudioExtRequired
	case "FFmpegPath":
		return ErrFFmpegPathRequired
	case "LogFormat":
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.LogFormat)
	case "S3Region":
		return ErrS3RegionRequired
	default:
		return fmt.Errorf("config: invalid %s: %s", fe.Field(), fe.Tag())
	}
}

// NewLogger creates a structured logger based on the configuration.
// Logs go to stderr; stdout is reserved for the conversion report.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{InputDir: %s, OutputDir: %s, Resolution: %s, AudioExt: %s, FFmpegPath: %s, NoColor: %t, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, S3Prefix: %s, AWSAccessKeyID: %s, LogFormat: %s, LogLevel: %s}",
		c.InputDir,
		c.Destination(),
		c.Resolution,
		c.AudioExt,
		c.FFmpegPath,
		c.NoColor,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.S3Prefix,
		mask(c.AWSAccessKeyID),
		c.LogFormat,
		c.LogLevel,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
