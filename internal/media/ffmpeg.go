package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes encoder invocations.
type Runner interface {
	// Run executes inv and blocks until the encoder exits.
	// A non-zero exit is reported as *FFmpegError.
	Run(ctx context.Context, inv Invocation) error
}

// Compile-time check that FFmpegRunner implements Runner.
var _ Runner = (*FFmpegRunner)(nil)

// FFmpegRunner implements Runner using the ffmpeg CLI.
type FFmpegRunner struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegRunner creates a new FFmpegRunner.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegRunner(ffmpegPath string) *FFmpegRunner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegRunner{ffmpegPath: ffmpegPath}
}

// Run executes ffmpeg for inv and returns an error containing stderr
// output if the command fails.
func (r *FFmpegRunner) Run(ctx context.Context, inv Invocation) error {
	args := inv.Args()

	// #nosec G204 - ffmpegPath is set by the operator, args are built from Invocation
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	// Check if context was cancelled
	if ctx.Err() != nil {
		return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	// ffmpeg never ran (binary missing, not executable, ...)
	return fmt.Errorf("start ffmpeg: %w", err)
}

// CheckAvailable resolves the ffmpeg binary and returns its full path.
func CheckAvailable(ffmpegPath string) (string, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	resolved, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found (%s): %w", ffmpegPath, err)
	}
	return resolved, nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the trimmed stderr output, or the underlying error
// text when ffmpeg wrote nothing.
func (e *FFmpegError) Diagnostic() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}
