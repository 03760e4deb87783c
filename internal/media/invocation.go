// Package media describes and runs external encoder invocations.
package media

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Fixed encoding parameters for the black-video output.
const (
	// DefaultResolution is used when no resolution is configured.
	DefaultResolution = "1280x720"
	// BlackFieldColor is the colour of the synthetic video source.
	BlackFieldColor = "black"
	// BlackFieldRate is the frame rate of the synthetic video source.
	// ffmpeg needs a frame-rate-bearing input, so this is a near-static stream
	// rather than a still image.
	BlackFieldRate = 1

	VideoCodecH264  = "libx264"
	AudioCodecAAC   = "aac"
	PixelFormat420P = "yuv420p"
)

// ErrInvalidResolution is returned when a resolution is not of the form <width>x<height>.
var ErrInvalidResolution = errors.New("invalid resolution: must be <width>x<height> with positive integers")

var resolutionPattern = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)

// ValidateResolution checks that res has the form <width>x<height>.
func ValidateResolution(res string) error {
	if !resolutionPattern.MatchString(res) {
		return fmt.Errorf("%w: got %q", ErrInvalidResolution, res)
	}
	return nil
}

// Source is one encoder input. Format is passed as -f when set
// (e.g. "lavfi" for generated sources); Input is the -i argument.
type Source struct {
	Format string
	Input  string
}

// BlackField returns a generated solid black video source at the given resolution.
// The resolution string is embedded unmodified.
func BlackField(resolution string) Source {
	return Source{
		Format: "lavfi",
		Input:  fmt.Sprintf("color=c=%s:s=%s:r=%d", BlackFieldColor, resolution, BlackFieldRate),
	}
}

// File returns a source reading from a file on disk.
func File(path string) Source {
	return Source{Input: path}
}

// Invocation is the complete description of one encoder run.
// It is a plain value: build it with NewStillVideo or a literal and pass it to a Runner.
type Invocation struct {
	Video       Source
	Audio       Source
	VideoCodec  string
	AudioCodec  string
	PixelFormat string
	// Shortest truncates the output to the shortest input stream (the audio,
	// since the generated video never ends).
	Shortest bool
	// Overwrite replaces an existing output file without asking.
	Overwrite bool
	Output    string
}

// NewStillVideo returns the invocation that muxes audioPath with a black
// video track of the given resolution into output.
func NewStillVideo(audioPath, output, resolution string) Invocation {
	return Invocation{
		Video:       BlackField(resolution),
		Audio:       File(audioPath),
		VideoCodec:  VideoCodecH264,
		AudioCodec:  AudioCodecAAC,
		PixelFormat: PixelFormat420P,
		Shortest:    true,
		Overwrite:   true,
		Output:      output,
	}
}

// Args renders the ffmpeg command line (without the binary name).
func (inv Invocation) Args() []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error", // stderr carries only the diagnostic
	}
	if inv.Overwrite {
		args = append(args, "-y")
	}
	args = appendInput(args, inv.Video)
	args = appendInput(args, inv.Audio)

	// Map explicitly so cover art embedded in the audio file never wins
	// default stream selection over the generated video.
	args = append(args, "-map", "0:v:0", "-map", "1:a:0")

	if inv.VideoCodec != "" {
		args = append(args, "-c:v", inv.VideoCodec)
	}
	if inv.AudioCodec != "" {
		args = append(args, "-c:a", inv.AudioCodec)
	}
	if inv.PixelFormat != "" {
		args = append(args, "-pix_fmt", inv.PixelFormat)
	}
	if inv.Shortest {
		args = append(args, "-shortest")
	}
	return append(args, inv.Output)
}

// String returns the arguments as one space-separated line, for logs.
func (inv Invocation) String() string {
	return strings.Join(inv.Args(), " ")
}

func appendInput(args []string, src Source) []string {
	if src.Format != "" {
		args = append(args, "-f", src.Format)
	}
	return append(args, "-i", src.Input)
}
