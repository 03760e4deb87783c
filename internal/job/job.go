// Package job provides the conversion Job entity, input discovery and
// planning, per-job results, and the Converter service that runs a batch.
package job

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/maauso/audio2video/internal/media"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the job is waiting for its turn.
	StatusPending Status = "PENDING"
	// StatusRunning indicates the encoder is processing the job.
	StatusRunning Status = "RUNNING"
	// StatusSucceeded indicates the output file was written.
	StatusSucceeded Status = "SUCCEEDED"
	// StatusFailed indicates the job failed and was recorded in the report.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the run was interrupted before the job finished.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// PENDING -> FAILED covers jobs rejected before the encoder starts.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusRunning, StatusFailed, StatusCancelled},
	StatusRunning:   {StatusSucceeded, StatusFailed, StatusCancelled},
	StatusSucceeded: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job is one source-file-to-destination-file conversion.
// Jobs are owned by the goroutine running the batch and are not safe for
// concurrent use.
type Job struct {
	// Index is the position of this job in the run.
	Index int
	// SourcePath is the input audio file.
	SourcePath string
	// DestinationPath is the output video file.
	DestinationPath string
	// Resolution is the <width>x<height> of the generated video track.
	Resolution string
	// CollidesWith is the source name of an earlier job with the same
	// destination. A colliding job is failed without running the encoder.
	CollidesWith string
	// Status is the current job state.
	Status Status
	// StartedAt is when the encoder was started.
	StartedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a pending Job.
func New(index int, sourcePath, destinationPath, resolution string) *Job {
	return &Job{
		Index:           index,
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
		Resolution:      resolution,
		Status:          StatusPending,
	}
}

// SourceName returns the base name of the source file.
func (j *Job) SourceName() string {
	return filepath.Base(j.SourcePath)
}

// DestinationName returns the base name of the destination file.
func (j *Job) DestinationName() string {
	return filepath.Base(j.DestinationPath)
}

// Invocation returns the encoder invocation for this job.
func (j *Job) Invocation() media.Invocation {
	return media.NewStillVideo(j.SourcePath, j.DestinationPath, j.Resolution)
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	now := time.Now()

	// Set timestamps based on state
	switch status {
	case StatusRunning:
		j.StartedAt = now
	case StatusSucceeded, StatusFailed, StatusCancelled:
		j.CompletedAt = now
	}

	return nil
}

// Start transitions the job from PENDING to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Succeed transitions the job to SUCCEEDED.
func (j *Job) Succeed() error {
	return j.TransitionTo(StatusSucceeded)
}

// Fail transitions the job to FAILED.
func (j *Job) Fail() error {
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusSucceeded ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Elapsed returns how long the encoder ran, or zero if it never started.
func (j *Job) Elapsed() time.Duration {
	if j.StartedAt.IsZero() || j.CompletedAt.IsZero() {
		return 0
	}
	return j.CompletedAt.Sub(j.StartedAt)
}
