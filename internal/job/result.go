package job

import (
	"context"
	"errors"

	"github.com/maauso/audio2video/internal/media"
)

// FailureKind distinguishes why a job failed.
type FailureKind string

const (
	// FailureEncoder means the encoder ran and reported failure.
	FailureEncoder FailureKind = "encoder"
	// FailureOther covers every other fault while preparing or awaiting a job.
	FailureOther FailureKind = "other"
)

// Failure describes a failed job.
type Failure struct {
	Kind FailureKind
	// Diagnostic is the encoder stderr for FailureEncoder and the error
	// text otherwise.
	Diagnostic string
	Err        error
}

func (f *Failure) Error() string {
	return string(f.Kind) + " failure: " + f.Diagnostic
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Classify converts a job error into a Failure.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var ffErr *media.FFmpegError
	if errors.As(err, &ffErr) {
		return &Failure{Kind: FailureEncoder, Diagnostic: ffErr.Diagnostic(), Err: err}
	}
	return &Failure{Kind: FailureOther, Diagnostic: err.Error(), Err: err}
}

// Result is the outcome of one job. Failure is nil on success.
type Result struct {
	Job     Job
	Failure *Failure
	// URL is set when the output was published.
	URL string
}

// OK reports whether the job succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Cancelled reports whether the job was stopped by run cancellation.
func (r Result) Cancelled() bool {
	return r.Failure != nil && errors.Is(r.Failure.Err, context.Canceled)
}

// Report summarises a run.
type Report struct {
	// RunID identifies the run in logs.
	RunID string
	// Succeeded is the number of jobs that produced an output file.
	Succeeded int
	// Failed lists source file names of failed jobs, in processing order.
	Failed []string
	// Results holds every job outcome, in processing order.
	Results []Result
}

// NewReport returns an empty report.
func NewReport(runID string) *Report {
	return &Report{RunID: runID, Failed: []string{}}
}

// Record adds a job outcome. Cancelled jobs are kept in Results but not
// counted as failures.
func (r *Report) Record(res Result) {
	r.Results = append(r.Results, res)
	switch {
	case res.OK():
		r.Succeeded++
	case res.Cancelled():
	default:
		r.Failed = append(r.Failed, res.Job.SourceName())
	}
}

// FailedCount returns the number of failed jobs.
func (r *Report) FailedCount() int {
	return len(r.Failed)
}

// Total returns the number of recorded jobs.
func (r *Report) Total() int {
	return len(r.Results)
}
