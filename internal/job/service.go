package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/maauso/audio2video/internal/job/id"
	"github.com/maauso/audio2video/internal/media"
	"github.com/maauso/audio2video/internal/storage"
)

// Request contains the input parameters for a conversion run.
type Request struct {
	// InputDir is scanned (non-recursively) for source files.
	InputDir string
	// OutputDir receives the converted files. It is created if missing.
	OutputDir string
	// Resolution is the <width>x<height> of the video track.
	// Empty means media.DefaultResolution.
	Resolution string
}

// Progress receives run events, e.g. to print console output.
type Progress interface {
	// Start is called once the sources are known. total may be zero.
	Start(inputDir, outputDir string, total int)
	// JobStarted is called before a job is processed.
	JobStarted(j *Job)
	// JobFinished is called with every job outcome.
	JobFinished(res Result)
	// Finished is called with the final report.
	Finished(report *Report)
}

type nopProgress struct{}

func (nopProgress) Start(string, string, int) {}
func (nopProgress) JobStarted(*Job)           {}
func (nopProgress) JobFinished(Result)        {}
func (nopProgress) Finished(*Report)          {}

// Converter runs a batch of conversions, one encoder process at a time.
type Converter struct {
	runner    media.Runner
	publisher storage.Publisher
	keyPrefix string
	sourceExt string
	progress  Progress
	logger    *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithPublisher uploads every converted file under keyPrefix+<destination name>.
func WithPublisher(p storage.Publisher, keyPrefix string) Option {
	return func(c *Converter) {
		c.publisher = p
		c.keyPrefix = keyPrefix
	}
}

// WithSourceExt sets the audio extension to select (default ".mp3").
func WithSourceExt(ext string) Option {
	return func(c *Converter) {
		if ext = NormalizeExt(ext); ext != "" {
			c.sourceExt = ext
		}
	}
}

// WithProgress sets the observer for run events.
func WithProgress(p Progress) Option {
	return func(c *Converter) {
		if p != nil {
			c.progress = p
		}
	}
}

// NewConverter creates a new Converter.
func NewConverter(runner media.Runner, logger *slog.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Converter{
		runner:    runner,
		sourceExt: DefaultSourceExt,
		progress:  nopProgress{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run converts every matching file in req.InputDir.
//
// The workflow:
//  1. Create the output directory (fatal on failure)
//  2. Discover sources and plan jobs
//  3. Run each job in order; a failed job is recorded and the batch continues
//  4. Return the report
//
// The returned error is non-nil only for setup faults and cancellation.
// On cancellation the report covers the jobs processed so far.
func (c *Converter) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Resolution == "" {
		req.Resolution = media.DefaultResolution
	}
	if err := media.ValidateResolution(req.Resolution); err != nil {
		return nil, err
	}

	runID := id.Generate()
	logger := c.logger.With(slog.String("run_id", runID))
	report := NewReport(runID)

	out, err := storage.NewLocalStorage(req.OutputDir)
	if err != nil {
		return nil, err
	}

	sources, err := Discover(req.InputDir, c.sourceExt)
	if err != nil {
		return nil, err
	}

	logger.Info("starting conversion run",
		slog.String("input_dir", req.InputDir),
		slog.String("output_dir", out.Dir()),
		slog.String("resolution", req.Resolution),
		slog.String("source_ext", c.sourceExt),
		slog.Int("files", len(sources)),
		slog.Bool("publish", c.publisher != nil),
	)
	c.progress.Start(req.InputDir, out.Dir(), len(sources))

	if len(sources) == 0 {
		logger.Warn("no input files found", slog.String("input_dir", req.InputDir))
		c.progress.Finished(report)
		return report, nil
	}

	jobs := Plan(sources, out, req.Resolution)
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}

		c.progress.JobStarted(j)
		res := c.runJob(ctx, logger, out, j)
		report.Record(res)
		c.progress.JobFinished(res)
	}

	logger.Info("conversion run finished",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.FailedCount()),
	)
	c.progress.Finished(report)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("conversion interrupted: %w", err)
	}
	return report, nil
}

// runJob processes a single job and never returns an error: every fault
// ends up in the Result.
func (c *Converter) runJob(ctx context.Context, logger *slog.Logger, out storage.Storage, j *Job) Result {
	logger = logger.With(
		slog.Int("index", j.Index),
		slog.String("source", j.SourceName()),
		slog.String("destination", j.DestinationName()),
	)

	if j.CollidesWith != "" {
		_ = j.Fail()
		err := fmt.Errorf("%w: %s already writes %s", ErrDestinationCollision, j.CollidesWith, j.DestinationName())
		logger.Warn("skipping job", slog.String("error", err.Error()))
		return Result{Job: *j, Failure: Classify(err)}
	}

	if samePath(j.SourcePath, j.DestinationPath) {
		_ = j.Fail()
		err := fmt.Errorf("%w: %s", ErrOverwritesSource, j.SourcePath)
		logger.Warn("skipping job", slog.String("error", err.Error()))
		return Result{Job: *j, Failure: Classify(err)}
	}

	if err := j.Start(); err != nil {
		return Result{Job: *j, Failure: Classify(err)}
	}

	inv := j.Invocation()
	logger.Debug("running encoder", slog.String("args", inv.String()))
	if err := c.runner.Run(ctx, inv); err != nil {
		c.removePartial(logger, out, j)

		if ctx.Err() != nil {
			return c.cancelled(logger, j)
		}

		_ = j.Fail()
		failure := Classify(err)
		logger.Error("job failed",
			slog.String("kind", string(failure.Kind)),
			slog.String("error", failure.Diagnostic),
		)
		return Result{Job: *j, Failure: failure}
	}

	res := Result{}
	if c.publisher != nil {
		key := path.Join(c.keyPrefix, j.DestinationName())
		url, err := c.publisher.Publish(ctx, key, j.DestinationPath)
		if err != nil {
			if ctx.Err() != nil {
				return c.cancelled(logger, j)
			}
			_ = j.Fail()
			logger.Error("publish failed", slog.String("key", key), slog.String("error", err.Error()))
			return Result{Job: *j, Failure: Classify(fmt.Errorf("publish %s: %w", key, err))}
		}
		res.URL = url
		logger.Info("published", slog.String("url", url))
	}

	_ = j.Succeed()
	logger.Info("job succeeded", slog.Duration("elapsed", j.Elapsed()))
	res.Job = *j
	return res
}

func (c *Converter) cancelled(logger *slog.Logger, j *Job) Result {
	_ = j.Cancel()
	logger.Warn("job cancelled")
	return Result{Job: *j, Failure: &Failure{Kind: FailureOther, Diagnostic: "cancelled", Err: context.Canceled}}
}

// samePath reports whether a and b name the same file, regardless of how
// each path was spelled.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// removePartial deletes whatever the failed encoder left at the destination.
func (c *Converter) removePartial(logger *slog.Logger, out storage.Storage, j *Job) {
	// ctx may already be cancelled; removal must still happen.
	if err := out.Remove(context.Background(), []string{j.DestinationPath}); err != nil {
		logger.Warn("failed to remove partial output", slog.String("error", err.Error()))
	}
}
