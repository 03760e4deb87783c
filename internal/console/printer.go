// Package console renders conversion progress and the final summary for a
// human reader.
package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/maauso/audio2video/internal/job"
)

const indent = "  "

// Compile-time check that Printer implements job.Progress.
var _ job.Progress = (*Printer)(nil)

// Printer writes progress to out and failure diagnostics to errOut.
type Printer struct {
	out      io.Writer
	errOut   io.Writer
	colorize bool
}

// NewPrinter creates a new Printer. colorize enables ANSI colors.
func NewPrinter(out, errOut io.Writer, colorize bool) *Printer {
	return &Printer{out: out, errOut: errOut, colorize: colorize}
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Start prints the absolute directories of the run.
func (p *Printer) Start(inputDir, outputDir string, total int) {
	fmt.Fprintf(p.out, "output: %s\n", absolute(outputDir))
	fmt.Fprintf(p.out, "scanning: %s\n", absolute(inputDir))
	if total == 0 {
		fmt.Fprintln(p.out, p.paint(text.FgYellow, "no input files found"))
	}
}

// JobStarted prints the source and destination of a job.
func (p *Printer) JobStarted(j *job.Job) {
	fmt.Fprintf(p.out, "converting %s -> %s\n", j.SourceName(), j.DestinationName())
}

// JobFinished prints the outcome marker. Failure diagnostics go to errOut.
func (p *Printer) JobFinished(res job.Result) {
	switch {
	case res.OK():
		fmt.Fprintln(p.out, indent+p.paint(text.FgGreen, "ok"))
		if res.URL != "" {
			fmt.Fprintf(p.out, "%spublished %s\n", indent, res.URL)
		}
	case res.Cancelled():
		fmt.Fprintln(p.out, indent+p.paint(text.FgYellow, "cancelled"))
	default:
		marker := fmt.Sprintf("FAILED (%s)", res.Failure.Kind)
		fmt.Fprintln(p.out, indent+p.paint(text.FgRed, marker))
		if diag := strings.TrimSpace(res.Failure.Diagnostic); diag != "" {
			fmt.Fprintf(p.errOut, "%s: %s\n", res.Job.SourceName(), diag)
		}
	}
}

// Finished prints the summary table. Nothing is printed for an empty run.
func (p *Printer) Finished(report *job.Report) {
	if report.Total() == 0 {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, Summary(report))
}

// Summary renders the report as a table: the succeeded count, the failed
// count and the comma-joined failed file names.
func Summary(report *job.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("run " + report.RunID)

	tw.AppendRow(table.Row{"succeeded", strconv.Itoa(report.Succeeded)})
	tw.AppendRow(table.Row{"failed", strconv.Itoa(report.FailedCount())})
	if cancelled := report.Total() - report.Succeeded - report.FailedCount(); cancelled > 0 {
		tw.AppendRow(table.Row{"cancelled", strconv.Itoa(cancelled)})
	}
	if len(report.Failed) > 0 {
		tw.AppendRow(table.Row{"failed files", strings.Join(report.Failed, ", ")})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})

	return tw.Render()
}

func absolute(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func (p *Printer) paint(color text.Color, s string) string {
	if !p.colorize {
		return s
	}
	return color.Sprint(s)
}
