// Package status renders user-facing progress and results for batch
// runs and previews, writing both to a color console and to structured
// logs.
package status

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/presspatch/pkg/batch"
	"github.com/walteh/presspatch/pkg/edit"
)

// previewLimit caps how many changed lines a preview prints before
// summarizing the rest.
const previewLimit = 5

// 🎯 Logger handles user-facing output with a structured-log shadow.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{zlog: zlog, console: console}
}

// StartBatch announces a batch run. Called before the run starts, so
// the strategy is not known yet; EndBatch reports it with the summary.
func (l *Logger) StartBatch(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "[running %s operations]\n",
		color.New(color.Bold).Sprint(n))

	l.zlog.Info().Int("operations", n).Msg("starting batch")
}

// LogOutcome prints one operation's result line.
func (l *Logger) LogOutcome(id string, out batch.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case out.OK:
		fmt.Fprintf(l.console, "  %s %s %s\n",
			color.New(color.FgGreen).Sprint("✓"), id,
			color.New(color.Faint).Sprint(out.Detail))
	case out.TimedOut:
		fmt.Fprintf(l.console, "  %s %s %s\n",
			color.New(color.FgYellow).Sprint("⏱"), id,
			color.New(color.FgYellow).Sprint(out.Reason))
	default:
		fmt.Fprintf(l.console, "  %s %s %s\n",
			color.New(color.FgRed).Sprint("✗"), id,
			color.New(color.FgRed).Sprint(out.Reason))
	}

	l.zlog.Info().
		Str("op", id).
		Bool("ok", out.OK).
		Bool("timed_out", out.TimedOut).
		Str("detail", out.Detail).
		Str("reason", out.Reason).
		Msg("operation outcome")
}

// EndBatch prints the batch summary.
func (l *Logger) EndBatch(rep *batch.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()

	printer := pterm.Success
	if rep.Failed > 0 {
		printer = pterm.Warning
	}
	printer.WithWriter(l.console).Printfln("%d succeeded, %d failed in %s (%s)",
		rep.Succeeded, rep.Failed, rep.Elapsed.Round(time.Millisecond), rep.Strategy)

	l.zlog.Info().
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Dur("elapsed", rep.Elapsed).
		Str("strategy", string(rep.Strategy)).
		Msg("batch complete")
}

// ShowPreview prints the line diff an edit would make, the way the
// original preview did: up to previewLimit changed lines, then a count
// of the rest.
func (l *Logger) ShowPreview(result edit.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if result.Status != edit.StatusApplied || len(result.ChangedLines) == 0 {
		pterm.Info.WithWriter(l.console).Printfln("no changes to apply (%s)", result.Status)
		return
	}

	fmt.Fprintf(l.console, "\n%s\n\n",
		color.New(color.Bold, color.FgCyan).Sprintf("Changes to be made: %d line(s), %d replacement(s)",
			len(result.ChangedLines), result.ReplacementsMade))

	for i, n := range result.ChangedLines {
		if i == previewLimit {
			fmt.Fprintf(l.console, "%s\n",
				color.New(color.Faint).Sprintf("... and %d more changed lines", len(result.ChangedLines)-previewLimit))
			break
		}
		before, _ := result.Before.Line(n)
		after, _ := result.After.Line(n)
		fmt.Fprintf(l.console, "%s\n", color.New(color.Bold).Sprintf("Line %d:", n))
		fmt.Fprintf(l.console, "  %s\n", color.New(color.FgRed).Sprintf("- %s", before))
		fmt.Fprintf(l.console, "  %s\n\n", color.New(color.FgGreen).Sprintf("+ %s", after))
	}

	l.zlog.Debug().
		Int("changed_lines", len(result.ChangedLines)).
		Int("replacements", result.ReplacementsMade).
		Msg("preview rendered")
}
