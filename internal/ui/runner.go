package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a batch command
type RunnerConfig struct {
	Title   string   // Command title (e.g., "Stamp")
	Command string   // Full command (e.g., "apdefaults stamp release.yaml")
	Params  []Field  // Parameters to display in header
	Steps   []string // Names for each step
	Output  io.Writer

	// Troubleshooting returns hints for the failure box, if set
	Troubleshooting func(err error) []string
}

// Runner manages the header, progress and result flow of a batch command.
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var progress *Progress
	if len(config.Steps) > 0 {
		progress = NewProgress("", config.Steps)
		progress.SetWidth(width)
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// SetWidth overrides the detected terminal width
func (r *Runner) SetWidth(width int) *Runner {
	r.width = width
	r.header.SetWidth(width)
	if r.progress != nil {
		r.progress.SetWidth(width)
	}
	return r
}

// Operation does the work of a Runner and returns the success details.
type Operation func(onStep StepCallback) ([]Field, error)

// Run prints the header, executes op and prints the result box. The error
// from op is returned unchanged.
func (r *Runner) Run(op Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := op(r.stepCallback())
	duration := time.Since(start)

	_, _ = fmt.Fprintln(r.output)
	if r.progress != nil {
		_, _ = fmt.Fprintln(r.output, r.progress.renderProgressBar())
		_, _ = fmt.Fprintln(r.output)
	}

	if err != nil {
		var tips []string
		if r.config.Troubleshooting != nil {
			tips = r.config.Troubleshooting(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, tips)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details).
		AddDetail("Duration", duration.Round(time.Millisecond).String()).
		SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

func (r *Runner) stepCallback() StepCallback {
	return func(stepNumber int, status StepStatus, message string) {
		if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
			return
		}

		r.progress.UpdateStep(stepNumber, status, message)
		step := r.progress.Steps[stepNumber-1]

		if status == StepRunning {
			// Overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, r.progress.renderStepLine(step)+"\r")
			return
		}
		_, _ = fmt.Fprintln(r.output, r.progress.renderStepLine(step))
	}
}
