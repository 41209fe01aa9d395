package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/apdefaults/internal/container"
	"github.com/muurk/apdefaults/internal/firmware"
	"github.com/muurk/apdefaults/internal/logging"
)

// Options control a manifest run.
type Options struct {
	// DryRun patches in memory and reports sizes without writing files
	DryRun bool

	// KeepGoing continues with the remaining targets after a failure
	KeepGoing bool

	// Format, if set, is used for every firmware input instead of
	// detecting the container from the file extension
	Format *container.Format

	// Jobs is the number of targets stamped at once. Below 2, targets run
	// one at a time in manifest order.
	Jobs int

	// Progress, if set, is called after each target completes or fails.
	// Calls never overlap.
	Progress func(index, total int, result Result)
}

// Result describes the outcome for one target.
type Result struct {
	Target    string
	Output    string
	MaxLength int
	OldLength int
	NewLength int
	Err       error
}

// Run stamps the targets and returns a result for each one that ran, in
// manifest order. Without KeepGoing no new target starts after a failure;
// with it, all failures are joined into the returned error.
func (m *Manifest) Run(opts Options) ([]Result, error) {
	if opts.Jobs > 1 {
		return m.runParallel(opts)
	}

	results := make([]Result, 0, len(m.Targets))
	var errs []error

	for i, t := range m.Targets {
		result := m.stamp(t, opts)
		results = append(results, result)

		if opts.Progress != nil {
			opts.Progress(i, len(m.Targets), result)
		}

		if result.Err != nil {
			logging.Warn("Target failed", zap.String("target", t.Name), zap.Error(result.Err))
			errs = append(errs, result.Err)
			if !opts.KeepGoing {
				break
			}
		}
	}

	return results, errors.Join(errs...)
}

func (m *Manifest) runParallel(opts Options) ([]Result, error) {
	total := len(m.Targets)
	results := make([]Result, total)
	ran := make([]bool, total)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(opts.Jobs)

	for i, t := range m.Targets {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			result := m.stamp(t, opts)

			mu.Lock()
			results[i], ran[i] = result, true
			if opts.Progress != nil {
				opts.Progress(i, total, result)
			}
			mu.Unlock()

			if result.Err != nil {
				logging.Warn("Target failed", zap.String("target", t.Name), zap.Error(result.Err))
				if !opts.KeepGoing {
					return result.Err
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Result, 0, total)
	var errs []error
	for i, result := range results {
		if !ran[i] {
			continue
		}
		out = append(out, result)
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}
	return out, errors.Join(errs...)
}

func (m *Manifest) stamp(t Target, opts Options) Result {
	result := Result{Target: t.Name, Output: m.OutputPath(t)}

	fail := func(err error) Result {
		result.Err = &TargetError{Target: t.Name, Err: err}
		return result
	}

	fw, err := load(m.FirmwarePath(t), opts.Format)
	if err != nil {
		return fail(err)
	}

	h, err := fw.Locate()
	if err != nil {
		return fail(err)
	}
	result.MaxLength = h.MaxLength
	result.OldLength = h.Length

	if err := fw.SetContentsFromFile(m.DefaultsPath(t)); err != nil {
		return fail(err)
	}
	result.NewLength = fw.Header().Length

	if opts.DryRun {
		return result
	}

	if err := os.MkdirAll(filepath.Dir(result.Output), 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}
	if err := fw.Save(result.Output); err != nil {
		return fail(err)
	}

	logging.Info("Target stamped",
		zap.String("target", t.Name),
		zap.String("output", result.Output),
		zap.Int("length", result.NewLength),
	)
	return result
}

func load(path string, format *container.Format) (*firmware.File, error) {
	if format == nil {
		return firmware.Load(path)
	}
	return firmware.LoadAs(path, *format)
}
