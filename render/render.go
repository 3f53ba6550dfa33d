// Package render dispatches converted frames to the output backends,
// and provides the tools shared by the backends: task runner, progress
// reporting and output file naming.
package render

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/benoitkugler/swfconvert/ir"
	"golang.org/x/sync/errgroup"
)

// FramesRenderer writes the frames of each input file.
// The outer index of frames is the input file, the inner one the frame.
type FramesRenderer interface {
	RenderFrames(ctx context.Context, frames [][]*ir.FrameGroup) error
}

// ConfigError is returned for invalid configuration values,
// before any frame is processed.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Message }

// ConfigErrorf returns a *ConfigError.
func ConfigErrorf(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// Format is an output format.
type Format string

const (
	FormatIR  Format = "ir"
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// Registry maps the output formats to the constructors of their backend.
type Registry[C any] map[Format]func(cfg C) (FramesRenderer, error)

// New returns the backend of format, or a *ConfigError if the
// format is not registered.
func (r Registry[C]) New(format Format, cfg C) (FramesRenderer, error) {
	constructor, ok := r[format]
	if !ok {
		var known []string
		for f := range r {
			known = append(known, string(f))
		}
		sort.Strings(known)
		return nil, ConfigErrorf("unknown output format %q (expected one of %s)", format, strings.Join(known, ", "))
	}
	return constructor(cfg)
}

// Runner runs indexed jobs, concurrently or one after the other.
// Jobs must only write to slots addressed by their index, so
// that both modes give the same results.
type Runner struct {
	Parallel bool
}

// Run calls job for 0 <= i < n and returns the first error.
// In sequential mode, jobs run in order on the calling goroutine and
// the first error stops the run.
func (r Runner) Run(ctx context.Context, n int, job func(ctx context.Context, i int) error) error {
	if !r.Parallel {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := job(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return job(ctx, i)
		})
	}
	return g.Wait()
}

// OutputFile returns the file of a frame: the output file of the input
// file, suffixed with the frame index unless the file has a single frame.
func OutputFile(outputs []string, fileIndex, frameIndex int, singleFrame bool, ext string) string {
	output := outputs[0]
	if fileIndex < len(outputs) {
		output = outputs[fileIndex]
	}
	dir, name := filepath.Split(output)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if !singleFrame {
		name += "-" + strconv.Itoa(frameIndex)
	}
	return filepath.Join(dir, name+"."+ext)
}
