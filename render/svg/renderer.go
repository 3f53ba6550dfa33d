// Package svg writes the frame trees as SVG documents, one per frame.
package svg

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
)

// Renderer is the SVG backend.
type Renderer struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress *render.Progress
}

func NewRenderer(cfg *config.Config, logger *slog.Logger, progress *render.Progress) (*Renderer, error) {
	if len(cfg.Outputs) == 0 {
		return nil, render.ConfigErrorf("no output file")
	}
	c := cfg.SVG
	for _, check := range []struct {
		name  string
		value int
	}{
		{"precision", c.Precision},
		{"transform precision", c.TransformPrecision},
		{"percent precision", c.PercentPrecision},
	} {
		if err := CheckPrecision(check.name, check.value); err != nil {
			return nil, err
		}
	}
	switch c.ImagesMode {
	case ImagesExternal, ImagesBase64:
	default:
		return nil, render.ConfigErrorf("invalid images mode %q (expected %s or %s)", c.ImagesMode, ImagesExternal, ImagesBase64)
	}
	switch c.FontsMode {
	case FontsExternal, FontsBase64, FontsNone:
	default:
		return nil, render.ConfigErrorf("invalid fonts mode %q (expected %s, %s or %s)", c.FontsMode, FontsExternal, FontsBase64, FontsNone)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{cfg: cfg, logger: logger, progress: progress}, nil
}

func (r *Renderer) RenderFrames(ctx context.Context, frames [][]*ir.FrameGroup) error {
	var all []*ir.FrameGroup
	for _, file := range frames {
		all = append(all, file...)
	}
	outputDir := filepath.Dir(r.cfg.Outputs[0])

	if r.cfg.SVG.ImagesMode == ImagesExternal {
		r.progress.BeginStep("Copying images to output")
		err := render.CopyImages(render.FrameImages(all), outputDir)
		r.progress.EndStep()
		if err != nil {
			return fmt.Errorf("copying images: %w", err)
		}
	}
	if r.cfg.SVG.FontsMode == FontsExternal {
		r.progress.BeginStep("Copying fonts to output")
		err := render.CopyFonts(render.FrameFonts(all), outputDir)
		r.progress.EndStep()
		if err != nil {
			return fmt.Errorf("copying fonts: %w", err)
		}
	}

	type job struct{ file, frame int }
	var jobs []job
	for i, file := range frames {
		for j := range file {
			jobs = append(jobs, job{i, j})
		}
	}
	ext := "svg"
	if r.cfg.SVG.Compress {
		ext = "svgz"
	}

	r.progress.BeginStep("Writing SVG frames")
	defer r.progress.EndStep()
	r.progress.Start(len(jobs))
	runner := render.Runner{Parallel: r.cfg.SVG.ParallelFrameRendering}
	return runner.Run(ctx, len(jobs), func(_ context.Context, i int) error {
		j := jobs[i]
		output := render.OutputFile(r.cfg.Outputs, j.file, j.frame, len(frames[j.file]) == 1, ext)
		if err := r.writeFrame(output, outputDir, frames[j.file][j.frame]); err != nil {
			r.logger.Error("failed to save file", "file", output, "error", err)
			return fmt.Errorf("writing %s: %w", output, err)
		}
		r.progress.Increment()
		return nil
	})
}

func (r *Renderer) writeFrame(output, resourcesDir string, frame *ir.FrameGroup) error {
	fr := &frameRenderer{
		cfg:       r.cfg.SVG,
		logger:    r.logger,
		imagesDir: relativeDir(filepath.Dir(output), filepath.Join(resourcesDir, render.ImagesDir)),
		fontsDir:  relativeDir(filepath.Dir(output), filepath.Join(resourcesDir, render.FontsDir)),
	}
	f, err := render.CreateOutputFile(output)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var gz *gzip.Writer
	if r.cfg.SVG.Compress {
		gz = gzip.NewWriter(bw)
		w = gz
	}
	if err := fr.render(w, frame); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// relativeDir returns target relative to base, with slashes,
// or target itself if it has no relative form.
func relativeDir(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		rel = target
	}
	return filepath.ToSlash(rel)
}
