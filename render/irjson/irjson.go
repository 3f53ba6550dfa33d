// Package irjson writes the frame trees as JSON documents, one per frame.
package irjson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
)

// Renderer is the JSON backend.
type Renderer struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress *render.Progress
}

func NewRenderer(cfg *config.Config, logger *slog.Logger, progress *render.Progress) (*Renderer, error) {
	if len(cfg.Outputs) == 0 {
		return nil, render.ConfigErrorf("no output file")
	}
	if cfg.IR.IndentSize < 0 {
		return nil, render.ConfigErrorf("invalid indent size %d", cfg.IR.IndentSize)
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

	r.progress.BeginStep("Copying images to output")
	err := render.CopyImages(render.FrameImages(all), outputDir)
	r.progress.EndStep()
	if err != nil {
		return fmt.Errorf("copying images: %w", err)
	}
	r.progress.BeginStep("Copying fonts to output")
	err = render.CopyFonts(render.FrameFonts(all), outputDir)
	r.progress.EndStep()
	if err != nil {
		return fmt.Errorf("copying fonts: %w", err)
	}

	type job struct{ file, frame int }
	var jobs []job
	for i, file := range frames {
		for j := range file {
			jobs = append(jobs, job{i, j})
		}
	}

	r.progress.BeginStep("Writing JSON frames")
	defer r.progress.EndStep()
	r.progress.Start(len(jobs))
	runner := render.Runner{Parallel: r.cfg.IR.ParallelFrameRendering}
	return runner.Run(ctx, len(jobs), func(_ context.Context, i int) error {
		j := jobs[i]
		output := render.OutputFile(r.cfg.Outputs, j.file, j.frame, len(frames[j.file]) == 1, "json")
		if err := r.writeFrame(output, frames[j.file][j.frame]); err != nil {
			r.logger.Error("failed to save file", "file", output, "error", err)
			return fmt.Errorf("writing %s: %w", output, err)
		}
		r.progress.Increment()
		return nil
	})
}

func (r *Renderer) writeFrame(output string, frame *ir.FrameGroup) error {
	data, err := Marshal(frame, r.cfg.IR)
	if err != nil {
		return err
	}
	f, err := render.CreateOutputFile(output)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Marshal encodes a frame tree.
func Marshal(frame *ir.FrameGroup, cfg config.IR) ([]byte, error) {
	obj, err := newObject(frame)
	if err != nil {
		return nil, err
	}
	if cfg.PrettyPrint {
		return json.MarshalIndent(obj, "", strings.Repeat(" ", cfg.IndentSize))
	}
	return json.Marshal(obj)
}
