// Package pdf writes the frames of each input file as the pages of
// one PDF document, rasterizing the frames too complex to be drawn
// efficiently as vector content.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"codeberg.org/go-pdf/fpdf"
	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
)

// Renderer is the PDF backend.
type Renderer struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress *render.Progress
}

func NewRenderer(cfg *config.Config, logger *slog.Logger, progress *render.Progress) (*Renderer, error) {
	if len(cfg.Outputs) == 0 {
		return nil, render.ConfigErrorf("no output file")
	}
	c := cfg.PDF
	if c.RasterizationEnabled {
		if c.RasterizationDPI < 10 || c.RasterizationDPI > 2000 {
			return nil, render.ConfigErrorf("rasterization density must be between 10 and 2000 DPI")
		}
		if c.RasterizationThreshold < 0 {
			return nil, render.ConfigErrorf("rasterization threshold complexity must be greater or equal to 0")
		}
		switch c.RasterizationFormat {
		case "png", "jpg", "jpeg":
		default:
			return nil, render.ConfigErrorf("invalid rasterization image format %q", c.RasterizationFormat)
		}
		if c.RasterizationJPEGQuality < 0 || c.RasterizationJPEGQuality > 100 {
			return nil, render.ConfigErrorf("rasterization JPEG quality must be between 0 and 100")
		}
		if c.RasterizerCommand != "" {
			if _, err := commandArgs(c.RasterizerCommand, "", "", 0); err != nil {
				return nil, render.ConfigErrorf("%s", err)
			}
		}
	}
	for _, file := range c.Metadata {
		if file != "" {
			if _, err := os.Stat(file); err != nil {
				return nil, render.ConfigErrorf("metadata file: %s", err)
			}
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{cfg: cfg, logger: logger, progress: progress}, nil
}

func (r *Renderer) RenderFrames(ctx context.Context, frames [][]*ir.FrameGroup) error {
	for i, file := range frames {
		output := render.OutputFile(r.cfg.Outputs, i, 0, true, "pdf")
		if err := r.renderFile(ctx, i, file, output); err != nil {
			r.logger.Error("failed to save file", "file", output, "error", err)
			return fmt.Errorf("writing %s: %w", output, err)
		}
	}
	return nil
}

func (r *Renderer) renderFile(ctx context.Context, index int, frames []*ir.FrameGroup, output string) error {
	c := r.cfg.PDF
	t := newTables()

	if c.RasterizationEnabled {
		fr := r.frameRasterizer(t)
		var err error
		frames, err = fr.rasterizeFrames(ctx, frames, c.RasterizationThreshold,
			render.Runner{Parallel: c.ParallelRasterization}, r.progress)
		if err != nil {
			return err
		}
	}

	r.progress.BeginStep("Building PDF pages")
	r.progress.Start(len(frames))
	pages := make([]*page, len(frames))
	runner := render.Runner{Parallel: c.ParallelFrameRendering}
	err := runner.Run(ctx, len(frames), func(_ context.Context, i int) error {
		p, err := buildPage(frames[i], t, r.logger)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		pages[i] = p
		r.progress.Increment()
		return nil
	})
	r.progress.EndStep()
	if err != nil {
		return err
	}

	r.progress.BeginStep("Writing PDF document")
	defer r.progress.EndStep()
	var buf bytes.Buffer
	if err := writeDocument(&buf, pages, c.Compress); err != nil {
		return err
	}
	data := buf.Bytes()
	if index < len(c.Metadata) && c.Metadata[index] != "" {
		meta, err := LoadMetadata(c.Metadata[index])
		if err != nil {
			return err
		}
		if data, err = applyMetadata(data, meta, c.OptimizePageLabels, r.logger); err != nil {
			return err
		}
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

func (r *Renderer) frameRasterizer(t *tables) *frameRasterizer {
	c := r.cfg.PDF
	var chain []Rasterizer
	if c.RasterizerCommand != "" {
		chain = append(chain, ExternalRasterizer{
			Command: c.RasterizerCommand,
			DPI:     c.RasterizationDPI,
			Render: func(w io.Writer, frame *ir.FrameGroup) error {
				p, err := buildPage(frame, t, r.logger)
				if err != nil {
					return err
				}
				return writeDocument(w, []*page{p}, c.Compress)
			},
		})
	}
	chain = append(chain, InternalRasterizer{DPI: c.RasterizationDPI})

	format := c.RasterizationFormat
	if format == "jpeg" {
		format = "jpg"
	}
	var imagesDir string
	if dir := r.cfg.Convert.TempDir; dir != "" {
		imagesDir = filepath.Join(dir, render.ImagesDir)
	}
	return &frameRasterizer{
		chain:     chain,
		format:    format,
		quality:   c.RasterizationJPEGQuality,
		imagesDir: imagesDir,
		tables:    t,
		logger:    r.logger,
	}
}

// writeDocument replays the pages on a new document.
func writeDocument(w io.Writer, pages []*page, compress bool) error {
	size := fpdf.SizeType{Wd: 612, Ht: 792}
	if len(pages) != 0 {
		size = fpdf.SizeType{Wd: pages[0].width, Ht: pages[0].height}
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", Size: size})
	pdf.SetCompression(compress)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	pw := newPageWriter(pdf)
	for _, p := range pages {
		pw.writePage(p)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("creating PDF document: %w", err)
	}
	return pdf.Output(w)
}
