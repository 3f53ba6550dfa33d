package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // output of external rasterizers
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/benoitkugler/swfconvert/convert"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/mattn/go-shellwords"
)

// Rasterizer draws a frame, without its padding, to a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, frame *ir.FrameGroup) (image.Image, error)
}

// ExternalRasterizer runs a command on the frame written as a one
// page PDF document. In the command template, {input} is replaced by the
// PDF file, {output} by the PNG file to read back and {dpi} by the density.
type ExternalRasterizer struct {
	Command string
	DPI     float32
	// Render writes the frame as a PDF document.
	Render func(w io.Writer, frame *ir.FrameGroup) error
}

func (r ExternalRasterizer) Rasterize(ctx context.Context, frame *ir.FrameGroup) (image.Image, error) {
	dir, err := os.MkdirTemp("", "swfconvert-raster")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	input, output := filepath.Join(dir, "frame.pdf"), filepath.Join(dir, "frame.png")
	f, err := os.Create(input)
	if err != nil {
		return nil, err
	}
	err = r.Render(f, frame)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("writing frame document: %w", err)
	}

	args, err := commandArgs(r.Command, input, output, r.DPI)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("running %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}

	rf, err := os.Open(output)
	if err != nil {
		return nil, err
	}
	defer rf.Close()
	img, _, err := image.Decode(rf)
	if err != nil {
		return nil, fmt.Errorf("reading rasterizer output: %w", err)
	}
	return img, nil
}

// commandArgs splits the command template and fills its placeholders.
func commandArgs(template, input, output string, dpi float32) ([]string, error) {
	args, err := shellwords.Parse(template)
	if err != nil {
		return nil, fmt.Errorf("invalid rasterizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("empty rasterizer command")
	}
	replacer := strings.NewReplacer(
		"{input}", input,
		"{output}", output,
		"{dpi}", strconv.Itoa(int(math.Round(float64(dpi)))),
	)
	for i, arg := range args {
		args[i] = replacer.Replace(arg)
	}
	return args, nil
}

// rasterizeChain tries the rasterizers in order. Failures are logged,
// except for the last rasterizer, whose error is returned.
func rasterizeChain(ctx context.Context, chain []Rasterizer, frame *ir.FrameGroup, logger *slog.Logger) (image.Image, error) {
	for i, r := range chain {
		img, err := r.Rasterize(ctx, frame)
		if err == nil {
			return img, nil
		}
		if i == len(chain)-1 {
			return nil, err
		}
		logger.Warn("failed to rasterize frame, falling back", "rasterizer", fmt.Sprintf("%T", r), "error", err)
	}
	return nil, errors.New("no rasterizer")
}

// textOnly copies g, keeping only the groups and the texts, made transparent.
func textOnly(g ir.GroupObject) ir.GroupObject {
	out := g.CopyEmpty()
	for _, child := range g.Children() {
		switch child := child.(type) {
		case ir.GroupObject:
			out.Append(textOnly(child))
		case *ir.TextObject:
			text := *child
			text.Color = 0
			out.Append(&text)
		}
	}
	return out
}

type frameRasterizer struct {
	chain   []Rasterizer
	format  string
	quality int
	// imagesDir receives the images, if not empty.
	imagesDir string
	tables    *tables
	logger    *slog.Logger
}

// rasterize replaces the shapes of frame by a bitmap. Its texts are kept,
// invisible, above the bitmap.
func (r *frameRasterizer) rasterize(ctx context.Context, index int, frame *ir.FrameGroup) (*ir.FrameGroup, error) {
	text := textOnly(frame).(*ir.FrameGroup)

	img, err := rasterizeChain(ctx, r.chain, frame.WithoutPadding(), r.logger)
	if err != nil {
		return nil, fmt.Errorf("rasterizing frame %d: %w", index, err)
	}
	data, err := convert.EncodeImage(img, r.format, r.quality)
	if err != nil {
		return nil, err
	}
	if r.imagesDir != "" {
		if err := writeFrameImage(data, filepath.Join(r.imagesDir, strconv.Itoa(index))); err != nil {
			return nil, err
		}
	}
	if _, err := r.tables.images.get(data); err != nil {
		return nil, err
	}

	w, h := frame.Width, frame.Height
	fill := &ir.ImageFill{Transform: ir.NewScaling(float64(w), float64(h)), Image: data}
	background := &ir.ShapeObject{Paths: []ir.Path{ir.RectanglePath(0, 0, w, h, fill, nil)}}
	text.SetChildren(append([]ir.Object{background}, text.Children()...))
	return text, nil
}

func writeFrameImage(data *ir.ImageData, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data.DataFile = filepath.Join(dir, "frame."+data.Format.Extension())
	if err := os.WriteFile(data.DataFile, data.Data, 0o644); err != nil {
		return err
	}
	if len(data.AlphaData) != 0 {
		data.AlphaDataFile = filepath.Join(dir, "frame_mask."+data.Format.Extension())
		return os.WriteFile(data.AlphaDataFile, data.AlphaData, 0o644)
	}
	return nil
}

// rasterizeFrames replaces the frames at least as complex as the threshold.
func (r *frameRasterizer) rasterizeFrames(ctx context.Context, frames []*ir.FrameGroup, threshold int,
	runner render.Runner, progress *render.Progress,
) ([]*ir.FrameGroup, error) {
	var indices []int
	for i, frame := range frames {
		if needsRasterization(frame, threshold) {
			indices = append(indices, i)
		}
	}
	out := append([]*ir.FrameGroup(nil), frames...)
	if len(indices) == 0 {
		return out, nil
	}

	progress.BeginStep("Rasterizing frames")
	defer progress.EndStep()
	progress.Start(len(indices))
	err := runner.Run(ctx, len(indices), func(ctx context.Context, i int) error {
		index := indices[i]
		frame, err := r.rasterize(ctx, index, frames[index])
		if err != nil {
			return err
		}
		out[index] = frame
		progress.Increment()
		return nil
	})
	return out, err
}
