package pdf

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArgs(t *testing.T) {
	args, err := commandArgs(`pdftoppm -r {dpi} -png -singlefile {input} '{output}.x'`, "in.pdf", "my out", 199.6)
	require.NoError(t, err)
	assert.Equal(t, []string{"pdftoppm", "-r", "200", "-png", "-singlefile", "in.pdf", "my out.x"}, args)

	_, err = commandArgs("  ", "a", "b", 72)
	assert.Error(t, err)
	_, err = commandArgs("convert 'a", "a", "b", 72)
	assert.Error(t, err)
}

func TestTextOnly(t *testing.T) {
	frame := ir.NewFrameGroup(100, 100, 0, ir.YDown)
	text := &ir.TextObject{Text: "a", Color: ir.Black, FontSize: 12}
	group := &ir.TransformGroup{Transform: ir.NewTranslation(1, 2)}
	group.Append(&ir.ShapeObject{}, text)
	frame.Append(&ir.ShapeObject{}, group)

	out := textOnly(frame).(*ir.FrameGroup)
	require.Len(t, out.Objects, 1)
	g := out.Objects[0].(*ir.TransformGroup)
	assert.Equal(t, group.Transform, g.Transform)
	require.Len(t, g.Objects, 1)
	copied := g.Objects[0].(*ir.TextObject)
	assert.Equal(t, ir.Transparent, copied.Color)
	assert.Equal(t, "a", copied.Text)
	// the source is unchanged
	assert.Equal(t, ir.Black, text.Color)
	assert.Len(t, frame.Objects, 2)
}

type failingRasterizer struct{}

func (failingRasterizer) Rasterize(context.Context, *ir.FrameGroup) (image.Image, error) {
	return nil, errors.New("no way")
}

func TestRasterizeChain(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	frame := redSquareFrame()
	img, err := rasterizeChain(context.Background(), []Rasterizer{failingRasterizer{}, InternalRasterizer{DPI: 72}}, frame, logger)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())

	_, err = rasterizeChain(context.Background(), []Rasterizer{InternalRasterizer{DPI: 72}, failingRasterizer{}}, frame, logger)
	assert.NoError(t, err)

	_, err = rasterizeChain(context.Background(), []Rasterizer{failingRasterizer{}}, frame, logger)
	assert.EqualError(t, err, "no way")
}

func TestExternalRasterizerFailure(t *testing.T) {
	rendered := false
	r := ExternalRasterizer{
		Command: "false {input} {output}",
		DPI:     72,
		Render: func(w io.Writer, frame *ir.FrameGroup) error {
			rendered = true
			p, err := buildPage(frame, newTables(), slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}
			return writeDocument(w, []*page{p}, true)
		},
	}
	_, err := r.Rasterize(context.Background(), redSquareFrame())
	assert.Error(t, err)
	assert.True(t, rendered)
}

func TestFrameRasterizer(t *testing.T) {
	dir := t.TempDir()
	fr := &frameRasterizer{
		chain:     []Rasterizer{InternalRasterizer{DPI: 72}},
		format:    "png",
		imagesDir: dir,
		tables:    newTables(),
		logger:    slog.New(slog.DiscardHandler),
	}

	simple := ir.NewFrameGroup(2000, 1000, 0, ir.YDown)
	complex := redSquareFrame()
	complex.Append(&ir.TextObject{Text: "hi", Color: ir.Black, FontSize: 12})
	frames, err := fr.rasterizeFrames(context.Background(), []*ir.FrameGroup{simple, complex}, 1,
		render.Runner{Parallel: true}, nil)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Same(t, simple, frames[0])

	out := frames[1]
	require.Len(t, out.Objects, 2)
	background := out.Objects[0].(*ir.ShapeObject)
	require.Len(t, background.Paths, 1)
	fill := background.Paths[0].Fill.(*ir.ImageFill)
	assert.Equal(t, ir.FormatPNG, fill.Image.Format)
	assert.Equal(t, 100, fill.Image.Width)
	assert.Equal(t, 50, fill.Image.Height)
	assert.Equal(t, ir.NewScaling(2000, 1000), fill.Transform)
	assert.Equal(t, ir.Transparent, out.Objects[1].(*ir.TextObject).Color)

	assert.Equal(t, filepath.Join(dir, "1", "frame.png"), fill.Image.DataFile)
	_, err = os.Stat(fill.Image.DataFile)
	assert.NoError(t, err)
	// the input frame is unchanged
	assert.Len(t, complex.Objects, 2)
}
