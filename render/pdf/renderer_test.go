package pdf

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/pdf/reader"
	"github.com/benoitkugler/swfconvert/convert"
	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T) *ir.ImageData {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := range 4 {
		img.Set(x, 0, color.RGBA{0, 0xFF, 0, 0xFF})
		img.Set(x, 1, color.RGBA{0, 0, 0xFF, 0xFF})
	}
	data, err := convert.EncodeImage(img, "png", 0)
	require.NoError(t, err)
	return data
}

// fullFrame uses every kind of object and style.
func fullFrame(t *testing.T) *ir.FrameGroup {
	frame := redSquareFrame()

	gradient, err := ir.NewGradientFill([]ir.GradientColor{
		{Color: ir.NewColor(0xFF, 0, 0, 0xFF), Ratio: 0},
		{Color: ir.NewColor(0, 0xFF, 0, 0x80), Ratio: 0.5},
		{Color: ir.NewColor(0, 0, 0xFF, 0xFF), Ratio: 1},
	}, ir.Matrix{A: 0.05, D: 0.05, E: 500, F: 500})
	require.NoError(t, err)
	line := &ir.LineStyle{Color: ir.Black, Width: 20, Cap: ir.CapRound, Join: ir.JoinMiter, MiterLimit: 3}

	transform := &ir.TransformGroup{Transform: ir.NewTranslation(100, 100).Scale(2, 2)}
	transform.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(0, 0, 500, 500, gradient, line),
		{Elements: []ir.PathElement{ir.MoveTo{}, ir.QuadTo{CX: 10, CY: 10, X: 20}, ir.CubicTo{X: 40, C1X: 20, C2X: 40}},
			Line: line},
	}})

	clip := &ir.ClipGroup{Clips: []ir.Path{{Elements: []ir.PathElement{ir.Rectangle{W: 300, H: 300}}}}}
	clip.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(0, 0, 1000, 1000, &ir.ImageFill{Image: testImage(t), Transform: ir.NewScaling(1000, 1000), Clip: true}, nil),
	}})

	blend := &ir.BlendGroup{Mode: ir.BlendMultiply}
	blend.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(1500, 0, 100, 100, ir.SolidFill{Color: ir.NewColor(0, 0, 0xFF, 0x80)}, nil),
	}})

	masked := &ir.MaskedGroup{}
	masked.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(1000, 500, 500, 500, ir.SolidFill{Color: ir.White}, nil),
	}})
	masked.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(1000, 500, 200, 200, ir.SolidFill{Color: ir.White}, nil),
	}})

	frame.Append(transform, clip, blend, masked, &ir.SimpleGroup{})
	return frame
}

func TestRenderFrames(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Outputs: []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf")}}
	cfg.PDF.ParallelFrameRendering = true
	r, err := NewRenderer(cfg, nil, nil)
	require.NoError(t, err)
	err = r.RenderFrames(t.Context(), [][]*ir.FrameGroup{
		{fullFrame(t)},
		{redSquareFrame(), fullFrame(t), redSquareFrame()},
	})
	require.NoError(t, err)

	for name, pages := range map[string]int{"a.pdf": 1, "b.pdf": 3} {
		doc, _, err := reader.ParsePDFFile(filepath.Join(dir, name), reader.Options{})
		require.NoError(t, err)
		assert.Len(t, doc.Catalog.Pages.Flatten(), pages, name)
	}

	cfg.PDF.Compress = true
	cfg.Outputs = []string{filepath.Join(dir, "c.pdf")}
	r, err = NewRenderer(cfg, nil, nil)
	require.NoError(t, err)
	require.NoError(t, r.RenderFrames(t.Context(), [][]*ir.FrameGroup{{fullFrame(t)}}))
	data, err := os.ReadFile(filepath.Join(dir, "c.pdf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "/FlateDecode")
}

func TestRenderFramesMetadata(t *testing.T) {
	dir := t.TempDir()
	metaFile := filepath.Join(dir, "meta.yaml")
	require.NoError(t, os.WriteFile(metaFile, []byte("metadata:\n  Title: Slides\npage_labels: [A, B]\n"), 0o644))

	cfg := &config.Config{Outputs: []string{filepath.Join(dir, "out.pdf")}}
	cfg.PDF.Metadata = []string{metaFile}
	cfg.PDF.OptimizePageLabels = true
	r, err := NewRenderer(cfg, nil, nil)
	require.NoError(t, err)
	require.NoError(t, r.RenderFrames(t.Context(), [][]*ir.FrameGroup{{redSquareFrame(), redSquareFrame()}}))

	doc, _, err := reader.ParsePDFFile(filepath.Join(dir, "out.pdf"), reader.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Slides", doc.Trailer.Info.Title)
	require.NotNil(t, doc.Catalog.PageLabels)
	assert.Equal(t, map[int]model.PageLabel{0: {S: "A", St: 1}}, doc.Catalog.PageLabels.LookupTable())
}

func TestRenderFramesRasterized(t *testing.T) {
	dir, tmp := t.TempDir(), t.TempDir()
	cfg := &config.Config{Outputs: []string{filepath.Join(dir, "out.pdf")}}
	cfg.Convert.TempDir = tmp
	cfg.PDF.RasterizationEnabled = true
	cfg.PDF.RasterizationThreshold = 0
	cfg.PDF.RasterizationDPI = 72
	cfg.PDF.RasterizationFormat = "jpeg"
	cfg.PDF.RasterizationJPEGQuality = 80
	cfg.PDF.ParallelRasterization = true
	r, err := NewRenderer(cfg, nil, render.NewProgress(nil))
	require.NoError(t, err)
	require.NoError(t, r.RenderFrames(t.Context(), [][]*ir.FrameGroup{{fullFrame(t), redSquareFrame()}}))

	data, err := os.ReadFile(filepath.Join(dir, "out.pdf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "/DCTDecode")
	assert.FileExists(t, filepath.Join(tmp, render.ImagesDir, "0", "frame.jpg"))
	assert.FileExists(t, filepath.Join(tmp, render.ImagesDir, "1", "frame.jpg"))
}

func TestNewRendererInvalidConfig(t *testing.T) {
	valid := func() *config.Config {
		cfg := &config.Config{Outputs: []string{"out.pdf"}}
		cfg.PDF.RasterizationEnabled = true
		cfg.PDF.RasterizationDPI = 200
		cfg.PDF.RasterizationFormat = "png"
		return cfg
	}
	_, err := NewRenderer(valid(), nil, nil)
	require.NoError(t, err)

	for _, change := range []func(c *config.Config){
		func(c *config.Config) { c.Outputs = nil },
		func(c *config.Config) { c.PDF.RasterizationDPI = 5 },
		func(c *config.Config) { c.PDF.RasterizationThreshold = -1 },
		func(c *config.Config) { c.PDF.RasterizationFormat = "gif" },
		func(c *config.Config) { c.PDF.RasterizationJPEGQuality = 101 },
		func(c *config.Config) { c.PDF.RasterizerCommand = "convert 'unterminated" },
		func(c *config.Config) { c.PDF.Metadata = []string{filepath.Join(t.TempDir(), "missing.yaml")} },
	} {
		cfg := valid()
		change(cfg)
		_, err := NewRenderer(cfg, nil, nil)
		var cfgErr *render.ConfigError
		assert.True(t, errors.As(err, &cfgErr), "%v", err)
	}
}
