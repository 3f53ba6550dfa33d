package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMovie has a red square, a bitmap placed twice and a text.
func testMovie(t *testing.T) *swf.File {
	bitmap := &swf.DefineBitsLossless{Version: 1, ID: 5, Format: swf.RGB24, Width: 2, Height: 2,
		Data: compressed(t, make([]byte, 16))}
	image := &swf.DefineShape{
		Version:    1,
		ID:         2,
		Bounds:     swf.Rect{XMax: 40, YMax: 40},
		FillStyles: []swf.FillStyle{swf.BitmapFill{Type: swf.BitmapClipped, BitmapID: 5, Matrix: swf.Matrix{ScaleX: 20, ScaleY: 20}}},
		Shape:      squareShape(0, 0, 40, nil, 1),
	}
	font := testFontFile(7, "Arial", 'a')
	text := &swf.DefineText{ID: 8, Matrix: swf.IdentityMatrix, Records: []swf.TextRecord{{
		HasFont: true, FontID: 7, Height: 200, HasColor: true, Color: red,
		Glyphs: []swf.GlyphEntry{{Index: 0, Advance: 100}},
	}}}
	return &swf.File{FrameSize: swf.Rect{XMax: 2000, YMax: 1000}, FrameCount: 1, Tags: []swf.Tag{
		redSquare(1), bitmap, image, font, text,
		place(1, 1), place(2, 2), place(2, 3), place(8, 4),
		swf.ShowFrame{},
	}}
}

func TestConvertCollection(t *testing.T) {
	cfg := testConvertConfig(t)
	var steps []string
	progress := render.NewProgress(printerFunc(func(s []string) { steps = s }))

	c, err := NewConverter(cfg, discardLogger, progress)
	require.NoError(t, err)
	out, err := c.ConvertCollection(t.Context(), []*swf.File{testMovie(t)}, []string{"movie.swf"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0], 1)
	assert.Equal(t, []string{"Creating images"}, steps)

	frame := out[0][0]
	objects := content(t, frame)
	require.Len(t, objects, 4)
	square := objects[0].(*ir.ShapeObject)
	assert.Equal(t, squareElements, square.Paths[0].Elements)
	assert.Equal(t, ir.SolidFill{Color: ir.NewColor(0xFF, 0, 0, 0xFF)}, square.Paths[0].Fill)

	// both placements use the same image file
	images := ir.Images(frame)
	require.Len(t, images, 2)
	assert.Same(t, images[0].Image, images[1].Image)
	assert.True(t, images[0].Clip)
	assert.Equal(t, filepath.Join(cfg.TempDir, ImagesDir, "0.png"), images[0].Image.DataFile)
	assert.FileExists(t, images[0].Image.DataFile)

	fonts := ir.Fonts(frame)
	require.Len(t, fonts, 1)
	assert.Equal(t, filepath.Join(cfg.TempDir, FontsDir, "0.ttf"), fonts[0].File)
	assert.FileExists(t, fonts[0].File)

	c.Cleanup()
	assert.NoDirExists(t, filepath.Join(cfg.TempDir, ImagesDir))
	assert.NoDirExists(t, filepath.Join(cfg.TempDir, FontsDir))
}

func TestConvertCollectionKeepFiles(t *testing.T) {
	cfg := testConvertConfig(t)
	cfg.Debug.KeepImages = true
	cfg.Debug.KeepFonts = true
	cfg.KeepDuplicateImages = true
	cfg.ParallelSwfConversion = true
	cfg.ParallelImageCreation = true

	c, err := NewConverter(cfg, nil, nil)
	require.NoError(t, err)
	out, err := c.ConvertCollection(t.Context(), []*swf.File{testMovie(t), testMovie(t)}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// the images of each file are distinct objects
	entries, err := os.ReadDir(filepath.Join(cfg.TempDir, ImagesDir))
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	c.Cleanup()
	assert.DirExists(t, filepath.Join(cfg.TempDir, ImagesDir))
	assert.DirExists(t, filepath.Join(cfg.TempDir, FontsDir))
}

func TestConvertCollectionError(t *testing.T) {
	file := &swf.File{Tags: []swf.Tag{place(9, 1), swf.ShowFrame{}}}
	c, err := NewConverter(testConvertConfig(t), nil, nil)
	require.NoError(t, err)
	_, err = c.ConvertCollection(t.Context(), []*swf.File{file}, []string{"broken.swf"})
	var convErr *Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "unknown character ID 9, context: file 0 'broken.swf', object ID 9", err.Error())

	_, err = DecodeFiles(t.Context(), []string{filepath.Join(t.TempDir(), "missing.xml")}, false)
	assert.Error(t, err)
}

type printerFunc func(steps []string)

func (f printerFunc) Update(steps []string, _, _ int) { f(append([]string(nil), steps...)) }
func (printerFunc) StepEnded()                          {}
