package convert

import (
	"testing"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitScale = ir.FontScale{ScaleX: 1, ScaleY: 1, UnscaleX: 1, UnscaleY: 1}

// textFont has a space, then 'a' and 'b' with an advance of 500.
func textFont(scale ir.FontScale) *ir.Font {
	letter := testGlyph(500, 400)
	return &ir.Font{Name: "text", Metrics: ir.FontMetrics{Scale: scale}, Glyphs: []ir.FontGlyph{
		{Char: ' ', Data: &ir.GlyphData{Advance: ir.WhitespaceAdvance}},
		{Char: 'a', Data: letter},
		{Char: 'b', Data: letter},
	}}
}

func newTestTextConverter(y ir.YDirection) *TextConverter {
	cfg := &config.Convert{YDirection: y}
	cfg.Debug.IgnoreGlyphOffsetsThreshold = 32
	fonts := map[FontKey]*ir.Font{
		{File: 0, ID: 1}: textFont(unitScale),
		{File: 0, ID: 2}: textFont(ir.FontScale{ScaleX: 1, ScaleY: 1, UnscaleX: 20, UnscaleY: 20}),
	}
	return NewTextConverter(cfg, fonts, 0)
}

func styledRecord(x int, glyphs ...swf.GlyphEntry) swf.TextRecord {
	return swf.TextRecord{
		HasFont: true, FontID: 1, Height: ir.EMSquareSize,
		HasColor: true, Color: red,
		HasX: true, XOffset: x,
		Glyphs: glyphs,
	}
}

func TestConvertText(t *testing.T) {
	tc := newTestTextConverter(ir.YDown)
	tag := &swf.DefineText{ID: 4, Matrix: swf.IdentityMatrix, Records: []swf.TextRecord{
		styledRecord(100, swf.GlyphEntry{Index: 0, Advance: 300}, swf.GlyphEntry{Index: 1, Advance: 500},
			swf.GlyphEntry{Index: 2, Advance: 600}, swf.GlyphEntry{Index: 0, Advance: 300}),
		// the style and the pen position carry over
		{Glyphs: []swf.GlyphEntry{{Index: 1, Advance: 500}}},
	}}

	objects, err := tc.Convert(FileContext(0, ""), tag, &CompositeColorTransform{})
	require.NoError(t, err)
	require.Len(t, objects, 2)

	first := objects[0].(*ir.TextObject)
	assert.Equal(t, "ab", first.Text)
	assert.Equal(t, []int{1, 2}, first.GlyphIndices)
	// leading whitespace moves the text
	assert.Equal(t, float32(400), first.X)
	assert.Equal(t, []float32{0, 100}, first.GlyphOffsets)
	assert.Equal(t, ir.NewColor(0xFF, 0, 0, 0xFF), first.Color)
	assert.Equal(t, float32(ir.EMSquareSize), first.FontSize)
	assert.Equal(t, 4, first.ID)

	second := objects[1].(*ir.TextObject)
	assert.Equal(t, "a", second.Text)
	assert.Equal(t, float32(1800), second.X)
	assert.Nil(t, second.GlyphOffsets)
}

func TestConvertTextSmallOffsets(t *testing.T) {
	tc := newTestTextConverter(ir.YDown)
	tag := &swf.DefineText{Matrix: swf.IdentityMatrix, Records: []swf.TextRecord{
		styledRecord(0, swf.GlyphEntry{Index: 1, Advance: 510}, swf.GlyphEntry{Index: 2, Advance: 505},
			swf.GlyphEntry{Index: 1, Advance: 500}),
	}}
	objects, err := tc.Convert(FileContext(0, ""), tag, &CompositeColorTransform{})
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Nil(t, objects[0].(*ir.TextObject).GlyphOffsets)
}

func TestConvertTextTransform(t *testing.T) {
	tc := newTestTextConverter(ir.YUp)
	tag := &swf.DefineText{ID: 3, Matrix: swf.Matrix{ScaleX: 1, ScaleY: 1, TranslateX: 50}, Records: []swf.TextRecord{
		styledRecord(0, swf.GlyphEntry{Index: 1, Advance: 500}),
	}}
	objects, err := tc.Convert(FileContext(0, ""), tag, &CompositeColorTransform{})
	require.NoError(t, err)
	require.Len(t, objects, 1)
	group, ok := objects[0].(*ir.TransformGroup)
	require.True(t, ok)
	assert.Equal(t, 3, group.ID)
	// glyphs are flipped back
	assert.Equal(t, ir.Matrix{A: 1, D: -1, E: 50}, group.Transform)
	assert.Len(t, group.Children(), 1)
}

func TestConvertTextErrors(t *testing.T) {
	tc := newTestTextConverter(ir.YDown)
	ctx := FileContext(0, "")
	colors := &CompositeColorTransform{}

	noColor := styledRecord(0, swf.GlyphEntry{Index: 1})
	noColor.HasColor = false
	_, err := tc.Convert(ctx, &swf.DefineText{Records: []swf.TextRecord{noColor}}, colors)
	assert.ErrorContains(t, err, "no text color specified")

	mixed := styledRecord(0, swf.GlyphEntry{Index: 1})
	mixed.FontID = 2
	_, err = tc.Convert(ctx, &swf.DefineText{Records: []swf.TextRecord{styledRecord(0), mixed}}, colors)
	assert.ErrorContains(t, err, "different scales")

	_, err = tc.Convert(ctx, &swf.DefineText{Records: []swf.TextRecord{styledRecord(0, swf.GlyphEntry{Index: 9})}}, colors)
	assert.ErrorContains(t, err, "invalid glyph index 9")

	// without font, the tag is empty
	objects, err := tc.Convert(ctx, &swf.DefineText{Records: []swf.TextRecord{{}}}, colors)
	assert.NoError(t, err)
	assert.Nil(t, objects)
}
