package ttf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

func square(x, y, size int16) Contour {
	return Contour{
		{X: x, Y: y, OnCurve: true},
		{X: x + size, Y: y, OnCurve: true},
		{X: x + size, Y: y + size, OnCurve: true},
		{X: x, Y: y + size, OnCurve: true},
	}
}

func sampleFont() *Font {
	return &Font{
		Name:       "sample",
		UnitsPerEm: 1024,
		Ascent:     900,
		Descent:    200,
		Glyphs: []Glyph{
			{Char: 'A', Advance: 600, Contours: []Contour{square(50, 0, 500)}},
			{Char: 'B', Advance: 700, Contours: []Contour{
				square(0, 0, 300),
				// quadratic bump, with a long coordinate delta
				{{X: 0, Y: 400, OnCurve: true}, {X: 350, Y: 800}, {X: 700, Y: 400, OnCurve: true}},
			}},
			{Char: ' ', Advance: 256},
			{Char: 0xE000, Advance: 500, Contours: []Contour{square(10, 10, 10)}},
		},
	}
}

func TestEncodeParse(t *testing.T) {
	data, err := sampleFont().Encode()
	require.NoError(t, err)
	assert.Zero(t, len(data)%4)

	f, err := sfnt.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 5, f.NumGlyphs())
	assert.Equal(t, sfnt.Units(1024), f.UnitsPerEm())

	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	require.NoError(t, err)
	assert.Equal(t, "sample", name)

	ppem := fixed.I(1024)
	for i, r := range []rune{'A', 'B', ' ', 0xE000} {
		index, err := f.GlyphIndex(&buf, r)
		require.NoError(t, err)
		assert.Equal(t, sfnt.GlyphIndex(i+1), index, "char %q", r)
	}

	index, _ := f.GlyphIndex(&buf, 'B')
	adv, err := f.GlyphAdvance(&buf, index, ppem, font.HintingNone)
	require.NoError(t, err)
	assert.Equal(t, fixed.I(700), adv)

	segments, err := f.LoadGlyph(&buf, index, ppem, nil)
	require.NoError(t, err)
	var ops []sfnt.SegmentOp
	for _, s := range segments {
		ops = append(ops, s.Op)
	}
	assert.Contains(t, ops, sfnt.SegmentOpQuadTo)
	assert.Equal(t, sfnt.SegmentOpMoveTo, ops[0])

	// missing characters map to .notdef
	index, err = f.GlyphIndex(&buf, 'Z')
	require.NoError(t, err)
	assert.Equal(t, sfnt.GlyphIndex(0), index)

	metrics, err := f.Metrics(&buf, ppem, font.HintingNone)
	require.NoError(t, err)
	assert.Equal(t, fixed.I(900), metrics.Ascent)
	assert.Equal(t, fixed.I(200), metrics.Descent)
}

func TestEncodeEmptyFont(t *testing.T) {
	data, err := (&Font{Name: "empty", UnitsPerEm: 1024}).Encode()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xB1B0AFBA), checksum(data))
}

func TestEncodeErrors(t *testing.T) {
	_, err := (&Font{UnitsPerEm: 1024}).Encode()
	assert.ErrorIs(t, err, ErrNoName)

	_, err = (&Font{Name: "a", UnitsPerEm: 1}).Encode()
	assert.ErrorIs(t, err, ErrInvalidUnitsEm)
}

func TestChecksumAdjustment(t *testing.T) {
	data, err := sampleFont().Encode()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xB1B0AFBA), checksum(data))
}

func TestFlagsRunLength(t *testing.T) {
	g := Glyph{Contours: []Contour{square(0, 0, 10), square(20, 20, 10)}}
	b, _ := g.bounds()
	data := encodeGlyph(g, b)
	assert.Equal(t, int16(2), int16(uint16(data[0])<<8|uint16(data[1])))
	assert.Equal(t, bbox{0, 0, 30, 30}, b)
}
