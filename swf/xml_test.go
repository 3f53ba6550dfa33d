package swf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMovie = `<?xml version="1.0" encoding="UTF-8"?>
<swf version="10" frameRate="12" frameCount="2">
	<frameSize xmin="0" ymin="0" xmax="2000" ymax="1000"/>
	<fileAttributes/>
	<defineShape id="1" version="3">
		<bounds xmin="0" ymin="0" xmax="200" ymax="100"/>
		<fillStyles>
			<solid color="#ff000080"/>
			<bitmap type="65" bitmapId="4"><matrix scaleX="20" scaleY="20"/></bitmap>
			<gradient type="16"><matrix tx="10"/><stop ratio="0" color="#000000"/><stop ratio="255" color="#ffffff"/></gradient>
		</fillStyles>
		<lineStyles><lineStyle width="40" color="#00ff00"/></lineStyles>
		<style moveX="0" moveY="0" fill1="1" line="1"/>
		<line dx="200" dy="0"/>
		<curve cdx="0" cdy="50" adx="-100" ady="50"/>
		<style fill0="0"><fillStyles><solid color="#0000ff"/></fillStyles></style>
	</defineShape>
	<defineSprite id="2" frameCount="1">
		<placeObject depth="1" id="1"/>
		<showFrame/>
	</defineSprite>
	<placeObject version="3" depth="1" id="2" clipDepth="3" blendMode="11">
		<matrix scaleX="2" scaleY="0.5" skew0="0.25" tx="-20" ty="40"/>
		<colorTransform multA="0.5" addR="10"/>
		<colorMatrix values="1 0 0 0 0 0 1 0 0 0 0 0 1 0 0 0 0 0 1 0"/>
		<filter type="blur"/>
	</placeObject>
	<showFrame/>
	<removeObject depth="1"/>
	<showFrame/>
</swf>`

func TestDecodeXML(t *testing.T) {
	file, err := DecodeXML(strings.NewReader(sampleMovie))
	require.NoError(t, err)

	assert.Equal(t, 10, file.Version)
	assert.Equal(t, float32(12), file.FrameRate)
	assert.Equal(t, 2, file.FrameCount)
	assert.Equal(t, Rect{0, 0, 2000, 1000}, file.FrameSize)
	require.Len(t, file.Tags, 7)
	assert.Equal(t, Unknown{Name: "fileAttributes"}, file.Tags[0])

	shape, ok := file.Tags[1].(*DefineShape)
	require.True(t, ok)
	assert.Equal(t, uint16(1), shape.ID)
	assert.Equal(t, 3, shape.Version)
	require.Len(t, shape.FillStyles, 3)
	assert.Equal(t, SolidFill{Color: Color{0xFF, 0, 0, 0x80}}, shape.FillStyles[0])
	bitmap := shape.FillStyles[1].(BitmapFill)
	assert.True(t, bitmap.IsClipped())
	assert.True(t, bitmap.IsSmoothed())
	assert.Equal(t, uint16(4), bitmap.BitmapID)
	assert.Equal(t, float32(20), bitmap.Matrix.ScaleX)
	gradient := shape.FillStyles[2].(GradientFill)
	assert.Equal(t, int32(10), gradient.Matrix.TranslateX)
	assert.Equal(t, float32(1), gradient.Matrix.ScaleX)
	assert.Len(t, gradient.Stops, 2)
	assert.Equal(t, uint8(255), gradient.Stops[1].Ratio)

	require.Len(t, shape.LineStyles, 1)
	assert.Equal(t, 40, shape.LineStyles[0].Width)
	assert.Equal(t, Color{0, 0xFF, 0, 0xFF}, shape.LineStyles[0].Color)

	require.Len(t, shape.Shape.Records, 4)
	style := shape.Shape.Records[0].(StyleChange)
	assert.True(t, style.HasMove)
	assert.True(t, style.HasFill1)
	assert.False(t, style.HasFill0)
	assert.Equal(t, 1, style.Line)
	assert.Equal(t, StraightEdge{DX: 200}, shape.Shape.Records[1])
	assert.Equal(t, CurvedEdge{ControlDY: 50, AnchorDX: -100, AnchorDY: 50}, shape.Shape.Records[2])
	style = shape.Shape.Records[3].(StyleChange)
	assert.False(t, style.HasMove)
	assert.True(t, style.HasFill0)
	assert.Len(t, style.FillStyles, 1)

	sprite := file.Tags[2].(*DefineSprite)
	require.Len(t, sprite.Tags, 2)
	assert.Equal(t, PlaceNew, sprite.Tags[0].(*PlaceObject).Type())

	place := file.Tags[3].(*PlaceObject)
	assert.Equal(t, 3, place.ClipDepth)
	assert.True(t, place.HasBlend)
	assert.Equal(t, BlendAlpha, place.BlendMode)
	require.NotNil(t, place.Matrix)
	assert.Equal(t, Matrix{ScaleX: 2, ScaleY: 0.5, Skew0: 0.25, TranslateX: -20, TranslateY: 40}, *place.Matrix)
	require.NotNil(t, place.ColorTrans)
	assert.Equal(t, ColorTransform{MultR: 1, MultG: 1, MultB: 1, MultA: 0.5, AddR: 10}, *place.ColorTrans)
	require.Len(t, place.Filters, 2)
	assert.True(t, place.Filters[0].(ColorMatrixFilter).IsIdentity())
	assert.Equal(t, OtherFilter{Kind: "blur"}, place.Filters[1])

	assert.Equal(t, ShowFrame{}, file.Tags[4])
	remove := file.Tags[5].(*RemoveObject)
	assert.Equal(t, 1, remove.Depth)
}

func TestDecodeXMLFontAndText(t *testing.T) {
	input := `<swf>
	<defineFont id="3" name="Arial" version="3" ascent="900" descent="200">
		<glyph code="65" advance="600"><style moveX="0" moveY="0" fill1="1"/><line dx="20" dy="0"/></glyph>
		<glyph code="32" advance="256"/>
	</defineFont>
	<defineText id="4" version="2">
		<bounds xmin="0" ymin="-200" xmax="400" ymax="0"/>
		<matrix tx="100" ty="200"/>
		<record font="3" height="240" color="#102030ff" x="10">
			<entry index="0" advance="300"/>
			<entry index="1" advance="120"/>
		</record>
		<record y="300"><entry index="0" advance="300"/></record>
	</defineText>
	<defineBitsLossless id="5" version="2" format="5" width="1" height="1">AQID</defineBitsLossless>
	<defineBitsJPEG id="6" version="3"><data>AQ==</data><alpha>Ag==</alpha></defineBitsJPEG>
</swf>`
	file, err := DecodeXML(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, file.Tags, 4)

	font := file.Tags[0].(*DefineFont)
	assert.Equal(t, "Arial", font.Name)
	assert.Equal(t, []rune{'A', ' '}, font.Codes)
	assert.Equal(t, []int{600, 256}, font.Advances)
	require.Len(t, font.Shapes, 2)
	assert.Len(t, font.Shapes[0].Records, 2)
	assert.Empty(t, font.Shapes[1].Records)

	text := file.Tags[1].(*DefineText)
	assert.Equal(t, int32(100), text.Matrix.TranslateX)
	require.Len(t, text.Records, 2)
	rec := text.Records[0]
	assert.True(t, rec.HasFont && rec.HasColor && rec.HasX)
	assert.False(t, rec.HasY)
	assert.Equal(t, 240, rec.Height)
	assert.Equal(t, Color{0x10, 0x20, 0x30, 0xFF}, rec.Color)
	assert.Equal(t, []GlyphEntry{{0, 300}, {1, 120}}, rec.Glyphs)
	assert.False(t, text.Records[1].HasFont)
	assert.Equal(t, 300, text.Records[1].YOffset)

	bits := file.Tags[2].(*DefineBitsLossless)
	assert.Equal(t, []byte{1, 2, 3}, bits.Data)
	jpeg := file.Tags[3].(*DefineBitsJPEG)
	assert.Equal(t, []byte{1}, jpeg.Data)
	assert.Equal(t, []byte{2}, jpeg.AlphaData)
}

func TestDecodeXMLFontWithoutLayout(t *testing.T) {
	input := `<swf><defineFont id="1" version="2"><glyph code="65"/><glyph code="66"/></defineFont></swf>`
	file, err := DecodeXML(strings.NewReader(input))
	require.NoError(t, err)
	assert.Nil(t, file.Tags[0].(*DefineFont).Advances)
}

func TestDecodeXMLErrors(t *testing.T) {
	for _, input := range []string{
		``,
		`<svg/>`,
		`<swf version="ten"/>`,
		`<swf><defineShape id="1"><fillStyles><solid color="#12"/></fillStyles></defineShape></swf>`,
		`<swf><defineShape id="1"><fillStyles><pattern/></fillStyles></defineShape></swf>`,
		`<swf><placeObject depth="1"><colorMatrix values="1 0 0"/></placeObject></swf>`,
		`<swf><defineBitsLossless id="1">!!</defineBitsLossless></swf>`,
		`<swf><defineSprite id="1"><placeObject depth="x"/></defineSprite></swf>`,
	} {
		_, err := DecodeXML(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

func TestDecodeXMLCharset(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><swf><defineFont id=\"1\" name=\"caf\xe9\"/></swf>"
	file, err := DecodeXML(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "café", file.Tags[0].(*DefineFont).Name)
}
