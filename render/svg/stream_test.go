package svg

import (
	"bytes"
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const svgStart = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="2.0" `

func TestXMLWriter(t *testing.T) {
	var buf bytes.Buffer
	x := newXMLWriter(&buf, false, 0)
	x.start("a", attr{"k", "v"}, attr{"empty", ""})
	x.element("b")
	x.text("<&>")
	x.end()
	require.NoError(t, x.flush())
	assert.Equal(t, `<a k="v"><b/>&lt;&amp;&gt;</a>`, buf.String())

	buf.Reset()
	x = newXMLWriter(&buf, true, 0)
	x.start("a")
	x.element("b")
	x.element("c")
	x.end()
	require.NoError(t, x.flush())
	assert.Equal(t, "<a>\n  <b/>\n  <c/>\n</a>", buf.String())

	x = newXMLWriter(&buf, true, 0)
	x.start("a")
	assert.Error(t, x.flush())
}

func TestStreamWriterDiffsState(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStreamWriter(&buf, 1, 2, 2, false)
	require.NoError(t, err)

	s.Start(100, 50, [4]float32{0, 0, 2000, 1000}, false, GraphicsState{FillRule: ruleEvenOdd})
	s.Path("M0 0H10", GraphicsState{Fill: ColorPaint(ir.NewColor(0xFF, 0, 0, 0xFF))})
	// same as inherited: nothing to write
	assert.False(t, s.StartGroup(GraphicsState{Fill: ColorPaint(ir.NewColor(0, 0, 0, 0xFF))}, true))
	s.Path("M0 0", GraphicsState{FillOpacity: num(0.5), Transform: transforms(ir.NewTranslation(10, 0))})
	s.Group(GraphicsState{MixBlendMode: "multiply"}, true, func() {
		s.Path("M1 1", GraphicsState{FillRule: ruleEvenOdd})
	})
	s.Def("c", func() {
		s.ClipPath(func() { s.Path("M0 0", GraphicsState{}) })
	})
	require.NoError(t, s.End())

	assert.Equal(t, svgStart+`width="100pt" height="50pt" viewBox="0 0 2000 1000" fill-rule="evenodd">`+
		`<path d="M0 0H10" fill="#f00"/>`+
		`<path d="M0 0" fill-opacity=".5" transform="translate(10)"/>`+
		`<g style="mix-blend-mode:multiply"><path d="M1 1"/></g>`+
		`<defs><clipPath id="c"><path d="M0 0"/></clipPath></defs></svg>`, buf.String())
}

func TestStreamWriterElements(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStreamWriter(&buf, 1, 2, 2, false)
	require.NoError(t, err)

	s.Start(10, 10, [4]float32{0, 0, 200, 200}, false, GraphicsState{})
	s.Text(5, 10, []float32{0, 0}, "A", 12, "a<b", GraphicsState{})
	s.Text(5, 10, []float32{0, 1.5}, "A", 12, "ab", GraphicsState{})
	s.Use("g", 2, GraphicsState{})
	s.Image("images/0.png", 0, 0, GraphicsState{})
	s.Def("", func() { s.Font("A", "fonts/a.ttf") })
	s.Def("grad", func() {
		s.LinearGradient([]GradientStop{
			{Offset: 0, Color: "#f00", Opacity: 1},
			{Offset: 1, Color: "#00f", Opacity: 0.5},
		}, true, nil, -16384, 0, 16384, 0)
	})
	require.NoError(t, s.End())

	assert.Equal(t, svgStart+`width="10pt" height="10pt" viewBox="0 0 200 200">`+
		`<text x="5" y="10" font-family="A" font-size="12">a&lt;b</text>`+
		`<text x="5" y="10" dx="0 1.5" font-family="A" font-size="12">ab</text>`+
		`<use x="2" xlink:href="#g"/>`+
		`<image xlink:href="images/0.png"/>`+
		`<defs><style type="text/css">@font-face{font-family:A;src:url(&#39;fonts/a.ttf&#39;);}</style>`+
		`<linearGradient id="grad" x1="-16384" x2="16384" gradientUnits="userSpaceOnUse">`+
		`<stop offset="0" stop-color="#f00"/><stop offset="1" stop-color="#00f" stop-opacity=".5"/>`+
		`</linearGradient></defs></svg>`, buf.String())
}

func TestStreamWriterErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewStreamWriter(&buf, 6, 2, 2, false)
	assert.Error(t, err)

	s, err := NewStreamWriter(&buf, 1, 2, 2, false)
	require.NoError(t, err)
	assert.Error(t, s.End())

	s, err = NewStreamWriter(&buf, 1, 2, 2, false)
	require.NoError(t, err)
	s.Start(10, 10, [4]float32{0, 0, 10, 10}, false, GraphicsState{})
	s.StartGroup(GraphicsState{Mask: "m"}, false)
	assert.Error(t, s.End())

	s, err = NewStreamWriter(&buf, 1, 2, 2, false)
	require.NoError(t, err)
	s.Start(10, 10, [4]float32{0, 0, 10, 10}, false, GraphicsState{})
	s.LinearGradient([]GradientStop{{Offset: 0}}, false, nil, 0, 0, 1, 0)
	assert.Error(t, s.End())
}

func TestTransforms(t *testing.T) {
	assert.Nil(t, transforms(ir.Identity))
	assert.Equal(t, "translate(1 2)", formatTransforms(transforms(ir.NewTranslation(1, 2)), 2, false))
	assert.Equal(t, "scale(2)", formatTransforms(transforms(ir.NewScaling(2, 2)), 2, true))
	assert.Equal(t, "scale(2 -1)", formatTransforms(transforms(ir.NewScaling(2, -1)), 2, false))
	assert.Equal(t, "matrix(1 .5 0 1 0 0)", formatTransforms(transforms(ir.Matrix{A: 1, B: 0.5, D: 1}), 2, true))
}

func TestColorPaint(t *testing.T) {
	assert.Equal(t, Paint("#f0a"), ColorPaint(ir.NewColor(0xFF, 0x00, 0xAA, 0x80)))
	assert.Equal(t, Paint("#123456"), ColorPaint(ir.NewColor(0x12, 0x34, 0x56, 0xFF)))
}
