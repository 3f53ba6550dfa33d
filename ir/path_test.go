package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func evalQuad(sx, sy float32, q QuadTo, t float32) (float32, float32) {
	u := 1 - t
	return u*u*sx + 2*u*t*q.CX + t*t*q.X, u*u*sy + 2*u*t*q.CY + t*t*q.Y
}

func evalCubic(sx, sy float32, c CubicTo, t float32) (float32, float32) {
	u := 1 - t
	return u*u*u*sx + 3*u*u*t*c.C1X + 3*u*t*t*c.C2X + t*t*t*c.X,
		u*u*u*sy + 3*u*u*t*c.C1Y + 3*u*t*t*c.C2Y + t*t*t*c.Y
}

func TestQuadToCubic(t *testing.T) {
	for _, tc := range []struct {
		sx, sy float32
		q      QuadTo
	}{
		{0, 0, QuadTo{10, 20, 30, 0}},
		{-5, 3.5, QuadTo{100, -40, 0.25, 12}},
		{1e3, 1e3, QuadTo{1e3, 1e3, 1e3, 1e3}},
	} {
		c := tc.q.ToCubic(tc.sx, tc.sy)
		for _, p := range []float32{0, 0.25, 0.5, 0.75, 1} {
			qx, qy := evalQuad(tc.sx, tc.sy, tc.q, p)
			cx, cy := evalCubic(tc.sx, tc.sy, c, p)
			assert.InDelta(t, qx, cx, 1e-3)
			assert.InDelta(t, qy, cy, 1e-3)
		}
	}
}

func TestPathSVG(t *testing.T) {
	p := Path{Elements: []PathElement{
		MoveTo{0, 0}, LineTo{10.5, 0}, QuadTo{1, 2, 3, 4},
		CubicTo{1, 2, 3, 4, 5.1234, -0.0001}, ClosePath{},
	}}
	assert.Equal(t, "M 0 0 L 10.5 0 Q 1 2 3 4 C 1 2 3 4 5.123 0 Z", p.SVG())

	r := Path{Elements: []PathElement{Rectangle{1, 2, 10, 20}}}
	assert.Equal(t, "M 1 2 H 11 V 22 H 1 Z", r.SVG())
}

func TestPathTransformed(t *testing.T) {
	p := RectanglePath(0, 0, 10, 10, nil, nil)
	out := p.Transformed(NewTranslation(5, 5).Scale(2, 2))
	assert.Equal(t, MoveTo{5, 5}, out.Elements[0])
	assert.Equal(t, LineTo{25, 25}, out.Elements[2])
	assert.Equal(t, ClosePath{}, out.Elements[4])

	r := Path{Elements: []PathElement{Rectangle{0, 0, 10, 10}}}.Transformed(NewScaling(1, -1))
	assert.Equal(t, []PathElement{Rectangle{0, -10, 10, 10}}, r.Elements)
}

func TestPathIsEmpty(t *testing.T) {
	assert.True(t, Path{}.IsEmpty())
	assert.True(t, Path{Elements: []PathElement{MoveTo{1, 1}}}.IsEmpty())
	assert.False(t, RectanglePath(0, 0, 1, 1, nil, nil).IsEmpty())
}
