package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixMul(t *testing.T) {
	m := NewTranslation(10, 20).Scale(2, 3)
	x, y := m.Transform(1, 1)
	assert.Equal(t, 12., x)
	assert.Equal(t, 23., y)

	assert.Equal(t, m, Identity.Mul(m))
	assert.Equal(t, m, m.Mul(Identity))
	assert.True(t, Identity.IsIdentity())
	assert.False(t, m.IsIdentity())
}

func TestMatrixInvert(t *testing.T) {
	m := Matrix{A: 2, B: 1, C: -1, D: 3, E: 5, F: -7}
	inv, ok := m.Invert()
	require.True(t, ok)
	p := m.Mul(inv)
	assert.InDelta(t, 1, p.A, 1e-9)
	assert.InDelta(t, 0, p.B, 1e-9)
	assert.InDelta(t, 0, p.C, 1e-9)
	assert.InDelta(t, 1, p.D, 1e-9)
	assert.InDelta(t, 0, p.E, 1e-9)
	assert.InDelta(t, 0, p.F, 1e-9)

	_, ok = Matrix{A: 1, C: 2, B: 2, D: 4}.Invert()
	assert.False(t, ok)
}

func TestMatrixString(t *testing.T) {
	assert.Equal(t, "[[1 0 0] [0 1 0]]", Identity.String())
	assert.Equal(t, "[[0.05 0 10] [0 -0.05 20.5]]", Matrix{A: 0.05, D: -0.05, E: 10, F: 20.5}.String())
}

func TestTransformRect(t *testing.T) {
	r := Matrix{A: 0, B: 1, C: -1, D: 0}.TransformRect(Rect{0, 0, 10, 5})
	assert.Equal(t, Rect{-5, 0, 5, 10}, r)
}

func TestFrameGroup(t *testing.T) {
	f := NewFrameGroup(2000, 1000, 20, YUp)
	assert.Equal(t, float32(102), f.ActualWidth())
	assert.Equal(t, float32(52), f.ActualHeight())
	x, y := f.Transform.Transform(0, 0)
	assert.Equal(t, 1., x)
	assert.Equal(t, 51., y)
	assert.Equal(t, YUp, f.YDirection())

	np := f.WithoutPadding()
	assert.Equal(t, float32(0), np.Padding)
	x, y = np.Transform.Transform(0, 0)
	assert.Equal(t, 0., x)
	assert.Equal(t, 50., y)

	down := NewFrameGroup(2000, 1000, 0, YDown)
	x, y = down.Transform.Transform(20, 20)
	assert.Equal(t, 1., x)
	assert.Equal(t, 1., y)
}

func TestColor(t *testing.T) {
	c := NewColor(0x11, 0x22, 0x33, 0x80)
	assert.Equal(t, "#80112233", c.String())
	assert.Equal(t, "#112233", c.StringNoAlpha())
	assert.Equal(t, uint8(0x22), c.G())
	assert.Equal(t, Color(0xFF112233), c.Opaque())
	assert.Equal(t, Color(0x00112233), c.WithAlpha(0))
}
