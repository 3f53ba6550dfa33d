package pdf

import (
	"fmt"
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/stretchr/testify/assert"
)

func TestConjugate(t *testing.T) {
	const height = 50
	m := ir.Matrix{A: 2, B: 0.5, C: -1, D: 3, E: 10, F: 20}
	flip := pageFlip(height)
	c := conjugate(m, height)
	for _, p := range [][2]float64{{0, 0}, {1, 2}, {-3, 7}} {
		// drawing p under c in the native space is drawing m(p) in the page space
		fx, fy := flip.Transform(p[0], p[1])
		gotX, gotY := c.Transform(fx, fy)
		x, y := m.Transform(p[0], p[1])
		wantX, wantY := flip.Transform(x, y)
		assert.InDelta(t, wantX, gotX, 1e-9)
		assert.InDelta(t, wantY, gotY, 1e-9)
	}
	assert.Equal(t, ir.Identity, conjugate(ir.Identity, height))
}

func TestFrameTransform(t *testing.T) {
	down := ir.NewFrameGroup(2000, 1000, 20, ir.YDown)
	up := ir.NewFrameGroup(2000, 1000, 20, ir.YUp)
	assert.Equal(t, down.Transform, frameTransform(down))
	x, y := frameTransform(up).Transform(0, 0)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}

type recordPather []string

func (r *recordPather) MoveTo(x, y float64) { *r = append(*r, fmt.Sprintf("M%g,%g", x, y)) }
func (r *recordPather) LineTo(x, y float64) { *r = append(*r, fmt.Sprintf("L%g,%g", x, y)) }
func (r *recordPather) CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y float64) {
	*r = append(*r, fmt.Sprintf("C%g,%g,%g,%g,%g,%g", cx0, cy0, cx1, cy1, x, y))
}
func (r *recordPather) ClosePath() { *r = append(*r, "Z") }

func TestWritePath(t *testing.T) {
	var rec recordPather
	writePath(&rec, ir.Path{Elements: []ir.PathElement{
		ir.MoveTo{X: 0, Y: 0},
		ir.QuadTo{CX: 3, CY: 3, X: 6, Y: 0},
		ir.ClosePath{},
		ir.Rectangle{X: 1, Y: 1, W: 2, H: 3},
	}})
	assert.Equal(t, recordPather{
		"M0,0", "C2,2,4,2,6,0", "Z",
		"M1,1", "L3,1", "L3,4", "L1,4", "Z",
	}, rec)
}
