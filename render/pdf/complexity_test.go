package pdf

import (
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/stretchr/testify/assert"
)

func TestComplexity(t *testing.T) {
	solid := ir.SolidFill{Color: ir.NewColor(0, 0, 0, 0xFF)}
	shape := &ir.ShapeObject{Paths: []ir.Path{
		{Elements: []ir.PathElement{
			ir.MoveTo{}, ir.LineTo{X: 1}, ir.QuadTo{X: 2}, ir.CubicTo{X: 3}, ir.ClosePath{},
		}, Fill: solid},
		{Elements: []ir.PathElement{ir.Rectangle{W: 1, H: 1}}, Fill: solid},
		// no fill, image fill
		{Elements: []ir.PathElement{ir.MoveTo{}, ir.LineTo{X: 1}}, Line: &ir.LineStyle{Width: 1}},
		ir.RectanglePath(0, 0, 1, 1, &ir.ImageFill{Image: &ir.ImageData{}}, nil),
	}}
	assert.Equal(t, 2+2+4+6+2, Complexity(shape))

	frame := ir.NewFrameGroup(100, 100, 0, ir.YDown)
	group := &ir.TransformGroup{Transform: ir.Identity}
	group.Append(shape, &ir.TextObject{Text: "abc"})
	frame.Append(group, shape)
	assert.Equal(t, 32, Complexity(frame))
}

func TestRasterizationThresholdIsInclusive(t *testing.T) {
	frame := ir.NewFrameGroup(100, 100, 0, ir.YDown)
	frame.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(0, 0, 1, 1, ir.SolidFill{}, nil),
	}})
	complexity := Complexity(frame)
	assert.Equal(t, 8, complexity)
	assert.True(t, needsRasterization(frame, complexity))
	assert.False(t, needsRasterization(frame, complexity+1))
}
