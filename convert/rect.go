package convert

import (
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/chewxy/math32"
)

// RecognizeRectangle returns the rectangle described by elements, which
// must be exactly MoveTo, LineTo, LineTo, LineTo, ClosePath with
// axis-aligned edges, starting at any corner and in any direction.
// Rectangles with a zero width or height are rejected.
func RecognizeRectangle(elements []ir.PathElement) (ir.Rectangle, bool) {
	if len(elements) != 5 {
		return ir.Rectangle{}, false
	}
	if _, ok := elements[4].(ir.ClosePath); !ok {
		return ir.Rectangle{}, false
	}
	move, ok := elements[0].(ir.MoveTo)
	if !ok {
		return ir.Rectangle{}, false
	}
	var xs, ys [4]float32
	xs[0], ys[0] = move.X, move.Y
	for i := 1; i < 4; i++ {
		line, ok := elements[i].(ir.LineTo)
		if !ok {
			return ir.Rectangle{}, false
		}
		xs[i], ys[i] = line.X, line.Y
	}

	// first edge horizontal, then alternating
	horizontalFirst := ys[0] == ys[1] && xs[1] == xs[2] && ys[2] == ys[3] && xs[3] == xs[0]
	verticalFirst := xs[0] == xs[1] && ys[1] == ys[2] && xs[2] == xs[3] && ys[3] == ys[0]
	if !horizontalFirst && !verticalFirst {
		return ir.Rectangle{}, false
	}
	if xs[0] == xs[2] || ys[0] == ys[2] {
		return ir.Rectangle{}, false
	}
	x, y := math32.Min(xs[0], xs[2]), math32.Min(ys[0], ys[2])
	return ir.Rectangle{
		X: x,
		Y: y,
		W: math32.Max(xs[0], xs[2]) - x,
		H: math32.Max(ys[0], ys[2]) - y,
	}, true
}
