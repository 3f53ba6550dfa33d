package pdf

import "github.com/benoitkugler/swfconvert/ir"

// Costs of the path elements in the complexity score.
const (
	moveToComplexity    = 2
	lineToComplexity    = 2
	quadToComplexity    = 4
	cubicToComplexity   = 6
	rectangleComplexity = 2
	closeComplexity     = 0
)

// Complexity is the cost of drawing obj as vector content. Text and
// image fills cost nothing, so only shapes with other fills count.
func Complexity(obj ir.Object) int {
	switch obj := obj.(type) {
	case ir.GroupObject:
		total := 0
		for _, child := range obj.Children() {
			total += Complexity(child)
		}
		return total
	case *ir.ShapeObject:
		total := 0
		for _, p := range obj.Paths {
			total += pathComplexity(p)
		}
		return total
	}
	return 0
}

func pathComplexity(p ir.Path) int {
	if p.Fill == nil {
		return 0
	}
	if _, isImage := p.Fill.(*ir.ImageFill); isImage {
		return 0
	}
	total := 0
	for _, e := range p.Elements {
		switch e.(type) {
		case ir.MoveTo:
			total += moveToComplexity
		case ir.LineTo:
			total += lineToComplexity
		case ir.QuadTo:
			total += quadToComplexity
		case ir.CubicTo:
			total += cubicToComplexity
		case ir.Rectangle:
			total += rectangleComplexity
		case ir.ClosePath:
			total += closeComplexity
		}
	}
	return total
}

// needsRasterization reports whether a frame is too complex to be
// drawn as vector content. The threshold is inclusive.
func needsRasterization(frame *ir.FrameGroup, threshold int) bool {
	return Complexity(frame) >= threshold
}
