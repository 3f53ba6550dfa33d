package pdf

import (
	"codeberg.org/go-pdf/fpdf"
	"github.com/benoitkugler/swfconvert/ir"
)

// fpdf takes coordinates with the Y axis pointing down from the top of
// the page, but writes transforms as they are, in the native PDF space.
// Transforms are conjugated with the page flip so that the coordinates
// of the frame tree may be passed unchanged under them.

func pageFlip(height float64) ir.Matrix { return ir.Matrix{A: 1, D: -1, F: height} }

func conjugate(m ir.Matrix, height float64) ir.Matrix {
	f := pageFlip(height)
	return f.Mul(m).Mul(f)
}

func toTransformMatrix(m ir.Matrix) fpdf.TransformMatrix {
	return fpdf.TransformMatrix{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F}
}

// frameTransform returns the transform of frame to the page space
// of fpdf, whatever the Y direction of the frame.
func frameTransform(frame *ir.FrameGroup) ir.Matrix {
	if frame.YDirection() == ir.YUp {
		return pageFlip(float64(frame.ActualHeight())).Mul(frame.Transform)
	}
	return frame.Transform
}

// pather is implemented by *fpdf.Fpdf.
type pather interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y float64)
	ClosePath()
}

// writePath adds the elements of p to the current path.
// Quadratic curves are elevated to cubic ones, the only kind PDF has.
func writePath(pdf pather, p ir.Path) {
	var x, y, startX, startY float32
	for _, e := range p.Elements {
		switch e := e.(type) {
		case ir.MoveTo:
			pdf.MoveTo(float64(e.X), float64(e.Y))
			startX, startY = e.X, e.Y
		case ir.LineTo:
			pdf.LineTo(float64(e.X), float64(e.Y))
		case ir.QuadTo:
			c := e.ToCubic(x, y)
			pdf.CurveBezierCubicTo(float64(c.C1X), float64(c.C1Y), float64(c.C2X), float64(c.C2Y), float64(c.X), float64(c.Y))
		case ir.CubicTo:
			pdf.CurveBezierCubicTo(float64(e.C1X), float64(e.C1Y), float64(e.C2X), float64(e.C2Y), float64(e.X), float64(e.Y))
		case ir.ClosePath:
			pdf.ClosePath()
			x, y = startX, startY
			continue
		case ir.Rectangle:
			pdf.MoveTo(float64(e.X), float64(e.Y))
			pdf.LineTo(float64(e.X+e.W), float64(e.Y))
			pdf.LineTo(float64(e.X+e.W), float64(e.Y+e.H))
			pdf.LineTo(float64(e.X), float64(e.Y+e.H))
			pdf.ClosePath()
			startX, startY = e.X, e.Y
		}
		x, y = e.End()
	}
}
