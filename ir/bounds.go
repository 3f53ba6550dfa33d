package ir

import (
	"math"

	"github.com/chewxy/math32"
)

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y, W, H float32
}

// NewRect normalizes the two given corners.
func NewRect(x0, y0, x1, y1 float32) Rect {
	return Rect{X: math32.Min(x0, x1), Y: math32.Min(y0, y1), W: math32.Abs(x1 - x0), H: math32.Abs(y1 - y0)}
}

// Reset makes r empty, ready for AddPoint.
func (r *Rect) Reset() {
	*r = Rect{X: math32.Inf(1), Y: math32.Inf(1), W: math32.Inf(-1), H: math32.Inf(-1)}
}

// IsEmpty is true for a reset rectangle with no points.
func (r Rect) IsEmpty() bool { return math32.IsInf(r.X, 1) || r.W < 0 }

// AddPoint grows r to include (x, y).
func (r *Rect) AddPoint(x, y float32) {
	if r.IsEmpty() {
		*r = Rect{X: x, Y: y}
		return
	}
	if x < r.X {
		r.W += r.X - x
		r.X = x
	} else if x > r.X+r.W {
		r.W = x - r.X
	}
	if y < r.Y {
		r.H += r.Y - y
		r.Y = y
	} else if y > r.Y+r.H {
		r.H = y - r.Y
	}
}

// Union grows r to include o.
func (r *Rect) Union(o Rect) {
	if o.IsEmpty() {
		return
	}
	r.AddPoint(o.X, o.Y)
	r.AddPoint(o.X+o.W, o.Y+o.H)
}

// compute the bouding box of a path, needed by masks
// and the debug bounds drawing

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

type quadBezier [6]float64

// quadratic polinomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	aX, bX := quadraticDerivative(cu[0], cu[2], cu[4])
	aY, bY := quadraticDerivative(cu[1], cu[3], cu[5])
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierQuad(cu[0], cu[2], cu[4], t), bezierQuad(cu[1], cu[3], cu[5], t)
}

type cubicBezier [8]float64

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		p0
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0], cu[2], cu[4], cu[6])
	aY, bY, cY := cubicDerivative(cu[1], cu[3], cu[5], cu[7])
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierSpline(cu[0], cu[2], cu[4], cu[6], t), bezierSpline(cu[1], cu[3], cu[5], cu[7], t)
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		// simple line: x = -c / b
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	sq := math.Sqrt(d)
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

// addCurve adds the extrema and end points of the curve.
func (r *Rect) addCurve(curve bezier) {
	tX, tY := curve.criticalPoints()
	for _, t := range append(append(tX, 0, 1), tY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		x, y := curve.evaluateCurve(t)
		r.AddPoint(float32(x), float32(y))
	}
}

// PathBounds returns the exact bounds of the path geometry,
// or an empty rectangle for an empty path.
func PathBounds(p Path) Rect {
	var (
		r              Rect
		curX, curY     float32
		startX, startY float32
	)
	r.Reset()
	for _, e := range p.Elements {
		switch e := e.(type) {
		case MoveTo:
			curX, curY = e.X, e.Y
			startX, startY = curX, curY
			continue
		case LineTo:
			r.AddPoint(curX, curY)
			r.AddPoint(e.X, e.Y)
		case QuadTo:
			r.addCurve(quadBezier{float64(curX), float64(curY), float64(e.CX), float64(e.CY), float64(e.X), float64(e.Y)})
		case CubicTo:
			r.addCurve(cubicBezier{
				float64(curX), float64(curY), float64(e.C1X), float64(e.C1Y),
				float64(e.C2X), float64(e.C2Y), float64(e.X), float64(e.Y),
			})
		case ClosePath:
			r.AddPoint(curX, curY)
			curX, curY = startX, startY
			continue
		case Rectangle:
			r.Union(Rect(e))
			startX, startY = e.X, e.Y
		}
		curX, curY = e.End()
	}
	return r
}

// ObjectBounds returns the bounds of the shapes and texts of obj,
// in the coordinate space given by m. Text bounds are approximated
// from the font size and the glyph advances.
func ObjectBounds(obj Object, m Matrix) Rect {
	var r Rect
	r.Reset()
	switch obj := obj.(type) {
	case *ShapeObject:
		for _, p := range obj.Paths {
			pb := PathBounds(p.Transformed(m))
			if p.Line != nil && !pb.IsEmpty() {
				hw := p.Line.Width / 2
				pb = Rect{pb.X - hw, pb.Y - hw, pb.W + 2*hw, pb.H + 2*hw}
			}
			r.Union(pb)
		}
	case *TextObject:
		r.Union(m.TransformRect(obj.Bounds()))
	case *TransformGroup:
		m = m.Mul(obj.Transform)
		for _, child := range obj.Objects {
			r.Union(ObjectBounds(child, m))
		}
	case *FrameGroup:
		m = m.Mul(obj.Transform)
		for _, child := range obj.Objects {
			r.Union(ObjectBounds(child, m))
		}
	case GroupObject:
		for _, child := range obj.Children() {
			r.Union(ObjectBounds(child, m))
		}
	}
	return r
}
