// Package ir implements the intermediate representation of converted
// frames: a tree of groups, shapes and texts, consumed by every output
// backend.
package ir

import (
	"strconv"
	"strings"
)

type elementKind uint8

const (
	kindMoveTo elementKind = iota
	kindLineTo
	kindQuadTo
	kindCubicTo
	kindClosePath
	kindRectangle
)

// PathElement groups the different path commands.
// A non empty path always starts with a MoveTo.
type PathElement interface {
	kind() elementKind
	// End returns the pen position after the element.
	// ClosePath reports the origin and should not be used.
	End() (x, y float32)
}

type MoveTo struct{ X, Y float32 }

type LineTo struct{ X, Y float32 }

type QuadTo struct{ CX, CY, X, Y float32 }

type CubicTo struct{ C1X, C1Y, C2X, C2Y, X, Y float32 }

// ClosePath carries no geometry.
type ClosePath struct{}

// Rectangle is a shortcut for an axis aligned closed rectangle,
// with non negative width and height.
type Rectangle struct{ X, Y, W, H float32 }

func (MoveTo) kind() elementKind    { return kindMoveTo }
func (LineTo) kind() elementKind    { return kindLineTo }
func (QuadTo) kind() elementKind    { return kindQuadTo }
func (CubicTo) kind() elementKind   { return kindCubicTo }
func (ClosePath) kind() elementKind { return kindClosePath }
func (Rectangle) kind() elementKind { return kindRectangle }

func (e MoveTo) End() (x, y float32)    { return e.X, e.Y }
func (e LineTo) End() (x, y float32)    { return e.X, e.Y }
func (e QuadTo) End() (x, y float32)    { return e.X, e.Y }
func (e CubicTo) End() (x, y float32)   { return e.X, e.Y }
func (ClosePath) End() (x, y float32)   { return 0, 0 }
func (e Rectangle) End() (x, y float32) { return e.X, e.Y }

// ToCubic elevates the quadratic curve starting at (sx, sy)
// to the equivalent cubic curve.
func (e QuadTo) ToCubic(sx, sy float32) CubicTo {
	return CubicTo{
		C1X: sx + 2./3.*(e.CX-sx),
		C1Y: sy + 2./3.*(e.CY-sy),
		C2X: e.X + 2./3.*(e.CX-e.X),
		C2Y: e.Y + 2./3.*(e.CY-e.Y),
		X:   e.X,
		Y:   e.Y,
	}
}

// Path is a sequence of elements, with optional fill and line styles.
type Path struct {
	Elements []PathElement
	Fill     FillStyle  // optional
	Line     *LineStyle // optional
}

// RectanglePath returns the explicit (non shortened) form of a rectangle.
func RectanglePath(x, y, w, h float32, fill FillStyle, line *LineStyle) Path {
	return Path{
		Elements: []PathElement{
			MoveTo{x, y},
			LineTo{x + w, y},
			LineTo{x + w, y + h},
			LineTo{x, y + h},
			ClosePath{},
		},
		Fill: fill,
		Line: line,
	}
}

// IsEmpty returns true if the path has no drawing element.
func (p Path) IsEmpty() bool {
	for _, e := range p.Elements {
		if _, isMove := e.(MoveTo); !isMove {
			return false
		}
	}
	return true
}

// Transformed returns a copy of the path with every coordinate
// mapped by m. Rectangles are expanded when m has a rotation or skew.
func (p Path) Transformed(m Matrix) Path {
	out := Path{Elements: make([]PathElement, 0, len(p.Elements)), Fill: p.Fill, Line: p.Line}
	tr := func(x, y float32) (float32, float32) {
		tx, ty := m.Transform(float64(x), float64(y))
		return float32(tx), float32(ty)
	}
	for _, e := range p.Elements {
		switch e := e.(type) {
		case MoveTo:
			x, y := tr(e.X, e.Y)
			out.Elements = append(out.Elements, MoveTo{x, y})
		case LineTo:
			x, y := tr(e.X, e.Y)
			out.Elements = append(out.Elements, LineTo{x, y})
		case QuadTo:
			cx, cy := tr(e.CX, e.CY)
			x, y := tr(e.X, e.Y)
			out.Elements = append(out.Elements, QuadTo{cx, cy, x, y})
		case CubicTo:
			c1x, c1y := tr(e.C1X, e.C1Y)
			c2x, c2y := tr(e.C2X, e.C2Y)
			x, y := tr(e.X, e.Y)
			out.Elements = append(out.Elements, CubicTo{c1x, c1y, c2x, c2y, x, y})
		case ClosePath:
			out.Elements = append(out.Elements, e)
		case Rectangle:
			if m.B == 0 && m.C == 0 {
				x0, y0 := tr(e.X, e.Y)
				x1, y1 := tr(e.X+e.W, e.Y+e.H)
				r := NewRect(x0, y0, x1, y1)
				out.Elements = append(out.Elements, Rectangle{r.X, r.Y, r.W, r.H})
				continue
			}
			rp := RectanglePath(e.X, e.Y, e.W, e.H, nil, nil).Transformed(m)
			out.Elements = append(out.Elements, rp.Elements...)
		}
	}
	return out
}

// SVG returns the path data in SVG syntax, with at most
// 3 fractional digits.
func (p Path) SVG() string {
	var sb strings.Builder
	for i, e := range p.Elements {
		if i != 0 {
			sb.WriteByte(' ')
		}
		switch e := e.(type) {
		case MoveTo:
			sb.WriteString("M ")
			writeValues(&sb, e.X, e.Y)
		case LineTo:
			sb.WriteString("L ")
			writeValues(&sb, e.X, e.Y)
		case QuadTo:
			sb.WriteString("Q ")
			writeValues(&sb, e.CX, e.CY, e.X, e.Y)
		case CubicTo:
			sb.WriteString("C ")
			writeValues(&sb, e.C1X, e.C1Y, e.C2X, e.C2Y, e.X, e.Y)
		case ClosePath:
			sb.WriteByte('Z')
		case Rectangle:
			sb.WriteString("M ")
			writeValues(&sb, e.X, e.Y)
			sb.WriteString(" H ")
			writeValues(&sb, e.X+e.W)
			sb.WriteString(" V ")
			writeValues(&sb, e.Y+e.H)
			sb.WriteString(" H ")
			writeValues(&sb, e.X)
			sb.WriteString(" Z")
		}
	}
	return sb.String()
}

func (p Path) String() string { return p.SVG() }

func writeValues(sb *strings.Builder, values ...float32) {
	for i, v := range values {
		if i != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(formatDebug(v))
	}
}

// formatDebug writes at most 3 fractional digits, without trailing zeros.
func formatDebug(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', 3, 32)
	if strings.IndexByte(s, '.') != -1 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
