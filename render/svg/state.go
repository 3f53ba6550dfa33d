package svg

import (
	"github.com/benoitkugler/swfconvert/ir"
)

// GraphicsState holds the presentation attributes of an element.
// Zero values and nil pointers inherit the value of the parent.
type GraphicsState struct {
	Fill          Paint
	FillOpacity   *float32
	FillRule      string
	Stroke        Paint
	StrokeOpacity *float32
	StrokeWidth   *float32
	LineJoin      string
	LineCap       string
	MiterLimit    *float32
	ClipPath      string // def ID
	ClipRule      string
	Mask          string // def ID
	// Transform is never inherited.
	Transform           []Transform
	PreserveAspectRatio string
	MixBlendMode        string
}

const (
	ruleNonZero = "nonzero"
	ruleEvenOdd = "evenodd"
)

var defaultState = GraphicsState{
	Fill:                ColorPaint(ir.NewColor(0, 0, 0, 0xFF)),
	FillOpacity:         num(1),
	FillRule:            ruleNonZero,
	Stroke:              nonePaint,
	StrokeOpacity:       num(1),
	StrokeWidth:         num(0),
	LineJoin:            "miter",
	LineCap:             "butt",
	MiterLimit:          num(4),
	ClipRule:            ruleNonZero,
	PreserveAspectRatio: "xMidYMid",
	MixBlendMode:        "normal",
}

func num(v float32) *float32 { return &v }

// Paint is an SVG paint value.
type Paint string

const nonePaint Paint = "none"

const hexChars = "0123456789abcdef"

// ColorPaint ignores the alpha of c, which must be given as opacity.
func ColorPaint(c ir.Color) Paint {
	r, g, b := c.R(), c.G(), c.B()
	if foldable(r) && foldable(g) && foldable(b) {
		return Paint([]byte{'#', hexChars[r&0xF], hexChars[g&0xF], hexChars[b&0xF]})
	}
	return Paint(c.StringNoAlpha())
}

func foldable(v uint8) bool { return v&0xF == v>>4 }

func urlPaint(id string) Paint { return Paint(urlReference(id)) }

func urlReference(id string) string { return "url(#" + id + ")" }

// Transform is one function of a transform list.
type Transform struct {
	Name   string
	Values []float32
}

// transforms returns the shortest transform list for m, nil for
// the identity.
func transforms(m ir.Matrix) []Transform {
	switch {
	case m.IsIdentity():
		return nil
	case m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1:
		if m.F == 0 {
			return []Transform{{"translate", []float32{float32(m.E)}}}
		}
		return []Transform{{"translate", []float32{float32(m.E), float32(m.F)}}}
	case m.B == 0 && m.C == 0 && m.E == 0 && m.F == 0:
		if m.A == m.D {
			return []Transform{{"scale", []float32{float32(m.A)}}}
		}
		return []Transform{{"scale", []float32{float32(m.A), float32(m.D)}}}
	}
	return []Transform{{"matrix", []float32{
		float32(m.A), float32(m.B), float32(m.C), float32(m.D), float32(m.E), float32(m.F),
	}}}
}

func formatTransforms(list []Transform, precision int, optimized bool) string {
	var b []byte
	for i, t := range list {
		if i != 0 && !optimized {
			b = append(b, ' ')
		}
		b = append(b, t.Name...)
		b = append(b, '(')
		if optimized {
			b, _ = AppendValuesOptimized(b, "", formatAll(precision, true, t.Values...)...)
		} else {
			b = AppendValues(b, precision, t.Values...)
		}
		b = append(b, ')')
	}
	return string(b)
}

// changed returns the value of a property in the last state of
// stack, if it is set and differs from the value inherited.
func changed[T comparable](stack []GraphicsState, get func(*GraphicsState) (T, bool)) (T, bool) {
	var zero T
	v, ok := get(&stack[len(stack)-1])
	if !ok {
		return zero, false
	}
	for i := len(stack) - 2; i >= 0; i-- {
		if old, ok := get(&stack[i]); ok {
			return v, v != old
		}
	}
	return v, true
}

func str[S ~string](v S) (S, bool) { return v, v != "" }

func float(v *float32) (float32, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}
