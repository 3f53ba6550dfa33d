package convert

import (
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/chewxy/math32"
)

// ColorTransform maps each channel c (in [0, 255]) to c*Mult + Add.
type ColorTransform struct {
	MultR, MultG, MultB, MultA float32
	AddR, AddG, AddB, AddA     float32
}

// IdentityColorTransform does nothing.
var IdentityColorTransform = ColorTransform{MultR: 1, MultG: 1, MultB: 1, MultA: 1}

func newColorTransform(ct swf.ColorTransform) ColorTransform {
	return ColorTransform{
		MultR: ct.MultR, MultG: ct.MultG, MultB: ct.MultB, MultA: ct.MultA,
		AddR: ct.AddR, AddG: ct.AddG, AddB: ct.AddB, AddA: ct.AddA,
	}
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func (ct ColorTransform) apply(ch [4]float32) [4]float32 {
	return [4]float32{
		clamp255(ch[0]*ct.MultR + ct.AddR),
		clamp255(ch[1]*ct.MultG + ct.AddG),
		clamp255(ch[2]*ct.MultB + ct.AddB),
		clamp255(ch[3]*ct.MultA + ct.AddA),
	}
}

// Transform applies ct to c.
func (ct ColorTransform) Transform(c ir.Color) ir.Color {
	return fromChannels(ct.apply(channels(c)))
}

// Then returns the transform applying ct, then next.
func (ct ColorTransform) Then(next ColorTransform) ColorTransform {
	return ColorTransform{
		MultR: ct.MultR * next.MultR, AddR: ct.AddR*next.MultR + next.AddR,
		MultG: ct.MultG * next.MultG, AddG: ct.AddG*next.MultG + next.AddG,
		MultB: ct.MultB * next.MultB, AddB: ct.AddB*next.MultB + next.AddB,
		MultA: ct.MultA * next.MultA, AddA: ct.AddA*next.MultA + next.AddA,
	}
}

func channels(c ir.Color) [4]float32 {
	return [4]float32{float32(c.R()), float32(c.G()), float32(c.B()), float32(c.A())}
}

func fromChannels(ch [4]float32) ir.Color {
	return ir.NewColor(
		uint8(math32.Round(ch[0])),
		uint8(math32.Round(ch[1])),
		uint8(math32.Round(ch[2])),
		uint8(math32.Round(ch[3])),
	)
}

// CompositeColorTransform is the stack of the color transforms
// of the nested objects being converted, outermost first.
// The zero value is an empty stack.
type CompositeColorTransform struct {
	transforms []ColorTransform
}

func (cc *CompositeColorTransform) Push(ct ColorTransform) {
	cc.transforms = append(cc.transforms, ct)
}

func (cc *CompositeColorTransform) Pop() {
	cc.transforms = cc.transforms[:len(cc.transforms)-1]
}

func (cc *CompositeColorTransform) Len() int { return len(cc.transforms) }

func (cc *CompositeColorTransform) IsEmpty() bool { return len(cc.transforms) == 0 }

// Transform applies every transform of the stack, innermost first.
// Channels are clamped after each transform, and rounded once.
func (cc *CompositeColorTransform) Transform(c ir.Color) ir.Color {
	if len(cc.transforms) == 0 {
		return c
	}
	ch := channels(c)
	for i := len(cc.transforms) - 1; i >= 0; i-- {
		ch = cc.transforms[i].apply(ch)
	}
	return fromChannels(ch)
}

// transformStack holds the composed transform of the nested
// placements, each entry being the product of the previous ones.
type transformStack struct {
	stack []ir.Matrix
}

func (ts *transformStack) current() ir.Matrix {
	if len(ts.stack) == 0 {
		return ir.Identity
	}
	return ts.stack[len(ts.stack)-1]
}

// push concatenates m to the current transform: m is applied first.
func (ts *transformStack) push(m ir.Matrix) {
	ts.stack = append(ts.stack, ts.current().Mul(m))
}

func (ts *transformStack) pop() { ts.stack = ts.stack[:len(ts.stack)-1] }

const twipsPerInch = 1440

// ImageDensity returns the density in pixels per inch of a w x h image
// drawn with the fill transform imageTransform (mapping the unit square to
// twips) under the current transform. The lowest of the two
// axis densities is returned. It is 0 when the image is drawn with
// a zero size, which is never downsampled.
func ImageDensity(current, imageTransform ir.Matrix, w, h int) float32 {
	tr := current.Mul(imageTransform)
	width := math32.Hypot(float32(tr.A), float32(tr.B)) / twipsPerInch
	height := math32.Hypot(float32(tr.C), float32(tr.D)) / twipsPerInch
	if width == 0 || height == 0 {
		return 0
	}
	xDensity := float32(w) / width
	yDensity := float32(h) / height
	return math32.Min(xDensity, yDensity)
}

// matrixFromSwf converts a placement matrix.
func matrixFromSwf(m swf.Matrix) ir.Matrix {
	return ir.Matrix{
		A: float64(m.ScaleX), B: float64(m.Skew0),
		C: float64(m.Skew1), D: float64(m.ScaleY),
		E: float64(m.TranslateX), F: float64(m.TranslateY),
	}
}

func colorFromSwf(c swf.Color) ir.Color { return ir.NewColor(c.R, c.G, c.B, c.A) }
