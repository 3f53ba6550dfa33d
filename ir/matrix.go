package ir

import (
	"math"
	"strconv"
)

// Matrix is an affine transform mapping (x, y) to
// (A*x + C*y + E, B*x + D*y + F).
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the neutral transform.
var Identity = Matrix{A: 1, D: 1}

func NewTranslation(tx, ty float64) Matrix { return Matrix{A: 1, D: 1, E: tx, F: ty} }

func NewScaling(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }

// Mul returns m x n, that is the transform applying n first, then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Translate returns m x translation(tx, ty).
func (m Matrix) Translate(tx, ty float64) Matrix { return m.Mul(NewTranslation(tx, ty)) }

// Scale returns m x scaling(sx, sy).
func (m Matrix) Scale(sx, sy float64) Matrix { return m.Mul(NewScaling(sx, sy)) }

func (m Matrix) Determinant() float64 { return m.A*m.D - m.B*m.C }

// Invert returns false if m is not invertible.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) {
		return Matrix{}, false
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

func (m Matrix) IsIdentity() bool { return m == Identity }

func (m Matrix) Transform(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// TransformDelta ignores the translation part.
func (m Matrix) TransformDelta(dx, dy float64) (float64, float64) {
	return m.A*dx + m.C*dy, m.B*dx + m.D*dy
}

// TransformRect returns the bounds of the transformed rectangle.
func (m Matrix) TransformRect(r Rect) Rect {
	var b Rect
	b.Reset()
	for _, p := range [4][2]float32{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}} {
		x, y := m.Transform(float64(p[0]), float64(p[1]))
		b.AddPoint(float32(x), float32(y))
	}
	return b
}

// String returns [[A C E] [B D F]].
func (m Matrix) String() string {
	f := func(v float64) string {
		if v == 0 {
			return "0"
		}
		return strconv.FormatFloat(v, 'f', -1, 32)
	}
	return "[[" + f(m.A) + " " + f(m.C) + " " + f(m.E) + "] [" +
		f(m.B) + " " + f(m.D) + " " + f(m.F) + "]]"
}
