package svg

import (
	"strings"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/chewxy/math32"
)

// PathWriter writes SVG path data with a fixed precision. Optimized
// paths use the shortest of the absolute and relative forms of each
// command, implicit commands and no superfluous spaces. Segments
// invisible at the precision are skipped.
type PathWriter struct {
	precision int
	mult      float32
	optimize  bool

	sb                 strings.Builder
	abs, rel           []byte
	lastCommand        byte
	lastNumber         string
	startX, startY     float32
	currentX, currentY float32
}

// NewPathWriter panics if precision is out of range: callers check
// the configured precision with CheckPrecision.
func NewPathWriter(precision int, optimize bool) *PathWriter {
	if err := CheckPrecision("precision", precision); err != nil {
		panic(err)
	}
	return &PathWriter{precision: precision, mult: math32.Pow(10, float32(precision)), optimize: optimize}
}

func (w *PathWriter) round(v float32) float32 {
	return math32.Floor(v*w.mult+0.5) / w.mult
}

func (w *PathWriter) format(values ...float32) []string {
	return formatAll(w.precision, true, values...)
}

func (w *PathWriter) MoveTo(x, y float32) {
	w.startX, w.startY = w.round(x), w.round(y)
	w.appendShortest('M', x, y, w.format(x, y), w.format(x-w.currentX, y-w.currentY))
}

func (w *PathWriter) LineTo(x, y float32) {
	abs := w.format(x, y)
	rel := w.format(x-w.currentX, y-w.currentY)
	switch {
	case rel[0] == "0" && rel[1] == "0":
	case rel[0] == "0":
		w.appendShortest('V', x, y, abs[1:], rel[1:])
	case rel[1] == "0":
		w.appendShortest('H', x, y, abs[:1], rel[:1])
	default:
		w.appendShortest('L', x, y, abs, rel)
	}
}

func (w *PathWriter) QuadTo(cx, cy, x, y float32) {
	rel := w.format(cx-w.currentX, cy-w.currentY, x-w.currentX, y-w.currentY)
	if rel[2] == "0" && rel[3] == "0" {
		return
	}
	w.appendShortest('Q', x, y, w.format(cx, cy, x, y), rel)
}

func (w *PathWriter) CubicTo(c1x, c1y, c2x, c2y, x, y float32) {
	rel := w.format(c1x-w.currentX, c1y-w.currentY, c2x-w.currentX, c2y-w.currentY, x-w.currentX, y-w.currentY)
	if rel[4] == "0" && rel[5] == "0" {
		return
	}
	w.appendShortest('C', x, y, w.format(c1x, c1y, c2x, c2y, x, y), rel)
}

func (w *PathWriter) ClosePath() {
	if !w.optimize && w.sb.Len() != 0 {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteByte('Z')
	w.lastCommand = 'Z'
	w.currentX, w.currentY = w.startX, w.startY
}

// WritePath writes the elements of p.
func (w *PathWriter) WritePath(p ir.Path) {
	for _, e := range p.Elements {
		switch e := e.(type) {
		case ir.MoveTo:
			w.MoveTo(e.X, e.Y)
		case ir.LineTo:
			w.LineTo(e.X, e.Y)
		case ir.QuadTo:
			w.QuadTo(e.CX, e.CY, e.X, e.Y)
		case ir.CubicTo:
			w.CubicTo(e.C1X, e.C1Y, e.C2X, e.C2Y, e.X, e.Y)
		case ir.ClosePath:
			w.ClosePath()
		case ir.Rectangle:
			w.MoveTo(e.X, e.Y)
			w.LineTo(e.X+e.W, e.Y)
			w.LineTo(e.X+e.W, e.Y+e.H)
			w.LineTo(e.X, e.Y+e.H)
			w.ClosePath()
		}
	}
}

func (w *PathWriter) String() string { return w.sb.String() }

func (w *PathWriter) appendShortest(command byte, x, y float32, abs, rel []string) {
	if !w.optimize {
		if w.sb.Len() != 0 {
			w.sb.WriteByte(' ')
		}
		w.sb.WriteByte(command)
		w.sb.WriteByte(' ')
		w.sb.WriteString(strings.Join(abs, " "))
		w.lastNumber = abs[len(abs)-1]
		w.currentX, w.currentY = w.round(x), w.round(y)
		return
	}

	absCommand, relCommand := upper(command), lower(command)
	w.abs = w.appendCommand(w.abs[:0], absCommand, abs)
	w.rel = w.appendCommand(w.rel[:0], relCommand, rel)
	if len(w.rel) < len(w.abs) {
		w.sb.Write(w.rel)
		w.lastNumber = rel[len(rel)-1]
		w.currentX += w.round(x - w.currentX)
		w.currentY += w.round(y - w.currentY)
		w.lastCommand = relCommand
	} else {
		w.sb.Write(w.abs)
		w.lastNumber = abs[len(abs)-1]
		w.currentX, w.currentY = w.round(x), w.round(y)
		w.lastCommand = absCommand
	}
}

func (w *PathWriter) appendCommand(b []byte, command byte, values []string) []byte {
	last := w.lastNumber
	repeated := w.lastCommand == command && command != 'M' && command != 'm'
	implicitLine := (w.lastCommand == 'M' && command == 'L') || (w.lastCommand == 'm' && command == 'l')
	if !repeated && !implicitLine {
		b = append(b, command)
		last = ""
	}
	b, _ = AppendValuesOptimized(b, last, values...)
	return b
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
