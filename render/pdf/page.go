package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/benoitkugler/swfconvert/ir"
)

// op is a recorded drawing operation, replayed on the document.
type op func(w *pageWriter)

// page is the content of a frame, built without touching the
// document so that frames can be built concurrently.
type page struct {
	width, height float64
	ops           []op
}

// pageWriter replays the pages, in order, on one document.
type pageWriter struct {
	pdf    *fpdf.Fpdf
	height float64 // of the current page
	blend  string
	blends []string

	fonts  map[*pdfFont]string
	images map[*pdfImage]string
}

func newPageWriter(pdf *fpdf.Fpdf) *pageWriter {
	return &pageWriter{pdf: pdf, fonts: map[*pdfFont]string{}, images: map[*pdfImage]string{}}
}

func (w *pageWriter) writePage(p *page) {
	w.pdf.AddPageFormat("P", fpdf.SizeType{Wd: p.width, Ht: p.height})
	w.height = p.height
	w.blend, w.blends = "Normal", nil
	for _, o := range p.ops {
		o(w)
	}
}

func (w *pageWriter) transform(m ir.Matrix) {
	w.pdf.Transform(toTransformMatrix(conjugate(m, w.height)))
}

func (w *pageWriter) setAlpha(alpha float64) {
	w.pdf.SetAlpha(alpha, w.blend)
}

// fontFamily adds the font to the document on first use.
func (w *pageWriter) fontFamily(font *pdfFont) string {
	family, ok := w.fonts[font]
	if !ok {
		family = fmt.Sprintf("f%d", len(w.fonts))
		w.pdf.AddUTF8FontFromBytes(family, "", font.data)
		w.fonts[font] = family
	}
	return family
}

// imageName adds the image to the document on first use.
func (w *pageWriter) imageName(img *pdfImage) string {
	name, ok := w.images[img]
	if !ok {
		name = fmt.Sprintf("img%d", len(w.images))
		w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: img.kind}, bytes.NewReader(img.data))
		w.images[img] = name
	}
	return name
}

var (
	capStyles  = [...]string{ir.CapButt: "butt", ir.CapRound: "round", ir.CapSquare: "square"}
	joinStyles = [...]string{ir.JoinMiter: "miter", ir.JoinRound: "round", ir.JoinBevel: "bevel"}
)

// blendModes lists the modes PDF supports.
var blendModes = map[ir.BlendMode]string{
	ir.BlendNull:      "Normal",
	ir.BlendNormal:    "Normal",
	ir.BlendLayer:     "Normal",
	ir.BlendMultiply:  "Multiply",
	ir.BlendLighten:   "Lighten",
	ir.BlendDarken:    "Darken",
	ir.BlendHardlight: "HardLight",
	ir.BlendScreen:    "Screen",
	ir.BlendOverlay:   "Overlay",
}

// gradientExtent is the half size of the area painted by gradients,
// in gradient space, much larger than the gradient square.
const gradientExtent = 16 * ir.GradientSize

type pageBuilder struct {
	tables *tables
	logger *slog.Logger
	ops    []op
}

// buildPage records the drawing of frame.
func buildPage(frame *ir.FrameGroup, t *tables, logger *slog.Logger) (*page, error) {
	b := &pageBuilder{tables: t, logger: logger}
	b.push()
	b.transform(frameTransform(frame))
	for _, child := range frame.Children() {
		if err := b.drawObject(child); err != nil {
			return nil, err
		}
	}
	b.pop()
	return &page{width: float64(frame.ActualWidth()), height: float64(frame.ActualHeight()), ops: b.ops}, nil
}

func (b *pageBuilder) emit(o op) { b.ops = append(b.ops, o) }

func (b *pageBuilder) push() { b.emit(func(w *pageWriter) { w.pdf.TransformBegin() }) }

func (b *pageBuilder) pop() { b.emit(func(w *pageWriter) { w.pdf.TransformEnd() }) }

func (b *pageBuilder) raw(s string) { b.emit(func(w *pageWriter) { w.pdf.RawWriteStr(s) }) }

func (b *pageBuilder) transform(m ir.Matrix) {
	if m.IsIdentity() {
		return
	}
	b.emit(func(w *pageWriter) { w.transform(m) })
}

// clip intersects the clipping area with the union of paths.
func (b *pageBuilder) clip(paths []ir.Path, evenOdd bool) {
	b.emit(func(w *pageWriter) {
		for _, p := range paths {
			writePath(w.pdf, p)
		}
	})
	if evenOdd {
		b.raw("W* n")
	} else {
		b.raw("W n")
	}
}

func (b *pageBuilder) drawChildren(g ir.GroupObject) error {
	for _, child := range g.Children() {
		if err := b.drawObject(child); err != nil {
			return err
		}
	}
	return nil
}

func (b *pageBuilder) drawObject(obj ir.Object) error {
	switch obj := obj.(type) {
	case *ir.TransformGroup:
		if obj.Transform.Determinant() == 0 || len(obj.Objects) == 0 {
			return nil
		}
		b.push()
		b.transform(obj.Transform)
		err := b.drawChildren(obj)
		b.pop()
		return err
	case *ir.ClipGroup:
		if len(obj.Objects) == 0 {
			return nil
		}
		b.push()
		b.clip(obj.Clips, true)
		err := b.drawChildren(obj)
		b.pop()
		return err
	case *ir.BlendGroup:
		mode, ok := blendModes[obj.Mode]
		if !ok {
			b.logger.Warn("unsupported blend mode in PDF", "mode", obj.Mode.String())
			return b.drawChildren(obj)
		}
		b.emit(func(w *pageWriter) {
			w.blends = append(w.blends, w.blend)
			w.blend = mode
		})
		err := b.drawChildren(obj)
		b.emit(func(w *pageWriter) {
			w.blend = w.blends[len(w.blends)-1]
			w.blends = w.blends[:len(w.blends)-1]
		})
		return err
	case *ir.MaskedGroup:
		return b.drawMasked(obj)
	case ir.GroupObject:
		return b.drawChildren(obj)
	case *ir.ShapeObject:
		for _, p := range obj.Paths {
			if err := b.drawPath(p); err != nil {
				return err
			}
		}
		return nil
	case *ir.TextObject:
		return b.drawText(obj)
	}
	return fmt.Errorf("unknown frame object %T", obj)
}

// drawMasked clips the masked content to the outline of the mask,
// since fpdf has no soft mask.
func (b *pageBuilder) drawMasked(g *ir.MaskedGroup) error {
	if len(g.Objects) < 2 {
		return nil
	}
	outline := maskOutline(g.Objects[len(g.Objects)-1], ir.Identity)
	if len(outline) == 0 {
		return nil
	}
	b.push()
	b.clip(outline, false)
	for _, child := range g.Objects[:len(g.Objects)-1] {
		if err := b.drawObject(child); err != nil {
			return err
		}
	}
	b.pop()
	return nil
}

// maskOutline returns the paths of the shapes of obj, in the
// coordinates of its parent.
func maskOutline(obj ir.Object, m ir.Matrix) []ir.Path {
	switch obj := obj.(type) {
	case *ir.TransformGroup:
		m = m.Mul(obj.Transform)
	case *ir.ShapeObject:
		var out []ir.Path
		for _, p := range obj.Paths {
			if p.Fill != nil && !p.IsEmpty() {
				out = append(out, p.Transformed(m))
			}
		}
		return out
	}
	var out []ir.Path
	if g, ok := obj.(ir.GroupObject); ok {
		for _, child := range g.Children() {
			out = append(out, maskOutline(child, m)...)
		}
	}
	return out
}

func (b *pageBuilder) drawPath(p ir.Path) error {
	switch fill := p.Fill.(type) {
	case ir.SolidFill:
		c := fill.Color
		b.emit(func(w *pageWriter) {
			w.pdf.SetFillColor(int(c.R()), int(c.G()), int(c.B()))
			w.setAlpha(float64(c.FloatA()))
			writePath(w.pdf, p)
			w.pdf.DrawPath("F*")
		})
	case *ir.ImageFill:
		if err := b.drawImage(p, fill); err != nil {
			return err
		}
	case ir.GradientFill:
		b.drawGradient(p, fill)
	}

	if line := p.Line; line != nil {
		c := line.Color
		b.emit(func(w *pageWriter) {
			w.pdf.SetDrawColor(int(c.R()), int(c.G()), int(c.B()))
			w.pdf.SetLineWidth(float64(line.Width))
			w.pdf.SetLineCapStyle(capStyles[line.Cap])
			w.pdf.SetLineJoinStyle(joinStyles[line.Join])
			if line.Join == ir.JoinMiter && line.MiterLimit >= 1 {
				w.pdf.RawWriteStr(fmt.Sprintf("%.3f M", line.MiterLimit))
			}
			w.setAlpha(float64(c.FloatA()))
			writePath(w.pdf, p)
			w.pdf.DrawPath("D")
		})
	}
	return nil
}

func (b *pageBuilder) drawImage(p ir.Path, fill *ir.ImageFill) error {
	img, err := b.tables.images.get(fill.Image)
	if err != nil {
		return err
	}
	b.push()
	if fill.Clip {
		b.clip([]ir.Path{p}, true)
	}
	b.transform(fill.Transform)
	b.emit(func(w *pageWriter) {
		w.setAlpha(1)
		w.pdf.ImageOptions(w.imageName(img), 0, 0, 1, 1, false, fpdf.ImageOptions{ImageType: img.kind}, 0, "")
	})
	b.pop()
	return nil
}

// drawGradient paints one axial shading per interval between two stops,
// each with the average alpha of its stops, and pads both ends.
func (b *pageBuilder) drawGradient(p ir.Path, fill ir.GradientFill) {
	colors := fill.Colors
	if len(colors) == 0 {
		return
	}
	pos := func(i int) float64 {
		return ir.GradientOffset + float64(colors[i].Ratio)*ir.GradientSize
	}
	const e = gradientExtent

	b.push()
	b.clip([]ir.Path{p}, true)
	b.transform(fill.Transform)
	b.emit(func(w *pageWriter) {
		first, last := colors[0].Color, colors[len(colors)-1].Color
		w.pdf.SetFillColor(int(first.R()), int(first.G()), int(first.B()))
		w.setAlpha(float64(first.FloatA()))
		w.pdf.Rect(pos(0)-e, -e, e, 2*e, "F")
		for i := 0; i+1 < len(colors); i++ {
			x0, x1 := pos(i), pos(i+1)
			if x1 <= x0 {
				continue
			}
			c0, c1 := colors[i].Color, colors[i+1].Color
			w.setAlpha(float64(c0.FloatA()+c1.FloatA()) / 2)
			w.pdf.LinearGradient(x0, -e, x1-x0, 2*e,
				int(c0.R()), int(c0.G()), int(c0.B()), int(c1.R()), int(c1.G()), int(c1.B()),
				0, 0, 1, 0)
		}
		w.pdf.SetFillColor(int(last.R()), int(last.G()), int(last.B()))
		w.setAlpha(float64(last.FloatA()))
		w.pdf.Rect(pos(len(colors)-1), -e, e, 2*e, "F")
	})
	b.pop()
}

// textRun is a part of a text drawn at once, followed by a spacing
// correction in EM square units.
type textRun struct {
	text   string
	offset float32
}

func textRuns(text *ir.TextObject) []textRun {
	var (
		runs []textRun
		run  strings.Builder
	)
	i := 0
	for _, r := range text.Text {
		run.WriteRune(r)
		if i < len(text.GlyphOffsets) && text.GlyphOffsets[i] != 0 {
			runs = append(runs, textRun{run.String(), text.GlyphOffsets[i]})
			run.Reset()
		}
		i++
	}
	if run.Len() != 0 {
		runs = append(runs, textRun{text: run.String()})
	}
	return runs
}

func (b *pageBuilder) drawText(text *ir.TextObject) error {
	if text.FontSize <= 0 || text.Text == "" {
		return nil
	}
	font, err := b.tables.fonts.get(text.Font)
	if err != nil {
		return err
	}
	runs := textRuns(text)
	size := float64(text.FontSize)
	c := text.Color
	invisible := c.A() == 0
	b.emit(func(w *pageWriter) {
		if invisible {
			// kept selectable, but not painted
			w.pdf.RawWriteStr("q 3 Tr")
		} else {
			w.setAlpha(float64(c.FloatA()))
		}
		// the font state may have been lost by a restore: always set it
		w.pdf.SetFont(w.fontFamily(font), "", size)
		w.pdf.SetFontSize(size)
		w.pdf.SetTextColor(int(c.R()), int(c.G()), int(c.B()))
		x, y := float64(text.X), float64(text.Y)
		for _, run := range runs {
			w.pdf.Text(x, y, run.text)
			x += w.pdf.GetStringWidth(run.text) + float64(run.offset)*size/ir.EMSquareSize
		}
		if invisible {
			w.pdf.RawWriteStr("Q")
		}
	})
	return nil
}
