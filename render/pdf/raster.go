package pdf

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// InternalRasterizer draws frames with rasterx, on a white background.
// Masks use the alpha of the mask content; blend modes other than
// normal are drawn as normal.
type InternalRasterizer struct {
	DPI float32
}

func (r InternalRasterizer) Rasterize(ctx context.Context, frame *ir.FrameGroup) (image.Image, error) {
	scale := float64(r.DPI) / 72
	width := int(math.Ceil(float64(frame.ActualWidth()) * scale))
	height := int(math.Ceil(float64(frame.ActualHeight()) * scale))
	rd := &rasterRenderer{width: max(width, 1), height: max(height, 1)}

	c := rd.newCanvas()
	draw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, draw.Src)
	m := ir.NewScaling(scale, scale).Mul(frameTransform(frame))
	for _, child := range frame.Children() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rd.draw(c, child, m); err != nil {
			return nil, err
		}
	}
	return c.img, nil
}

type rasterRenderer struct {
	width, height int
}

// canvas wraps a dasher and a filler drawing on the same image.
type canvas struct {
	img    *image.RGBA
	dasher *rasterx.Dasher
	filler *rasterx.Filler
}

func (r *rasterRenderer) newCanvas() *canvas {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	scanner := rasterx.NewScannerGV(r.width, r.height, img, img.Bounds())
	return &canvas{
		img:    img,
		dasher: rasterx.NewDasher(r.width, r.height, scanner),
		filler: rasterx.NewFiller(r.width, r.height, scanner),
	}
}

// coverage returns the area covered by paths, transformed by m.
func (r *rasterRenderer) coverage(paths []ir.Path, m ir.Matrix, nonZero bool) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, r.width, r.height))
	filler := rasterx.NewFiller(r.width, r.height, rasterx.NewScannerGV(r.width, r.height, mask, mask.Bounds()))
	filler.SetWinding(nonZero)
	filler.SetColor(color.Opaque)
	for _, p := range paths {
		addPath(filler, p, m)
	}
	filler.Draw()
	return mask
}

func (r *rasterRenderer) drawChildren(c *canvas, children []ir.Object, m ir.Matrix) error {
	for _, child := range children {
		if err := r.draw(c, child, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *rasterRenderer) draw(c *canvas, obj ir.Object, m ir.Matrix) error {
	switch obj := obj.(type) {
	case *ir.TransformGroup:
		if obj.Transform.Determinant() == 0 {
			return nil
		}
		return r.drawChildren(c, obj.Objects, m.Mul(obj.Transform))
	case *ir.ClipGroup:
		layer := r.newCanvas()
		if err := r.drawChildren(layer, obj.Objects, m); err != nil {
			return err
		}
		mask := r.coverage(obj.Clips, m, false)
		draw.DrawMask(c.img, c.img.Bounds(), layer.img, image.Point{}, mask, image.Point{}, draw.Over)
		return nil
	case *ir.MaskedGroup:
		if len(obj.Objects) < 2 {
			return nil
		}
		layer, mask := r.newCanvas(), r.newCanvas()
		if err := r.drawChildren(layer, obj.Objects[:len(obj.Objects)-1], m); err != nil {
			return err
		}
		if err := r.draw(mask, obj.Objects[len(obj.Objects)-1], m); err != nil {
			return err
		}
		draw.DrawMask(c.img, c.img.Bounds(), layer.img, image.Point{}, mask.img, image.Point{}, draw.Over)
		return nil
	case ir.GroupObject:
		return r.drawChildren(c, obj.Children(), m)
	case *ir.ShapeObject:
		for _, p := range obj.Paths {
			if err := r.drawPath(c, p, m); err != nil {
				return err
			}
		}
	case *ir.TextObject:
		r.drawText(c, obj, m)
	}
	return nil
}

func (r *rasterRenderer) drawPath(c *canvas, p ir.Path, m ir.Matrix) error {
	switch fill := p.Fill.(type) {
	case ir.SolidFill:
		c.filler.SetWinding(false)
		c.filler.SetColor(fill.Color.NRGBA())
		addPath(c.filler, p, m)
		c.filler.Draw()
		c.filler.Clear()
	case ir.GradientFill:
		if f, ok := gradientColorFunc(fill, m); ok {
			c.filler.SetWinding(false)
			c.filler.SetColor(f)
			addPath(c.filler, p, m)
			c.filler.Draw()
			c.filler.Clear()
		}
	case *ir.ImageFill:
		if err := r.drawImage(c, p, fill, m); err != nil {
			return err
		}
	}

	if line := p.Line; line != nil {
		scale := math.Sqrt(math.Abs(m.Determinant()))
		width := math.Max(float64(line.Width)*scale, 1)
		miter := math.Max(float64(line.MiterLimit), 1)
		c.dasher.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(miter*64),
			capToFunc[line.Cap], capToFunc[line.Cap], rasterx.FlatGap, joinToJoin[line.Join], nil, 0)
		c.dasher.SetColor(line.Color.NRGBA())
		addPath(c.dasher, p, m)
		c.dasher.Draw()
		c.dasher.Clear()
	}
	return nil
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		ir.JoinMiter: rasterx.Miter,
		ir.JoinRound: rasterx.Round,
		ir.JoinBevel: rasterx.Bevel,
	}

	capToFunc = [...]rasterx.CapFunc{
		ir.CapButt:   rasterx.ButtCap,
		ir.CapRound:  rasterx.RoundCap,
		ir.CapSquare: rasterx.SquareCap,
	}
)

func (r *rasterRenderer) drawImage(c *canvas, p ir.Path, fill *ir.ImageFill, m ir.Matrix) error {
	src, err := decodeImage(fill.Image)
	if err != nil {
		return err
	}
	b := src.Bounds()
	if b.Empty() {
		return nil
	}
	s2d := m.Mul(fill.Transform).Scale(1/float64(b.Dx()), 1/float64(b.Dy())).Translate(-float64(b.Min.X), -float64(b.Min.Y))
	var opts *draw.Options
	if fill.Clip {
		opts = &draw.Options{DstMask: r.coverage([]ir.Path{p}, m, false)}
	}
	draw.ApproxBiLinear.Transform(c.img, f64.Aff3{s2d.A, s2d.C, s2d.E, s2d.B, s2d.D, s2d.F}, src, b, draw.Over, opts)
	return nil
}

// gradientColorFunc returns the color of the gradient at each pixel.
// Colors are padded beyond the gradient square.
func gradientColorFunc(fill ir.GradientFill, m ir.Matrix) (rasterx.ColorFunc, bool) {
	inv, ok := m.Mul(fill.Transform).Invert()
	if !ok || len(fill.Colors) == 0 {
		return nil, false
	}
	colors := fill.Colors
	return func(x, y int) color.Color {
		gx, _ := inv.Transform(float64(x)+0.5, float64(y)+0.5)
		t := float32((gx - ir.GradientOffset) / ir.GradientSize)
		if t <= colors[0].Ratio {
			return colors[0].Color.NRGBA()
		}
		for i := 1; i < len(colors); i++ {
			c0, c1 := colors[i-1], colors[i]
			if t > c1.Ratio {
				continue
			}
			f := (t - c0.Ratio) / (c1.Ratio - c0.Ratio)
			return interpolate(c0.Color.NRGBA(), c1.Color.NRGBA(), f)
		}
		return colors[len(colors)-1].Color.NRGBA()
	}, true
}

func interpolate(a, b color.NRGBA, f float32) color.NRGBA {
	lerp := func(u, v uint8) uint8 { return uint8(float32(u) + (float32(v)-float32(u))*f + 0.5) }
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// drawText fills the outlines of the glyphs of text, which are
// defined in the EM square with the Y axis up.
func (r *rasterRenderer) drawText(c *canvas, text *ir.TextObject, m ir.Matrix) {
	if text.Font == nil || text.Color.A() == 0 {
		return
	}
	scale := float64(text.FontSize) / ir.EMSquareSize
	c.filler.SetWinding(true)
	c.filler.SetColor(text.Color.NRGBA())
	var advance float32
	for i, index := range text.GlyphIndices {
		if index < 0 || index >= len(text.Font.Glyphs) {
			continue
		}
		glyph := text.Font.Glyphs[index].Data
		if glyph == nil {
			continue
		}
		gm := m.Mul(ir.Matrix{A: scale, D: -scale, E: float64(text.X), F: float64(text.Y)}).Translate(float64(advance), 0)
		for _, contour := range glyph.Contours {
			addPath(c.filler, contour, gm)
		}
		advance += glyph.Advance
		if i < len(text.GlyphOffsets) {
			advance += text.GlyphOffsets[i]
		}
	}
	c.filler.Draw()
	c.filler.Clear()
}

// adder is implemented by rasterx.Filler and rasterx.Dasher.
type adder interface {
	Start(a fixed.Point26_6)
	Line(b fixed.Point26_6)
	QuadBezier(b, c fixed.Point26_6)
	CubeBezier(b, c, d fixed.Point26_6)
	Stop(closeLoop bool)
}

// addPath adds the elements of p, transformed by m, to a.
func addPath(a adder, p ir.Path, m ir.Matrix) {
	pt := func(x, y float32) fixed.Point26_6 {
		tx, ty := m.Transform(float64(x), float64(y))
		return fixed.Point26_6{X: fixed.Int26_6(tx * 64), Y: fixed.Int26_6(ty * 64)}
	}
	started := false
	var start fixed.Point26_6
	begin := func(p fixed.Point26_6) {
		if started {
			a.Stop(false)
		}
		a.Start(p)
		start, started = p, true
	}
	ensureStarted := func() {
		if !started {
			begin(start)
		}
	}
	for _, e := range p.Elements {
		switch e := e.(type) {
		case ir.MoveTo:
			begin(pt(e.X, e.Y))
		case ir.LineTo:
			ensureStarted()
			a.Line(pt(e.X, e.Y))
		case ir.QuadTo:
			ensureStarted()
			a.QuadBezier(pt(e.CX, e.CY), pt(e.X, e.Y))
		case ir.CubicTo:
			ensureStarted()
			a.CubeBezier(pt(e.C1X, e.C1Y), pt(e.C2X, e.C2Y), pt(e.X, e.Y))
		case ir.ClosePath:
			if started {
				a.Stop(true)
				started = false
			}
		case ir.Rectangle:
			begin(pt(e.X, e.Y))
			a.Line(pt(e.X+e.W, e.Y))
			a.Line(pt(e.X+e.W, e.Y+e.H))
			a.Line(pt(e.X, e.Y+e.H))
			a.Stop(true)
			started = false
		}
	}
	if started {
		a.Stop(false)
	}
}
