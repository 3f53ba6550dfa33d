package svg

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
)

const (
	ImagesExternal = "external"
	ImagesBase64   = "base64"

	FontsExternal = "external"
	FontsBase64   = "base64"
	FontsNone     = "none"
)

// frameRenderer writes one frame. The frame transform is not written:
// the viewBox, in twips, has a different size than the document,
// in points.
type frameRenderer struct {
	cfg    config.SVG
	logger *slog.Logger

	// directories of the external resources, relative to the output
	imagesDir, fontsDir string

	svg  *StreamWriter
	defs *frameDefs
	err  error
}

func (r *frameRenderer) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *frameRenderer) render(w io.Writer, frame *ir.FrameGroup) error {
	defs, err := newFrameDefs(frame, r.cfg.PrettyPrint, r.cfg.FontsMode, r.cfg.ImagesMode)
	if err != nil {
		return err
	}
	r.defs = defs
	r.svg, err = NewStreamWriter(w, r.cfg.Precision, r.cfg.TransformPrecision, r.cfg.PercentPrecision, r.cfg.PrettyPrint)
	if err != nil {
		return err
	}

	pad := frame.Padding
	origin := 0 - pad // not -0
	r.svg.Start(frame.ActualWidth(), frame.ActualHeight(),
		[4]float32{origin, origin, frame.Width + 2*pad, frame.Height + 2*pad},
		r.cfg.WriteProlog,
		GraphicsState{FillRule: ruleEvenOdd, ClipRule: ruleEvenOdd, PreserveAspectRatio: "none"})
	r.drawChildren(frame.Objects)
	for _, df := range r.defs.list {
		r.writeDef(df)
	}
	if err := r.svg.End(); err != nil {
		r.fail(err)
	}
	return r.err
}

// requireDef returns the def ID of key, which has been created by
// newFrameDefs.
func (r *frameRenderer) requireDef(key defKey) string {
	id, err := r.defs.id(key)
	if err != nil {
		r.fail(err)
	}
	return id
}

func (r *frameRenderer) writeDef(df *def) {
	switch df.key.kind {
	case defFont:
		// the font face declares the def ID as family
		r.svg.Def("", func() {
			href, err := r.fontHref(df.font.File)
			if err != nil {
				r.fail(err)
			}
			r.svg.Font(df.id, href)
		})
	case defImage:
		r.svg.Def(df.id, func() {
			r.svg.Image(r.imageHref(df.image.Format, df.image.DataFile, df.image.Data), 0, 0, GraphicsState{})
		})
	case defImageMask:
		r.svg.Def(df.id, func() {
			r.svg.Mask(func() {
				r.svg.Image(r.imageHref(df.image.Format, df.image.AlphaDataFile, df.image.AlphaData), 0, 0, GraphicsState{})
			})
		})
	case defMask:
		r.svg.Def(df.id, func() {
			r.svg.Mask(func() { r.drawObject(df.mask) })
		})
	case defClip:
		r.svg.Def(df.id, func() {
			r.svg.ClipPath(func() {
				r.svg.Path(r.pathData(df.paths...), GraphicsState{})
			})
		})
	case defGlyph:
		r.svg.Def(df.id, func() {
			r.svg.Path(r.pathData(df.glyph.Contours...), GraphicsState{})
		})
	case defGradient:
		r.svg.Def(df.id, func() {
			r.svg.LinearGradient(gradientStops(df.gradient.Colors), true,
				transforms(df.gradient.Transform), ir.GradientOffset, 0, ir.GradientOffset+ir.GradientSize, 0)
		})
	}
}

func gradientStops(colors []ir.GradientColor) []GradientStop {
	stops := make([]GradientStop, 0, len(colors)+2)
	if len(colors) != 0 && colors[0].Ratio > 0 {
		stops = append(stops, gradientStop(0, colors[0].Color))
	}
	for _, c := range colors {
		stops = append(stops, gradientStop(c.Ratio, c.Color))
	}
	if len(colors) != 0 && colors[len(colors)-1].Ratio < 1 {
		stops = append(stops, gradientStop(1, colors[len(colors)-1].Color))
	}
	return stops
}

func gradientStop(offset float32, c ir.Color) GradientStop {
	return GradientStop{Offset: offset, Color: ColorPaint(c), Opacity: c.FloatA()}
}

func (r *frameRenderer) fontHref(file string) (string, error) {
	if r.cfg.FontsMode == FontsBase64 {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading font: %w", err)
		}
		return dataURL("font/ttf", data), nil
	}
	return path.Join(r.fontsDir, filepath.Base(file)), nil
}

func (r *frameRenderer) imageHref(format ir.ImageFormat, file string, data []byte) string {
	if r.cfg.ImagesMode == ImagesBase64 {
		return dataURL("image/"+format.Extension(), data)
	}
	return path.Join(r.imagesDir, filepath.Base(file))
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (r *frameRenderer) pathData(paths ...ir.Path) string {
	w := r.svg.NewPathWriter()
	for _, p := range paths {
		w.WritePath(p)
	}
	return w.String()
}

func (r *frameRenderer) drawChildren(objects []ir.Object) {
	for _, obj := range objects {
		r.drawObject(obj)
	}
}

func (r *frameRenderer) drawObject(obj ir.Object) {
	switch obj := obj.(type) {
	case *ir.TransformGroup:
		list := transforms(obj.Transform)
		if list == nil {
			r.drawChildren(obj.Objects)
			return
		}
		r.svg.Group(GraphicsState{Transform: list}, false, func() { r.drawChildren(obj.Objects) })
	case *ir.ClipGroup:
		state := GraphicsState{}
		if len(obj.Clips) != 0 {
			state.ClipPath = r.requireDef(clipKey(obj.Clips))
		}
		r.svg.Group(state, true, func() { r.drawChildren(obj.Objects) })
	case *ir.BlendGroup:
		r.svg.Group(GraphicsState{MixBlendMode: r.blendMode(obj.Mode)}, true, func() { r.drawChildren(obj.Objects) })
	case *ir.MaskedGroup:
		// a mask and something to mask are needed
		if len(obj.Objects) < 2 {
			return
		}
		mask := r.requireDef(defKey{kind: defMask, mask: obj.Objects[len(obj.Objects)-1]})
		r.svg.Group(GraphicsState{Mask: mask}, false, func() { r.drawChildren(obj.Objects[:len(obj.Objects)-1]) })
	case ir.GroupObject:
		r.drawChildren(obj.Children())
	case *ir.ShapeObject:
		for _, p := range obj.Paths {
			r.drawPath(p)
		}
	case *ir.TextObject:
		r.drawText(obj)
	}
}

var blendModes = map[ir.BlendMode]string{
	ir.BlendNull:       "normal",
	ir.BlendNormal:     "normal",
	ir.BlendLayer:      "normal",
	ir.BlendMultiply:   "multiply",
	ir.BlendScreen:     "screen",
	ir.BlendLighten:    "lighten",
	ir.BlendDarken:     "darken",
	ir.BlendDifference: "difference",
	ir.BlendOverlay:    "overlay",
	ir.BlendHardlight:  "hard-light",
}

func (r *frameRenderer) blendMode(mode ir.BlendMode) string {
	m, ok := blendModes[mode]
	if !ok {
		r.logger.Error("unsupported blend mode in SVG", "mode", mode.String())
	}
	return m
}

func (r *frameRenderer) drawPath(p ir.Path) {
	switch fill := p.Fill.(type) {
	case *ir.ImageFill:
		r.drawImage(p, fill)
	case ir.GradientFill:
		id := r.requireDef(gradientKey(fill))
		r.svg.Path(r.pathData(p), GraphicsState{Fill: urlPaint(id)})
	}

	var state GraphicsState
	hasState := false
	if line := p.Line; line != nil {
		state, hasState = lineState(*line), true
	}
	if fill, ok := p.Fill.(ir.SolidFill); ok {
		state.Fill = ColorPaint(fill.Color)
		state.FillOpacity = num(fill.Color.FloatA())
		hasState = true
	}
	if hasState {
		r.svg.Path(r.pathData(p), state)
	}
}

func lineState(line ir.LineStyle) GraphicsState {
	state := GraphicsState{
		Fill:          nonePaint,
		Stroke:        ColorPaint(line.Color),
		StrokeOpacity: num(line.Color.FloatA()),
		StrokeWidth:   num(line.Width),
	}
	switch line.Cap {
	case ir.CapButt:
		state.LineCap = "butt"
	case ir.CapRound:
		state.LineCap = "round"
	case ir.CapSquare:
		state.LineCap = "square"
	}
	switch line.Join {
	case ir.JoinBevel:
		state.LineJoin = "bevel"
	case ir.JoinRound:
		state.LineJoin = "round"
	case ir.JoinMiter:
		if line.MiterLimit == 0 {
			state.LineJoin = "miter"
		} else {
			state.LineJoin = "miter-clip"
			state.MiterLimit = num(line.MiterLimit)
		}
	}
	return state
}

func (r *frameRenderer) drawImage(p ir.Path, fill *ir.ImageFill) {
	img := fill.Image
	if img.DataFile == "" && r.cfg.ImagesMode == ImagesExternal {
		r.fail(fmt.Errorf("missing image file for image %d", fill.ID))
		return
	}
	draw := func() {
		// the image is drawn at its intrinsic size
		transform := fill.Transform.Scale(1/float64(img.Width), 1/float64(img.Height))
		state := GraphicsState{Transform: transforms(transform)}
		if img.AlphaDataFile != "" {
			state.Mask = r.requireDef(defKey{kind: defImageMask, name: img.AlphaDataFile})
		}
		if r.cfg.ImagesMode == ImagesBase64 {
			r.svg.Use(r.requireDef(defKey{kind: defImage, name: img.DataFile}), 0, state)
		} else {
			r.svg.Image(r.imageHref(img.Format, img.DataFile, img.Data), 0, 0, state)
		}
	}
	if fill.Clip {
		r.svg.Group(GraphicsState{ClipPath: r.requireDef(clipKey([]ir.Path{p}))}, false, draw)
	} else {
		draw()
	}
}

func (r *frameRenderer) drawText(text *ir.TextObject) {
	if text.Font == nil {
		r.fail(fmt.Errorf("missing font for text %q", text.Text))
		return
	}
	if r.cfg.FontsMode == FontsNone {
		r.drawTextWithPaths(text)
		return
	}

	family := r.requireDef(defKey{kind: defFont, name: text.Font.File})
	// the first value is the offset before the first glyph, and
	// values are in user space, the font size being the EM square size
	dx := make([]float32, len(text.GlyphOffsets)+1)
	for i, offset := range text.GlyphOffsets {
		dx[i+1] = offset / ir.EMSquareSize * text.FontSize
	}
	r.svg.Text(text.X, text.Y, dx, family, text.FontSize, text.Text, GraphicsState{
		Fill:        ColorPaint(text.Color),
		FillOpacity: num(text.Color.FloatA()),
	})
}

func (r *frameRenderer) drawTextWithPaths(text *ir.TextObject) {
	// glyphs are in EM square units, with the Y axis up
	scale := float64(text.FontSize / ir.EMSquareSize)
	state := GraphicsState{
		Fill:        ColorPaint(text.Color),
		FillOpacity: num(text.Color.FloatA()),
		Transform: []Transform{{"matrix", []float32{
			float32(scale), 0, 0, float32(-scale), text.X, text.Y,
		}}},
	}
	glyphs := text.Font.Glyphs
	if len(text.GlyphIndices) == 1 {
		r.useGlyph(glyphs[text.GlyphIndices[0]], 0, state)
		return
	}
	r.svg.Group(state, false, func() {
		var advance float32
		for i, index := range text.GlyphIndices {
			r.useGlyph(glyphs[index], advance, GraphicsState{})
			advance += glyphs[index].Data.Advance
			if i < len(text.GlyphOffsets) {
				advance += text.GlyphOffsets[i]
			}
		}
	})
}

func (r *frameRenderer) useGlyph(glyph ir.FontGlyph, x float32, state GraphicsState) {
	if glyph.IsWhitespace() {
		return
	}
	r.svg.Use(r.requireDef(glyphKey(glyph.Data)), x, state)
}
