package convert

import (
	"strings"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/chewxy/math32"
)

// TextConverter creates the text objects of a text tag, one per
// text record with visible glyphs.
type TextConverter struct {
	cfg       *config.Convert
	fonts     map[FontKey]*ir.Font
	fileIndex int
	// glyphs in font files are upright, and are flipped
	// back when the frame is flipped
	yMult float32

	// style of the current record, kept between records
	font     *ir.Font
	fontSize float32
	hasSize  bool
	color    ir.Color
	hasColor bool
	offsetX  float32
	offsetY  float32
}

func NewTextConverter(cfg *config.Convert, fonts map[FontKey]*ir.Font, fileIndex int) *TextConverter {
	tc := &TextConverter{cfg: cfg, fonts: fonts, fileIndex: fileIndex, yMult: 1}
	if cfg.YDirection == ir.YUp {
		tc.yMult = -1
	}
	return tc
}

func (tc *TextConverter) lookupFont(ctx *Context, id uint16) (*ir.Font, error) {
	font, ok := tc.fonts[FontKey{File: tc.fileIndex, ID: id}]
	if !ok {
		return nil, ctx.Errorf("unknown font ID %d", id)
	}
	return font, nil
}

// Convert returns the objects of tag, possibly wrapped in a transform
// group, or nothing if no record has a font.
func (tc *TextConverter) Convert(ctx *Context, tag *swf.DefineText, colors *CompositeColorTransform) ([]ir.Object, error) {
	tc.font, tc.hasSize, tc.hasColor = nil, false, false
	tc.fontSize, tc.offsetX, tc.offsetY = 0, 0, 0

	scale, ok, err := tc.textScale(ctx, tag)
	if err != nil || !ok {
		return nil, err
	}

	m := matrixFromSwf(tag.Matrix)
	usx, usy := float64(scale.UnscaleX), float64(scale.UnscaleY*tc.yMult)
	m.A, m.B = m.A*usx, m.B*usx
	m.C, m.D = m.C*usy, m.D*usy

	var texts []ir.Object
	for _, record := range tag.Records {
		text, err := tc.convertRecord(ctx, tag, record, colors)
		if err != nil {
			return nil, err
		}
		if text != nil {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	objects := texts
	if !m.IsIdentity() {
		objects = []ir.Object{&ir.TransformGroup{Group: ir.Group{ID: int(tag.ID), Objects: texts}, Transform: m}}
	}
	if tc.cfg.Debug.DrawTextBounds {
		objects = append(objects, boundsShape(int(tag.ID), tag.Bounds, debugLineStyle(&tc.cfg.Debug)))
	}
	return objects, nil
}

// textScale checks that every font of tag has the same scale,
// since one transform is used for all the records.
func (tc *TextConverter) textScale(ctx *Context, tag *swf.DefineText) (ir.FontScale, bool, error) {
	var (
		scale ir.FontScale
		found bool
	)
	for _, record := range tag.Records {
		if !record.HasFont {
			continue
		}
		font, err := tc.lookupFont(ctx, record.FontID)
		if err != nil {
			return scale, false, err
		}
		if found && font.Metrics.Scale != scale {
			return scale, false, ctx.Errorf("fonts with different scales in the same text tag")
		}
		scale, found = font.Metrics.Scale, true
	}
	return scale, found, nil
}

func (tc *TextConverter) updateStyle(ctx *Context, record swf.TextRecord, colors *CompositeColorTransform) error {
	if record.HasFont {
		font, err := tc.lookupFont(ctx, record.FontID)
		if err != nil {
			return err
		}
		tc.font = font
		tc.fontSize, tc.hasSize = float32(record.Height), true
	}
	if tc.font == nil {
		return ctx.Errorf("no font specified")
	}
	if !tc.hasSize {
		return ctx.Errorf("no font size specified")
	}
	if record.HasColor {
		tc.color, tc.hasColor = colors.Transform(colorFromSwf(record.Color)), true
	}
	if !tc.hasColor {
		return ctx.Errorf("no text color specified")
	}

	// offsets are not additive, and only changed when specified
	scale := tc.font.Metrics.Scale
	if record.HasX {
		tc.offsetX = float32(record.XOffset) / scale.UnscaleX
	}
	if record.HasY {
		tc.offsetY = float32(record.YOffset) / scale.UnscaleY * tc.yMult
	}
	return nil
}

func (tc *TextConverter) glyph(ctx *Context, entry swf.GlyphEntry) (ir.FontGlyph, error) {
	if entry.Index < 0 || entry.Index >= len(tc.font.Glyphs) {
		return ir.FontGlyph{}, ctx.Errorf("invalid glyph index %d", entry.Index)
	}
	return tc.font.Glyphs[entry.Index], nil
}

func (tc *TextConverter) convertRecord(ctx *Context, tag *swf.DefineText, record swf.TextRecord, colors *CompositeColorTransform) (*ir.TextObject, error) {
	if err := tc.updateStyle(ctx, record, colors); err != nil {
		return nil, err
	}
	font, fontSize := tc.font, tc.fontSize
	scale := font.Metrics.Scale
	entries := record.Glyphs

	xPos, yPos := tc.offsetX, tc.offsetY
	if fontSize == 0 {
		return nil, nil
	}

	// leading whitespace is replaced by an offset
	start := 0
	for ; start < len(entries); start++ {
		glyph, err := tc.glyph(ctx, entries[start])
		if err != nil {
			return nil, err
		}
		if !glyph.IsWhitespace() {
			break
		}
		xPos += float32(entries[start].Advance) / scale.UnscaleX
	}

	// drawing text moves the pen
	for _, entry := range entries {
		tc.offsetX += float32(entry.Advance) / scale.UnscaleX
	}

	if start == len(entries) {
		return nil, nil
	}

	end := len(entries)
	for ; end > start; end-- {
		glyph, err := tc.glyph(ctx, entries[end-1])
		if err != nil {
			return nil, err
		}
		if !glyph.IsWhitespace() {
			break
		}
	}

	var (
		text      strings.Builder
		indices   = make([]int, 0, end-start)
		offsets   []float32
		ignoreAll = true
		threshold = tc.cfg.Debug.IgnoreGlyphOffsetsThreshold
	)
	for i := start; i < end; i++ {
		entry := entries[i]
		glyph, _ := tc.glyph(ctx, entry)
		text.WriteRune(glyph.Char)
		indices = append(indices, entry.Index)

		if i == len(entries)-1 {
			continue
		}
		actual := float32(entry.Advance) / (scale.UnscaleX * fontSize) * ir.EMSquareSize
		diff := actual - glyph.Data.Advance
		offsets = append(offsets, diff)
		if abs := math32.Abs(diff); abs >= threshold && abs > 0 {
			ignoreAll = false
		}
	}
	if ignoreAll || len(offsets) == 1 {
		offsets = nil
	}
	for len(offsets) != 0 && offsets[len(offsets)-1] == 0 {
		offsets = offsets[:len(offsets)-1]
	}

	return &ir.TextObject{
		ID:           int(tag.ID),
		X:            xPos,
		Y:            yPos,
		FontSize:     fontSize,
		Color:        tc.color,
		Font:         font,
		Text:         text.String(),
		GlyphIndices: indices,
		GlyphOffsets: offsets,
	}, nil
}
