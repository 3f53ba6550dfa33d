package convert

import (
	"log/slog"
	"strconv"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
)

// the EM square of font definitions
const swfEMSquareSize = 1024

// GlyphPathParser extracts the outlines of the glyphs of a font definition.
type GlyphPathParser struct {
	shapes ShapeConverter
	logger *slog.Logger
}

func NewGlyphPathParser(logger *slog.Logger) *GlyphPathParser {
	return &GlyphPathParser{logger: logger}
}

// Parse returns the glyph data of each glyph of font, normalized to
// the EM square with scale. Glyphs whose shape can't be converted are
// logged and have no contour.
func (gp *GlyphPathParser) Parse(ctx *Context, font *swf.DefineFont, scale ir.FontScale) []*ir.GlyphData {
	const emScale = ir.EMSquareSize / swfEMSquareSize
	transform := ir.NewScaling(float64(scale.ScaleX)*emScale, float64(scale.ScaleY)*emScale)

	out := make([]*ir.GlyphData, len(font.Codes))
	for i := range font.Codes {
		var data ir.GlyphData
		if len(font.Advances) != 0 {
			data.Advance = float32(font.Advances[i]) * scale.ScaleX
		}
		if i < len(font.Shapes) && len(font.Shapes[i].Records) != 0 {
			glyphCtx := ctx.Child("glyph " + strconv.Itoa(i))
			paths, err := gp.shapes.Convert(glyphCtx, font.Shapes[i], ShapeOptions{Transform: transform, IgnoreStyles: true})
			if err != nil {
				gp.logger.Error("could not parse glyph shape", "context", glyphCtx.String(), "error", err)
			} else {
				data.Contours = splitContours(paths)
			}
		}
		out[i] = &data
	}
	return out
}

// splitContours returns one path per contour: a contour starts
// at each MoveTo after the first.
func splitContours(paths []ir.Path) []ir.Path {
	var contours []ir.Path
	for _, path := range paths {
		var elements []ir.PathElement
		for _, e := range path.Elements {
			if _, isMove := e.(ir.MoveTo); isMove && len(elements) != 0 {
				contours = append(contours, ir.Path{Elements: elements, Fill: path.Fill})
				elements = nil
			}
			elements = append(elements, e)
		}
		if len(elements) != 0 {
			contours = append(contours, ir.Path{Elements: elements, Fill: path.Fill})
		}
	}
	return contours
}
