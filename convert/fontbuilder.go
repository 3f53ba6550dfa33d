package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/benoitkugler/swfconvert/ttf"
	"github.com/chewxy/math32"
)

// FontBuilder accumulates the glyphs of a font file.
type FontBuilder struct {
	Name            string
	Ascent, Descent float32

	chars  []rune
	glyphs map[rune]*ir.GlyphData
}

func NewFontBuilder(name string) *FontBuilder {
	return &FontBuilder{Name: name, glyphs: map[rune]*ir.GlyphData{}}
}

// AddGlyph replaces the glyph of char, if any.
func (fb *FontBuilder) AddGlyph(char rune, data *ir.GlyphData) {
	if _, has := fb.glyphs[char]; !has {
		fb.chars = append(fb.chars, char)
	}
	fb.glyphs[char] = data
}

func clampEM(v float32) int16 {
	return int16(math32.Round(math32.Max(0, math32.Min(v, ir.EMSquareSize))))
}

func toFontUnit(v float32) int16 { return int16(math32.Round(v)) }

func ttfPoint(x, y float32, onCurve bool) ttf.Point {
	return ttf.Point{X: toFontUnit(x), Y: toFontUnit(y), OnCurve: onCurve}
}

// glyphContour converts a contour of quadratic curves. Cubic curves are
// approximated with one quadratic curve. The closing point, if repeated,
// is removed.
func glyphContour(path ir.Path) ttf.Contour {
	var (
		out    ttf.Contour
		px, py float32
	)
	for _, e := range path.Elements {
		switch e := e.(type) {
		case ir.MoveTo:
			out = append(out, ttfPoint(e.X, e.Y, true))
		case ir.LineTo:
			out = append(out, ttfPoint(e.X, e.Y, true))
		case ir.QuadTo:
			out = append(out, ttfPoint(e.CX, e.CY, false), ttfPoint(e.X, e.Y, true))
		case ir.CubicTo:
			cx := (3*(e.C1X+e.C2X) - px - e.X) / 4
			cy := (3*(e.C1Y+e.C2Y) - py - e.Y) / 4
			out = append(out, ttfPoint(cx, cy, false), ttfPoint(e.X, e.Y, true))
		case ir.Rectangle:
			out = append(out,
				ttfPoint(e.X, e.Y, true), ttfPoint(e.X+e.W, e.Y, true),
				ttfPoint(e.X+e.W, e.Y+e.H, true), ttfPoint(e.X, e.Y+e.H, true))
		case ir.ClosePath:
			continue
		}
		px, py = e.End()
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// Build returns the content of the TrueType file.
func (fb *FontBuilder) Build() ([]byte, error) {
	font := ttf.Font{
		Name:       fb.Name,
		UnitsPerEm: ir.EMSquareSize,
		Ascent:     clampEM(fb.Ascent),
		Descent:    clampEM(fb.Descent),
	}
	for _, char := range fb.chars {
		data := fb.glyphs[char]
		glyph := ttf.Glyph{Char: char, Advance: uint16(math32.Round(math32.Max(0, data.Advance)))}
		for _, contour := range data.Contours {
			if c := glyphContour(contour); len(c) != 0 {
				glyph.Contours = append(glyph.Contours, c)
			}
		}
		font.Glyphs = append(font.Glyphs, glyph)
	}
	return font.Encode()
}

// createFontFiles writes one TrueType file per group in dir, named
// after the group.
func createFontFiles(ctx context.Context, groups []*FontGroup, dir string, runner render.Runner, progress *render.Progress) error {
	if len(groups) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	progress.Start(len(groups))
	return runner.Run(ctx, len(groups), func(_ context.Context, i int) error {
		group := groups[i]
		builder := NewFontBuilder(group.Name)
		builder.Ascent, builder.Descent = group.Metrics.Ascent, group.Metrics.Descent
		for _, glyph := range group.Glyphs() {
			builder.AddGlyph(glyph.Char, glyph.Data)
		}
		data, err := builder.Build()
		if err != nil {
			return fmt.Errorf("building font %s: %w", group.Name, err)
		}
		file := filepath.Join(dir, group.Name+".ttf")
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return fmt.Errorf("writing font: %w", err)
		}
		group.File = file
		progress.Increment()
		return nil
	})
}
