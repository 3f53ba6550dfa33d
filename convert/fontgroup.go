package convert

import (
	"fmt"

	"github.com/benoitkugler/swfconvert/ir"
)

// FontGroup is a set of source fonts sharing a single font file.
// Its glyph map keeps the order of insertion.
type FontGroup struct {
	Name    string
	Metrics ir.FontMetrics
	Fonts   []*ir.Font
	// File is set when the font file is written.
	File string

	chars  []rune
	glyphs map[rune]*ir.GlyphData
}

func newFontGroup(font *ir.Font) *FontGroup {
	g := &FontGroup{
		Name:    font.Name,
		Metrics: font.Metrics,
		Fonts:   []*ir.Font{font},
		glyphs:  make(map[rune]*ir.GlyphData, len(font.Glyphs)),
	}
	for _, glyph := range font.Glyphs {
		g.put(glyph.Char, glyph.Data)
	}
	return g
}

func (g *FontGroup) put(char rune, data *ir.GlyphData) {
	if _, has := g.glyphs[char]; !has {
		g.chars = append(g.chars, char)
	}
	g.glyphs[char] = data
}

// Glyphs returns the glyphs of the group, in order of insertion.
func (g *FontGroup) Glyphs() []ir.FontGlyph {
	out := make([]ir.FontGlyph, len(g.chars))
	for i, c := range g.chars {
		out[i] = ir.FontGlyph{Char: c, Data: g.glyphs[c]}
	}
	return out
}

// Len returns the number of glyphs.
func (g *FontGroup) Len() int { return len(g.chars) }

func (g *FontGroup) isAllWhitespace() bool {
	for _, data := range g.glyphs {
		if !data.IsWhitespace() {
			return false
		}
	}
	return true
}

// IsCompatibleWith returns true if g and other may share a font file: either
// one has only whitespace glyphs, or they have the same metrics and no
// character of both maps to different glyphs. With requireCommon, they must
// also have at least one non whitespace glyph in common.
// The relation is symmetric.
func (g *FontGroup) IsCompatibleWith(other *FontGroup, requireCommon bool) bool {
	if other.Len() < g.Len() {
		return other.IsCompatibleWith(g, requireCommon)
	}
	if g.isAllWhitespace() || other.isAllWhitespace() {
		return true
	}
	if g.Metrics != other.Metrics {
		return false
	}
	common := false
	for _, c := range g.chars {
		data := g.glyphs[c]
		otherData, ok := other.glyphs[c]
		if !ok {
			continue
		}
		if !data.Equal(otherData) {
			return false
		}
		if !data.IsWhitespace() {
			common = true
		}
	}
	return !requireCommon || common
}

// Merge adds the glyphs and the fonts of other to g.
func (g *FontGroup) Merge(other *FontGroup) {
	for _, c := range other.chars {
		g.put(c, other.glyphs[c])
	}
	g.Fonts = append(g.Fonts, other.Fonts...)
}

func (g *FontGroup) String() string {
	return fmt.Sprintf("FontGroup{name=%s, %d fonts, %d glyphs}", g.Name, len(g.Fonts), g.Len())
}

// mergeFontGroups merges each group with the first compatible group
// before it, until no more merge happens. The group with the fewest
// glyphs is merged into the other one.
func mergeFontGroups(groups []*FontGroup, requireCommon bool) []*FontGroup {
	for {
		var merged []*FontGroup
		for _, group := range groups {
			done := false
			for i, candidate := range merged {
				if group.IsCompatibleWith(candidate, requireCommon) {
					if group.Len() > candidate.Len() {
						group.Merge(candidate)
						merged[i] = group
					} else {
						candidate.Merge(group)
					}
					done = true
					break
				}
			}
			if !done {
				merged = append(merged, group)
			}
		}
		if len(merged) == len(groups) {
			return merged
		}
		groups = merged
	}
}
