package ir

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

const (
	// EMSquareSize is the size of the glyph coordinate space.
	EMSquareSize = 1024
	// WhitespaceAdvance is the advance width used for whitespace glyphs.
	WhitespaceAdvance = EMSquareSize / 4
)

// FontScale normalizes the glyph outlines of a source font to the
// EM square (ScaleX, ScaleY), and compensates the pre-scaling applied to
// text placements by some encoders (UnscaleX, UnscaleY).
type FontScale struct {
	ScaleX, ScaleY     float32
	UnscaleX, UnscaleY float32
}

// FontMetrics are in EM square units.
type FontMetrics struct {
	Ascent, Descent float32
	Scale           FontScale
}

// GlyphData is the outline of a glyph: its advance width and
// its closed contours, in EM square units.
type GlyphData struct {
	Advance  float32
	Contours []Path
}

// IsWhitespace is true for glyphs without contour.
func (g *GlyphData) IsWhitespace() bool { return len(g.Contours) == 0 }

// Equal compares the content of the glyphs.
func (g *GlyphData) Equal(other *GlyphData) bool {
	if g == other {
		return true
	}
	if g == nil || other == nil || g.Advance != other.Advance || len(g.Contours) != len(other.Contours) {
		return false
	}
	for i, c := range g.Contours {
		oc := other.Contours[i]
		if len(c.Elements) != len(oc.Elements) {
			return false
		}
		for j, e := range c.Elements {
			if e != oc.Elements[j] {
				return false
			}
		}
	}
	return true
}

// GlyphKey is a digest of the content of a glyph,
// suitable as map key.
type GlyphKey uint64

// Key returns a digest such that equal glyphs have equal keys.
func (g *GlyphData) Key() GlyphKey {
	h := fnv.New64a()
	var buf [4]byte
	writeF := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	writeF(g.Advance)
	for _, c := range g.Contours {
		for _, e := range c.Elements {
			h.Write([]byte{byte(e.kind())})
			switch e := e.(type) {
			case MoveTo:
				writeF(e.X)
				writeF(e.Y)
			case LineTo:
				writeF(e.X)
				writeF(e.Y)
			case QuadTo:
				writeF(e.CX)
				writeF(e.CY)
				writeF(e.X)
				writeF(e.Y)
			case CubicTo:
				writeF(e.C1X)
				writeF(e.C1Y)
				writeF(e.C2X)
				writeF(e.C2Y)
				writeF(e.X)
				writeF(e.Y)
			case Rectangle:
				writeF(e.X)
				writeF(e.Y)
				writeF(e.W)
				writeF(e.H)
			}
		}
		h.Write([]byte{0xFF})
	}
	return GlyphKey(h.Sum64())
}

type FontGlyph struct {
	Char rune
	Data *GlyphData
}

func (g FontGlyph) IsWhitespace() bool { return g.Data.IsWhitespace() }

// Font is a source font, sharing its name and file
// with the other fonts of its group.
type Font struct {
	Name    string
	Metrics FontMetrics
	Glyphs  []FontGlyph
	// File is the path of the TrueType file, empty
	// until the file is written.
	File string
}
