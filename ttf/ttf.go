// Package ttf writes TrueType font files from glyph outlines made
// of quadratic contours.
package ttf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Point is a point of a contour, in font units.
type Point struct {
	X, Y    int16
	OnCurve bool
}

// Contour is implicitly closed. Two consecutive off curve
// points imply an on curve point at their middle.
type Contour []Point

type Glyph struct {
	Char     rune
	Advance  uint16
	Contours []Contour
}

// Font is a simple font with one glyph per character. The .notdef
// glyph is added by Encode.
type Font struct {
	Name       string
	UnitsPerEm uint16
	// Ascent is positive above the baseline, Descent is
	// positive below.
	Ascent, Descent int16
	Glyphs          []Glyph
}

var (
	ErrNoName         = errors.New("font has no name")
	ErrTooManyGlyphs  = errors.New("too many glyphs")
	ErrInvalidUnitsEm = errors.New("units per EM must be between 16 and 16384")
)

type bbox struct {
	xMin, yMin, xMax, yMax int16
}

func (g *Glyph) bounds() (bbox, bool) {
	b := bbox{xMin: math.MaxInt16, yMin: math.MaxInt16, xMax: math.MinInt16, yMax: math.MinInt16}
	has := false
	for _, c := range g.Contours {
		for _, p := range c {
			has = true
			b.xMin, b.xMax = min(b.xMin, p.X), max(b.xMax, p.X)
			b.yMin, b.yMax = min(b.yMin, p.Y), max(b.yMax, p.Y)
		}
	}
	if !has {
		return bbox{}, false
	}
	return b, true
}

type table struct {
	tag  string
	data []byte
}

func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// Encode returns the content of the font file.
func (f *Font) Encode() ([]byte, error) {
	if f.Name == "" {
		return nil, ErrNoName
	}
	if f.UnitsPerEm < 16 || f.UnitsPerEm > 16384 {
		return nil, ErrInvalidUnitsEm
	}
	// glyph 0 is .notdef
	glyphs := append([]Glyph{{}}, f.Glyphs...)
	if len(glyphs) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyGlyphs, len(glyphs))
	}

	glyf, loca, stats := buildGlyf(glyphs)
	tables := []table{
		{"OS/2", buildOS2(f, stats)},
		{"cmap", buildCmap(glyphs)},
		{"glyf", glyf},
		{"head", buildHead(f, stats)},
		{"hhea", buildHhea(f, glyphs, stats)},
		{"hmtx", buildHmtx(glyphs, stats)},
		{"loca", loca},
		{"maxp", buildMaxp(glyphs, stats)},
		{"name", buildName(f.Name)},
		{"post", buildPost()},
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })
	return assemble(tables), nil
}

func assemble(tables []table) []byte {
	numTables := uint16(len(tables))
	entrySelector := uint16(math.Floor(math.Log2(float64(numTables))))
	searchRange := uint16(16 * (1 << entrySelector))

	out := binary.BigEndian.AppendUint32(nil, 0x00010000)
	out = binary.BigEndian.AppendUint16(out, numTables)
	out = binary.BigEndian.AppendUint16(out, searchRange)
	out = binary.BigEndian.AppendUint16(out, entrySelector)
	out = binary.BigEndian.AppendUint16(out, numTables*16-searchRange)

	offset := uint32(12 + 16*len(tables))
	headOffset := uint32(0)
	for _, t := range tables {
		out = append(out, t.tag...)
		out = binary.BigEndian.AppendUint32(out, checksum(t.data))
		out = binary.BigEndian.AppendUint32(out, offset)
		out = binary.BigEndian.AppendUint32(out, uint32(len(t.data)))
		if t.tag == "head" {
			headOffset = offset
		}
		offset += uint32((len(t.data) + 3) &^ 3)
	}
	for _, t := range tables {
		out = pad4(append(out, t.data...))
	}
	adjustment := 0xB1B0AFBA - checksum(out)
	binary.BigEndian.PutUint32(out[headOffset+8:], adjustment)
	return out
}
