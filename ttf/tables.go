package ttf

import (
	"encoding/binary"
	"math"
	"sort"

	"golang.org/x/text/encoding/unicode"
)

// simple glyph flags
const (
	flagOnCurve = 1 << iota
	flagXShort
	flagYShort
	flagRepeat
	flagXSame // or positive, for short X
	flagYSame // or positive, for short Y
)

type fontStats struct {
	bounds        bbox // union of the glyph boxes
	glyphBounds   []bbox
	maxPoints     uint16
	maxContours   uint16
	advanceMax    uint16
	minLSB        int16
	minRSB        int16
	xMaxExtent    int16
	avgCharWidth  int16
	firstChar     uint16
	lastChar      uint16
	hasOutlineBox bool
}

var be = binary.BigEndian

func appendInt16(b []byte, v int16) []byte { return be.AppendUint16(b, uint16(v)) }

// encodeCoordinate appends the delta d to coords and returns its flag.
func encodeCoordinate(coords []byte, d int16, short, same uint8) ([]byte, uint8) {
	switch {
	case d == 0:
		return coords, same
	case d > -256 && d < 256:
		if d > 0 {
			return append(coords, uint8(d)), short | same
		}
		return append(coords, uint8(-d)), short
	default:
		return appendInt16(coords, d), 0
	}
}

func encodeGlyph(g Glyph, b bbox) []byte {
	numPoints := 0
	for _, c := range g.Contours {
		numPoints += len(c)
	}
	out := appendInt16(nil, int16(len(g.Contours)))
	out = appendInt16(out, b.xMin)
	out = appendInt16(out, b.yMin)
	out = appendInt16(out, b.xMax)
	out = appendInt16(out, b.yMax)
	end := -1
	for _, c := range g.Contours {
		end += len(c)
		out = be.AppendUint16(out, uint16(end))
	}
	out = be.AppendUint16(out, 0) // no instructions

	var (
		flags      = make([]uint8, 0, numPoints)
		xs, ys     []byte
		prevX      int16
		prevY      int16
		fx, fy     uint8
		lastFlag   = -1
		repeatFrom = 0
	)
	for _, c := range g.Contours {
		for _, p := range c {
			xs, fx = encodeCoordinate(xs, p.X-prevX, flagXShort, flagXSame)
			ys, fy = encodeCoordinate(ys, p.Y-prevY, flagYShort, flagYSame)
			prevX, prevY = p.X, p.Y
			flag := fx | fy
			if p.OnCurve {
				flag |= flagOnCurve
			}
			flags = append(flags, flag)
		}
	}
	// run length encoding of the flags
	var packed []byte
	for i := 0; i <= len(flags); i++ {
		if i < len(flags) && int(flags[i]) == lastFlag && i-repeatFrom < 256 {
			continue
		}
		if lastFlag >= 0 {
			count := i - repeatFrom
			if count == 1 {
				packed = append(packed, uint8(lastFlag))
			} else if count == 2 {
				packed = append(packed, uint8(lastFlag), uint8(lastFlag))
			} else {
				packed = append(packed, uint8(lastFlag)|flagRepeat, uint8(count-1))
			}
		}
		if i < len(flags) {
			lastFlag = int(flags[i])
			repeatFrom = i
		}
	}
	out = append(out, packed...)
	out = append(out, xs...)
	out = append(out, ys...)
	return out
}

// buildGlyf returns the glyf and loca tables (long format).
func buildGlyf(glyphs []Glyph) (glyf, loca []byte, stats fontStats) {
	stats.bounds = bbox{xMin: math.MaxInt16, yMin: math.MaxInt16, xMax: math.MinInt16, yMax: math.MinInt16}
	stats.minLSB, stats.minRSB = math.MaxInt16, math.MaxInt16
	stats.glyphBounds = make([]bbox, len(glyphs))
	var totalAdvance int
	for i, g := range glyphs {
		loca = be.AppendUint32(loca, uint32(len(glyf)))
		totalAdvance += int(g.Advance)
		stats.advanceMax = max(stats.advanceMax, g.Advance)
		b, ok := g.bounds()
		if !ok {
			continue
		}
		stats.glyphBounds[i] = b
		stats.hasOutlineBox = true
		stats.bounds.xMin, stats.bounds.xMax = min(stats.bounds.xMin, b.xMin), max(stats.bounds.xMax, b.xMax)
		stats.bounds.yMin, stats.bounds.yMax = min(stats.bounds.yMin, b.yMin), max(stats.bounds.yMax, b.yMax)
		stats.minLSB = min(stats.minLSB, b.xMin)
		stats.minRSB = min(stats.minRSB, int16(int(g.Advance)-int(b.xMax)))
		stats.xMaxExtent = max(stats.xMaxExtent, b.xMax)

		points := 0
		for _, c := range g.Contours {
			points += len(c)
		}
		stats.maxPoints = max(stats.maxPoints, uint16(points))
		stats.maxContours = max(stats.maxContours, uint16(len(g.Contours)))
		glyf = pad4(append(glyf, encodeGlyph(g, b)...))
	}
	loca = be.AppendUint32(loca, uint32(len(glyf)))
	if !stats.hasOutlineBox {
		stats.bounds = bbox{}
		stats.minLSB, stats.minRSB = 0, 0
	}
	if len(glyphs) > 1 {
		stats.avgCharWidth = int16(totalAdvance / (len(glyphs) - 1))
	}

	stats.firstChar, stats.lastChar = math.MaxUint16, 0
	for _, g := range glyphs[1:] {
		if g.Char > math.MaxUint16 {
			continue
		}
		stats.firstChar = min(stats.firstChar, uint16(g.Char))
		stats.lastChar = max(stats.lastChar, uint16(g.Char))
	}
	if stats.firstChar > stats.lastChar {
		stats.firstChar, stats.lastChar = 0, 0
	}
	return glyf, loca, stats
}

func buildHead(f *Font, stats fontStats) []byte {
	out := be.AppendUint32(nil, 0x00010000) // version
	out = be.AppendUint32(out, 0x00010000)  // font revision
	out = be.AppendUint32(out, 0)           // checksum adjustment
	out = be.AppendUint32(out, 0x5F0F3CF5)  // magic
	out = be.AppendUint16(out, 0x000B)      // baseline at 0, lsb at 0, integer scaling
	out = be.AppendUint16(out, f.UnitsPerEm)
	out = be.AppendUint64(out, 0) // created
	out = be.AppendUint64(out, 0) // modified
	out = appendInt16(out, stats.bounds.xMin)
	out = appendInt16(out, stats.bounds.yMin)
	out = appendInt16(out, stats.bounds.xMax)
	out = appendInt16(out, stats.bounds.yMax)
	out = be.AppendUint16(out, 0) // mac style
	out = be.AppendUint16(out, 8) // lowest PPEM
	out = appendInt16(out, 2)     // font direction hint
	out = appendInt16(out, 1)     // long loca
	out = appendInt16(out, 0)     // glyph data format
	return out
}

func buildHhea(f *Font, glyphs []Glyph, stats fontStats) []byte {
	out := be.AppendUint32(nil, 0x00010000)
	out = appendInt16(out, f.Ascent)
	out = appendInt16(out, -f.Descent)
	out = appendInt16(out, 0) // line gap
	out = be.AppendUint16(out, stats.advanceMax)
	out = appendInt16(out, stats.minLSB)
	out = appendInt16(out, stats.minRSB)
	out = appendInt16(out, stats.xMaxExtent)
	out = appendInt16(out, 1) // caret slope rise
	out = appendInt16(out, 0) // caret slope run
	out = appendInt16(out, 0) // caret offset
	out = append(out, make([]byte, 8)...)
	out = appendInt16(out, 0) // metric data format
	out = be.AppendUint16(out, uint16(len(glyphs)))
	return out
}

func buildHmtx(glyphs []Glyph, stats fontStats) []byte {
	var out []byte
	for i, g := range glyphs {
		out = be.AppendUint16(out, g.Advance)
		out = appendInt16(out, stats.glyphBounds[i].xMin)
	}
	return out
}

func buildMaxp(glyphs []Glyph, stats fontStats) []byte {
	out := be.AppendUint32(nil, 0x00010000)
	out = be.AppendUint16(out, uint16(len(glyphs)))
	out = be.AppendUint16(out, stats.maxPoints)
	out = be.AppendUint16(out, stats.maxContours)
	out = be.AppendUint16(out, 0) // max composite points
	out = be.AppendUint16(out, 0) // max composite contours
	out = be.AppendUint16(out, 2) // max zones
	// twilight points, storage, function defs, instruction defs,
	// stack elements, size of instructions, component elements, component depth
	out = append(out, make([]byte, 16)...)
	return out
}

func buildOS2(f *Font, stats fontStats) []byte {
	out := be.AppendUint16(nil, 4) // version
	out = appendInt16(out, stats.avgCharWidth)
	out = be.AppendUint16(out, 400) // weight
	out = be.AppendUint16(out, 5)   // width
	out = be.AppendUint16(out, 0)   // installable embedding
	em := int16(f.UnitsPerEm)
	// subscript and superscript sizes and offsets
	for _, v := range [...]int16{em * 2 / 3, em * 2 / 3, 0, em / 7, em * 2 / 3, em * 2 / 3, 0, em * 3 / 8} {
		out = appendInt16(out, v)
	}
	out = appendInt16(out, em/20)          // strikeout size
	out = appendInt16(out, em/4)           // strikeout position
	out = appendInt16(out, 0)              // family class
	out = append(out, make([]byte, 10)...) // panose
	out = append(out, make([]byte, 16)...) // unicode ranges
	out = append(out, "NONE"...)
	out = be.AppendUint16(out, 0x0040) // regular
	out = be.AppendUint16(out, stats.firstChar)
	out = be.AppendUint16(out, stats.lastChar)
	out = appendInt16(out, f.Ascent)
	out = appendInt16(out, -f.Descent)
	out = appendInt16(out, 0) // typo line gap
	out = be.AppendUint16(out, uint16(max(f.Ascent, stats.bounds.yMax, 0)))
	out = be.AppendUint16(out, uint16(max(f.Descent, -stats.bounds.yMin, 0)))
	out = be.AppendUint32(out, 1) // latin 1 code page
	out = be.AppendUint32(out, 0)
	out = appendInt16(out, 0)      // x height
	out = appendInt16(out, 0)      // cap height
	out = be.AppendUint16(out, 0)  // default char
	out = be.AppendUint16(out, 32) // break char
	out = be.AppendUint16(out, 1)  // max context
	return out
}

type cmapEntry struct {
	char uint16
	gid  uint16
}

// buildCmap writes a format 4 subtable for the Windows Unicode platform.
// Characters outside the BMP are not mapped.
func buildCmap(glyphs []Glyph) []byte {
	var entries []cmapEntry
	seen := map[uint16]bool{}
	for gid, g := range glyphs {
		if gid == 0 || g.Char > 0xFFFE || g.Char < 0 || seen[uint16(g.Char)] {
			continue
		}
		seen[uint16(g.Char)] = true
		entries = append(entries, cmapEntry{uint16(g.Char), uint16(gid)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].char < entries[j].char })

	type segment struct{ start, end, delta uint16 }
	var segments []segment
	for i, e := range entries {
		if i > 0 {
			last := &segments[len(segments)-1]
			prev := entries[i-1]
			if e.char == prev.char+1 && e.gid == prev.gid+1 {
				last.end = e.char
				continue
			}
		}
		segments = append(segments, segment{e.char, e.char, e.gid - e.char})
	}
	segments = append(segments, segment{0xFFFF, 0xFFFF, 1})

	segCount := uint16(len(segments))
	entrySelector := uint16(math.Floor(math.Log2(float64(segCount))))
	searchRange := uint16(2 * (1 << entrySelector))
	length := 16 + 8*int(segCount)

	sub := be.AppendUint16(nil, 4)
	sub = be.AppendUint16(sub, uint16(length))
	sub = be.AppendUint16(sub, 0) // language
	sub = be.AppendUint16(sub, 2*segCount)
	sub = be.AppendUint16(sub, searchRange)
	sub = be.AppendUint16(sub, entrySelector)
	sub = be.AppendUint16(sub, 2*segCount-searchRange)
	for _, s := range segments {
		sub = be.AppendUint16(sub, s.end)
	}
	sub = be.AppendUint16(sub, 0) // reserved pad
	for _, s := range segments {
		sub = be.AppendUint16(sub, s.start)
	}
	for _, s := range segments {
		sub = be.AppendUint16(sub, s.delta)
	}
	for range segments {
		sub = be.AppendUint16(sub, 0) // id range offset
	}

	out := be.AppendUint16(nil, 0) // version
	out = be.AppendUint16(out, 1)  // number of subtables
	out = be.AppendUint16(out, 3)  // Windows
	out = be.AppendUint16(out, 1)  // Unicode BMP
	out = be.AppendUint32(out, 12)
	return append(out, sub...)
}

var utf16Encoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// buildName writes the family, subfamily, unique, full and
// PostScript names, for the Windows platform.
func buildName(name string) []byte {
	records := []struct {
		id    uint16
		value string
	}{
		{1, name},
		{2, "Regular"},
		{3, name + "-Regular"},
		{4, name},
		{6, name},
	}
	var (
		strings []byte
		out     = be.AppendUint16(nil, 0)
	)
	out = be.AppendUint16(out, uint16(len(records)))
	out = be.AppendUint16(out, uint16(6+12*len(records)))
	for _, r := range records {
		encoded, _ := utf16Encoder.NewEncoder().Bytes([]byte(r.value))
		out = be.AppendUint16(out, 3)      // Windows
		out = be.AppendUint16(out, 1)      // Unicode BMP
		out = be.AppendUint16(out, 0x0409) // en-US
		out = be.AppendUint16(out, r.id)
		out = be.AppendUint16(out, uint16(len(encoded)))
		out = be.AppendUint16(out, uint16(len(strings)))
		strings = append(strings, encoded...)
	}
	return append(out, strings...)
}

func buildPost() []byte {
	out := be.AppendUint32(nil, 0x00030000)
	out = be.AppendUint32(out, 0) // italic angle
	out = appendInt16(out, -100)  // underline position
	out = appendInt16(out, 50)    // underline thickness
	out = be.AppendUint32(out, 0) // fixed pitch
	out = append(out, make([]byte, 16)...)
	return out
}
