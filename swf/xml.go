package swf

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// node is a generic XML element
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) child(name string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].name() == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

// attrs reads typed attributes, keeping the first error
type attrs struct {
	n   *node
	err error
}

func (a *attrs) lookup(name string) (string, bool) {
	for _, attr := range a.n.Attrs {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (a *attrs) has(name string) bool {
	_, ok := a.lookup(name)
	return ok
}

func (a *attrs) fail(name string, err error) {
	if a.err == nil {
		a.err = fmt.Errorf("element <%s>: invalid attribute %s: %w", a.n.name(), name, err)
	}
}

func (a *attrs) int(name string, def int) int {
	v, ok := a.lookup(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		a.fail(name, err)
	}
	return i
}

func (a *attrs) float(name string, def float32) float32 {
	v, ok := a.lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		a.fail(name, err)
	}
	return float32(f)
}

func (a *attrs) bool(name string) bool {
	v, ok := a.lookup(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		a.fail(name, err)
	}
	return b
}

func (a *attrs) string(name string) string {
	v, _ := a.lookup(name)
	return v
}

// color reads #rrggbb or #rrggbbaa
func (a *attrs) color(name string) Color {
	v, ok := a.lookup(name)
	if !ok {
		return Color{A: 0xFF}
	}
	c, err := parseColor(v)
	if err != nil {
		a.fail(name, err)
	}
	return c
}

func parseColor(v string) (Color, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(v, "#"))
	if err != nil {
		return Color{}, err
	}
	switch len(b) {
	case 3:
		return Color{b[0], b[1], b[2], 0xFF}, nil
	case 4:
		return Color{b[0], b[1], b[2], b[3]}, nil
	}
	return Color{}, fmt.Errorf("expected 6 or 8 hex digits, got %q", v)
}

func (a *attrs) rect() Rect {
	return Rect{
		XMin: int32(a.int("xmin", 0)), YMin: int32(a.int("ymin", 0)),
		XMax: int32(a.int("xmax", 0)), YMax: int32(a.int("ymax", 0)),
	}
}

func (a *attrs) matrix() Matrix {
	return Matrix{
		ScaleX:     a.float("scaleX", 1),
		ScaleY:     a.float("scaleY", 1),
		Skew0:      a.float("skew0", 0),
		Skew1:      a.float("skew1", 0),
		TranslateX: int32(a.int("tx", 0)),
		TranslateY: int32(a.int("ty", 0)),
	}
}

// DecodeXML reads the XML dump of a movie, whose root element is
// <swf version="..." frameCount="...">, with one child element per tag.
// Binary payloads are base64 encoded. The charset declared in the
// XML prolog is honored.
func DecodeXML(r io.Reader) (*File, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	var root node
	if err := decoder.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, errors.New("swf: empty XML document")
		}
		return nil, fmt.Errorf("swf: invalid XML: %w", err)
	}
	if root.name() != "swf" {
		return nil, fmt.Errorf("swf: unexpected root element <%s>", root.name())
	}

	a := attrs{n: &root}
	file := &File{
		Version:    a.int("version", 10),
		FrameRate:  a.float("frameRate", 24),
		FrameCount: a.int("frameCount", 1),
	}
	if a.err != nil {
		return nil, fmt.Errorf("swf: %w", a.err)
	}
	for i := range root.Nodes {
		n := &root.Nodes[i]
		if n.name() == "frameSize" {
			fa := attrs{n: n}
			file.FrameSize = fa.rect()
			if fa.err != nil {
				return nil, fmt.Errorf("swf: %w", fa.err)
			}
			continue
		}
		tag, err := readTag(n)
		if err != nil {
			return nil, fmt.Errorf("swf: %w", err)
		}
		file.Tags = append(file.Tags, tag)
	}
	return file, nil
}

type tagFunc func(n *node) (Tag, error)

var tagFuncs map[string]tagFunc

func init() {
	// avoids cyclical static declaration (sprites contain tags)
	tagFuncs = map[string]tagFunc{
		"defineShape":        defineShapeF,
		"defineSprite":       defineSpriteF,
		"placeObject":        placeObjectF,
		"removeObject":       removeObjectF,
		"showFrame":          showFrameF,
		"defineFont":         defineFontF,
		"defineText":         defineTextF,
		"defineBitsLossless": defineBitsLosslessF,
		"defineBitsJPEG":     defineBitsJPEGF,
	}
}

func readTag(n *node) (Tag, error) {
	fn, ok := tagFuncs[n.name()]
	if !ok {
		return Unknown{Name: n.name()}, nil
	}
	return fn(n)
}

func defineShapeF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &DefineShape{Version: a.int("version", 1), ID: uint16(a.int("id", 0))}
	if b := n.child("bounds"); b != nil {
		ba := attrs{n: b}
		tag.Bounds = ba.rect()
		if ba.err != nil {
			return nil, ba.err
		}
	}
	var err error
	if tag.FillStyles, tag.LineStyles, err = readStyleArrays(n); err != nil {
		return nil, err
	}
	if tag.Shape, err = readShape(n); err != nil {
		return nil, err
	}
	return tag, a.err
}

func readStyleArrays(n *node) (fills []FillStyle, lines []LineStyle, err error) {
	if fs := n.child("fillStyles"); fs != nil {
		for i := range fs.Nodes {
			fill, err := readFillStyle(&fs.Nodes[i])
			if err != nil {
				return nil, nil, err
			}
			fills = append(fills, fill)
		}
	}
	if ls := n.child("lineStyles"); ls != nil {
		for i := range ls.Nodes {
			line, err := readLineStyle(&ls.Nodes[i])
			if err != nil {
				return nil, nil, err
			}
			lines = append(lines, line)
		}
	}
	return fills, lines, nil
}

func readFillStyle(n *node) (FillStyle, error) {
	a := attrs{n: n}
	var out FillStyle
	switch n.name() {
	case "solid":
		out = SolidFill{Color: a.color("color")}
	case "bitmap":
		fill := BitmapFill{Type: uint8(a.int("type", int(BitmapClipped))), BitmapID: uint16(a.int("bitmapId", 0)), Matrix: IdentityMatrix}
		if m := n.child("matrix"); m != nil {
			ma := attrs{n: m}
			fill.Matrix = ma.matrix()
			if ma.err != nil {
				return nil, ma.err
			}
		}
		out = fill
	case "gradient":
		fill := GradientFill{
			Type:          uint8(a.int("type", int(GradientLinear))),
			Spread:        uint8(a.int("spread", int(SpreadPad))),
			Interpolation: uint8(a.int("interpolation", int(InterpolationNormal))),
			Matrix:        IdentityMatrix,
		}
		for i := range n.Nodes {
			c := &n.Nodes[i]
			ca := attrs{n: c}
			switch c.name() {
			case "matrix":
				fill.Matrix = ca.matrix()
			case "stop":
				fill.Stops = append(fill.Stops, GradientStop{Ratio: uint8(ca.int("ratio", 0)), Color: ca.color("color")})
			}
			if ca.err != nil {
				return nil, ca.err
			}
		}
		out = fill
	default:
		return nil, fmt.Errorf("unsupported fill style element <%s>", n.name())
	}
	return out, a.err
}

func readLineStyle(n *node) (LineStyle, error) {
	if n.name() != "lineStyle" {
		return LineStyle{}, fmt.Errorf("unexpected line style element <%s>", n.name())
	}
	a := attrs{n: n}
	ls := LineStyle{
		Width:      a.int("width", 20),
		Color:      a.color("color"),
		Version2:   a.int("version", 1) == 2,
		StartCap:   CapStyle(a.int("startCap", int(CapRound))),
		EndCap:     CapStyle(a.int("endCap", int(CapRound))),
		Join:       JoinStyle(a.int("join", int(JoinRound))),
		MiterLimit: a.float("miterLimit", 3),
	}
	for i := range n.Nodes {
		fill, err := readFillStyle(&n.Nodes[i])
		if err != nil {
			return ls, err
		}
		ls.Fill = fill
	}
	return ls, a.err
}

// readShape reads the style, line and curve children of n
func readShape(n *node) (Shape, error) {
	var shape Shape
	for i := range n.Nodes {
		c := &n.Nodes[i]
		a := attrs{n: c}
		switch c.name() {
		case "style":
			sc := StyleChange{
				HasMove:  a.has("moveX") || a.has("moveY"),
				MoveX:    int32(a.int("moveX", 0)),
				MoveY:    int32(a.int("moveY", 0)),
				HasFill0: a.has("fill0"),
				Fill0:    a.int("fill0", 0),
				HasFill1: a.has("fill1"),
				Fill1:    a.int("fill1", 0),
				HasLine:  a.has("line"),
				Line:     a.int("line", 0),
			}
			var err error
			if sc.FillStyles, sc.LineStyles, err = readStyleArrays(c); err != nil {
				return shape, err
			}
			shape.Records = append(shape.Records, sc)
		case "line":
			shape.Records = append(shape.Records, StraightEdge{DX: int32(a.int("dx", 0)), DY: int32(a.int("dy", 0))})
		case "curve":
			shape.Records = append(shape.Records, CurvedEdge{
				ControlDX: int32(a.int("cdx", 0)), ControlDY: int32(a.int("cdy", 0)),
				AnchorDX: int32(a.int("adx", 0)), AnchorDY: int32(a.int("ady", 0)),
			})
		}
		if a.err != nil {
			return shape, a.err
		}
	}
	return shape, nil
}

func defineSpriteF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &DefineSprite{ID: uint16(a.int("id", 0)), FrameCount: a.int("frameCount", 1)}
	for i := range n.Nodes {
		child, err := readTag(&n.Nodes[i])
		if err != nil {
			return nil, fmt.Errorf("sprite %d: %w", tag.ID, err)
		}
		tag.Tags = append(tag.Tags, child)
	}
	return tag, a.err
}

func placeObjectF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &PlaceObject{
		Version:      a.int("version", 2),
		Move:         a.bool("move"),
		HasCharacter: a.has("id"),
		CharacterID:  uint16(a.int("id", 0)),
		Depth:        a.int("depth", 0),
		ClipDepth:    a.int("clipDepth", 0),
		HasBlend:     a.has("blendMode"),
		BlendMode:    uint8(a.int("blendMode", 0)),
		HasRatio:     a.has("ratio"),
		Ratio:        a.int("ratio", 0),
	}
	for i := range n.Nodes {
		c := &n.Nodes[i]
		ca := attrs{n: c}
		switch c.name() {
		case "matrix":
			m := ca.matrix()
			tag.Matrix = &m
		case "colorTransform":
			tag.ColorTrans = &ColorTransform{
				MultR: ca.float("multR", 1), MultG: ca.float("multG", 1),
				MultB: ca.float("multB", 1), MultA: ca.float("multA", 1),
				AddR: ca.float("addR", 0), AddG: ca.float("addG", 0),
				AddB: ca.float("addB", 0), AddA: ca.float("addA", 0),
			}
		case "colorMatrix":
			var f ColorMatrixFilter
			fields := strings.Fields(ca.string("values"))
			if len(fields) != len(f.Matrix) {
				return nil, fmt.Errorf("color matrix: expected %d values, got %d", len(f.Matrix), len(fields))
			}
			for j, field := range fields {
				v, err := strconv.ParseFloat(field, 32)
				if err != nil {
					return nil, fmt.Errorf("color matrix: %w", err)
				}
				f.Matrix[j] = float32(v)
			}
			tag.Filters = append(tag.Filters, f)
		case "filter":
			tag.Filters = append(tag.Filters, OtherFilter{Kind: ca.string("type")})
		}
		if ca.err != nil {
			return nil, ca.err
		}
	}
	return tag, a.err
}

func removeObjectF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &RemoveObject{Version: a.int("version", 2), CharacterID: uint16(a.int("id", 0)), Depth: a.int("depth", 0)}
	return tag, a.err
}

func showFrameF(*node) (Tag, error) { return ShowFrame{}, nil }

func defineFontF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &DefineFont{
		Version: a.int("version", 3),
		ID:      uint16(a.int("id", 0)),
		Name:    a.string("name"),
		Ascent:  a.int("ascent", 0),
		Descent: a.int("descent", 0),
	}
	hasLayout := true
	for i := range n.Nodes {
		c := &n.Nodes[i]
		ca := attrs{n: c}
		switch c.name() {
		case "glyph":
			tag.Codes = append(tag.Codes, rune(ca.int("code", 0)))
			if ca.has("advance") {
				tag.Advances = append(tag.Advances, ca.int("advance", 0))
			} else {
				hasLayout = false
			}
			shape, err := readShape(c)
			if err != nil {
				return nil, err
			}
			tag.Shapes = append(tag.Shapes, shape)
		case "kerning":
			tag.Kernings = append(tag.Kernings, Kerning{
				Left:       rune(ca.int("left", 0)),
				Right:      rune(ca.int("right", 0)),
				Adjustment: ca.int("adjustment", 0),
			})
		}
		if ca.err != nil {
			return nil, ca.err
		}
	}
	if !hasLayout {
		tag.Advances = nil
	}
	return tag, a.err
}

func defineTextF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &DefineText{Version: a.int("version", 1), ID: uint16(a.int("id", 0)), Matrix: IdentityMatrix}
	for i := range n.Nodes {
		c := &n.Nodes[i]
		ca := attrs{n: c}
		switch c.name() {
		case "bounds":
			tag.Bounds = ca.rect()
		case "matrix":
			tag.Matrix = ca.matrix()
		case "record":
			rec := TextRecord{
				HasFont:  ca.has("font"),
				FontID:   uint16(ca.int("font", 0)),
				Height:   ca.int("height", 0),
				HasColor: ca.has("color"),
				Color:    ca.color("color"),
				HasX:     ca.has("x"),
				XOffset:  ca.int("x", 0),
				HasY:     ca.has("y"),
				YOffset:  ca.int("y", 0),
			}
			for j := range c.Nodes {
				ea := attrs{n: &c.Nodes[j]}
				rec.Glyphs = append(rec.Glyphs, GlyphEntry{Index: ea.int("index", 0), Advance: ea.int("advance", 0)})
				if ea.err != nil {
					return nil, ea.err
				}
			}
			tag.Records = append(tag.Records, rec)
		}
		if ca.err != nil {
			return nil, ca.err
		}
	}
	return tag, a.err
}

func decodeBase64(n *node) ([]byte, error) {
	s := strings.Join(strings.Fields(n.Text), "")
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("element <%s>: invalid base64 data: %w", n.name(), err)
	}
	return out, nil
}

func defineBitsLosslessF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &DefineBitsLossless{
		Version:        a.int("version", 1),
		ID:             uint16(a.int("id", 0)),
		Format:         uint8(a.int("format", int(RGB24))),
		Width:          a.int("width", 0),
		Height:         a.int("height", 0),
		ColorTableSize: a.int("colorTableSize", 0),
	}
	var err error
	if tag.Data, err = decodeBase64(n); err != nil {
		return nil, err
	}
	return tag, a.err
}

func defineBitsJPEGF(n *node) (Tag, error) {
	a := attrs{n: n}
	tag := &DefineBitsJPEG{Version: a.int("version", 2), ID: uint16(a.int("id", 0))}
	var err error
	if data := n.child("data"); data != nil {
		if tag.Data, err = decodeBase64(data); err != nil {
			return nil, err
		}
	}
	if alpha := n.child("alpha"); alpha != nil {
		if tag.AlphaData, err = decodeBase64(alpha); err != nil {
			return nil, err
		}
	}
	return tag, a.err
}
