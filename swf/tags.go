// Package swf defines the decoded form of a movie file: the tags
// of the file, with their shapes, styles, fonts, texts and bitmaps.
//
// Lengths are in twips (1/20 point) and colors are not premultiplied.
// The binary format itself is not decoded here: a file is built by an
// external decoder, or read from its XML dump with DecodeXML.
package swf

// File is a decoded movie.
type File struct {
	Version    int
	FrameSize  Rect
	FrameRate  float32
	FrameCount int
	Tags       []Tag
}

// Rect is a bounding box, in twips.
type Rect struct {
	XMin, YMin, XMax, YMax int32
}

func (r Rect) Width() int32  { return r.XMax - r.XMin }
func (r Rect) Height() int32 { return r.YMax - r.YMin }

// Color is a RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Matrix maps (x, y) to
// (ScaleX*x + Skew1*y + TranslateX, Skew0*x + ScaleY*y + TranslateY).
type Matrix struct {
	ScaleX, ScaleY         float32
	Skew0, Skew1           float32
	TranslateX, TranslateY int32
}

// IdentityMatrix does nothing.
var IdentityMatrix = Matrix{ScaleX: 1, ScaleY: 1}

// ColorTransform maps each channel c to c*Mult + Add.
type ColorTransform struct {
	MultR, MultG, MultB, MultA float32
	AddR, AddG, AddB, AddA     float32
}

// Tag is one of the supported tags, or Unknown.
type Tag interface {
	isTag()
}

// DefineTag is implemented by the tags defining a
// character, referenced by the placement tags.
type DefineTag interface {
	Tag
	CharacterID() uint16
}

func (*DefineShape) isTag()        {}
func (*DefineSprite) isTag()       {}
func (*PlaceObject) isTag()        {}
func (*RemoveObject) isTag()       {}
func (ShowFrame) isTag()           {}
func (*DefineFont) isTag()         {}
func (*DefineText) isTag()         {}
func (*DefineBitsLossless) isTag() {}
func (*DefineBitsJPEG) isTag()     {}
func (Unknown) isTag()             {}

func (t *DefineShape) CharacterID() uint16        { return t.ID }
func (t *DefineSprite) CharacterID() uint16       { return t.ID }
func (t *DefineFont) CharacterID() uint16         { return t.ID }
func (t *DefineText) CharacterID() uint16         { return t.ID }
func (t *DefineBitsLossless) CharacterID() uint16 { return t.ID }
func (t *DefineBitsJPEG) CharacterID() uint16     { return t.ID }

// DefineShape is a DefineShape, DefineShape2, 3 or 4 tag.
type DefineShape struct {
	Version    int
	ID         uint16
	Bounds     Rect
	FillStyles []FillStyle
	LineStyles []LineStyle
	Shape      Shape
}

// DefineSprite holds its own display list.
type DefineSprite struct {
	ID         uint16
	FrameCount int
	Tags       []Tag
}

// PlaceType is deduced from the flags of a placement.
type PlaceType uint8

const (
	PlaceNew PlaceType = iota
	PlaceModify
	PlaceReplace
)

func (p PlaceType) String() string {
	switch p {
	case PlaceNew:
		return "new"
	case PlaceModify:
		return "modify"
	default:
		return "replace"
	}
}

// Blend mode codes of PlaceObject3
const (
	BlendNormal0 uint8 = iota
	BlendNormal1
	BlendLayer
	BlendMultiply
	BlendScreen
	BlendLighten
	BlendDarken
	BlendDifference
	BlendAdd
	BlendSubtract
	BlendInvert
	BlendAlpha
	BlendErase
	BlendOverlay
	BlendHardlight
)

// PlaceObject is a PlaceObject, PlaceObject2 or PlaceObject3 tag.
type PlaceObject struct {
	Version      int
	Move         bool
	HasCharacter bool
	CharacterID  uint16
	Depth        int
	Matrix       *Matrix         // optional
	ColorTrans   *ColorTransform // optional
	// ClipDepth is 0 for non clipping objects.
	ClipDepth int
	HasBlend  bool
	BlendMode uint8
	Filters   []Filter
	HasRatio  bool
	Ratio     int
}

// Type returns the kind of placement.
func (p *PlaceObject) Type() PlaceType {
	switch {
	case p.Move && p.HasCharacter:
		return PlaceReplace
	case p.Move:
		return PlaceModify
	default:
		return PlaceNew
	}
}

// Filter is one of ColorMatrixFilter, OtherFilter.
type Filter interface {
	isFilter()
}

func (ColorMatrixFilter) isFilter() {}
func (OtherFilter) isFilter()       {}

type ColorMatrixFilter struct {
	Matrix [20]float32
}

// IsIdentity returns true if the filter has no effect.
func (f ColorMatrixFilter) IsIdentity() bool {
	for i, v := range f.Matrix {
		want := float32(0)
		if i%6 == 0 {
			want = 1
		}
		if v != want {
			return false
		}
	}
	return true
}

// OtherFilter is a filter with no decoded parameters.
type OtherFilter struct {
	Kind string
}

// RemoveObject is a RemoveObject or RemoveObject2 tag.
// CharacterID is only used by the first version.
type RemoveObject struct {
	Version     int
	CharacterID uint16
	Depth       int
}

type ShowFrame struct{}

// Unknown is any tag not needed by the conversion.
type Unknown struct {
	Name string
}

// DefineFont is a DefineFont, DefineFont2, 3 or 4 tag.
// Codes, Shapes and Advances have one entry per glyph,
// Advances being empty when the font has no layout.
type DefineFont struct {
	Version  int
	ID       uint16
	Name     string
	Ascent   int
	Descent  int
	Codes    []rune
	Shapes   []Shape
	Advances []int
	Kernings []Kerning
}

type Kerning struct {
	Left, Right rune
	Adjustment  int
}

// DefineText is a DefineText or DefineText2 tag.
type DefineText struct {
	Version int
	ID      uint16
	Bounds  Rect
	Matrix  Matrix
	Records []TextRecord
}

// TextRecord is a span of glyphs. Each style field is only
// used when its flag is set.
type TextRecord struct {
	HasFont  bool
	FontID   uint16
	HasColor bool
	Color    Color
	HasX     bool
	XOffset  int
	HasY     bool
	YOffset  int
	// Height is the font size, in twips. It is set along with the font.
	Height int
	Glyphs []GlyphEntry
}

type GlyphEntry struct {
	Index   int
	Advance int
}

// Lossless bitmap formats
const (
	ColorMapped8 uint8 = 3
	RGB15        uint8 = 4
	RGB24        uint8 = 5 // ARGB32 for version 2
)

// DefineBitsLossless is a DefineBitsLossless or DefineBitsLossless2 tag.
// Data is zlib compressed.
type DefineBitsLossless struct {
	Version        int
	ID             uint16
	Format         uint8
	Width, Height  int
	ColorTableSize int // number of colors, for ColorMapped8
	Data           []byte
}

// DefineBitsJPEG is a DefineBitsJPEG2 or DefineBitsJPEG3 tag.
// Data is JPEG, PNG or GIF data; AlphaData is zlib compressed
// and only used with version 3.
type DefineBitsJPEG struct {
	Version   int
	ID        uint16
	Data      []byte
	AlphaData []byte
}
