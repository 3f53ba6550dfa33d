package ir

// Object is a node of a frame tree: one of *SimpleGroup, *TransformGroup,
// *BlendGroup, *ClipGroup, *MaskedGroup, *FrameGroup, *ShapeObject, *TextObject.
type Object interface {
	// ObjectID returns the identifier of the source definition.
	ObjectID() int
	isObject()
}

// GroupObject is implemented by the group variants.
type GroupObject interface {
	Object
	Children() []Object
	Append(objs ...Object)
	SetChildren(objs []Object)
	// CopyEmpty returns a copy of the group, without children.
	CopyEmpty() GroupObject
}

// Group is the common part of the group variants,
// which own their children.
type Group struct {
	ID      int
	Objects []Object
}

func (g *Group) ObjectID() int            { return g.ID }
func (g *Group) isObject()                {}
func (g *Group) Children() []Object       { return g.Objects }
func (g *Group) Append(objs ...Object)    { g.Objects = append(g.Objects, objs...) }
func (g *Group) SetChildren(objs []Object) { g.Objects = objs }

type SimpleGroup struct {
	Group
}

type TransformGroup struct {
	Group
	Transform Matrix
}

type BlendGroup struct {
	Group
	Mode BlendMode
}

// ClipGroup clips its children to the union of Clips.
type ClipGroup struct {
	Group
	Clips []Path
}

// MaskedGroup uses its last child as an alpha mask
// for the other children. Bounds is the area of the mask.
type MaskedGroup struct {
	Group
	Bounds Rect
}

func (g *SimpleGroup) CopyEmpty() GroupObject {
	return &SimpleGroup{Group: Group{ID: g.ID}}
}

func (g *TransformGroup) CopyEmpty() GroupObject {
	return &TransformGroup{Group: Group{ID: g.ID}, Transform: g.Transform}
}

func (g *BlendGroup) CopyEmpty() GroupObject {
	return &BlendGroup{Group: Group{ID: g.ID}, Mode: g.Mode}
}

func (g *ClipGroup) CopyEmpty() GroupObject {
	return &ClipGroup{Group: Group{ID: g.ID}, Clips: g.Clips}
}

func (g *MaskedGroup) CopyEmpty() GroupObject {
	return &MaskedGroup{Group: Group{ID: g.ID}, Bounds: g.Bounds}
}

// ShapeObject is a list of styled paths.
type ShapeObject struct {
	ID    int
	Paths []Path
}

func (s *ShapeObject) ObjectID() int { return s.ID }
func (*ShapeObject) isObject()       {}

// TextObject is a run of glyphs of one font, at a
// baseline position.
type TextObject struct {
	ID       int
	X, Y     float32
	FontSize float32
	Color    Color
	Font     *Font
	Text     string
	// GlyphIndices has one index in Font.Glyphs per rune of Text.
	GlyphIndices []int
	// GlyphOffsets are the spacing corrections between consecutive
	// glyphs, in EM square units. Trailing zeros are omitted.
	GlyphOffsets []float32
}

func (t *TextObject) ObjectID() int { return t.ID }
func (*TextObject) isObject()       {}

// Advance returns the width of the text, in text space.
func (t *TextObject) Advance() float32 {
	var total float32
	for i, index := range t.GlyphIndices {
		adv := float32(WhitespaceAdvance)
		if t.Font != nil && index >= 0 && index < len(t.Font.Glyphs) {
			if data := t.Font.Glyphs[index].Data; data != nil && !data.IsWhitespace() {
				adv = data.Advance
			}
		}
		total += adv
		if i < len(t.GlyphOffsets) {
			total += t.GlyphOffsets[i]
		}
	}
	return total * t.FontSize / EMSquareSize
}

// Bounds approximates the box of the text from the font metrics.
func (t *TextObject) Bounds() Rect {
	ascent, descent := float32(EMSquareSize), float32(0)
	if t.Font != nil {
		ascent, descent = t.Font.Metrics.Ascent, t.Font.Metrics.Descent
	}
	scale := t.FontSize / EMSquareSize
	return NewRect(t.X, t.Y-ascent*scale, t.X+t.Advance(), t.Y+descent*scale)
}

// assert interface conformance
var (
	_ GroupObject = (*SimpleGroup)(nil)
	_ GroupObject = (*TransformGroup)(nil)
	_ GroupObject = (*BlendGroup)(nil)
	_ GroupObject = (*ClipGroup)(nil)
	_ GroupObject = (*MaskedGroup)(nil)
	_ GroupObject = (*FrameGroup)(nil)
	_ Object      = (*ShapeObject)(nil)
	_ Object      = (*TextObject)(nil)
)

// Walk calls fn for obj and each of its descendants, in depth first
// order, parents first.
func Walk(obj Object, fn func(Object)) {
	fn(obj)
	if g, ok := obj.(GroupObject); ok {
		for _, child := range g.Children() {
			Walk(child, fn)
		}
	}
}

// Images returns the image fills used in the tree, in traversal order.
func Images(obj Object) []*ImageFill {
	var out []*ImageFill
	Walk(obj, func(o Object) {
		if shape, ok := o.(*ShapeObject); ok {
			for _, p := range shape.Paths {
				if img, ok := p.Fill.(*ImageFill); ok {
					out = append(out, img)
				}
			}
		}
	})
	return out
}

// Fonts returns the distinct fonts used in the tree, in order of
// first use.
func Fonts(obj Object) []*Font {
	var (
		out  []*Font
		seen = map[*Font]bool{}
	)
	Walk(obj, func(o Object) {
		if text, ok := o.(*TextObject); ok && text.Font != nil && !seen[text.Font] {
			seen[text.Font] = true
			out = append(out, text.Font)
		}
	})
	return out
}
