package convert

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
)

var blendModes = [...]ir.BlendMode{
	swf.BlendNormal0:    ir.BlendNull,
	swf.BlendNormal1:    ir.BlendNormal,
	swf.BlendLayer:      ir.BlendLayer,
	swf.BlendMultiply:   ir.BlendMultiply,
	swf.BlendScreen:     ir.BlendScreen,
	swf.BlendLighten:    ir.BlendLighten,
	swf.BlendDarken:     ir.BlendDarken,
	swf.BlendDifference: ir.BlendDifference,
	swf.BlendAdd:        ir.BlendAdd,
	swf.BlendSubtract:   ir.BlendSubtract,
	swf.BlendInvert:     ir.BlendInvert,
	swf.BlendAlpha:      ir.BlendAlpha,
	swf.BlendErase:      ir.BlendErase,
	swf.BlendOverlay:    ir.BlendOverlay,
	swf.BlendHardlight:  ir.BlendHardlight,
}

// debugLineStyle is used to draw the debug bounds.
func debugLineStyle(cfg *config.Debug) *ir.LineStyle {
	return &ir.LineStyle{
		Color: ir.Color(cfg.DebugLineColor),
		Width: cfg.DebugLineWidth,
		Cap:   ir.CapRound,
		Join:  ir.JoinRound,
	}
}

func boundsShape(id int, bounds swf.Rect, line *ir.LineStyle) *ir.ShapeObject {
	rect := ir.Rectangle{
		X: float32(bounds.XMin), Y: float32(bounds.YMin),
		W: float32(bounds.Width()), H: float32(bounds.Height()),
	}
	return &ir.ShapeObject{ID: id, Paths: []ir.Path{{Elements: []ir.PathElement{rect}, Line: line}}}
}

// FrameConverter builds the frame tree of a Frame. It is not safe
// for concurrent use, but may be reused for several frames of
// the same file.
type FrameConverter struct {
	cfg    *config.Convert
	logger *slog.Logger
	text   *TextConverter
	shapes ShapeConverter
	styles *styledResolver

	groupStack []ir.GroupObject
	transforms transformStack
	blendStack []ir.BlendMode
	clipStack  []int
	colors     CompositeColorTransform
}

// NewFrameConverter returns a converter for the frames of the file
// fileIndex, using the fonts of the whole collection.
func NewFrameConverter(cfg *config.Convert, images *ImageDecoder, fonts map[FontKey]*ir.Font, fileIndex int, logger *slog.Logger) *FrameConverter {
	fc := &FrameConverter{cfg: cfg, logger: logger}
	fc.text = NewTextConverter(cfg, fonts, fileIndex)
	bitmapOffset := ir.Identity
	if offset := cfg.Debug.BitmapMatrixOffset; len(offset) == 2 {
		bitmapOffset = ir.NewTranslation(float64(offset[0]), float64(offset[1]))
	}
	fc.styles = &styledResolver{
		colors:          &fc.colors,
		images:          images,
		bitmapOffset:    bitmapOffset,
		disableClipping: cfg.Debug.DisableClipping,
	}
	fc.shapes = ShapeConverter{styles: fc.styles}
	return fc
}

func (fc *FrameConverter) currentGroup() ir.GroupObject { return fc.groupStack[len(fc.groupStack)-1] }

func (fc *FrameConverter) addGroup(group ir.GroupObject) {
	fc.currentGroup().Append(group)
	fc.groupStack = append(fc.groupStack, group)
}

// popGroup removes the top group from the stack, and from its
// parent if it is empty.
func (fc *FrameConverter) popGroup() ir.GroupObject {
	group := fc.currentGroup()
	fc.groupStack = fc.groupStack[:len(fc.groupStack)-1]
	if len(group.Children()) == 0 {
		parent := fc.currentGroup()
		children := parent.Children()
		parent.SetChildren(children[:len(children)-1])
	}
	return group
}

// CreateFrameGroup returns the tree of frame.
func (fc *FrameConverter) CreateFrameGroup(frame *Frame) (*ir.FrameGroup, error) {
	padding := fc.cfg.Debug.FramePadding * twipsPerInch
	frameGroup := ir.NewFrameGroup(float32(frame.Width), float32(frame.Height), padding, fc.cfg.YDirection)

	fc.groupStack = append(fc.groupStack[:0], frameGroup)
	fc.transforms.stack = fc.transforms.stack[:0]
	fc.blendStack = append(fc.blendStack[:0], ir.BlendNormal)
	fc.clipStack = fc.clipStack[:0]
	fc.colors = CompositeColorTransform{}
	fc.styles.dictionary = frame.Dictionary

	if err := fc.createGroup(frame.Ctx, frame.ID, frame.Objects); err != nil {
		return nil, err
	}
	if len(fc.groupStack) != 1 {
		return nil, frame.Ctx.Errorf("expected only frame group in group stack")
	}
	return frameGroup, nil
}

// createGroup adds a simple group for a frame or a sprite, used to
// find the content to mask with an alpha blended object.
// Clip depths are local to the group: the clips still open after the
// last object are closed.
func (fc *FrameConverter) createGroup(ctx *Context, id int, objects []*FrameObject) error {
	fc.addGroup(&ir.SimpleGroup{Group: ir.Group{ID: id}})
	groupsBefore := len(fc.groupStack)

	clipsBefore := fc.clipStack
	fc.clipStack = nil
	for _, obj := range objects {
		if err := fc.createObject(obj); err != nil {
			return err
		}
	}
	for len(fc.groupStack) > groupsBefore {
		if _, ok := fc.currentGroup().(*ir.ClipGroup); !ok {
			return ctx.Errorf("expected clip group")
		}
		fc.popGroup()
	}
	fc.clipStack = clipsBefore

	fc.popGroup()
	return nil
}

func (fc *FrameConverter) createObject(obj *FrameObject) error {
	place := obj.Place
	debug := &fc.cfg.Debug
	// a depth may be skipped by the display list
	if err := fc.closeClips(obj.Ctx, place.Depth, false); err != nil {
		return err
	}
	groupsBefore := len(fc.groupStack)

	for _, filter := range place.Filters {
		if cm, ok := filter.(swf.ColorMatrixFilter); !ok || !cm.IsIdentity() {
			return obj.Ctx.Errorf("unsupported place filter %v", filter)
		}
	}

	if place.ColorTrans != nil {
		fc.colors.Push(newColorTransform(*place.ColorTrans))
		defer fc.colors.Pop()
	}

	shape, isShape := obj.Tag.(*swf.DefineShape)
	transform := ir.Identity
	if place.Matrix != nil {
		transform = matrixFromSwf(*place.Matrix)
	}

	// blending has no effect on clipping shapes
	if place.HasBlend && place.ClipDepth == 0 {
		if int(place.BlendMode) >= len(blendModes) {
			return obj.Ctx.Errorf("invalid blend mode %d", place.BlendMode)
		}
		blend := blendModes[place.BlendMode]
		if blend == ir.BlendNull {
			blend = ir.BlendNormal
		}
		switch {
		case blend == ir.BlendAlpha:
			if !debug.DisableMasking {
				if !isShape {
					return obj.Ctx.Errorf("unsupported mask object of type %T", obj.Tag)
				}
				fc.addMaskedGroup(transform, shape)
				groupsBefore = len(fc.groupStack) - 1
			}
		case debug.DisableBlending:
		case blend != fc.blendStack[len(fc.blendStack)-1]:
			fc.addGroup(&ir.BlendGroup{Group: ir.Group{ID: obj.ID}, Mode: blend})
			fc.blendStack = append(fc.blendStack, blend)
			defer func() { fc.blendStack = fc.blendStack[:len(fc.blendStack)-1] }()
		}
	}

	// a clipping shape is transformed on its own
	if !transform.IsIdentity() && place.ClipDepth == 0 {
		fc.addGroup(&ir.TransformGroup{Group: ir.Group{ID: obj.ID}, Transform: transform})
		fc.transforms.push(transform)
		defer fc.transforms.pop()
	}

	var err error
	switch {
	case isShape && place.ClipDepth != 0:
		var created bool
		created, err = fc.createClipGroup(obj, shape, transform)
		if created {
			// kept until its clip depth is exceeded
			groupsBefore++
		}
	case isShape:
		err = fc.createShape(obj, shape)
	case obj.IsSprite:
		err = fc.createGroup(obj.Ctx, obj.ID, obj.Objects)
	default:
		if text, ok := obj.Tag.(*swf.DefineText); ok {
			var objects []ir.Object
			objects, err = fc.text.Convert(obj.Ctx, text, &fc.colors)
			fc.currentGroup().Append(objects...)
		} else {
			fc.logger.Error("unsupported object type", "type", fmt.Sprintf("%T", obj.Tag), "context", obj.Ctx.String())
		}
	}
	if err != nil {
		return err
	}

	for len(fc.groupStack) > groupsBefore {
		fc.popGroup()
	}
	return fc.closeClips(obj.Ctx, place.Depth, true)
}

// closeClips pops the clip groups ending before depth, or at depth
// if inclusive.
func (fc *FrameConverter) closeClips(ctx *Context, depth int, inclusive bool) error {
	for len(fc.clipStack) != 0 {
		last := fc.clipStack[len(fc.clipStack)-1]
		if depth < last || (depth == last && !inclusive) {
			break
		}
		fc.clipStack = fc.clipStack[:len(fc.clipStack)-1]
		if _, ok := fc.currentGroup().(*ir.ClipGroup); !ok {
			return ctx.Errorf("expected clip group")
		}
		fc.popGroup()
	}
	return nil
}

// addMaskedGroup moves the content of the last sprite group to a new
// masked group, the object being placed becoming its mask.
func (fc *FrameConverter) addMaskedGroup(transform ir.Matrix, shape *swf.DefineShape) {
	b := shape.Bounds
	bounds := transform.TransformRect(ir.NewRect(float32(b.XMin), float32(b.YMin), float32(b.XMax), float32(b.YMax)))
	for {
		group := fc.currentGroup()
		if _, ok := group.(*ir.SimpleGroup); ok {
			break
		}
		if _, ok := group.(*ir.ClipGroup); ok && len(fc.clipStack) != 0 {
			fc.clipStack = fc.clipStack[:len(fc.clipStack)-1]
		}
		fc.groupStack = fc.groupStack[:len(fc.groupStack)-1]
	}
	group := fc.currentGroup()
	masked := &ir.MaskedGroup{Group: ir.Group{ID: group.ObjectID(), Objects: group.Children()}, Bounds: bounds}
	group.SetChildren(nil)
	fc.addGroup(masked)
}

func (fc *FrameConverter) createShape(obj *FrameObject, shape *swf.DefineShape) error {
	paths, err := fc.shapes.Convert(obj.Ctx, shape.Shape, ShapeOptions{
		FillStyles:      shape.FillStyles,
		LineStyles:      shape.LineStyles,
		Transform:       ir.Identity,
		Current:         fc.transforms.current(),
		AllowRectangles: true,
	})
	if err != nil || len(paths) == 0 {
		return err
	}
	group := fc.currentGroup()
	if fc.cfg.Debug.DrawShapeBounds {
		group.Append(boundsShape(int(shape.ID), shape.Bounds, debugLineStyle(&fc.cfg.Debug)))
	}
	group.Append(&ir.ShapeObject{ID: int(shape.ID), Paths: paths})
	return nil
}

func distinctPaths(paths []ir.Path) []ir.Path {
	var out []ir.Path
	for _, p := range paths {
		if !slices.ContainsFunc(out, func(o ir.Path) bool { return slices.Equal(o.Elements, p.Elements) }) {
			out = append(out, p)
		}
	}
	return out
}

// createClipGroup adds a clip group with the paths of shape, returning
// false if the shape is not used as clip.
func (fc *FrameConverter) createClipGroup(obj *FrameObject, shape *swf.DefineShape, transform ir.Matrix) (bool, error) {
	if fc.cfg.Debug.DisableClipping {
		return false, nil
	}
	paths, err := fc.shapes.Convert(obj.Ctx, shape.Shape, ShapeOptions{
		FillStyles:      shape.FillStyles,
		LineStyles:      shape.LineStyles,
		Transform:       transform,
		Current:         fc.transforms.current(),
		IgnoreStyles:    true,
		AllowRectangles: true,
	})
	if err != nil {
		return false, err
	}
	paths = distinctPaths(paths)
	if len(paths) == 0 {
		return false, nil
	}

	clipDepth := obj.Place.ClipDepth
	if n := len(fc.clipStack); n != 0 && clipDepth > fc.clipStack[n-1] {
		return false, obj.Ctx.Errorf("unsupported interlaced clips: current clip ends at depth %d, after last clip which ends at depth %d",
			clipDepth, fc.clipStack[n-1])
	}

	if fc.cfg.Debug.DrawClipBounds {
		line := debugLineStyle(&fc.cfg.Debug)
		outline := &ir.ShapeObject{ID: int(shape.ID)}
		for _, p := range paths {
			outline.Paths = append(outline.Paths, ir.Path{Elements: p.Elements, Line: line})
		}
		fc.currentGroup().Append(outline)
	}

	fc.clipStack = append(fc.clipStack, clipDepth)
	fc.addGroup(&ir.ClipGroup{Group: ir.Group{ID: int(shape.ID)}, Clips: paths})
	return true, nil
}
