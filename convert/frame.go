package convert

import (
	"log/slog"
	"sort"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/chewxy/math32"
)

// FrameObject is a character of a display list, with its placement.
// Objects is only used by sprites, and holds the content of the
// displayed sprite frame.
type FrameObject struct {
	Ctx      *Context
	ID       int
	Place    *swf.PlaceObject
	Tag      swf.DefineTag
	IsSprite bool
	Objects  []*FrameObject
}

// Frame is the content of the display list when a frame is shown.
type Frame struct {
	Ctx        *Context
	ID         int
	Dictionary map[uint16]swf.DefineTag
	// Width and Height are in twips.
	Width, Height int32
	Objects       []*FrameObject
}

// displayList holds the objects ordered by depth.
type displayList struct {
	depths  []int
	objects map[int]*FrameObject
}

func newDisplayList() *displayList { return &displayList{objects: map[int]*FrameObject{}} }

func (dl *displayList) copy() *displayList {
	out := &displayList{depths: append([]int(nil), dl.depths...), objects: make(map[int]*FrameObject, len(dl.objects))}
	for k, v := range dl.objects {
		out.objects[k] = v
	}
	return out
}

func (dl *displayList) has(depth int) bool {
	_, ok := dl.objects[depth]
	return ok
}

func (dl *displayList) put(depth int, obj *FrameObject) {
	if !dl.has(depth) {
		i := sort.SearchInts(dl.depths, depth)
		dl.depths = append(dl.depths, 0)
		copy(dl.depths[i+1:], dl.depths[i:])
		dl.depths[i] = depth
	}
	dl.objects[depth] = obj
}

func (dl *displayList) remove(depth int) *FrameObject {
	obj, ok := dl.objects[depth]
	if !ok {
		return nil
	}
	delete(dl.objects, depth)
	i := sort.SearchInts(dl.depths, depth)
	dl.depths = append(dl.depths[:i], dl.depths[i+1:]...)
	return obj
}

func (dl *displayList) values() []*FrameObject {
	out := make([]*FrameObject, len(dl.depths))
	for i, depth := range dl.depths {
		out[i] = dl.objects[depth]
	}
	return out
}

// FrameBuilder plays the display list tags of a file
// and returns the content of each shown frame.
type FrameBuilder struct {
	cfg    *config.Convert
	logger *slog.Logger

	ctx           *Context
	dictionary    map[uint16]swf.DefineTag
	idStack       []int
	width, height int32
}

func NewFrameBuilder(cfg *config.Convert, logger *slog.Logger) *FrameBuilder {
	return &FrameBuilder{cfg: cfg, logger: logger}
}

// Dictionary maps the character IDs of file to their definition.
func Dictionary(file *swf.File) map[uint16]swf.DefineTag {
	out := map[uint16]swf.DefineTag{}
	for _, tag := range file.Tags {
		if def, ok := tag.(swf.DefineTag); ok {
			out[def.CharacterID()] = def
		}
	}
	return out
}

// CreateFrames returns the frames of file.
func (fb *FrameBuilder) CreateFrames(ctx *Context, file *swf.File) ([]*Frame, error) {
	fb.ctx = ctx
	fb.dictionary = Dictionary(file)
	fb.idStack = fb.idStack[:0]

	if size := fb.cfg.Debug.FrameSize; len(size) == 2 {
		fb.width = int32(math32.Round(size[0] * twipsPerInch))
		fb.height = int32(math32.Round(size[1] * twipsPerInch))
	} else {
		fb.width, fb.height = file.FrameSize.Width(), file.FrameSize.Height()
	}

	frames, err := fb.createFramesForTags(file.Tags, false)
	if err != nil {
		return nil, err
	}
	if len(frames) != file.FrameCount && !fb.cfg.Debug.RecursiveFrames {
		fb.logger.Warn("frame count mismatch between header and content",
			"context", ctx.String(), "expected", file.FrameCount, "found", len(frames))
	}
	return frames, nil
}

// createFramesForTags returns one frame per ShowFrame tag. A sprite
// with objects and no ShowFrame tag still gets one frame, and only its
// first frame is returned unless frames are recursive.
func (fb *FrameBuilder) createFramesForTags(tags []swf.Tag, isSprite bool) ([]*Frame, error) {
	var (
		frames          []*Frame
		hasSpriteFrames bool
		list            = newDisplayList()
	)
	for _, tag := range tags {
		switch tag := tag.(type) {
		case *swf.PlaceObject:
			spriteFrames, err := fb.addCharacter(list, tag)
			if err != nil {
				return nil, err
			}
			// sprite frames are brought to this level, on top of the current list
			for _, frame := range spriteFrames {
				frameList := list.copy()
				for _, obj := range frame.Objects {
					frameList.put(obj.Place.Depth, obj)
				}
				frames = append(frames, fb.createFrame(frameList))
				hasSpriteFrames = true
			}
		case *swf.RemoveObject:
			obj := list.remove(tag.Depth)
			if obj == nil {
				return nil, fb.ctx.Errorf("no object to remove at depth %d", tag.Depth)
			}
			if tag.Version == 1 && obj.ID != int(tag.CharacterID) {
				return nil, fb.ctx.Errorf("character removed has ID %d, expected %d", obj.ID, tag.CharacterID)
			}
		case swf.ShowFrame:
			if hasSpriteFrames {
				continue
			}
			frames = append(frames, fb.createFrame(list))
			if isSprite && !fb.cfg.Debug.RecursiveFrames {
				return frames, nil
			}
		}
	}
	if isSprite && len(list.depths) != 0 && len(frames) == 0 {
		frames = append(frames, fb.createFrame(list))
	}
	return frames, nil
}

func (fb *FrameBuilder) addCharacter(list *displayList, place *swf.PlaceObject) ([]*Frame, error) {
	id := int(place.CharacterID)
	ctx := fb.ctx.ObjectChild(append(fb.idStack, id))

	if t := place.Type(); t != swf.PlaceNew {
		return nil, ctx.Errorf("unsupported place type %s", t)
	}
	if list.has(place.Depth) {
		return nil, ctx.Errorf("overwritten character depth %d", place.Depth)
	}
	tag, ok := fb.dictionary[place.CharacterID]
	if !ok {
		return nil, ctx.Errorf("unknown character ID %d", id)
	}

	sprite, ok := tag.(*swf.DefineSprite)
	if !ok {
		list.put(place.Depth, &FrameObject{Ctx: ctx, ID: id, Place: place, Tag: tag})
		return nil, nil
	}

	fb.idStack = append(fb.idStack, id)
	spriteFrames, err := fb.createFramesForTags(sprite.Tags, true)
	fb.idStack = fb.idStack[:len(fb.idStack)-1]
	if err != nil {
		return nil, err
	}
	if fb.cfg.Debug.RecursiveFrames {
		return spriteFrames, nil
	}
	obj := &FrameObject{Ctx: ctx, ID: id, Place: place, Tag: tag, IsSprite: true}
	if len(spriteFrames) != 0 {
		obj.Objects = spriteFrames[0].Objects
	}
	list.put(place.Depth, obj)
	return nil, nil
}

func (fb *FrameBuilder) createFrame(list *displayList) *Frame {
	frame := &Frame{
		Ctx:        fb.ctx.ObjectChild(fb.idStack),
		Dictionary: fb.dictionary,
		Width:      fb.width,
		Height:     fb.height,
		Objects:    list.values(),
	}
	if len(fb.idStack) != 0 {
		frame.ID = fb.idStack[len(fb.idStack)-1]
	}
	return frame
}
