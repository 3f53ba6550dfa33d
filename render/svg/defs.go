package svg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benoitkugler/swfconvert/ir"
)

type defKind uint8

const (
	defFont defKind = iota
	defImage
	defImageMask
	defMask
	defClip
	defGlyph
	defGradient
	nbDefKinds
)

var defPrefixes = [nbDefKinds]string{
	defFont:      "font",
	defImage:     "image",
	defImageMask: "image_mask",
	defMask:      "mask",
	defClip:      "clip",
	defGlyph:     "glyph",
	defGradient:  "gradient",
}

// defKey identifies a def: equal contents share the same def.
type defKey struct {
	kind  defKind
	name  string // file, path data or gradient
	mask  ir.Object
	glyph ir.GlyphKey
}

type def struct {
	key defKey
	id  string

	font     *ir.Font
	image    *ir.ImageData
	mask     ir.Object
	paths    []ir.Path
	glyph    *ir.GlyphData
	gradient ir.GradientFill
}

const (
	xmlNameStartChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_:"
	xmlNameChars      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_:-."
)

// frameDefs assigns an ID to every element of a frame referenced by
// other elements, in order of first use.
type frameDefs struct {
	pretty     bool
	fontsMode  string
	imagesMode string

	ids    map[defKey]*def
	list   []*def
	byKind [nbDefKinds]int
}

func newFrameDefs(frame *ir.FrameGroup, pretty bool, fontsMode, imagesMode string) (*frameDefs, error) {
	d := &frameDefs{pretty: pretty, fontsMode: fontsMode, imagesMode: imagesMode, ids: map[defKey]*def{}}
	if fontsMode == FontsNone {
		// glyphs are the most used defs, so they get the shortest IDs
		var err error
		ir.Walk(frame, func(obj ir.Object) {
			text, ok := obj.(*ir.TextObject)
			if !ok || err != nil {
				return
			}
			if text.Font == nil {
				err = fmt.Errorf("missing font for text %q", text.Text)
				return
			}
			for _, index := range text.GlyphIndices {
				if index < 0 || index >= len(text.Font.Glyphs) {
					err = fmt.Errorf("invalid glyph index %d in text %q", index, text.Text)
					return
				}
				if glyph := text.Font.Glyphs[index]; !glyph.IsWhitespace() {
					d.add(&def{key: glyphKey(glyph.Data), glyph: glyph.Data})
				}
			}
		})
		if err != nil {
			return nil, err
		}
	}
	if err := d.addGroup(frame); err != nil {
		return nil, err
	}
	return d, nil
}

func glyphKey(g *ir.GlyphData) defKey { return defKey{kind: defGlyph, glyph: g.Key()} }

func clipKey(paths []ir.Path) defKey {
	data := make([]string, len(paths))
	for i, p := range paths {
		data[i] = p.SVG()
	}
	return defKey{kind: defClip, name: strings.Join(data, "|")}
}

func gradientKey(g ir.GradientFill) defKey {
	return defKey{kind: defGradient, name: fmt.Sprint(g.Colors, g.Transform)}
}

func (d *frameDefs) addObject(obj ir.Object) error {
	switch obj := obj.(type) {
	case ir.GroupObject:
		return d.addGroup(obj)
	case *ir.ShapeObject:
		for _, p := range obj.Paths {
			d.addPath(p)
		}
	case *ir.TextObject:
		if d.fontsMode == FontsNone {
			return nil
		}
		if obj.Font == nil || obj.Font.File == "" {
			return fmt.Errorf("missing font file for text %q", obj.Text)
		}
		d.add(&def{key: defKey{kind: defFont, name: obj.Font.File}, font: obj.Font})
	}
	return nil
}

func (d *frameDefs) addGroup(group ir.GroupObject) error {
	switch group := group.(type) {
	case *ir.ClipGroup:
		if len(group.Clips) != 0 {
			d.add(&def{key: clipKey(group.Clips), paths: group.Clips})
		}
	case *ir.MaskedGroup:
		if len(group.Objects) >= 2 {
			mask := group.Objects[len(group.Objects)-1]
			d.add(&def{key: defKey{kind: defMask, mask: mask}, mask: mask})
		}
	}
	for _, child := range group.Children() {
		if err := d.addObject(child); err != nil {
			return err
		}
	}
	return nil
}

func (d *frameDefs) addPath(p ir.Path) {
	switch fill := p.Fill.(type) {
	case *ir.ImageFill:
		img := fill.Image
		if fill.Clip {
			d.add(&def{key: clipKey([]ir.Path{p}), paths: []ir.Path{p}})
		}
		if img.AlphaDataFile != "" {
			d.add(&def{key: defKey{kind: defImageMask, name: img.AlphaDataFile}, image: img})
		}
		if d.imagesMode == ImagesBase64 {
			d.add(&def{key: defKey{kind: defImage, name: img.DataFile}, image: img})
		}
	case ir.GradientFill:
		d.add(&def{key: gradientKey(fill), gradient: fill})
	}
}

func (d *frameDefs) add(df *def) {
	if _, ok := d.ids[df.key]; ok {
		return
	}
	if d.pretty {
		df.id = defPrefixes[df.key.kind] + "_" + strconv.Itoa(d.byKind[df.key.kind])
		d.byKind[df.key.kind]++
	} else {
		df.id = compactID(len(d.list))
	}
	d.ids[df.key] = df
	d.list = append(d.list, df)
}

// compactID returns a short XML name for v: the first char is a
// name start char, the others are name chars.
func compactID(v int) string {
	b := []byte{xmlNameStartChars[v%len(xmlNameStartChars)]}
	v /= len(xmlNameStartChars)
	for v > 0 {
		b = append(b, xmlNameChars[v%len(xmlNameChars)])
		v /= len(xmlNameChars)
	}
	return string(b)
}

// id returns the ID of key, or an error if no def has been created for it.
func (d *frameDefs) id(key defKey) (string, error) {
	df, ok := d.ids[key]
	if !ok {
		return "", fmt.Errorf("missing %s def", defPrefixes[key.kind])
	}
	return df.id, nil
}
