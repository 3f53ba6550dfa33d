package irjson

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/swfconvert/ir"
)

type frameGroup struct {
	Type         string  `json:"type"`
	ID           int     `json:"id"`
	Width        float32 `json:"width"`
	Height       float32 `json:"height"`
	ActualWidth  float32 `json:"actualWidth"`
	ActualHeight float32 `json:"actualHeight"`
	Padding      float32 `json:"padding"`
	Transform    string  `json:"transform"`
	Objects      []any   `json:"objects"`
}

type simpleGroup struct {
	Type    string `json:"type"`
	ID      int    `json:"id"`
	Objects []any  `json:"objects"`
}

type transformGroup struct {
	Type      string `json:"type"`
	ID        int    `json:"id"`
	Transform string `json:"transform"`
	Objects   []any  `json:"objects"`
}

type blendGroup struct {
	Type      string `json:"type"`
	ID        int    `json:"id"`
	BlendMode string `json:"blendMode"`
	Objects   []any  `json:"objects"`
}

type clipGroup struct {
	Type    string `json:"type"`
	ID      int    `json:"id"`
	Clips   []path `json:"clips"`
	Objects []any  `json:"objects"`
}

type rectangle struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

type maskedGroup struct {
	Type    string    `json:"type"`
	ID      int       `json:"id"`
	Bounds  rectangle `json:"bounds"`
	Objects []any     `json:"objects"`
	Mask    any       `json:"mask"`
}

type shape struct {
	Type  string `json:"type"`
	ID    int    `json:"id"`
	Paths []path `json:"paths"`
}

type text struct {
	Type         string    `json:"type"`
	ID           int       `json:"id"`
	X            float32   `json:"x"`
	Y            float32   `json:"y"`
	FontSize     float32   `json:"fontSize"`
	Color        string    `json:"color"`
	Font         *string   `json:"font"`
	Text         string    `json:"text"`
	GlyphIndices []int     `json:"glyphIndices"`
	GlyphOffsets []float32 `json:"glyphOffsets"`
}

type path struct {
	Data      string     `json:"data"`
	FillStyle any        `json:"fillStyle,omitempty"`
	LineStyle *lineStyle `json:"lineStyle,omitempty"`
}

type solidFill struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type imageData struct {
	DataFile      string `json:"dataFile"`
	AlphaDataFile string `json:"alphaDataFile,omitempty"`
}

type imageFill struct {
	Type      string    `json:"type"`
	ID        int       `json:"id"`
	Transform string    `json:"transform"`
	Image     imageData `json:"image"`
}

type gradientColor struct {
	Color string  `json:"color"`
	Ratio float32 `json:"ratio"`
}

type gradientFill struct {
	Type      string          `json:"type"`
	Colors    []gradientColor `json:"colors"`
	Transform string          `json:"transform"`
}

type lineStyle struct {
	Color      string  `json:"color"`
	Width      float32 `json:"width"`
	Cap        int     `json:"cap"`
	Join       int     `json:"join"`
	MiterLimit float32 `json:"miterLimit"`
}

func newObjects(objs []ir.Object) ([]any, error) {
	out := make([]any, len(objs))
	for i, obj := range objs {
		var err error
		if out[i], err = newObject(obj); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newObject(obj ir.Object) (any, error) {
	switch obj := obj.(type) {
	case *ir.ShapeObject:
		return shape{Type: "shape", ID: obj.ID, Paths: newPaths(obj.Paths)}, nil
	case *ir.TextObject:
		return newText(obj), nil
	case ir.GroupObject:
		return newGroup(obj)
	}
	return nil, fmt.Errorf("unexpected object %T", obj)
}

func newGroup(g ir.GroupObject) (any, error) {
	children := g.Children()
	if masked, ok := g.(*ir.MaskedGroup); ok {
		if len(children) == 0 {
			return nil, fmt.Errorf("masked group %d has no mask", masked.ID)
		}
		objects, err := newObjects(children[:len(children)-1])
		if err != nil {
			return nil, err
		}
		mask, err := newObject(children[len(children)-1])
		if err != nil {
			return nil, err
		}
		b := masked.Bounds
		return maskedGroup{
			Type: "masked_group", ID: masked.ID,
			Bounds:  rectangle{X: b.X, Y: b.Y, Width: b.W, Height: b.H},
			Objects: objects, Mask: mask,
		}, nil
	}

	objects, err := newObjects(children)
	if err != nil {
		return nil, err
	}
	switch g := g.(type) {
	case *ir.FrameGroup:
		return frameGroup{
			Type: "frame_group", ID: g.ID,
			Width: g.Width, Height: g.Height,
			ActualWidth: g.ActualWidth(), ActualHeight: g.ActualHeight(),
			Padding: g.Padding, Transform: g.Transform.String(),
			Objects: objects,
		}, nil
	case *ir.SimpleGroup:
		return simpleGroup{Type: "simple_group", ID: g.ID, Objects: objects}, nil
	case *ir.TransformGroup:
		return transformGroup{Type: "transform_group", ID: g.ID, Transform: g.Transform.String(), Objects: objects}, nil
	case *ir.BlendGroup:
		return blendGroup{Type: "blend_group", ID: g.ID, BlendMode: g.Mode.String(), Objects: objects}, nil
	case *ir.ClipGroup:
		return clipGroup{Type: "clip_group", ID: g.ID, Clips: newPaths(g.Clips), Objects: objects}, nil
	}
	return nil, fmt.Errorf("unexpected group %T", g)
}

func newPaths(paths []ir.Path) []path {
	out := make([]path, len(paths))
	for i, p := range paths {
		out[i] = path{Data: p.SVG(), FillStyle: newFill(p.Fill)}
		if l := p.Line; l != nil {
			out[i].LineStyle = &lineStyle{
				Color:      l.Color.String(),
				Width:      l.Width,
				Cap:        int(l.Cap),
				Join:       int(l.Join),
				MiterLimit: l.MiterLimit,
			}
		}
	}
	return out
}

func newFill(fill ir.FillStyle) any {
	switch fill := fill.(type) {
	case ir.SolidFill:
		return solidFill{Type: "solid", Color: fill.Color.String()}
	case *ir.ImageFill:
		out := imageFill{Type: "image", ID: fill.ID, Transform: fill.Transform.String()}
		if img := fill.Image; img != nil {
			out.Image.DataFile = filepath.Base(img.DataFile)
			if img.AlphaDataFile != "" {
				out.Image.AlphaDataFile = filepath.Base(img.AlphaDataFile)
			}
		}
		return out
	case ir.GradientFill:
		colors := make([]gradientColor, len(fill.Colors))
		for i, c := range fill.Colors {
			colors[i] = gradientColor{Color: c.Color.String(), Ratio: c.Ratio}
		}
		return gradientFill{Type: "gradient", Colors: colors, Transform: fill.Transform.String()}
	}
	return nil
}

func newText(t *ir.TextObject) text {
	out := text{
		Type: "text", ID: t.ID,
		X: t.X, Y: t.Y, FontSize: t.FontSize,
		Color:        t.Color.String(),
		Text:         t.Text,
		GlyphIndices: t.GlyphIndices,
		GlyphOffsets: t.GlyphOffsets,
	}
	if out.GlyphIndices == nil {
		out.GlyphIndices = []int{}
	}
	if out.GlyphOffsets == nil {
		out.GlyphOffsets = []float32{}
	}
	if t.Font != nil && t.Font.File != "" {
		name := strings.TrimSuffix(filepath.Base(t.Font.File), filepath.Ext(t.Font.File))
		out.Font = &name
	}
	return out
}
