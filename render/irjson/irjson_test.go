package irjson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareFrame() *ir.FrameGroup {
	frame := ir.NewFrameGroup(2000, 1000, 0, ir.YDown)
	root := &ir.SimpleGroup{}
	root.Append(&ir.ShapeObject{ID: 1, Paths: []ir.Path{
		{Elements: []ir.PathElement{ir.Rectangle{W: 100, H: 100}}, Fill: ir.SolidFill{Color: ir.NewColor(0xFF, 0, 0, 0xFF)}},
	}})
	frame.Append(root)
	return frame
}

func TestMarshalRectangle(t *testing.T) {
	data, err := Marshal(squareFrame(), config.IR{})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"frame_group","id":0,"width":2000,"height":1000,"actualWidth":100,"actualHeight":50,`+
		`"padding":0,"transform":"[[0.05 0 0] [0 0.05 0]]","objects":[{"type":"simple_group","id":0,"objects":[`+
		`{"type":"shape","id":1,"paths":[{"data":"M 0 0 H 100 V 100 H 0 Z","fillStyle":{"type":"solid","color":"#ffff0000"}}]}]}]}`,
		string(data))

	pretty, err := Marshal(squareFrame(), config.IR{PrettyPrint: true, IndentSize: 3})
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n   \"id\": 0,")
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestMarshalGroups(t *testing.T) {
	frame := ir.NewFrameGroup(200, 200, 20, ir.YUp)
	masked := &ir.MaskedGroup{Group: ir.Group{ID: 3}, Bounds: ir.NewRect(0, 0, 10, 20)}
	masked.Append(&ir.ShapeObject{ID: 4}, &ir.ShapeObject{ID: 5})
	blend := &ir.BlendGroup{Group: ir.Group{ID: 2}, Mode: ir.BlendMultiply}
	blend.Append(masked)
	clip := &ir.ClipGroup{Group: ir.Group{ID: 6}, Clips: []ir.Path{ir.RectanglePath(0, 0, 1, 1, nil, nil)}}
	font := &ir.Font{File: filepath.Join("tmp", "fonts", "arial.ttf")}
	clip.Append(&ir.TextObject{ID: 7, FontSize: 12, Font: font, Text: "ab", GlyphIndices: []int{1, 2}})
	frame.Append(blend, clip)

	data, err := Marshal(frame, config.IR{})
	require.NoError(t, err)
	root := decode(t, data)
	assert.Equal(t, 12., root["actualWidth"])
	assert.Equal(t, "[[0.05 0 1] [0 -0.05 11]]", root["transform"])

	objects := root["objects"].([]any)
	require.Len(t, objects, 2)
	b := objects[0].(map[string]any)
	assert.Equal(t, "MULTIPLY", b["blendMode"])
	m := b["objects"].([]any)[0].(map[string]any)
	assert.Equal(t, "masked_group", m["type"])
	assert.Len(t, m["objects"], 1)
	assert.Equal(t, 5., m["mask"].(map[string]any)["id"])
	assert.Equal(t, map[string]any{"x": 0., "y": 0., "width": 10., "height": 20.}, m["bounds"])

	c := objects[1].(map[string]any)
	assert.Equal(t, "clip_group", c["type"])
	txt := c["objects"].([]any)[0].(map[string]any)
	assert.Equal(t, "arial", txt["font"])
	assert.Equal(t, []any{}, txt["glyphOffsets"])
}

func TestMarshalFills(t *testing.T) {
	line := &ir.LineStyle{Color: ir.NewColor(0, 0, 0xFF, 0x80), Width: 2, Cap: ir.CapRound, Join: ir.JoinBevel, MiterLimit: 4}
	img := &ir.ImageData{DataFile: filepath.Join("tmp", "images", "3.png"), AlphaDataFile: filepath.Join("tmp", "images", "3_alpha.png")}
	gradient := ir.GradientFill{Colors: []ir.GradientColor{{Color: 0xFF000000, Ratio: 0}, {Color: 0xFFFFFFFF, Ratio: 1}}, Transform: ir.Identity}
	frame := ir.NewFrameGroup(100, 100, 0, ir.YDown)
	frame.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(0, 0, 1, 1, nil, line),
		ir.RectanglePath(0, 0, 1, 1, &ir.ImageFill{ID: 3, Transform: ir.Identity, Image: img}, nil),
		ir.RectanglePath(0, 0, 1, 1, gradient, nil),
	}})

	data, err := Marshal(frame, config.IR{})
	require.NoError(t, err)
	paths := decode(t, data)["objects"].([]any)[0].(map[string]any)["paths"].([]any)
	require.Len(t, paths, 3)

	first := paths[0].(map[string]any)
	assert.NotContains(t, first, "fillStyle")
	assert.Equal(t, map[string]any{"color": "#800000ff", "width": 2., "cap": 1., "join": 2., "miterLimit": 4.}, first["lineStyle"])

	image := paths[1].(map[string]any)["fillStyle"].(map[string]any)
	assert.Equal(t, "image", image["type"])
	assert.Equal(t, map[string]any{"dataFile": "3.png", "alphaDataFile": "3_alpha.png"}, image["image"])

	grad := paths[2].(map[string]any)["fillStyle"].(map[string]any)
	assert.Equal(t, "[[1 0 0] [0 1 0]]", grad["transform"])
	assert.Len(t, grad["colors"], 2)
}

func TestRenderFrames(t *testing.T) {
	dir := t.TempDir()
	tmp := t.TempDir()
	imageFile := filepath.Join(tmp, "0.png")
	require.NoError(t, os.WriteFile(imageFile, []byte("png"), 0o644))

	withImage := squareFrame()
	withImage.Append(&ir.ShapeObject{Paths: []ir.Path{
		ir.RectanglePath(0, 0, 1, 1, &ir.ImageFill{Image: &ir.ImageData{DataFile: imageFile}}, nil),
	}})

	cfg := &config.Config{Outputs: []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}}
	cfg.IR.ParallelFrameRendering = true
	r, err := NewRenderer(cfg, nil, nil)
	require.NoError(t, err)
	err = r.RenderFrames(t.Context(), [][]*ir.FrameGroup{{withImage}, {squareFrame(), squareFrame()}})
	require.NoError(t, err)

	for _, name := range []string{"a.json", "b-0.json", "b-1.json", filepath.Join("images", "0.png")} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	data, err := os.ReadFile(filepath.Join(dir, "b-1.json"))
	require.NoError(t, err)
	assert.Equal(t, "frame_group", decode(t, data)["type"])

	_, err = NewRenderer(&config.Config{}, nil, nil)
	assert.Error(t, err)
}
