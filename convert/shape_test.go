package convert

import (
	"errors"
	"testing"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = swf.Color{R: 0xFF, A: 0xFF}

// squareShape is a filled square of side size at (x, y).
func squareShape(x, y, size int32, fills []swf.FillStyle, fill int) swf.Shape {
	return swf.Shape{Records: []swf.ShapeRecord{
		swf.StyleChange{HasMove: true, MoveX: x, MoveY: y, HasFill1: true, Fill1: fill, FillStyles: fills},
		swf.StraightEdge{DX: size},
		swf.StraightEdge{DY: size},
		swf.StraightEdge{DX: -size},
		swf.StraightEdge{DY: -size},
	}}
}

func newTestResolver() *styledResolver {
	return &styledResolver{colors: &CompositeColorTransform{}, bitmapOffset: ir.Identity}
}

func TestConvertSquare(t *testing.T) {
	sc := ShapeConverter{styles: newTestResolver()}
	fills := []swf.FillStyle{swf.SolidFill{Color: red}}
	shape := squareShape(0, 0, 100, fills, 1)

	paths, err := sc.Convert(FileContext(0, ""), shape, ShapeOptions{
		FillStyles: fills, Transform: ir.Identity, Current: ir.Identity,
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []ir.PathElement{
		ir.MoveTo{}, ir.LineTo{X: 100}, ir.LineTo{X: 100, Y: 100}, ir.LineTo{Y: 100}, ir.ClosePath{},
	}, paths[0].Elements)
	assert.Equal(t, ir.SolidFill{Color: ir.NewColor(0xFF, 0, 0, 0xFF)}, paths[0].Fill)
	assert.Nil(t, paths[0].Line)

	paths, err = sc.Convert(FileContext(0, ""), shape, ShapeOptions{
		FillStyles: fills, Transform: ir.NewTranslation(10, 0), AllowRectangles: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []ir.PathElement{ir.Rectangle{X: 10, W: 100, H: 100}}, paths[0].Elements)
}

func TestConvertFill0Reversed(t *testing.T) {
	sc := ShapeConverter{}
	shape := swf.Shape{Records: []swf.ShapeRecord{
		swf.StyleChange{HasMove: true, HasFill0: true, Fill0: 1},
		swf.StraightEdge{DX: 10},
		swf.StraightEdge{DY: 10},
		swf.StraightEdge{DX: -10, DY: -10},
	}}
	paths, err := sc.Convert(FileContext(0, ""), shape, ShapeOptions{Transform: ir.Identity})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []ir.PathElement{
		ir.MoveTo{}, ir.LineTo{X: 10, Y: 10}, ir.LineTo{X: 10}, ir.ClosePath{},
	}, paths[0].Elements)
}

func TestConvertStyleGroups(t *testing.T) {
	sc := ShapeConverter{styles: newTestResolver()}
	blue := swf.Color{B: 0xFF, A: 0xFF}
	shape := squareShape(0, 0, 10, nil, 1)
	second := squareShape(50, 50, 10, []swf.FillStyle{swf.SolidFill{Color: blue}}, 1)
	// indices of new style arrays are offset by the previous arrays
	shape.Records = append(shape.Records, second.Records...)

	paths, err := sc.Convert(FileContext(0, ""), shape, ShapeOptions{
		FillStyles: []swf.FillStyle{swf.SolidFill{Color: red}}, Transform: ir.Identity, AllowRectangles: true,
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, ir.SolidFill{Color: ir.NewColor(0xFF, 0, 0, 0xFF)}, paths[0].Fill)
	assert.Equal(t, ir.SolidFill{Color: ir.NewColor(0, 0, 0xFF, 0xFF)}, paths[1].Fill)
	assert.Equal(t, []ir.PathElement{ir.Rectangle{X: 50, Y: 50, W: 10, H: 10}}, paths[1].Elements)
}

func TestConvertLineStyle(t *testing.T) {
	sc := ShapeConverter{styles: newTestResolver()}
	lines := []swf.LineStyle{{Width: 20, Color: red}}
	shape := swf.Shape{Records: []swf.ShapeRecord{
		swf.StyleChange{HasMove: true, HasLine: true, Line: 1},
		swf.CurvedEdge{ControlDX: 10, AnchorDX: 10, AnchorDY: 10},
	}}
	paths, err := sc.Convert(FileContext(0, ""), shape, ShapeOptions{LineStyles: lines, Transform: ir.Identity})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []ir.PathElement{ir.MoveTo{}, ir.QuadTo{CX: 10, X: 20, Y: 10}}, paths[0].Elements)
	require.NotNil(t, paths[0].Line)
	assert.Equal(t, float32(20), paths[0].Line.Width)
	assert.Equal(t, ir.CapButt, paths[0].Line.Cap)
	assert.Equal(t, ir.JoinBevel, paths[0].Line.Join)
	assert.Nil(t, paths[0].Fill)
}

func TestConvertInvalidStyle(t *testing.T) {
	sc := ShapeConverter{styles: newTestResolver()}
	shape := squareShape(0, 0, 10, nil, 3)
	_, err := sc.Convert(FileContext(0, "").ObjectChild([]int{5}), shape, ShapeOptions{
		FillStyles: []swf.FillStyle{swf.SolidFill{Color: red}}, Transform: ir.Identity,
	})
	var convErr *Error
	require.True(t, errors.As(err, &convErr))
	assert.Contains(t, convErr.Error(), "invalid fill style index 3")
	assert.Contains(t, convErr.Error(), "object ID 5")

	// styles are not resolved when ignored
	paths, err := sc.Convert(FileContext(0, ""), shape, ShapeOptions{Transform: ir.Identity, IgnoreStyles: true})
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestUnsupportedStyles(t *testing.T) {
	sr := newTestResolver()
	ctx := FileContext(0, "")
	_, err := sr.fillStyle(ctx, swf.GradientFill{Type: swf.GradientRadial}, ir.Identity)
	assert.Error(t, err)
	_, err = sr.fillStyle(ctx, swf.GradientFill{Type: swf.GradientLinear, Spread: swf.SpreadReflect}, ir.Identity)
	assert.Error(t, err)
	_, err = sr.fillStyle(ctx, swf.BitmapFill{Type: swf.BitmapRepeating}, ir.Identity)
	assert.Error(t, err)
	_, err = sr.lineStyle(ctx, swf.LineStyle{Version2: true, StartCap: swf.CapRound, EndCap: swf.CapSquare})
	assert.Error(t, err)

	gradient, err := sr.fillStyle(ctx, swf.GradientFill{Type: swf.GradientLinear, Stops: []swf.GradientStop{
		{Ratio: 0, Color: red}, {Ratio: 255, Color: red},
	}}, ir.Identity)
	require.NoError(t, err)
	assert.Equal(t, float32(1), gradient.(ir.GradientFill).Colors[1].Ratio)
}
