package convert

import (
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
)

// gradient ratios are in [0, 255]
const gradientMaxRatio = 255

// styledResolver converts the styles of a shape placed in a frame,
// with the color transform of its placement.
type styledResolver struct {
	dictionary      map[uint16]swf.DefineTag
	colors          *CompositeColorTransform
	images          *ImageDecoder
	bitmapOffset    ir.Matrix
	disableClipping bool
}

func (sr *styledResolver) fillStyle(ctx *Context, fill swf.FillStyle, current ir.Matrix) (ir.FillStyle, error) {
	switch fill := fill.(type) {
	case swf.SolidFill:
		return ir.SolidFill{Color: sr.colors.Transform(colorFromSwf(fill.Color))}, nil
	case swf.BitmapFill:
		if !fill.IsClipped() {
			return nil, ctx.Errorf("unsupported bitmap fill type 0x%x", fill.Type)
		}
		tag, ok := sr.dictionary[fill.BitmapID]
		if !ok {
			return nil, ctx.Errorf("invalid image ID %d", fill.BitmapID)
		}
		w, h, err := ImageSize(ctx, tag)
		if err != nil {
			return nil, err
		}
		tr := matrixFromSwf(fill.Matrix).Scale(float64(w), float64(h))
		tr = sr.bitmapOffset.Mul(tr)

		density := ImageDensity(current, tr, w, h)
		data, err := sr.images.Decode(ctx, tag, sr.colors, density)
		if err != nil {
			return nil, err
		}
		return &ir.ImageFill{ID: int(fill.BitmapID), Transform: tr, Image: data, Clip: !sr.disableClipping}, nil
	case swf.GradientFill:
		if fill.Type != swf.GradientLinear {
			return nil, ctx.Errorf("unsupported gradient fill type 0x%x", fill.Type)
		}
		if fill.Spread != swf.SpreadPad {
			return nil, ctx.Errorf("unsupported gradient spread mode %d", fill.Spread)
		}
		if fill.Interpolation != swf.InterpolationNormal {
			return nil, ctx.Errorf("unsupported gradient interpolation mode %d", fill.Interpolation)
		}
		colors := make([]ir.GradientColor, len(fill.Stops))
		for i, stop := range fill.Stops {
			colors[i] = ir.GradientColor{
				Color: sr.colors.Transform(colorFromSwf(stop.Color)),
				Ratio: float32(stop.Ratio) / gradientMaxRatio,
			}
		}
		out, err := ir.NewGradientFill(colors, matrixFromSwf(fill.Matrix))
		if err != nil {
			return nil, ctx.Errorf("%s", err)
		}
		return out, nil
	default:
		return nil, ctx.Errorf("unsupported shape fill style %T", fill)
	}
}

var (
	capStyles = [...]ir.CapStyle{
		swf.CapNone:   ir.CapButt,
		swf.CapRound:  ir.CapRound,
		swf.CapSquare: ir.CapSquare,
	}
	joinStyles = [...]ir.JoinStyle{
		swf.JoinBevel: ir.JoinBevel,
		swf.JoinRound: ir.JoinRound,
		swf.JoinMiter: ir.JoinMiter,
	}
)

func (sr *styledResolver) lineStyle(ctx *Context, line swf.LineStyle) (ir.LineStyle, error) {
	out := ir.LineStyle{
		Color: sr.colors.Transform(colorFromSwf(line.Color)),
		Width: float32(line.Width),
		Cap:   ir.CapButt,
		Join:  ir.JoinBevel,
	}
	if !line.Version2 {
		return out, nil
	}
	if line.Fill != nil {
		return out, ctx.Errorf("unsupported line fill style")
	}
	if line.StartCap != line.EndCap {
		return out, ctx.Errorf("unsupported different start and end caps")
	}
	if int(line.StartCap) >= len(capStyles) || int(line.Join) >= len(joinStyles) {
		return out, ctx.Errorf("invalid line cap or join style")
	}
	out.Cap = capStyles[line.StartCap]
	out.Join = joinStyles[line.Join]
	out.MiterLimit = line.MiterLimit
	return out, nil
}

// assert interface conformance
var _ styleResolver = (*styledResolver)(nil)
