package ir

// TwipsToPoint converts the source length unit (1/1440 inch)
// to PDF points (1/72 inch).
const TwipsToPoint = 1. / 20

// YDirection is the direction of the Y axis of the output space.
type YDirection uint8

const (
	YUp YDirection = iota
	YDown
)

// FrameGroup is the root of a frame tree. Its transform converts
// twips to points, adding the padding on every side.
type FrameGroup struct {
	Group
	Transform Matrix
	// Width, Height and Padding are in twips.
	Width, Height, Padding float32
}

// NewFrameGroup builds the frame transform from the dimensions.
func NewFrameGroup(width, height, padding float32, dir YDirection) *FrameGroup {
	const scale = TwipsToPoint
	scaleY, translateY := scale, float64(padding)*scale
	if dir == YUp {
		scaleY = -scale
		translateY = float64(height+padding) * scale
	}
	return &FrameGroup{
		Transform: Matrix{A: scale, D: scaleY, E: float64(padding) * scale, F: translateY},
		Width:     width,
		Height:    height,
		Padding:   padding,
	}
}

// ActualWidth returns the width in points, including padding.
func (f *FrameGroup) ActualWidth() float32 {
	return (f.Width + 2*f.Padding) * TwipsToPoint
}

// ActualHeight returns the height in points, including padding.
func (f *FrameGroup) ActualHeight() float32 {
	return (f.Height + 2*f.Padding) * TwipsToPoint
}

// YDirection returns the orientation deduced from the transform.
func (f *FrameGroup) YDirection() YDirection {
	if f.Transform.D < 0 {
		return YUp
	}
	return YDown
}

// WithoutPadding returns a shallow copy of f, sharing its children,
// with no padding.
func (f *FrameGroup) WithoutPadding() *FrameGroup {
	out := NewFrameGroup(f.Width, f.Height, 0, f.YDirection())
	out.ID = f.ID
	out.Objects = f.Objects
	return out
}

func (f *FrameGroup) CopyEmpty() GroupObject {
	return &FrameGroup{Group: Group{ID: f.ID}, Transform: f.Transform, Width: f.Width, Height: f.Height, Padding: f.Padding}
}

// CopyFrame is CopyEmpty with a concrete return type.
func (f *FrameGroup) CopyFrame() *FrameGroup { return f.CopyEmpty().(*FrameGroup) }
