package ir

import (
	"errors"
	"fmt"
)

// Gradients are defined in a square of side GradientSize,
// whose top left corner is at (GradientOffset, GradientOffset).
const (
	GradientSize   = 32768
	GradientOffset = -16384
)

// ErrGradientColors is returned when building a gradient with
// less than two colors.
var ErrGradientColors = errors.New("gradient fill must have at least 2 colors")

// FillStyle is one of SolidFill, *ImageFill, GradientFill.
type FillStyle interface {
	isFillStyle()
}

func (SolidFill) isFillStyle()    {}
func (*ImageFill) isFillStyle()   {}
func (GradientFill) isFillStyle() {}

type SolidFill struct {
	Color Color
}

// ImageFill paints an image. Transform maps the image space
// (a unit square) to user space.
type ImageFill struct {
	ID        int
	Transform Matrix
	// Image may be replaced by an equal image when
	// deduplicating, and is never nil.
	Image *ImageData
	// Clip is true if the image is clipped to the path.
	Clip bool
}

type GradientColor struct {
	Color Color
	Ratio float32 // in [0, 1]
}

// GradientFill is a linear gradient, whose Transform maps the
// gradient square to user space.
type GradientFill struct {
	Colors    []GradientColor
	Transform Matrix
}

// NewGradientFill checks that at least two colors are given.
func NewGradientFill(colors []GradientColor, transform Matrix) (GradientFill, error) {
	if len(colors) < 2 {
		return GradientFill{}, fmt.Errorf("%w (got %d)", ErrGradientColors, len(colors))
	}
	return GradientFill{Colors: colors, Transform: transform}, nil
}

type CapStyle uint8

const (
	CapButt CapStyle = iota
	CapRound
	CapSquare
)

type JoinStyle uint8

const (
	JoinMiter JoinStyle = iota
	JoinRound
	JoinBevel
)

// LineStyle is an immutable stroke description.
type LineStyle struct {
	Color      Color
	Width      float32
	Cap        CapStyle
	Join       JoinStyle
	MiterLimit float32
}
