package ir

import (
	"fmt"
	"image/color"
)

// Color is a 32 bits ARGB color, not premultiplied.
type Color uint32

const (
	Transparent Color = 0
	Black       Color = 0xFF000000
	White       Color = 0xFFFFFFFF
)

// NewColor does not check its arguments.
func NewColor(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

func (c Color) FloatA() float32 { return float32(c.A()) / 255 }

func (c Color) WithAlpha(a uint8) Color {
	return c&0x00FFFFFF | Color(a)<<24
}

func (c Color) Opaque() Color { return c.WithAlpha(0xFF) }

// NRGBA converts to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// String returns the #aarrggbb representation.
func (c Color) String() string { return fmt.Sprintf("#%08x", uint32(c)) }

// StringNoAlpha returns the #rrggbb representation.
func (c Color) StringNoAlpha() string { return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF) }
