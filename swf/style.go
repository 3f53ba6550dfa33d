package swf

// FillStyle is one of SolidFill, BitmapFill, GradientFill.
type FillStyle interface {
	isFillStyle()
}

func (SolidFill) isFillStyle()    {}
func (BitmapFill) isFillStyle()   {}
func (GradientFill) isFillStyle() {}

type SolidFill struct {
	Color Color
}

// Bitmap fill types
const (
	BitmapRepeating     uint8 = 0x40
	BitmapClipped       uint8 = 0x41
	BitmapRepeatingHard uint8 = 0x42
	BitmapClippedHard   uint8 = 0x43
)

type BitmapFill struct {
	Type     uint8
	BitmapID uint16
	Matrix   Matrix
}

// IsClipped is false for repeating fills.
func (b BitmapFill) IsClipped() bool { return b.Type&1 != 0 }

// IsSmoothed is false for the non smoothed (hard edges) variants.
func (b BitmapFill) IsSmoothed() bool { return b.Type&2 == 0 }

// Gradient types
const (
	GradientLinear uint8 = 0x10
	GradientRadial uint8 = 0x12
	GradientFocal  uint8 = 0x13
)

// Spread and interpolation modes
const (
	SpreadPad uint8 = iota
	SpreadReflect
	SpreadRepeat

	InterpolationNormal uint8 = 0
	InterpolationLinear uint8 = 1
)

type GradientFill struct {
	Type          uint8
	Matrix        Matrix
	Spread        uint8
	Interpolation uint8
	Stops         []GradientStop
}

type GradientStop struct {
	Ratio uint8
	Color Color
}

type CapStyle uint8

const (
	CapRound CapStyle = iota
	CapNone
	CapSquare
)

type JoinStyle uint8

const (
	JoinRound JoinStyle = iota
	JoinBevel
	JoinMiter
)

// LineStyle is a LINESTYLE or LINESTYLE2 record. The caps, join,
// miter limit and fill are only used by the second version (Version2).
type LineStyle struct {
	Width      int
	Color      Color
	Version2   bool
	StartCap   CapStyle
	EndCap     CapStyle
	Join       JoinStyle
	MiterLimit float32
	Fill       FillStyle // optional
}
