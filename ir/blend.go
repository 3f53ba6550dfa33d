package ir

type BlendMode uint8

const (
	BlendNull BlendMode = iota
	BlendNormal
	BlendLayer
	BlendMultiply
	BlendScreen
	BlendLighten
	BlendDarken
	BlendAdd
	BlendSubtract
	BlendDifference
	BlendInvert
	BlendAlpha
	BlendErase
	BlendOverlay
	BlendHardlight
)

var blendNames = [...]string{
	BlendNull:       "NULL",
	BlendNormal:     "NORMAL",
	BlendLayer:      "LAYER",
	BlendMultiply:   "MULTIPLY",
	BlendScreen:     "SCREEN",
	BlendLighten:    "LIGHTEN",
	BlendDarken:     "DARKEN",
	BlendAdd:        "ADD",
	BlendSubtract:   "SUBTRACT",
	BlendDifference: "DIFFERENCE",
	BlendInvert:     "INVERT",
	BlendAlpha:      "ALPHA",
	BlendErase:      "ERASE",
	BlendOverlay:    "OVERLAY",
	BlendHardlight:  "HARDLIGHT",
}

func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return "<invalid blend mode>"
}

// IsNormal is true for the modes drawing with the source-over operator.
func (b BlendMode) IsNormal() bool {
	return b == BlendNull || b == BlendNormal || b == BlendLayer
}
