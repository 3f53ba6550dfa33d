package swf

// Shape is a sequence of style change and edge records.
type Shape struct {
	Records []ShapeRecord
}

// ShapeRecord is one of StyleChange, StraightEdge, CurvedEdge.
type ShapeRecord interface {
	isShapeRecord()
}

func (StyleChange) isShapeRecord()  {}
func (StraightEdge) isShapeRecord() {}
func (CurvedEdge) isShapeRecord()   {}

// StyleChange changes the pen position or the current styles.
// Style indices are 1-based in the active style arrays, 0 meaning no style.
type StyleChange struct {
	HasMove      bool
	MoveX, MoveY int32

	HasFill0 bool
	Fill0    int
	HasFill1 bool
	Fill1    int
	HasLine  bool
	Line     int

	// Non empty new style arrays replace the previous ones.
	FillStyles []FillStyle
	LineStyles []LineStyle
}

// StraightEdge is relative to the pen position.
type StraightEdge struct {
	DX, DY int32
}

// CurvedEdge is a quadratic curve; the control point is relative
// to the pen position, and the anchor relative to the control point.
type CurvedEdge struct {
	ControlDX, ControlDY int32
	AnchorDX, AnchorDY   int32
}
