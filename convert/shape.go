package convert

import (
	"sort"

	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/swf"
)

type point struct{ x, y int32 }

// edge is a straight edge if !curved
type edge struct {
	start, control, end point
	curved              bool
	lineStyle           int
	fillStyle           int
}

func (e *edge) reversed(fillStyle int) *edge {
	return &edge{start: e.end, control: e.control, end: e.start, curved: e.curved, lineStyle: e.lineStyle, fillStyle: fillStyle}
}

// edgeMap maps global style indices (1-based) to edges
type edgeMap map[int][]*edge

func (m edgeMap) sortedEdges() []*edge {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	var out []*edge
	for _, k := range keys {
		out = append(out, m[k]...)
	}
	return out
}

// styleResolver converts the style arrays of a shape.
type styleResolver interface {
	fillStyle(ctx *Context, fill swf.FillStyle, current ir.Matrix) (ir.FillStyle, error)
	lineStyle(ctx *Context, line swf.LineStyle) (ir.LineStyle, error)
}

// ShapeConverter turns the style runs of a shape into paths.
// It is not safe for concurrent use, but may be reused.
type ShapeConverter struct {
	styles styleResolver // nil to only convert geometry

	ctx          *Context
	transform    ir.Matrix
	current      ir.Matrix
	ignoreStyles bool

	// numFills and numLines count the styles, even when ignored
	numFills, numLines int
	fillStyles         []ir.FillStyle
	lineStyles         []ir.LineStyle

	fillEdgeMaps []edgeMap
	lineEdgeMaps []edgeMap
	currFillMap  edgeMap
	currLineMap  edgeMap
	paths        []ir.Path
}

// ShapeOptions are the parameters of a shape conversion.
type ShapeOptions struct {
	FillStyles []swf.FillStyle
	LineStyles []swf.LineStyle
	// Transform is applied to every coordinate.
	Transform ir.Matrix
	// Current is the transform of the enclosing placements,
	// used to compute the density of bitmap fills.
	Current ir.Matrix
	// IgnoreStyles only converts the geometry.
	IgnoreStyles bool
	// AllowRectangles shortens rectangular paths to a Rectangle.
	AllowRectangles bool
}

// Convert returns the paths of shape, ordered by style group, fills first,
// then by style index.
func (sc *ShapeConverter) Convert(ctx *Context, shape swf.Shape, opts ShapeOptions) ([]ir.Path, error) {
	sc.ctx = ctx
	sc.transform = opts.Transform
	sc.current = opts.Current
	sc.ignoreStyles = opts.IgnoreStyles || sc.styles == nil
	sc.numFills, sc.numLines = 0, 0
	sc.fillStyles, sc.lineStyles = nil, nil
	sc.fillEdgeMaps, sc.lineEdgeMaps = nil, nil
	sc.currFillMap, sc.currLineMap = edgeMap{}, edgeMap{}
	sc.paths = nil

	if err := sc.addStyles(opts.FillStyles, opts.LineStyles); err != nil {
		return nil, err
	}
	if err := sc.createEdgeMaps(shape); err != nil {
		return nil, err
	}
	for i := range sc.fillEdgeMaps {
		if err := sc.createPaths(sc.fillEdgeMaps[i], true); err != nil {
			return nil, err
		}
		if !sc.ignoreStyles {
			if err := sc.createPaths(sc.lineEdgeMaps[i], false); err != nil {
				return nil, err
			}
		}
	}

	paths := sc.paths
	if opts.AllowRectangles {
		for i, p := range paths {
			if rect, ok := RecognizeRectangle(p.Elements); ok {
				paths[i].Elements = []ir.PathElement{rect}
			}
		}
	}
	return paths, nil
}

func (sc *ShapeConverter) addStyles(fills []swf.FillStyle, lines []swf.LineStyle) error {
	sc.numFills += len(fills)
	sc.numLines += len(lines)
	if sc.ignoreStyles {
		return nil
	}
	for _, fill := range fills {
		out, err := sc.styles.fillStyle(sc.ctx, fill, sc.current)
		if err != nil {
			return err
		}
		sc.fillStyles = append(sc.fillStyles, out)
	}
	for _, line := range lines {
		out, err := sc.styles.lineStyle(sc.ctx, line)
		if err != nil {
			return err
		}
		sc.lineStyles = append(sc.lineStyles, out)
	}
	return nil
}

func (sc *ShapeConverter) closeGroup() {
	sc.cleanEdgeMap(sc.currFillMap)
	sc.cleanEdgeMap(sc.currLineMap)
	sc.fillEdgeMaps = append(sc.fillEdgeMaps, sc.currFillMap)
	sc.lineEdgeMaps = append(sc.lineEdgeMaps, sc.currLineMap)
	sc.currFillMap, sc.currLineMap = edgeMap{}, edgeMap{}
}

func (sc *ShapeConverter) createEdgeMaps(shape swf.Shape) error {
	var (
		pos                     point
		fillOffset, lineOffset  int
		fill0, fill1, lineStyle int
		subPath                 []*edge
	)
	offset := func(index, off int) int {
		if index > 0 {
			return index + off
		}
		return index
	}
	for _, record := range shape.Records {
		switch record := record.(type) {
		case swf.StyleChange:
			if record.HasLine || record.HasFill0 || record.HasFill1 {
				sc.processSubPath(subPath, lineStyle, fill0, fill1)
				subPath = nil
			}
			if len(record.LineStyles) != 0 {
				lineOffset = sc.numLines
			}
			if len(record.FillStyles) != 0 {
				fillOffset = sc.numFills
			}
			if err := sc.addStyles(record.FillStyles, record.LineStyles); err != nil {
				return err
			}
			if record.HasLine && record.Line == 0 && record.HasFill0 && record.Fill0 == 0 && record.HasFill1 && record.Fill1 == 0 {
				// new style group
				sc.closeGroup()
				lineStyle, fill0, fill1 = 0, 0, 0
			} else {
				if record.HasLine {
					lineStyle = offset(record.Line, lineOffset)
				}
				if record.HasFill0 {
					fill0 = offset(record.Fill0, fillOffset)
				}
				if record.HasFill1 {
					fill1 = offset(record.Fill1, fillOffset)
				}
			}
			if record.HasMove {
				pos = point{record.MoveX, record.MoveY}
			}
		case swf.StraightEdge:
			from := pos
			pos = point{pos.x + record.DX, pos.y + record.DY}
			subPath = append(subPath, &edge{start: from, end: pos, lineStyle: lineStyle, fillStyle: fill1})
		case swf.CurvedEdge:
			from := pos
			control := point{pos.x + record.ControlDX, pos.y + record.ControlDY}
			pos = point{control.x + record.AnchorDX, control.y + record.AnchorDY}
			subPath = append(subPath, &edge{start: from, control: control, end: pos, curved: true, lineStyle: lineStyle, fillStyle: fill1})
		}
	}
	sc.processSubPath(subPath, lineStyle, fill0, fill1)
	sc.closeGroup()
	return nil
}

func (sc *ShapeConverter) processSubPath(subPath []*edge, lineStyle, fill0, fill1 int) {
	if fill0 != 0 {
		for i := len(subPath) - 1; i >= 0; i-- {
			sc.currFillMap[fill0] = append(sc.currFillMap[fill0], subPath[i].reversed(fill0))
		}
	}
	if fill1 != 0 {
		sc.currFillMap[fill1] = append(sc.currFillMap[fill1], subPath...)
	}
	if lineStyle != 0 {
		sc.currLineMap[lineStyle] = append(sc.currLineMap[lineStyle], subPath...)
	}
}

func removeEdge(list []*edge, e *edge) []*edge {
	for i, other := range list {
		if other == e {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func indexOfEdge(list []*edge, e *edge) int {
	for i, other := range list {
		if other == e {
			return i
		}
	}
	return -1
}

// cleanEdgeMap reorders the edges of each style so that
// edges are chained end to start as much as possible, reversing
// edges when needed.
func (sc *ShapeConverter) cleanEdgeMap(m edgeMap) {
	for style, subPath := range m {
		if len(subPath) == 0 {
			continue
		}
		subPath = append([]*edge(nil), subPath...)
		coordMap := make(map[point][]*edge)
		reverseMap := make(map[point][]*edge)
		for _, e := range subPath {
			coordMap[e.start] = append(coordMap[e.start], e)
			reverseMap[e.end] = append(reverseMap[e.end], e)
		}

		var prev *edge
		out := make([]*edge, 0, len(subPath))
		for len(subPath) > 0 {
			i := 0
			for i < len(subPath) {
				if prev == nil || prev.end == subPath[i].start {
					e := subPath[i]
					subPath = append(subPath[:i], subPath[i+1:]...)
					out = append(out, e)
					coordMap[e.start] = removeEdge(coordMap[e.start], e)
					reverseMap[e.end] = removeEdge(reverseMap[e.end], e)
					prev = e
					continue
				}
				if next := coordMap[prev.end]; len(next) != 0 {
					i = indexOfEdge(subPath, next[0])
				} else if rev := reverseMap[prev.end]; len(rev) != 0 {
					revEdge := rev[0]
					i = indexOfEdge(subPath, revEdge)
					r := revEdge.reversed(revEdge.fillStyle)
					coordMap[revEdge.start] = removeEdge(coordMap[revEdge.start], revEdge)
					coordMap[r.start] = append(coordMap[r.start], r)
					reverseMap[revEdge.end] = removeEdge(reverseMap[revEdge.end], revEdge)
					reverseMap[r.end] = append(reverseMap[r.end], r)
					subPath[i] = r
				} else {
					i = 0
					prev = nil
				}
			}
		}
		m[style] = out
	}
}

func (sc *ShapeConverter) point(p point) (float32, float32) {
	x, y := sc.transform.Transform(float64(p.x), float64(p.y))
	return float32(x), float32(y)
}

func (sc *ShapeConverter) createPaths(m edgeMap, fill bool) error {
	const noStyle = -1
	var (
		elements []ir.PathElement
		style    = noStyle
		pos      point
		hasPos   bool
	)
	flush := func() error {
		if style != noStyle && len(elements) != 0 {
			if err := sc.createPath(elements, style, fill); err != nil {
				return err
			}
		}
		elements = nil
		return nil
	}
	for _, e := range m.sortedEdges() {
		index := e.lineStyle
		if fill {
			index = e.fillStyle
		}
		if index != style {
			if err := flush(); err != nil {
				return err
			}
			style = index
			hasPos = false
		}
		if !hasPos || pos != e.start {
			x, y := sc.point(e.start)
			elements = append(elements, ir.MoveTo{X: x, Y: y})
		}
		x, y := sc.point(e.end)
		if e.curved {
			cx, cy := sc.point(e.control)
			elements = append(elements, ir.QuadTo{CX: cx, CY: cy, X: x, Y: y})
		} else {
			elements = append(elements, ir.LineTo{X: x, Y: y})
		}
		pos, hasPos = e.end, true
	}
	return flush()
}

func (sc *ShapeConverter) createPath(elements []ir.PathElement, style int, fill bool) error {
	path := ir.Path{Elements: elements}
	if fill {
		path.Elements = closeSubpaths(elements)
	}
	if !sc.ignoreStyles {
		if fill {
			if style-1 >= len(sc.fillStyles) {
				return sc.ctx.Errorf("invalid fill style index %d", style)
			}
			path.Fill = sc.fillStyles[style-1]
		} else {
			if style-1 >= len(sc.lineStyles) {
				return sc.ctx.Errorf("invalid line style index %d", style)
			}
			line := sc.lineStyles[style-1]
			path.Line = &line
		}
	}
	sc.paths = append(sc.paths, path)
	return nil
}

// closeSubpaths ends with ClosePath each sub path whose last
// point is its first point. A closing LineTo is replaced.
func closeSubpaths(elements []ir.PathElement) []ir.PathElement {
	out := make([]ir.PathElement, 0, len(elements)+1)
	var startX, startY float32
	closeLast := func() {
		if len(out) == 0 {
			return
		}
		last := out[len(out)-1]
		if _, isMove := last.(ir.MoveTo); isMove {
			return
		}
		if x, y := last.End(); x != startX || y != startY {
			return
		}
		if _, isLine := last.(ir.LineTo); isLine {
			out[len(out)-1] = ir.ClosePath{}
		} else {
			out = append(out, ir.ClosePath{})
		}
	}
	for _, e := range elements {
		if move, ok := e.(ir.MoveTo); ok {
			closeLast()
			startX, startY = move.X, move.Y
		}
		out = append(out, e)
	}
	closeLast()
	return out
}
