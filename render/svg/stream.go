package svg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StreamWriter writes an SVG document. Presentation attributes are only
// written when they differ from the inherited ones. Defs can be written
// at any time: they are buffered and output at the end of the document.
type StreamWriter struct {
	precision          int
	transformPrecision int
	percentPrecision   int
	pretty             bool

	doc     *xmlWriter
	defsBuf bytes.Buffer
	defs    *xmlWriter
	current *xmlWriter

	stack    []GraphicsState
	defStack []GraphicsState

	defID      string
	defWritten bool
	started    bool
	err        error
}

// GradientStop is a stop of a linear gradient. Offset and Opacity are
// in [0, 1].
type GradientStop struct {
	Offset  float32
	Color   Paint
	Opacity float32
}

func NewStreamWriter(w io.Writer, precision, transformPrecision, percentPrecision int, pretty bool) (*StreamWriter, error) {
	err := errors.Join(
		CheckPrecision("precision", precision),
		CheckPrecision("transform precision", transformPrecision),
		CheckPrecision("percent precision", percentPrecision),
	)
	if err != nil {
		return nil, err
	}
	s := &StreamWriter{
		precision:          precision,
		transformPrecision: transformPrecision,
		percentPrecision:   percentPrecision,
		pretty:             pretty,
		doc:                newXMLWriter(w, pretty, 0),
		stack:              []GraphicsState{defaultState},
		defStack:           []GraphicsState{defaultState},
	}
	s.defs = newXMLWriter(&s.defsBuf, pretty, 2)
	// every def starts on a new line
	s.defs.wrote = true
	return s, nil
}

func (s *StreamWriter) fail(format string, args ...any) {
	if s.err == nil {
		s.err = fmt.Errorf(format, args...)
	}
}

func (s *StreamWriter) currentStack() *[]GraphicsState {
	if s.current == s.defs {
		return &s.defStack
	}
	return &s.stack
}

func (s *StreamWriter) push(state GraphicsState) {
	stack := s.currentStack()
	*stack = append(*stack, state)
}

func (s *StreamWriter) pop() {
	stack := s.currentStack()
	*stack = (*stack)[:len(*stack)-1]
}

// Start writes the root element. Its size is in points.
func (s *StreamWriter) Start(width, height float32, viewBox [4]float32, prolog bool, state GraphicsState) {
	if s.started {
		s.fail("document already started")
		return
	}
	s.started = true
	s.current = s.doc
	if prolog {
		s.doc.prolog()
	}
	s.push(state)
	attrs := []attr{
		{"xmlns", "http://www.w3.org/2000/svg"},
		{"xmlns:xlink", "http://www.w3.org/1999/xlink"},
		{"version", "2.0"},
		{"width", s.number(width, s.precision) + "pt"},
		{"height", s.number(height, s.precision) + "pt"},
		{"viewBox", valuesList(s.precision, !s.pretty, viewBox[:]...)},
	}
	s.doc.start("svg", append(attrs, s.stateAttrs()...)...)
}

// End writes the buffered defs and closes the document.
func (s *StreamWriter) End() error {
	if !s.started {
		return errors.New("document not started")
	}
	if s.doc.level() != 1 {
		s.fail("unclosed tag <%s>", s.doc.currentTag())
	}
	if err := s.defs.flush(); err != nil {
		s.fail("writing defs: %w", err)
	}
	if s.defsBuf.Len() != 0 {
		s.doc.start("defs")
		s.doc.raw(s.defsBuf.String())
		s.doc.end()
	}
	s.doc.end()
	if err := s.doc.flush(); err != nil {
		s.fail("%w", err)
	}
	return s.err
}

// Def writes a def with id: build must write exactly one element.
// An empty id writes no ID attribute.
func (s *StreamWriter) Def(id string, build func()) {
	before := s.current
	s.current = s.defs
	s.defID, s.defWritten = id, false
	build()
	if !s.defWritten {
		s.fail("no def written for %q", id)
	}
	s.defID = ""
	s.current = before
}

// consumeDefID returns the ID of the element written, if it is a def.
func (s *StreamWriter) consumeDefID() string {
	if s.current != s.defs || s.defWritten {
		return ""
	}
	s.defWritten = true
	return s.defID
}

func (s *StreamWriter) ready() bool {
	if s.current == nil {
		s.fail("document not started")
		return false
	}
	return true
}

// StartGroup starts a group with state. If discardIfEmpty is true and
// the group would have no attribute, it is not written and false is
// returned: EndGroup must only be called if the group was started.
func (s *StreamWriter) StartGroup(state GraphicsState, discardIfEmpty bool) bool {
	if !s.ready() {
		return false
	}
	s.push(state)
	attrs := append([]attr{{"id", s.consumeDefID()}}, s.stateAttrs()...)
	if discardIfEmpty && !hasValue(attrs) {
		s.pop()
		return false
	}
	s.current.start("g", attrs...)
	return true
}

func hasValue(attrs []attr) bool {
	for _, a := range attrs {
		if a.value != "" {
			return true
		}
	}
	return false
}

func (s *StreamWriter) EndGroup() {
	s.endTag("g")
	s.pop()
}

func (s *StreamWriter) endTag(tag string) {
	if !s.ready() {
		return
	}
	if current := s.current.currentTag(); current != tag {
		s.fail("cannot end <%s>, current tag is <%s>", tag, current)
		return
	}
	s.current.end()
}

// Group writes a group around build.
func (s *StreamWriter) Group(state GraphicsState, discardIfEmpty bool, build func()) {
	started := s.StartGroup(state, discardIfEmpty)
	build()
	if started {
		s.EndGroup()
	}
}

func (s *StreamWriter) ClipPath(build func()) {
	if !s.ready() {
		return
	}
	s.current.start("clipPath", attr{"id", s.consumeDefID()})
	build()
	s.endTag("clipPath")
}

func (s *StreamWriter) Mask(build func()) {
	if !s.ready() {
		return
	}
	s.current.start("mask", attr{"id", s.consumeDefID()})
	build()
	s.endTag("mask")
}

// NewPathWriter returns a path writer using the settings of s.
func (s *StreamWriter) NewPathWriter() *PathWriter {
	return NewPathWriter(s.precision, !s.pretty)
}

func (s *StreamWriter) Path(data string, state GraphicsState) {
	s.withState(state, func(attrs []attr) {
		s.current.element("path", append([]attr{{"id", s.consumeDefID()}, {"d", data}}, attrs...)...)
	})
}

// Image writes an image element with its intrinsic size if width or
// height is 0.
func (s *StreamWriter) Image(href string, width, height float32, state GraphicsState) {
	if width < 0 || height < 0 {
		s.fail("invalid image size %gx%g", width, height)
		return
	}
	s.withState(state, func(attrs []attr) {
		s.current.element("image", append([]attr{
			{"id", s.consumeDefID()},
			{"width", s.nonZero(width, s.precision)},
			{"height", s.nonZero(height, s.precision)},
			{"xlink:href", href},
		}, attrs...)...)
	})
}

// LinearGradient writes a gradient from (x1, y1) to (x2, y2).
func (s *StreamWriter) LinearGradient(stops []GradientStop, userSpace bool, transform []Transform, x1, y1, x2, y2 float32) {
	if err := validateStops(stops); err != nil {
		s.fail("%w", err)
		return
	}
	units := ""
	if userSpace {
		units = "userSpaceOnUse"
	}
	s.withState(GraphicsState{}, func(attrs []attr) {
		x := s.current
		x.start("linearGradient", append([]attr{
			{"id", s.consumeDefID()},
			{"x1", s.nonZero(x1, s.precision)},
			{"y1", s.nonZero(y1, s.precision)},
			{"x2", s.unlessEqual(x2, 1, s.precision)},
			{"y2", s.nonZero(y2, s.precision)},
			{"gradientUnits", units},
			{"gradientTransform", formatTransforms(transform, s.transformPrecision, !s.pretty)},
		}, attrs...)...)
		for _, stop := range stops {
			x.element("stop",
				attr{"offset", FormatNumber(stop.Offset, s.percentPrecision)},
				attr{"stop-color", string(stop.Color)},
				attr{"stop-opacity", s.unlessEqual(stop.Opacity, 1, s.percentPrecision)},
			)
		}
		x.end()
	})
}

func validateStops(stops []GradientStop) error {
	if len(stops) < 2 {
		return errors.New("gradient must have at least 2 stops")
	}
	if stops[0].Offset != 0 || stops[len(stops)-1].Offset != 1 {
		return errors.New("gradient stops must start at 0 and end at 1")
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Offset < stops[i-1].Offset {
			return errors.New("gradient stop offsets must not decrease")
		}
	}
	return nil
}

// Font declares a font family with a CSS font face.
func (s *StreamWriter) Font(family, url string) {
	if !s.ready() {
		return
	}
	s.consumeDefID()
	s.current.start("style", attr{"type", "text/css"})
	s.current.text("@font-face{font-family:" + family + ";src:url('" + url + "');}")
	s.current.end()
}

// Text writes a text element. dx is omitted if all its values are 0.
func (s *StreamWriter) Text(x, y float32, dx []float32, family string, size float32, text string, state GraphicsState) {
	dxValue := ""
	for _, v := range dx {
		if v != 0 {
			dxValue = valuesList(s.precision, !s.pretty, dx...)
			break
		}
	}
	s.withState(state, func(attrs []attr) {
		s.current.start("text", append([]attr{
			{"id", s.consumeDefID()},
			{"x", s.nonZero(x, s.precision)},
			{"y", s.nonZero(y, s.precision)},
			{"dx", dxValue},
			{"font-family", family},
			{"font-size", s.number(size, s.precision)},
		}, attrs...)...)
		s.current.text(text)
		s.current.end()
	})
}

// Use references the def id, moved right by x.
func (s *StreamWriter) Use(id string, x float32, state GraphicsState) {
	s.withState(state, func(attrs []attr) {
		s.current.element("use", append([]attr{
			{"x", s.nonZero(x, s.precision)},
			{"xlink:href", "#" + id},
		}, attrs...)...)
	})
}

func (s *StreamWriter) withState(state GraphicsState, write func(attrs []attr)) {
	if !s.ready() {
		return
	}
	s.push(state)
	write(s.stateAttrs())
	s.pop()
}

func (s *StreamWriter) number(v float32, precision int) string {
	if s.pretty {
		return FormatNumber(v, precision)
	}
	return FormatOptimized(v, precision)
}

func (s *StreamWriter) nonZero(v float32, precision int) string {
	return s.unlessEqual(v, 0, precision)
}

func (s *StreamWriter) unlessEqual(v, def float32, precision int) string {
	if v == def {
		return ""
	}
	return s.number(v, precision)
}

// stateAttrs returns the attributes of the last state changed from the
// inherited state.
func (s *StreamWriter) stateAttrs() []attr {
	stack := *s.currentStack()
	paint := func(get func(*GraphicsState) Paint) string {
		v, _ := changed(stack, func(g *GraphicsState) (Paint, bool) { return str(get(g)) })
		return string(v)
	}
	text := func(get func(*GraphicsState) string) string {
		v, _ := changed(stack, func(g *GraphicsState) (string, bool) { return str(get(g)) })
		return v
	}
	number := func(get func(*GraphicsState) *float32, precision int) string {
		v, ok := changed(stack, func(g *GraphicsState) (float32, bool) { return float(get(g)) })
		if !ok {
			return ""
		}
		return s.number(v, precision)
	}
	url := func(id string) string {
		if id == "" {
			return ""
		}
		return urlReference(id)
	}

	var style []string
	if mode := text(func(g *GraphicsState) string { return g.MixBlendMode }); mode != "" {
		style = append(style, "mix-blend-mode:"+mode)
	}
	return []attr{
		{"fill", paint(func(g *GraphicsState) Paint { return g.Fill })},
		{"fill-opacity", number(func(g *GraphicsState) *float32 { return g.FillOpacity }, s.percentPrecision)},
		{"fill-rule", text(func(g *GraphicsState) string { return g.FillRule })},
		{"stroke", paint(func(g *GraphicsState) Paint { return g.Stroke })},
		{"stroke-opacity", number(func(g *GraphicsState) *float32 { return g.StrokeOpacity }, s.percentPrecision)},
		{"stroke-width", number(func(g *GraphicsState) *float32 { return g.StrokeWidth }, s.precision)},
		{"stroke-linejoin", text(func(g *GraphicsState) string { return g.LineJoin })},
		{"stroke-linecap", text(func(g *GraphicsState) string { return g.LineCap })},
		{"stroke-miterlimit", number(func(g *GraphicsState) *float32 { return g.MiterLimit }, s.precision)},
		{"clip-path", url(text(func(g *GraphicsState) string { return g.ClipPath }))},
		{"clip-rule", text(func(g *GraphicsState) string { return g.ClipRule })},
		{"mask", url(text(func(g *GraphicsState) string { return g.Mask }))},
		{"transform", formatTransforms(stack[len(stack)-1].Transform, s.transformPrecision, !s.pretty)},
		{"preserveAspectRatio", text(func(g *GraphicsState) string { return g.PreserveAspectRatio })},
		{"style", strings.Join(style, ";")},
	}
}
