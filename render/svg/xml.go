package svg

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type attr struct {
	name, value string
}

// xmlWriter writes elements as they come. Attributes with an empty
// value are omitted and elements without content are self-closed.
type xmlWriter struct {
	w      *bufio.Writer
	pretty bool
	// indentation level of the root elements
	baseLevel int

	tags    []string
	open    bool // the start tag of the current element is not terminated
	content []bool
	wrote   bool
	err     error
}

func newXMLWriter(w io.Writer, pretty bool, baseLevel int) *xmlWriter {
	return &xmlWriter{w: bufio.NewWriter(w), pretty: pretty, baseLevel: baseLevel}
}

func (x *xmlWriter) writeString(s string) {
	if x.err == nil {
		_, x.err = x.w.WriteString(s)
	}
}

func (x *xmlWriter) escape(s string) {
	if x.err == nil {
		x.err = xml.EscapeText(x.w, []byte(s))
	}
}

func (x *xmlWriter) newline(level int) {
	if x.pretty && x.wrote {
		x.writeString("\n" + strings.Repeat("  ", x.baseLevel+level))
	}
}

func (x *xmlWriter) closeStart() {
	if x.open {
		x.writeString(">")
		x.open = false
	}
	if len(x.content) != 0 {
		x.content[len(x.content)-1] = true
	}
}

func (x *xmlWriter) prolog() {
	x.writeString(`<?xml version="1.1" encoding="UTF-8"?>`)
	x.wrote = true
}

func (x *xmlWriter) start(tag string, attrs ...attr) {
	x.closeStart()
	x.newline(len(x.tags))
	x.writeString("<" + tag)
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		x.writeString(" " + a.name + `="`)
		x.escape(a.value)
		x.writeString(`"`)
	}
	x.wrote = true
	x.open = true
	x.tags = append(x.tags, tag)
	x.content = append(x.content, false)
}

// text writes character data in the current element.
func (x *xmlWriter) text(s string) {
	if x.open {
		x.writeString(">")
		x.open = false
	}
	x.escape(s)
}

// raw writes characters as is, on a new line.
func (x *xmlWriter) raw(s string) {
	x.closeStart()
	x.writeString(s)
}

func (x *xmlWriter) end() {
	n := len(x.tags) - 1
	tag, hasContent := x.tags[n], x.content[n]
	x.tags, x.content = x.tags[:n], x.content[:n]
	if x.open {
		x.writeString("/>")
		x.open = false
		return
	}
	if hasContent {
		x.newline(n)
	}
	x.writeString("</" + tag + ">")
}

func (x *xmlWriter) element(tag string, attrs ...attr) {
	x.start(tag, attrs...)
	x.end()
}

func (x *xmlWriter) currentTag() string {
	if len(x.tags) == 0 {
		return ""
	}
	return x.tags[len(x.tags)-1]
}

func (x *xmlWriter) level() int { return len(x.tags) }

func (x *xmlWriter) flush() error {
	if len(x.tags) != 0 {
		return fmt.Errorf("unclosed tag <%s>", x.currentTag())
	}
	if x.err != nil {
		return x.err
	}
	return x.w.Flush()
}
