// Package convert builds frame trees from decoded movie files: shapes,
// fonts, texts, images and the display list of each frame.
package convert

import (
	"fmt"
	"strconv"
	"strings"
)

// Context is a node of the chain describing the position of
// a conversion step, used in error messages. It is immutable.
type Context struct {
	parent      *Context
	description string
}

// FileContext returns the root context of an input file.
func FileContext(fileIndex int, name string) *Context {
	if name == "" {
		return &Context{description: "file " + strconv.Itoa(fileIndex)}
	}
	return &Context{description: fmt.Sprintf("file %d '%s'", fileIndex, name)}
}

// Child returns a new context, whose parent is c.
func (c *Context) Child(description string) *Context {
	return &Context{parent: c, description: description}
}

// ObjectChild returns the context of an object, from the IDs of its
// ancestors (outer first). An empty list describes the root.
func (c *Context) ObjectChild(ids []int) *Context {
	if len(ids) == 0 {
		return c.Child("root")
	}
	desc := "object ID " + strconv.Itoa(ids[len(ids)-1])
	if len(ids) > 1 {
		chunks := make([]string, len(ids))
		for i, id := range ids {
			chunks[i] = strconv.Itoa(id)
		}
		desc += " (" + strings.Join(chunks, " > ") + ")"
	}
	return c.Child(desc)
}

// String joins the descriptions, root first.
func (c *Context) String() string {
	var chunks []string
	for ctx := c; ctx != nil; ctx = ctx.parent {
		chunks = append(chunks, ctx.description)
	}
	for i, j := 0, len(chunks)-1; i < j; i, j = i+1, j-1 {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	}
	return strings.Join(chunks, ", ")
}

// Errorf returns an *Error with the given context.
func (c *Context) Errorf(format string, args ...any) error {
	return &Error{Context: c, Message: fmt.Sprintf(format, args...)}
}

// Error is returned for unsupported features and invalid input.
// It aborts the conversion.
type Error struct {
	Context *Context
	Message string
}

func (e *Error) Error() string {
	return e.Message + ", context: " + e.Context.String()
}
