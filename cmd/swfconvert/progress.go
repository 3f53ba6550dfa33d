package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

const progressBarSize = 30

// progressPrinter shows the current steps and counter on one line,
// rewritten on each update. A new line is started when a step ends.
type progressPrinter struct {
	out *termenv.Output
	// dirty is set when a line was written since the last ended step
	dirty bool
}

func newProgressPrinter(w io.Writer, opts ...termenv.OutputOption) *progressPrinter {
	return &progressPrinter{out: termenv.NewOutput(w, opts...)}
}

func (p *progressPrinter) Update(steps []string, done, total int) {
	var sb strings.Builder
	sb.WriteString(p.out.String(strings.Join(steps, ": ")).Bold().String())
	if total > 0 {
		n := done * progressBarSize / total
		fmt.Fprintf(&sb, " [%s%s]", strings.Repeat("#", n), strings.Repeat("-", progressBarSize-n))
	}
	if total >= 0 {
		fmt.Fprintf(&sb, " (%d / %d)", done, total)
	}
	p.out.ClearLine()
	fmt.Fprint(p.out, "\r"+sb.String())
	p.dirty = true
}

func (p *progressPrinter) StepEnded() {
	if p.dirty {
		fmt.Fprintln(p.out)
	}
	p.dirty = false
}
