package render

import "sync"

// Printer displays the state of a Progress. Calls are serialized.
type Printer interface {
	// Update is called when the steps or the counter change.
	// total is -1 when the current step has no counter.
	Update(steps []string, done, total int)
	// StepEnded is called when the innermost step ends.
	StepEnded()
}

// Progress tracks a stack of named steps, the innermost one
// having an optional "done / total" counter, safe for concurrent
// increments. A nil *Progress does nothing.
type Progress struct {
	mu      sync.Mutex
	printer Printer
	steps   []string
	done    int
	total   int
}

func NewProgress(printer Printer) *Progress {
	return &Progress{printer: printer, total: -1}
}

func (p *Progress) update() {
	if p.printer != nil {
		p.printer.Update(append([]string(nil), p.steps...), p.done, p.total)
	}
}

// BeginStep starts a nested step.
func (p *Progress) BeginStep(name string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, name)
	p.done, p.total = 0, -1
	p.update()
}

// EndStep ends the innermost step, and its counter.
func (p *Progress) EndStep() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.steps) != 0 {
		p.steps = p.steps[:len(p.steps)-1]
	}
	p.done, p.total = 0, -1
	if p.printer != nil {
		p.printer.StepEnded()
	}
}

// Start shows a counter for the current step.
func (p *Progress) Start(total int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.total = 0, total
	p.update()
}

// Increment increases the counter by one, never above the total.
func (p *Progress) Increment() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done < p.total {
		p.done++
	}
	p.update()
}

// Done returns the current value of the counter.
func (p *Progress) Done() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
