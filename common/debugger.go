package common

import "sort"

// Mode is the debugger's run mode.
type Mode uint8

const (
	Running Mode = iota
	Paused
)

func (m Mode) String() string {
	if m == Paused {
		return "PAUSED"
	}
	return "RUNNING"
}

// Debugger gates instruction execution and timer ticks for pausing and
// single-stepping, and holds the breakpoints and overlay toggle.
type Debugger struct {
	mode           Mode
	cycleBudget    int
	pauseOnPresent bool
	overlay        bool

	breakpoints map[uint16]bool
	// Set when a breakpoint fires so that resuming passes over it once.
	skipping bool
	skipAt   uint16
}

func NewDebugger(paused bool) *Debugger {
	d := &Debugger{breakpoints: make(map[uint16]bool)}
	if paused {
		d.mode = Paused
	}
	return d
}

func (d *Debugger) Mode() Mode {
	return d.mode
}

// FlipMode toggles between running and paused, cancelling any pending step.
func (d *Debugger) FlipMode() {
	if d.mode == Paused {
		d.mode = Running
	} else {
		d.mode = Paused
	}
	d.cycleBudget = 0
	d.pauseOnPresent = false
}

// Pause stops execution, cancelling any pending step.
func (d *Debugger) Pause() {
	d.mode = Paused
	d.cycleBudget = 0
	d.pauseOnPresent = false
}

// StepCycle pauses and allows exactly one more instruction.
func (d *Debugger) StepCycle() {
	d.mode = Paused
	d.cycleBudget = 1
	d.pauseOnPresent = false
}

// StepFrame runs until the next frame has been presented, then pauses.
func (d *Debugger) StepFrame() {
	d.mode = Running
	d.cycleBudget = 0
	d.pauseOnPresent = true
}

// CanExecuteCycle reports whether one instruction may run, consuming the
// step budget while paused.
func (d *Debugger) CanExecuteCycle() bool {
	if d.mode == Running {
		return true
	}
	if d.cycleBudget > 0 {
		d.cycleBudget--
		return true
	}
	return false
}

// Timers only run in real time.
func (d *Debugger) CanTickTimers() bool {
	return d.mode == Running
}

func (d *Debugger) OnFramePresented() {
	if d.pauseOnPresent {
		d.mode = Paused
		d.pauseOnPresent = false
	}
}

func (d *Debugger) AddBreakpoint(pc uint16) {
	d.breakpoints[pc] = true
}

// RemoveBreakpoint reports whether a breakpoint was set at pc.
func (d *Debugger) RemoveBreakpoint(pc uint16) bool {
	ok := d.breakpoints[pc]
	delete(d.breakpoints, pc)
	return ok
}

// Breakpoints lists the breakpoint addresses in ascending order.
func (d *Debugger) Breakpoints() []uint16 {
	bps := make([]uint16, 0, len(d.breakpoints))
	for pc := range d.breakpoints {
		bps = append(bps, pc)
	}
	sort.Slice(bps, func(i, j int) bool { return bps[i] < bps[j] })
	return bps
}

// Break is checked before fetching the instruction at pc while running. A
// hit pauses the debugger. The instruction at a breakpoint that just fired
// is let through once, so continuing makes progress.
func (d *Debugger) Break(pc uint16) bool {
	if d.mode != Running {
		return false
	}
	if d.skipping {
		d.skipping = false
		if d.skipAt == pc {
			return false
		}
	}
	if !d.breakpoints[pc] {
		return false
	}

	d.Pause()
	d.skipping = true
	d.skipAt = pc
	return true
}

func (d *Debugger) ToggleOverlay() {
	d.overlay = !d.overlay
}

func (d *Debugger) ShowOverlay() bool {
	return d.overlay
}
