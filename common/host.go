package common

import (
	"io"
	"os"
	"time"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/retroenv/retrogolib/log"
)

var _ Machine = (*chip8.Machine)(nil)

type keyEvent struct {
	key  byte
	down bool
}

// Host runs the frame loop around a Machine: input polling, gated
// instruction steps, gated timer ticks, then presentation.
type Host struct {
	Machine  Machine
	Debugger *Debugger
	Clock    *Clock
	Devices  []Device
	Logger   *log.Logger
	// Out receives console output.
	Out io.Writer

	// Instructions executed and timer ticks applied since the host was
	// created.
	Steps uint64
	Ticks uint64

	queued   []keyEvent
	deferred []keyEvent
	faulted  bool
}

func NewHost(m Machine, dbg *Debugger, clock *Clock, logger *log.Logger) *Host {
	if logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		logger = log.NewWithConfig(cfg)
	}
	return &Host{
		Machine:  m,
		Debugger: dbg,
		Clock:    clock,
		Logger:   logger,
		Out:      os.Stdout,
	}
}

func (h *Host) AddDevice(d Device) {
	h.Devices = append(h.Devices, d)
}

// Press queues a key-down event for the next frame.
func (h *Host) Press(key byte) {
	h.queued = append(h.queued, keyEvent{key: key, down: true})
}

// Release queues a key-up event for the next frame.
func (h *Host) Release(key byte) {
	h.queued = append(h.queued, keyEvent{key: key})
}

// Tap presses a key for one frame.
func (h *Host) Tap(key byte) {
	h.Press(key)
	h.deferred = append(h.deferred, keyEvent{key: key})
}

// Frame advances the machine by dt of wall time.
func (h *Host) Frame(dt time.Duration) error {
	h.Machine.Keypad().ClearEdges()
	for _, d := range h.Devices {
		if err := d.Poll(h); err != nil {
			return err
		}
	}
	h.applyInput()

	cycles, ticks := h.Clock.Advance(dt)
	h.RunCycles(cycles)
	h.RunTicks(ticks)

	for _, d := range h.Devices {
		if err := d.Present(h); err != nil {
			return err
		}
	}
	h.Debugger.OnFramePresented()
	return nil
}

// RunCycles offers n instruction slots to the debugger gate.
func (h *Host) RunCycles(n int) {
	for i := 0; i < n; i++ {
		if h.Machine.WaitState() == chip8.Normal && h.Debugger.Break(h.Machine.PC()) {
			h.Logger.Info("Breakpoint hit", log.Hex("pc", h.Machine.PC()))
			continue
		}
		if !h.Debugger.CanExecuteCycle() {
			continue
		}
		h.StepInstruction()
	}
}

// StepInstruction executes one instruction, bypassing the debugger.
func (h *Host) StepInstruction() {
	if h.Machine.Err() != nil {
		return
	}
	h.Machine.Step()
	h.Steps++

	if err := h.Machine.Err(); err != nil && !h.faulted {
		h.faulted = true
		h.Logger.Error("Machine halted", log.Err(err))
		h.Debugger.Pause()
	}
}

// RunTicks applies up to n timer ticks, as the debugger allows.
func (h *Host) RunTicks(n int) {
	for i := 0; i < n; i++ {
		if !h.Debugger.CanTickTimers() {
			continue
		}
		h.Machine.TickTimers()
		h.Ticks++
	}
}

// ApplyInput delivers queued key events without starting a frame.
func (h *Host) ApplyInput() {
	h.applyInput()
}

// Reset resets the machine and drops pending input.
func (h *Host) Reset() {
	h.Machine.Reset()
	h.queued = h.queued[:0]
	h.deferred = h.deferred[:0]
	h.faulted = false
}

// Cleanup releases every device.
func (h *Host) Cleanup() {
	for _, d := range h.Devices {
		d.Cleanup()
	}
}

func (h *Host) applyInput() {
	kp := h.Machine.Keypad()
	for _, e := range h.queued {
		if e.down {
			kp.Press(e.key)
		} else {
			kp.Release(e.key)
		}
	}
	// Tapped keys come back up on the following frame.
	h.queued = append(h.queued[:0], h.deferred...)
	h.deferred = h.deferred[:0]
}
