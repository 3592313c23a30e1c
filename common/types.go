package common

import (
	"bufio"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/pkg/errors"
)

// Machine is the interface to the interpreter core, used by the host loop,
// the console and the hardware to abstract over the concrete machine.
type Machine interface {
	Step() uint16
	TickTimers()
	SoundActive() bool
	Snapshot() chip8.Snapshot
	Reset()
	LoadROMFile(path string) error

	PC() uint16
	WaitState() chip8.WaitState
	Display() *chip8.Display
	Keypad() *chip8.Keypad
	Err() error
}

// Device is the interface to all host hardware.
type Device interface {
	// Poll runs at the start of every frame, before the machine steps. Input
	// devices queue key events on the host here.
	Poll(h *Host) error
	// Present runs after the frame's steps and timer ticks.
	Present(h *Host) error
	Cleanup()
}

// ErrQuit is returned by devices and commands to end the run loop.
var ErrQuit = errors.New("quit")

// InputReader is shared by the console and scripts, since os.Stdin is global.
var InputReader *bufio.Reader
