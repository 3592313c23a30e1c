// Package chip8 implements the CHIP-8 virtual machine: 4KB of memory, sixteen
// 8-bit registers, a 16-level call stack, a 64x32 monochrome display, a
// 16-key keypad and the delay and sound timers.
//
// The machine never blocks. FX0A (wait for key) is modelled as explicit state
// that Step advances one poll at a time, so the caller keeps full control of
// its own fixed-rate loop.
package chip8

import (
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

const (
	MemorySize    = 4096
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	Width  = 64
	Height = 32

	FontStart   = 0x050
	GlyphSize   = 5
	ProgramBase = 0x200
	MaxROMSize  = MemorySize - ProgramBase

	// PixelOn and PixelOff are the two values a display cell can hold.
	PixelOn  uint32 = 0xFFFFFFFF
	PixelOff uint32 = 0
)

var (
	ErrROMTooLarge   = errors.New("rom too large")
	ErrROMUnreadable = errors.New("rom unreadable")
)

// ROMError reports an I/O failure while loading a program image. It matches
// ErrROMUnreadable and unwraps to the underlying error.
type ROMError struct {
	Path string // Empty when loading from a reader.
	Err  error
}

func (e *ROMError) Error() string {
	return ErrROMUnreadable.Error() + ": " + e.Err.Error()
}

func (e *ROMError) Unwrap() error { return e.Err }

func (e *ROMError) Is(target error) bool {
	return target == ErrROMUnreadable
}

// Font glyphs for the hex digits 0-F, copied to FontStart on New and Reset.
var fontset = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Display is the frame buffer, one uint32 per pixel in row-major order.
type Display [Width * Height]uint32

// Pixel reports whether the pixel at (x, y) is lit.
func (d *Display) Pixel(x, y int) bool {
	return d[(y%Height)*Width+(x%Width)] == PixelOn
}

func (d *Display) clear() {
	for i := range d {
		d[i] = PixelOff
	}
}

// Options configure a Machine. The zero value is a usable default.
type Options struct {
	// Seed for the random-byte instruction. Zero picks a time-based seed.
	Seed int64
	// Strict turns stack and memory overruns into a latched Fault instead of
	// wrapping them.
	Strict bool
	// Logger receives debug-level traces. Nil discards them.
	Logger *log.Logger
}

// Machine is a single CHIP-8 interpreter instance. It is not safe for
// concurrent use.
type Machine struct {
	opcode uint16
	pc     uint16
	index  uint16
	sp     uint8
	dt     byte
	st     byte
	regs   [RegisterCount]byte
	stack  [StackSize]uint16
	mem    [MemorySize]byte

	display Display
	keypad  Keypad
	wait    waitLatch

	seed   int64
	rng    *rand.Rand
	strict bool
	fault  *Fault
	logger *log.Logger
}

// New returns a freshly initialised machine with the font loaded and the
// program counter at ProgramBase.
func New(opts Options) *Machine {
	m := &Machine{
		seed:   opts.Seed,
		strict: opts.Strict,
		logger: opts.Logger,
	}
	if m.seed == 0 {
		m.seed = time.Now().UnixNano()
	}
	if m.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		m.logger = log.NewWithConfig(cfg)
	}
	m.Reset()
	return m
}

// Reset restores the state New produced, reseeding the random source with
// the same seed.
func (m *Machine) Reset() {
	m.opcode = 0
	m.pc = ProgramBase
	m.index = 0
	m.sp = 0
	m.dt = 0
	m.st = 0
	m.regs = [RegisterCount]byte{}
	m.stack = [StackSize]uint16{}
	m.mem = [MemorySize]byte{}
	m.display = Display{}
	m.keypad = Keypad{}
	m.wait = waitLatch{}
	m.fault = nil

	copy(m.mem[FontStart:], fontset[:])
	m.rng = rand.New(rand.NewSource(m.seed))
}

// LoadROM copies a raw program image to ProgramBase. It does not reset the
// machine first.
func (m *Machine) LoadROM(r io.Reader) error {
	// Read one byte past the limit so oversized images are detected without
	// consuming an unbounded stream.
	rom, err := io.ReadAll(io.LimitReader(r, MaxROMSize+1))
	if err != nil {
		return &ROMError{Err: err}
	}
	if len(rom) > MaxROMSize {
		return errors.Wrapf(ErrROMTooLarge, "more than %d bytes", MaxROMSize)
	}

	copy(m.mem[ProgramBase:], rom)
	m.logger.Debug("ROM loaded", log.Int("size", len(rom)))
	return nil
}

// LoadROMFile loads the program image at path.
func (m *Machine) LoadROMFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ROMError{Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return &ROMError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return errors.Wrapf(ErrROMUnreadable, "%s is a directory", path)
	}
	if fi.Size() > MaxROMSize {
		return errors.Wrapf(ErrROMTooLarge, "%s is %d bytes, max %d", path, fi.Size(), MaxROMSize)
	}
	return errors.Wrap(m.LoadROM(f), path)
}

// Step runs one instruction, or advances a pending key wait, and returns the
// most recently fetched instruction word.
func (m *Machine) Step() uint16 {
	if m.fault != nil {
		return m.opcode
	}

	switch m.wait.state {
	case AwaitingPress:
		if key, ok := m.keypad.firstPressed(); ok {
			m.wait.state = AwaitingRelease
			m.wait.key = key
			m.logger.Debug("Key wait press", log.Hex("key", key))
		}

	case AwaitingRelease:
		if m.keypad.Released[m.wait.key] {
			m.regs[m.wait.reg] = m.wait.key
			m.logger.Debug("Key wait release", log.Hex("key", m.wait.key), log.Hex("register", m.wait.reg))
			m.wait = waitLatch{}
		}

	default:
		if !m.fetchable() {
			return m.opcode
		}
		m.opcode = uint16(m.read(m.pc))<<8 | uint16(m.read(m.pc+1))
		m.pc += 2
		m.execute(Decode(m.opcode))
	}
	return m.opcode
}

// TickTimers decrements both timers once, stopping at zero.
func (m *Machine) TickTimers() {
	if m.dt > 0 {
		m.dt--
	}
	if m.st > 0 {
		m.st--
	}
}

// SoundActive reports whether the tone should be playing.
func (m *Machine) SoundActive() bool {
	return m.st > 0
}

// Display exposes the live frame buffer for the renderer.
func (m *Machine) Display() *Display {
	return &m.display
}

// Keypad exposes the live keypad state for the input collector.
func (m *Machine) Keypad() *Keypad {
	return &m.keypad
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// WaitState reports the input-wait state.
func (m *Machine) WaitState() WaitState {
	return m.wait.state
}

// Err returns the latched strict-mode fault, or nil.
func (m *Machine) Err() error {
	if m.fault == nil {
		return nil
	}
	return m.fault
}

// Implementation details.
func (m *Machine) read(addr uint16) byte {
	return m.mem[addr&(MemorySize-1)]
}

func (m *Machine) write(addr uint16, v byte) {
	m.mem[addr&(MemorySize-1)] = v
}

func (m *Machine) push(v uint16) {
	m.stack[m.sp&(StackSize-1)] = v
	m.sp++
}

func (m *Machine) pop() uint16 {
	m.sp--
	return m.stack[m.sp&(StackSize-1)]
}
