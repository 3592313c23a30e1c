package chip8

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newStrictMachine(t *testing.T, words ...uint16) *Machine {
	t.Helper()
	m := newTestMachine(t, words...)
	m.strict = true
	return m
}

func TestStackOverflowWraps(t *testing.T) {
	m := newTestMachine(t, 0x2200) // CALL $200 forever.
	for i := 0; i < StackSize+1; i++ {
		m.Step()
	}
	assert.NoError(t, m.Err())
	assert.Equal(t, uint8(StackSize+1), m.sp)
	assert.Equal(t, uint16(0x200), m.pc)
}

func TestStackUnderflowWraps(t *testing.T) {
	m := newTestMachine(t, 0x00EE)
	m.stack[StackSize-1] = 0x345
	m.Step()
	assert.NoError(t, m.Err())
	assert.Equal(t, uint8(0xFF), m.sp)
	assert.Equal(t, uint16(0x345), m.pc)
}

func TestMemoryWraps(t *testing.T) {
	m := newTestMachine(t, 0xAFFE, 0xF255)
	m.regs[0], m.regs[1], m.regs[2] = 0x11, 0x22, 0x33
	m.Step()
	m.Step()
	assert.NoError(t, m.Err())
	assert.Equal(t, byte(0x11), m.mem[0xFFE])
	assert.Equal(t, byte(0x22), m.mem[0xFFF])
	assert.Equal(t, byte(0x33), m.mem[0x000])
}

func TestStrictStackOverflow(t *testing.T) {
	m := newStrictMachine(t, 0x2200)
	for i := 0; i < StackSize; i++ {
		m.Step()
	}
	assert.NoError(t, m.Err())

	m.Step()
	err := m.Err()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrFault))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, StackOverflow, fault.Kind)
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, uint16(0x2200), fault.Opcode)
	assert.Equal(t, uint8(StackSize), m.sp)

	// Latched: further steps do nothing.
	before := m.Snapshot()
	m.Step()
	m.Step()
	assert.Equal(t, before, m.Snapshot())

	m.Reset()
	assert.NoError(t, m.Err())
}

func TestStrictStackUnderflow(t *testing.T) {
	m := newStrictMachine(t, 0x00EE)
	m.Step()

	var fault *Fault
	assert.True(t, errors.As(m.Err(), &fault))
	assert.Equal(t, StackUnderflow, fault.Kind)
	assert.Equal(t, uint8(0), m.sp)
	assert.Equal(t, "stack underflow at 0200 (00ee)", fault.Error())
}

func TestStrictMemoryOverrun(t *testing.T) {
	m := newStrictMachine(t, 0xAFFE, 0xF255)
	m.regs[0], m.regs[1], m.regs[2] = 0x11, 0x22, 0x33
	m.Step()
	m.Step()

	var fault *Fault
	assert.True(t, errors.As(m.Err(), &fault))
	assert.Equal(t, MemoryOverrun, fault.Kind)
	assert.Equal(t, uint16(0x202), fault.PC)
	assert.Equal(t, uint16(MemorySize), fault.Address)
	assert.Equal(t, byte(0), m.mem[0xFFE])
	assert.Equal(t, byte(0), m.mem[0x000])
}

func TestStrictDrawOverrun(t *testing.T) {
	m := newStrictMachine(t, 0xAFFD, 0xD005)
	m.Step()
	m.Step()
	assert.True(t, errors.Is(m.Err(), ErrFault))
	assert.Equal(t, Display{}, *m.Display())
}

func TestStrictFetchOverrun(t *testing.T) {
	m := newStrictMachine(t, 0x1FFF)
	m.Step()
	assert.NoError(t, m.Err())
	m.Step()

	var fault *Fault
	assert.True(t, errors.As(m.Err(), &fault))
	assert.Equal(t, MemoryOverrun, fault.Kind)
	assert.Equal(t, uint16(0xFFF), fault.PC)
	assert.Equal(t, uint16(0xFFF), m.pc)
}

func TestStrictInBoundsIsUnaffected(t *testing.T) {
	m := New(Options{Seed: 1, Strict: true, Logger: log.NewTestLogger(t)})
	m.mem[0x200], m.mem[0x201] = 0xAF, 0xFD // LD I, $FFD
	m.mem[0x202], m.mem[0x203] = 0xF2, 0x55 // LD [I], V2
	m.Step()
	m.Step()
	assert.NoError(t, m.Err())
}

func TestFaultKindString(t *testing.T) {
	assert.Equal(t, "stack overflow", StackOverflow.String())
	assert.Equal(t, "memory overrun", MemoryOverrun.String())
	assert.Equal(t, "unknown fault", FaultKind(0).String())
}
