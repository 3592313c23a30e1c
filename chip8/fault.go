package chip8

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// ErrFault is matched by every strict-mode Fault.
var ErrFault = errors.New("machine fault")

// FaultKind classifies a strict-mode fault.
type FaultKind uint8

const (
	StackOverflow FaultKind = iota + 1
	StackUnderflow
	MemoryOverrun
)

func (k FaultKind) String() string {
	switch k {
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	case MemoryOverrun:
		return "memory overrun"
	}
	return "unknown fault"
}

// Fault describes the instruction that tripped a strict-mode check. The
// instruction is not executed and the machine stops stepping until Reset.
type Fault struct {
	Kind    FaultKind
	PC      uint16 // Address of the faulting instruction.
	Opcode  uint16
	Address uint16 // First out-of-range address, for MemoryOverrun.
}

func (f *Fault) Error() string {
	if f.Kind == MemoryOverrun {
		return fmt.Sprintf("%s at %04x (%04x): address %04x", f.Kind, f.PC, f.Opcode, f.Address)
	}
	return fmt.Sprintf("%s at %04x (%04x)", f.Kind, f.PC, f.Opcode)
}

func (f *Fault) Is(target error) bool {
	return target == ErrFault
}

func (m *Machine) raise(f *Fault) {
	m.fault = f
	m.logger.Debug("Machine fault", log.String("fault", f.Error()))
}

// span checks, in strict mode, that n bytes starting at addr lie inside
// memory, latching a MemoryOverrun fault for the executing instruction if
// they do not. Outside strict mode addresses wrap and every span is allowed.
func (m *Machine) span(addr uint16, n int) bool {
	first, ok := overrun(addr, n)
	if ok || !m.strict {
		return true
	}
	m.raise(&Fault{Kind: MemoryOverrun, PC: m.pc - 2, Opcode: m.opcode, Address: first})
	return false
}

// fetchable is span for the instruction fetch, before PC has advanced.
func (m *Machine) fetchable() bool {
	first, ok := overrun(m.pc, 2)
	if ok || !m.strict {
		return true
	}
	m.raise(&Fault{Kind: MemoryOverrun, PC: m.pc, Address: first})
	return false
}

// overrun returns the first address at or past MemorySize touched by an
// n-byte access at addr, and whether the access fits.
func overrun(addr uint16, n int) (uint16, bool) {
	if n <= 0 || int(addr)+n-1 < MemorySize {
		return 0, true
	}
	if addr < MemorySize {
		return MemorySize, false
	}
	return addr, false
}

func (m *Machine) canPush() bool {
	if m.strict && int(m.sp) >= StackSize {
		m.raise(&Fault{Kind: StackOverflow, PC: m.pc - 2, Opcode: m.opcode})
		return false
	}
	return true
}

func (m *Machine) canPop() bool {
	if m.strict && m.sp == 0 {
		m.raise(&Fault{Kind: StackUnderflow, PC: m.pc - 2, Opcode: m.opcode})
		return false
	}
	return true
}
