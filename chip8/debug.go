package chip8

import (
	"fmt"
	"strings"
)

// Snapshot is a detached copy of the machine state for debuggers. It shares
// no memory with the live machine.
type Snapshot struct {
	Opcode    uint16
	PC        uint16
	I         uint16
	SP        uint8
	DT        byte
	ST        byte
	Wait      WaitState
	Registers [RegisterCount]byte
	Stack     [StackSize]uint16
	Memory    [MemorySize]byte
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Opcode:    m.opcode,
		PC:        m.pc,
		I:         m.index,
		SP:        m.sp,
		DT:        m.dt,
		ST:        m.st,
		Wait:      m.wait.state,
		Registers: m.regs,
		Stack:     m.stack,
		Memory:    m.mem,
	}
}

var registers = []string{
	"v0", "v1", "v2", "v3", "v4", "v5", "v6", "v7",
	"v8", "v9", "va", "vb", "vc", "vd", "ve", "vf",
	"i", "pc", "sp", "dt", "st",
}

// Registers lists the register names RegByName understands, in display
// order.
func Registers() []string {
	return registers
}

// RegByName looks up a register in the snapshot, case-insensitively. It
// returns the value, the canonical name and the register width in bits.
func (s *Snapshot) RegByName(name string) (uint16, string, int, bool) {
	name = strings.ToLower(name)
	if len(name) == 2 && name[0] == 'v' {
		var r uint8
		if _, err := fmt.Sscanf(name[1:], "%x", &r); err == nil {
			return uint16(s.Registers[r]), name, 8, true
		}
		return 0, "", 0, false
	}

	switch name {
	case "i":
		return s.I, name, 16, true
	case "pc":
		return s.PC, name, 16, true
	case "sp":
		return uint16(s.SP), name, 8, true
	case "dt":
		return uint16(s.DT), name, 8, true
	case "st":
		return uint16(s.ST), name, 8, true
	}
	return 0, "", 0, false
}

// Word returns the big-endian instruction word at addr, wrapping at the end
// of memory.
func (s *Snapshot) Word(addr uint16) uint16 {
	return uint16(s.Memory[addr&(MemorySize-1)])<<8 | uint16(s.Memory[(addr+1)&(MemorySize-1)])
}
