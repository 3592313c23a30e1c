package chip8

import "github.com/retroenv/retrogolib/log"

// Op names one of the 35 CHIP-8 operations. Decode maps an instruction word
// to its Op; execute matches on it.
type Op uint8

const (
	OpInvalid Op = iota
	OpSys        // 0NNN
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1NNN
	OpCall       // 2NNN
	OpSeImm      // 3XNN
	OpSneImm     // 4XNN
	OpSeReg      // 5XY0
	OpLdImm      // 6XNN
	OpAddImm     // 7XNN
	OpLdReg      // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpSubn       // 8XY7
	OpShl        // 8XYE
	OpSneReg     // 9XY0
	OpLdI        // ANNN
	OpJpV0       // BNNN
	OpRnd        // CXNN
	OpDrw        // DXYN
	OpSkp        // EX9E
	OpSknp       // EXA1
	OpLdVxDt     // FX07
	OpLdVxK      // FX0A
	OpLdDtVx     // FX15
	OpLdStVx     // FX18
	OpAddI       // FX1E
	OpLdF        // FX29
	OpLdB        // FX33
	OpStore      // FX55
	OpLoad       // FX65

	opCount
)

var opPatterns = [opCount]string{
	"????",
	"0NNN", "00E0", "00EE", "1NNN", "2NNN", "3XNN", "4XNN", "5XY0", "6XNN",
	"7XNN", "8XY0", "8XY1", "8XY2", "8XY3", "8XY4", "8XY5", "8XY6", "8XY7",
	"8XYE", "9XY0", "ANNN", "BNNN", "CXNN", "DXYN", "EX9E", "EXA1", "FX07",
	"FX0A", "FX15", "FX18", "FX1E", "FX29", "FX33", "FX55", "FX65",
}

// String returns the opcode pattern, e.g. "8XY4".
func (op Op) String() string {
	if op >= opCount {
		return opPatterns[OpInvalid]
	}
	return opPatterns[op]
}

// Family 8, keyed by the low nibble.
var table8 = [16]Op{
	0x0: OpLdReg,
	0x1: OpOr,
	0x2: OpAnd,
	0x3: OpXor,
	0x4: OpAddReg,
	0x5: OpSub,
	0x6: OpShr,
	0x7: OpSubn,
	0xE: OpShl,
}

// Family F, keyed by the low byte.
var tableF = map[uint16]Op{
	0x07: OpLdVxDt,
	0x0A: OpLdVxK,
	0x15: OpLdDtVx,
	0x18: OpLdStVx,
	0x1E: OpAddI,
	0x29: OpLdF,
	0x33: OpLdB,
	0x55: OpStore,
	0x65: OpLoad,
}

// Decode selects the operation for an instruction word. Families 0, 8 and E
// are split on the low nibble and family F on the low byte. Words that match
// no operation decode to OpInvalid, which executes as a no-op.
func Decode(word uint16) Op {
	switch word >> 12 {
	case 0x0:
		switch word & 0xf {
		case 0x0:
			return OpCls
		case 0xE:
			return OpRet
		}
		return OpSys
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeImm
	case 0x4:
		return OpSneImm
	case 0x5:
		return OpSeReg
	case 0x6:
		return OpLdImm
	case 0x7:
		return OpAddImm
	case 0x8:
		return table8[word&0xf]
	case 0x9:
		return OpSneReg
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpV0
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch word & 0xf {
		case 0xE:
			return OpSkp
		case 0x1:
			return OpSknp
		}
	case 0xF:
		return tableF[word&0xff]
	}
	return OpInvalid
}

func bits(v, at, len uint16) uint16 {
	return (v >> at) & ((1 << len) - 1)
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) execute(op Op) {
	// xxxxXXXXYYYYNNNN
	x := bits(m.opcode, 8, 4)
	y := bits(m.opcode, 4, 4)
	n := bits(m.opcode, 0, 4)
	nn := byte(m.opcode)
	nnn := bits(m.opcode, 0, 12)

	switch op {
	case OpSys:
		// Machine-code routines are not emulated.
	case OpCls:
		m.display.clear()
	case OpRet:
		if m.canPop() {
			m.pc = m.pop()
		}
	case OpJp:
		m.pc = nnn
	case OpCall:
		if m.canPush() {
			m.push(m.pc)
			m.pc = nnn
		}
	case OpSeImm:
		if m.regs[x] == nn {
			m.pc += 2
		}
	case OpSneImm:
		if m.regs[x] != nn {
			m.pc += 2
		}
	case OpSeReg:
		if m.regs[x] == m.regs[y] {
			m.pc += 2
		}
	case OpLdImm:
		m.regs[x] = nn
	case OpAddImm:
		m.regs[x] += nn // VF untouched.
	case OpLdReg:
		m.regs[x] = m.regs[y]

	// The bitwise ops clear VF as a side effect.
	case OpOr:
		m.regs[x] |= m.regs[y]
		m.regs[0xf] = 0
	case OpAnd:
		m.regs[x] &= m.regs[y]
		m.regs[0xf] = 0
	case OpXor:
		m.regs[x] ^= m.regs[y]
		m.regs[0xf] = 0

	// Flags are written after the result, so VF as destination ends up
	// holding the flag.
	case OpAddReg:
		sum := uint16(m.regs[x]) + uint16(m.regs[y])
		m.regs[x] = byte(sum)
		m.regs[0xf] = b2u(sum > 0xff)
	case OpSub:
		noBorrow := m.regs[x] >= m.regs[y]
		m.regs[x] -= m.regs[y]
		m.regs[0xf] = b2u(noBorrow)
	case OpShr:
		out := m.regs[x] & 1
		m.regs[x] >>= 1
		m.regs[0xf] = out
	case OpSubn:
		noBorrow := m.regs[y] >= m.regs[x]
		m.regs[x] = m.regs[y] - m.regs[x]
		m.regs[0xf] = b2u(noBorrow)
	case OpShl:
		out := m.regs[x] >> 7
		m.regs[x] <<= 1
		m.regs[0xf] = out

	case OpSneReg:
		if m.regs[x] != m.regs[y] {
			m.pc += 2
		}
	case OpLdI:
		m.index = nnn
	case OpJpV0:
		m.pc = nnn + uint16(m.regs[0])
	case OpRnd:
		m.regs[x] = byte(m.rng.Intn(256)) & nn
	case OpDrw:
		m.draw(m.regs[x], m.regs[y], n)
	case OpSkp:
		if m.keypad.Held[m.regs[x]&(KeyCount-1)] {
			m.pc += 2
		}
	case OpSknp:
		if !m.keypad.Held[m.regs[x]&(KeyCount-1)] {
			m.pc += 2
		}
	case OpLdVxDt:
		m.regs[x] = m.dt
	case OpLdVxK:
		m.waitKey(byte(x))
	case OpLdDtVx:
		m.dt = m.regs[x]
	case OpLdStVx:
		m.st = m.regs[x]
	case OpAddI:
		m.index += uint16(m.regs[x])
	case OpLdF:
		m.index = FontStart + GlyphSize*uint16(m.regs[x])
	case OpLdB:
		if m.span(m.index, 3) {
			v := m.regs[x]
			m.write(m.index, v/100)
			m.write(m.index+1, v/10%10)
			m.write(m.index+2, v%10)
		}
	case OpStore:
		if m.span(m.index, int(x)+1) {
			for i := uint16(0); i <= x; i++ {
				m.write(m.index+i, m.regs[i])
			}
		}
	case OpLoad:
		if m.span(m.index, int(x)+1) {
			for i := uint16(0); i <= x; i++ {
				m.regs[i] = m.read(m.index + i)
			}
		}
	default:
		m.logger.Debug("Invalid opcode skipped", log.Hex("pc", m.pc-2), log.Hex("opcode", m.opcode))
	}
}

// draw XORs a height-row sprite from memory at I onto the display. Both the
// start position and each pixel wrap around the screen edges. VF reports
// whether any lit pixel was turned off.
func (m *Machine) draw(vx, vy byte, height uint16) {
	if !m.span(m.index, int(height)) {
		return
	}

	x0 := uint16(vx) % Width
	y0 := uint16(vy) % Height
	var collision byte

	for row := uint16(0); row < height; row++ {
		sprite := m.read(m.index + row)
		y := (y0 + row) % Height
		for col := uint16(0); col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			x := (x0 + col) % Width
			pixel := &m.display[y*Width+x]
			if *pixel == PixelOn {
				collision = 1
			}
			*pixel ^= PixelOn
		}
	}
	m.regs[0xf] = collision
}

// waitKey implements FX0A. A key already showing a press edge completes the
// instruction at once; otherwise the machine suspends fetching until a full
// press and release is seen.
func (m *Machine) waitKey(reg byte) {
	if key, ok := m.keypad.firstPressed(); ok {
		m.regs[reg] = key
		return
	}
	m.wait = waitLatch{state: AwaitingPress, reg: reg}
	m.logger.Debug("Key wait", log.Hex("register", reg))
}
