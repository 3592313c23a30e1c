package chip8

import (
	"fmt"
	"io"
)

// Disassembler. Instructions are always one word, so each line is:
// ADDR: WORD  disassembly...

// Disassemble renders one instruction word in conventional CHIP-8 assembly.
// Words that decode to nothing are shown as data.
func Disassemble(word uint16) string {
	x := bits(word, 8, 4)
	y := bits(word, 4, 4)
	n := bits(word, 0, 4)
	nn := bits(word, 0, 8)
	nnn := bits(word, 0, 12)

	switch op := Decode(word); op {
	case OpSys:
		return fmt.Sprintf("SYS $%03X", nnn)
	case OpCls:
		return "CLS"
	case OpRet:
		return "RET"
	case OpJp:
		return fmt.Sprintf("JP $%03X", nnn)
	case OpCall:
		return fmt.Sprintf("CALL $%03X", nnn)
	case OpSeImm:
		return fmt.Sprintf("SE V%X, $%02X", x, nn)
	case OpSneImm:
		return fmt.Sprintf("SNE V%X, $%02X", x, nn)
	case OpLdImm:
		return fmt.Sprintf("LD V%X, $%02X", x, nn)
	case OpAddImm:
		return fmt.Sprintf("ADD V%X, $%02X", x, nn)
	case OpRnd:
		return fmt.Sprintf("RND V%X, $%02X", x, nn)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpSubn:
		return fmt.Sprintf("%s V%X, V%X", regRegNames[op], x, y)
	case OpShr:
		return fmt.Sprintf("SHR V%X", x)
	case OpShl:
		return fmt.Sprintf("SHL V%X", x)
	case OpLdI:
		return fmt.Sprintf("LD I, $%03X", nnn)
	case OpJpV0:
		return fmt.Sprintf("JP V0, $%03X", nnn)
	case OpDrw:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, n)
	case OpSkp:
		return fmt.Sprintf("SKP V%X", x)
	case OpSknp:
		return fmt.Sprintf("SKNP V%X", x)
	case OpLdVxDt:
		return fmt.Sprintf("LD V%X, DT", x)
	case OpLdVxK:
		return fmt.Sprintf("LD V%X, K", x)
	case OpLdDtVx:
		return fmt.Sprintf("LD DT, V%X", x)
	case OpLdStVx:
		return fmt.Sprintf("LD ST, V%X", x)
	case OpAddI:
		return fmt.Sprintf("ADD I, V%X", x)
	case OpLdF:
		return fmt.Sprintf("LD F, V%X", x)
	case OpLdB:
		return fmt.Sprintf("LD B, V%X", x)
	case OpStore:
		return fmt.Sprintf("LD [I], V%X", x)
	case OpLoad:
		return fmt.Sprintf("LD V%X, [I]", x)
	}
	return fmt.Sprintf("DW $%04X", word)
}

var regRegNames = map[Op]string{
	OpSeReg:  "SE",
	OpSneReg: "SNE",
	OpLdReg:  "LD",
	OpOr:     "OR",
	OpAnd:    "AND",
	OpXor:    "XOR",
	OpAddReg: "ADD",
	OpSub:    "SUB",
	OpSubn:   "SUBN",
}

// DisassembleRange writes one line per instruction word in [from, to).
func DisassembleRange(w io.Writer, mem []byte, from, to int) {
	for at := from; at+1 < len(mem) && at < to; at += 2 {
		word := uint16(mem[at])<<8 | uint16(mem[at+1])
		fmt.Fprintf(w, "%03x: %04x  %s\n", at, word, Disassemble(word))
	}
}

// DisassembleROM lists the program area of mem up to its last nonzero byte.
func DisassembleROM(w io.Writer, mem []byte) {
	// First find the highest nonzero byte.
	top := ProgramBase
	for i := len(mem) - 1; i >= ProgramBase; i-- {
		if mem[i] != 0 {
			top = i + 1
			break
		}
	}
	DisassembleRange(w, mem, ProgramBase, top)
}
