package chip8

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		word uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x0123, "SYS $123"},
		{0x034E, "RET"},
		{0xE1AE, "SKP V1"},
		{0x1ABC, "JP $ABC"},
		{0x2ABC, "CALL $ABC"},
		{0x3A12, "SE VA, $12"},
		{0x4A12, "SNE VA, $12"},
		{0x5AB0, "SE VA, VB"},
		{0x6A12, "LD VA, $12"},
		{0x7A12, "ADD VA, $12"},
		{0x8AB0, "LD VA, VB"},
		{0x8AB4, "ADD VA, VB"},
		{0x8AB7, "SUBN VA, VB"},
		{0x8AB6, "SHR VA"},
		{0x8ABE, "SHL VA"},
		{0x9AB0, "SNE VA, VB"},
		{0xA123, "LD I, $123"},
		{0xB123, "JP V0, $123"},
		{0xCA0F, "RND VA, $0F"},
		{0xDAB5, "DRW VA, VB, 5"},
		{0xEA9E, "SKP VA"},
		{0xEAA1, "SKNP VA"},
		{0xFA07, "LD VA, DT"},
		{0xFA0A, "LD VA, K"},
		{0xFA15, "LD DT, VA"},
		{0xFA18, "LD ST, VA"},
		{0xFA1E, "ADD I, VA"},
		{0xFA29, "LD F, VA"},
		{0xFA33, "LD B, VA"},
		{0xFA55, "LD [I], VA"},
		{0xFA65, "LD VA, [I]"},
		{0x8AB9, "DW $8AB9"},
		{0xFAFF, "DW $FAFF"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Disassemble(tt.word))
	}
}

func TestDisassembleROM(t *testing.T) {
	m := newTestMachine(t, 0x6A02, 0xA22A, 0xDAB6, 0x1206)

	var buf bytes.Buffer
	DisassembleROM(&buf, m.mem[:])

	want := "200: 6a02  LD VA, $02\n" +
		"202: a22a  LD I, $22A\n" +
		"204: dab6  DRW VA, VB, 6\n" +
		"206: 1206  JP $206\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
}

func TestDisassembleRangeStopsAtEnd(t *testing.T) {
	mem := []byte{0x00, 0xE0, 0x00}
	var buf bytes.Buffer
	DisassembleRange(&buf, mem, 0, 10)
	assert.Equal(t, "000: 00e0  CLS\n", buf.String())
}
