package main

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
)

// parseColour accepts an SVG colour name ("white", "darkslategray") or a
// #rrggbb triple and returns it as opaque ARGB.
func parseColour(s string) (uint32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		rgb, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return 0, errors.Wrapf(err, "bad colour %q", s)
		}
		return 0xff000000 | uint32(rgb), nil
	}

	c, ok := colornames.Map[s]
	if !ok {
		return 0, errors.Errorf("unknown colour %q", s)
	}
	return 0xff000000 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B), nil
}

// fillFrame writes the display into an ARGB8888 pixel buffer with the given
// row pitch in bytes.
func fillFrame(pixels []byte, pitch int, d *chip8.Display, fg, bg uint32) {
	for y := 0; y < chip8.Height; y++ {
		row := pixels[y*pitch:]
		for x := 0; x < chip8.Width; x++ {
			c := bg
			if d[y*chip8.Width+x] == chip8.PixelOn {
				c = fg
			}
			binary.LittleEndian.PutUint32(row[x*4:], c)
		}
	}
}

// overlayLines formats the debug overlay text.
func overlayLines(snap *chip8.Snapshot, mode common.Mode) []string {
	lines := []string{
		fmt.Sprintf("PC %03X  OP %04X  I %03X", snap.PC, snap.Opcode, snap.I),
		fmt.Sprintf("DT %02X  ST %02X  SP %X  %s", snap.DT, snap.ST, snap.SP, mode),
	}
	for r := 0; r < chip8.RegisterCount; r += 4 {
		lines = append(lines, fmt.Sprintf("V%X %02X  V%X %02X  V%X %02X  V%X %02X",
			r, snap.Registers[r], r+1, snap.Registers[r+1],
			r+2, snap.Registers[r+2], r+3, snap.Registers[r+3]))
	}
	return lines
}
