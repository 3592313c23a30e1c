//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package main

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"
)

func init() {
	deviceTypes["term"] = func(cfg *config, logger *log.Logger) (common.Device, error) { return NewTerm(logger) }
	deviceDescriptions["term"] = "Terminal renderer and raw-mode keypad, for use without SDL"
}

// Term draws the display with half-block characters, two pixel rows per
// line, and reads the keypad from raw stdin. Terminals report no key-up, so
// each key read is released again on the following poll. Space pauses and
// resumes, Esc quits.
type Term struct {
	fd      int
	restore *unix.Termios
	out     *bufio.Writer
	in      []byte
	held    []byte

	last  chip8.Display
	drawn bool

	logger *log.Logger
}

func NewTerm(logger *log.Logger) (*Term, error) {
	fd := int(os.Stdin.Fd())
	restore, err := enterRawTerm(fd)
	if err != nil {
		return nil, err
	}

	t := &Term{
		fd:      fd,
		restore: restore,
		out:     bufio.NewWriter(os.Stdout),
		in:      make([]byte, 64),
		logger:  logger,
	}
	t.out.WriteString("\x1b[2J\x1b[?25l")
	if err := t.out.Flush(); err != nil {
		t.Cleanup()
		return nil, errors.Wrap(err, "writing terminal")
	}
	return t, nil
}

func (t *Term) Poll(h *common.Host) error {
	for _, k := range t.held {
		h.Release(k)
	}
	t.held = t.held[:0]

	n, err := unix.Read(t.fd, t.in)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil
		}
		return errors.Wrap(err, "reading terminal")
	}
	return t.handleInput(h, t.in[:n])
}

func (t *Term) handleInput(h *common.Host, input []byte) error {
	for i, b := range input {
		switch b {
		case 0x1b:
			// A lone Esc quits; anything after it is an escape sequence
			// (arrows, function keys) and is dropped.
			if i == len(input)-1 {
				return common.ErrQuit
			}
			return nil
		case 0x03: // Ctrl-C, since raw mode turns off signals.
			return common.ErrQuit
		case ' ':
			h.Debugger.FlipMode()
			continue
		}

		if k, ok := keyFor(unicode.ToLower(rune(b))); ok {
			h.Press(k)
			t.held = append(t.held, k)
		}
	}
	return nil
}

func (t *Term) Present(h *common.Host) error {
	d := h.Machine.Display()
	if t.drawn && *d == t.last {
		return nil
	}
	t.last = *d
	t.drawn = true

	t.out.WriteString(renderHalfBlocks(d))
	return errors.Wrap(t.out.Flush(), "writing terminal")
}

func (t *Term) Cleanup() {
	t.out.WriteString("\x1b[0m\x1b[?25h\r\n")
	t.out.Flush()
	if err := exitRawTerm(t.fd, t.restore); err != nil {
		t.logger.Error("Restoring terminal failed", log.Err(err))
	}
}

var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// renderHalfBlocks homes the cursor and draws the display in Height/2 lines.
func renderHalfBlocks(d *chip8.Display) string {
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			i := 0
			if d.Pixel(x, y) {
				i |= 1
			}
			if d.Pixel(x, y+1) {
				i |= 2
			}
			sb.WriteString(halfBlocks[i])
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
