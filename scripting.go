package main

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
)

type command func(h *common.Host, args []string) error

var cmds = map[string]command{
	"press":   cmdPress,
	"release": cmdRelease,
	"tap":     cmdTap,
	"run":     cmdRun,
	"step":    cmdStep,
	"tick":    cmdTick,
	"reset":   cmdReset,
	"load":    cmdLoad,
	"expect":  cmdExpect,
	"dump":    cmdDump,
	"quit":    cmdQuit,
}

var errArgs = errors.New("bad arguments")

func parseKey(args []string) (byte, error) {
	if len(args) != 1 {
		return 0, errors.Wrap(errArgs, "expected one hex key")
	}
	k, err := strconv.ParseUint(args[0], 16, 8)
	if err != nil || k >= chip8.KeyCount {
		return 0, errors.Wrapf(errArgs, "no such key %q", args[0])
	}
	return byte(k), nil
}

func parseCount(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.Wrap(errArgs, "expected a count")
	}
	n, err := strconv.ParseUint(args[0], 10, 31)
	if err != nil {
		return 0, errors.Wrapf(errArgs, "bad count %q", args[0])
	}
	return int(n), nil
}

func cmdPress(h *common.Host, args []string) error {
	k, err := parseKey(args)
	if err != nil {
		return err
	}
	h.Press(k)
	return nil
}

func cmdRelease(h *common.Host, args []string) error {
	k, err := parseKey(args)
	if err != nil {
		return err
	}
	h.Release(k)
	return nil
}

func cmdTap(h *common.Host, args []string) error {
	k, err := parseKey(args)
	if err != nil {
		return err
	}
	h.Tap(k)
	return nil
}

// run N advances N frames of the host loop, devices included.
func cmdRun(h *common.Host, args []string) error {
	n, err := parseCount(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := h.Frame(h.Clock.FramePeriod()); err != nil {
			return err
		}
	}
	return nil
}

func cmdStep(h *common.Host, args []string) error {
	n, err := parseCount(args)
	if err != nil {
		return err
	}
	h.ApplyInput()
	for i := 0; i < n; i++ {
		h.StepInstruction()
	}
	return nil
}

func cmdTick(h *common.Host, args []string) error {
	n, err := parseCount(args)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		h.Machine.TickTimers()
	}
	return nil
}

func cmdReset(h *common.Host, args []string) error {
	h.Reset()
	return nil
}

func cmdLoad(h *common.Host, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errArgs, "'load' requires a filename")
	}
	return h.Machine.LoadROMFile(args[0])
}

// expect REG VALUE fails the script unless the register holds VALUE.
// VALUE takes Go integer syntax, so 0x2a and 42 are equivalent.
func cmdExpect(h *common.Host, args []string) error {
	if len(args) != 2 {
		return errors.Wrap(errArgs, "'expect' requires a register and a value")
	}
	want, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return errors.Wrapf(errArgs, "bad value %q", args[1])
	}

	snap := h.Machine.Snapshot()
	got, name, _, ok := snap.RegByName(args[0])
	if !ok {
		return errors.Wrapf(errArgs, "unknown register %q", args[0])
	}
	if uint64(got) != want {
		return errors.Errorf("expected %s = %#x, got %#x", name, want, got)
	}
	return nil
}

func cmdDump(h *common.Host, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errArgs, "'dump' requires a filename")
	}
	snap := h.Machine.Snapshot()
	return errors.Wrap(os.WriteFile(args[0], snap.Memory[:], 0o644), "dump")
}

func cmdQuit(h *common.Host, args []string) error {
	return common.ErrQuit
}

// RunScript runs each line of file as a command. Blank lines and lines
// starting with # are skipped.
func RunScript(h *common.Host, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "opening script")
	}
	defer f.Close()
	return runScript(h, f, file)
}

func runScript(h *common.Host, r io.Reader, name string) error {
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		args := strings.Fields(scanner.Text())
		if len(args) == 0 || strings.HasPrefix(args[0], "#") {
			continue
		}

		cmd, ok := cmds[args[0]]
		if !ok {
			return errors.Errorf("%s:%d: unknown command '%s'", name, line, args[0])
		}
		if err := cmd(h, args[1:]); err != nil {
			return errors.Wrapf(err, "%s:%d", name, line)
		}
	}
	return errors.Wrap(scanner.Err(), name)
}
