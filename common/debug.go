package common

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bshepherdson/tc-chip8/chip8"
)

// DebugCommand captures a self-describing debug command.
type DebugCommand interface {
	Describe() string
	Run(h *Host, args []string) error
}

type debugBlob struct {
	desc string
	f    func(*Host, []string) error
}

// DebugCommands is a map of command strings to command objects.
var DebugCommands = map[string]DebugCommand{
	"r": newCommand("Dump one or all (r)egisters ('r' vs. 'r v3 i')", cmdRegs),
	"q": newCommand("(Q)uit the emulator", func(*Host, []string) error { return ErrQuit }),

	"c": newCommand("(C)ontinue execution", func(h *Host, args []string) error {
		if h.Debugger.Mode() == Paused {
			h.Debugger.FlipMode()
		}
		return nil
	}),

	"s": newCommand("(S)tep forward, run next instruction", func(h *Host, args []string) error {
		h.Debugger.Pause()
		h.ApplyInput()
		h.StepInstruction()
		snap := h.Machine.Snapshot()
		chip8.DisassembleRange(h.Out, snap.Memory[:], int(snap.PC), int(snap.PC)+2)
		return nil
	}),

	"f": newCommand("Run one (f)rame, then pause again", func(h *Host, args []string) error {
		h.Debugger.StepFrame()
		return nil
	}),

	"b": newCommand("Set a new (b)reakpoint at the given (hex) location",
		singleHexArg("No breakpoint location specified (needs hex number)",
			"Error parsing the location", func(h *Host, loc uint16) error {
				h.Debugger.AddBreakpoint(loc)
				fmt.Fprintf(h.Out, "Breakpoint set at PC = %03x\n", loc)
				return nil
			})),
	"d": newCommand("(D)elete the breakpoint at the given (hex) location",
		singleHexArg("No breakpoint location specified (needs hex number)",
			"Error parsing the location", func(h *Host, loc uint16) error {
				if h.Debugger.RemoveBreakpoint(loc) {
					fmt.Fprintf(h.Out, "Breakpoint removed at PC = %03x\n", loc)
				} else {
					fmt.Fprintf(h.Out, "No breakpoint at PC = %03x\n", loc)
				}
				return nil
			})),
	"m": newCommand("Print a value from (m)emory",
		singleHexArg("No memory location specified", "Error parsing location",
			func(h *Host, loc uint16) error {
				snap := h.Machine.Snapshot()
				x := snap.Memory[loc&(chip8.MemorySize-1)]
				fmt.Fprintf(h.Out, "[%03x] = %02x (%d)\n", loc, x, x)
				return nil
			})),

	"i": newCommand("Disassemble the (i)nstructions at the given location, or at PC",
		func(h *Host, args []string) error {
			snap := h.Machine.Snapshot()
			if len(args) <= 1 {
				args = []string{"i", fmt.Sprintf("%x", snap.PC)}
			}
			return singleHexArg("", "Error parsing location", func(h *Host, loc uint16) error {
				chip8.DisassembleRange(h.Out, snap.Memory[:], int(loc), int(loc)+16*2)
				return nil
			})(h, args)
		}),

	"k": newCommand("Tap a (k)ey on the keypad for one frame (hex 0-f)",
		singleHexArg("No key specified", "Error parsing key", func(h *Host, key uint16) error {
			if key >= chip8.KeyCount {
				fmt.Fprintf(h.Out, "No such key: %x\n", key)
				return nil
			}
			h.Tap(byte(key))
			fmt.Fprintf(h.Out, "Tapped key %X\n", key)
			return nil
		})),

	"db": newCommand("(D)ump memory to the given file in (b)inary",
		func(h *Host, args []string) error {
			if len(args) < 2 {
				fmt.Fprintln(h.Out, "No filename given")
				return nil
			}

			snap := h.Machine.Snapshot()
			if err := os.WriteFile(args[1], snap.Memory[:], 0o644); err != nil {
				fmt.Fprintf(h.Out, "Could not write file: %v\n", err)
			}
			return nil
		}),
}

// Command runs one line of console input.
func (h *Host) Command(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}

	if cmd, ok := DebugCommands[args[0]]; ok {
		return cmd.Run(h, args)
	}

	fmt.Fprintf(h.Out, "Unknown command '%s'\n", args[0])
	fmt.Fprintf(h.Out, "Commands:\n")
	keys := make([]string, 0, len(DebugCommands))
	for key := range DebugCommands {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(h.Out, "%s\t%s\n", key, DebugCommands[key].Describe())
	}
	return nil
}

// Prompt writes the console prompt.
func (h *Host) Prompt() {
	fmt.Fprintf(h.Out, "%03x debug> ", h.Machine.PC())
}

func newCommand(desc string, f func(h *Host, args []string) error) DebugCommand {
	d := new(debugBlob)
	d.desc = desc
	d.f = f
	return d
}

func (dbg *debugBlob) Describe() string {
	return dbg.desc
}

func (dbg *debugBlob) Run(h *Host, args []string) error {
	return dbg.f(h, args)
}

// Indexed by register width in bits. Wide registers also show the byte they
// point at.
var regLines = map[int]string{
	8:  "%2s      %02x (%d)\n",
	16: "%2s    %04x (%d)\t[%s]  %02x (%d)\n",
}

func showReg(h *Host, snap *chip8.Snapshot, name string, val uint16, width int) {
	name = strings.ToUpper(name)
	if width == 8 {
		fmt.Fprintf(h.Out, regLines[8], name, val, val)
		return
	}
	memval := snap.Memory[val&(chip8.MemorySize-1)]
	fmt.Fprintf(h.Out, regLines[16], name, val, val, name, memval, memval)
}

func cmdRegs(h *Host, args []string) error {
	snap := h.Machine.Snapshot()
	if len(args) > 1 {
		for _, r := range args[1:] {
			value, name, width, ok := snap.RegByName(r)
			if ok {
				showReg(h, &snap, name, value, width)
			} else {
				fmt.Fprintf(h.Out, "%% Unknown register: %s\n", r)
			}
		}
	} else {
		for _, r := range chip8.Registers() {
			value, name, width, _ := snap.RegByName(r)
			showReg(h, &snap, name, value, width)
		}
	}
	return nil
}

func singleHexArg(notSpecifiedMsg, parseErrorMsg string,
	cmd func(h *Host, arg uint16) error) func(*Host, []string) error {
	return func(h *Host, args []string) error {
		if len(args) <= 1 {
			fmt.Fprintln(h.Out, notSpecifiedMsg)
			return nil
		}

		var x uint16
		_, err := fmt.Sscanf(args[1], "%x", &x)
		if err != nil {
			fmt.Fprintf(h.Out, parseErrorMsg+": %v\n", err)
			return nil
		}

		return cmd(h, x)
	}
}
