package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

func init() {
	// SDL must be driven from the main thread.
	runtime.LockOSThread()
}

// config collects the command line settings handed to the devices.
type config struct {
	devices     string
	dumpHW      bool
	cpuHz       int
	timerHz     int
	scale       int
	fg          string
	bg          string
	seed        int64
	strict      bool
	paused      bool
	console     bool
	script      string
	disassemble bool
	font        string
	tone        float64
	volume      float64
	debugLog    bool
	quiet       bool
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: %s [options] <ROM file>\n", fs.Name())
	fs.PrintDefaults()
}

func dumpDeviceList() {
	for _, name := range deviceNames() {
		fmt.Printf("%-20s %s\n", name, deviceDescriptions[name])
	}
}

func parseFlags(args []string) (*config, *flag.FlagSet, error) {
	cfg := new(config)
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.StringVar(&cfg.devices, "hw", "display,keyboard,beeper",
		"List of hardware devices. See -dump-hw for a list of devices.")
	fs.BoolVar(&cfg.dumpHW, "dump-hw", false, "Dump a list of hardware devices and exit.")
	fs.IntVar(&cfg.cpuHz, "cpu-hz", 700, "Instructions executed per second.")
	fs.IntVar(&cfg.timerHz, "timer-hz", 60, "Delay and sound timer rate, also the frame rate.")
	fs.IntVar(&cfg.scale, "scale", 12, "Window pixels per CHIP-8 pixel.")
	fs.StringVar(&cfg.fg, "fg", "white", "Colour name for lit pixels.")
	fs.StringVar(&cfg.bg, "bg", "black", "Colour name for unlit pixels.")
	fs.Int64Var(&cfg.seed, "seed", 0, "Random seed for RND. 0 picks one from the clock.")
	fs.BoolVar(&cfg.strict, "strict", false, "Halt on stack or memory overruns instead of wrapping.")
	fs.BoolVar(&cfg.paused, "paused", false, "Start with the debugger paused.")
	fs.BoolVar(&cfg.console, "console", false, "Open the debug console on stdin whenever paused.")
	fs.StringVar(&cfg.script, "script", "", "Script file to run.")
	fs.BoolVar(&cfg.disassemble, "disassemble", false, "Disassemble the ROM to stdout and exit.")
	fs.StringVar(&cfg.font, "font", "", "TrueType font for the debug overlay (F1). Empty disables it.")
	fs.Float64Var(&cfg.tone, "tone", 440, "Beeper frequency in Hz.")
	fs.Float64Var(&cfg.volume, "volume", 0.2, "Beeper volume, 0 to 1.")
	fs.BoolVar(&cfg.debugLog, "debug-log", false, "Enable debug logging.")
	fs.BoolVar(&cfg.quiet, "q", false, "Only log errors.")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if cfg.scale <= 0 {
		return nil, fs, errors.Errorf("invalid scale %d", cfg.scale)
	}
	if cfg.volume < 0 || cfg.volume > 1 {
		return nil, fs, errors.Errorf("volume %g out of range", cfg.volume)
	}
	return cfg, fs, nil
}

// createLogger creates a logger with appropriate settings.
func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func main() {
	cfg, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.dumpHW {
		dumpDeviceList()
		return
	}

	romFile := fs.Arg(0)
	if romFile == "" {
		fmt.Printf("Missing required ROM file name!\n")
		usage(fs)
		os.Exit(1)
	}

	logger := createLogger(cfg.debugLog, cfg.quiet)
	if err := emulate(cfg, romFile, logger); err != nil {
		logger.Fatal("Emulation failed", log.Err(err))
	}
}

func emulate(cfg *config, romFile string, logger *log.Logger) error {
	m := chip8.New(chip8.Options{Seed: cfg.seed, Strict: cfg.strict, Logger: logger})
	if err := m.LoadROMFile(romFile); err != nil {
		return err
	}

	if cfg.disassemble {
		snap := m.Snapshot()
		chip8.DisassembleROM(os.Stdout, snap.Memory[:])
		return nil
	}

	clock, err := common.NewClock(cfg.cpuHz, cfg.timerHz)
	if err != nil {
		return err
	}
	h := common.NewHost(m, common.NewDebugger(cfg.paused), clock, logger)
	defer h.Cleanup()

	common.InputReader = bufio.NewReader(os.Stdin)

	for _, name := range strings.Split(cfg.devices, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		dt, ok := deviceTypes[name]
		if !ok {
			dumpDeviceList()
			return errors.Errorf("unknown device: %s", name)
		}
		if name == "term" && cfg.console {
			return errors.New("the term device and -console both need stdin")
		}

		logger.Info("Loading device", log.String("device", name))
		d, err := dt(cfg, logger)
		if err != nil {
			return errors.Wrapf(err, "device %s", name)
		}
		h.AddDevice(d)
	}

	if cfg.script != "" {
		err := RunScript(h, cfg.script)
		if errors.Is(err, common.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	return run(h, cfg.console)
}

// run drives the host at the timer rate until a device or the console asks
// to quit.
func run(h *common.Host, console bool) error {
	ticker := time.NewTicker(h.Clock.FramePeriod())
	defer ticker.Stop()

	last := time.Now()
	for {
		if console && h.Debugger.Mode() == common.Paused {
			if err := debugConsole(h); err != nil {
				return quitOK(err)
			}
			// Time spent at the prompt is not replayed.
			last = time.Now()
		}

		now := <-ticker.C
		err := h.Frame(now.Sub(last))
		last = now
		if err != nil {
			return quitOK(err)
		}
	}
}

func quitOK(err error) error {
	if errors.Is(err, common.ErrQuit) {
		return nil
	}
	return err
}
