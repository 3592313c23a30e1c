package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bshepherdson/tc-chip8/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 100 * time.Millisecond // 70 steps, 6 ticks.

func newTestHost(t *testing.T, strict bool, rom ...byte) (*Host, *bytes.Buffer) {
	t.Helper()
	return newHostWithLogger(t, log.NewTestLogger(t), strict, rom...)
}

// newHostWithLogger is for tests that expect error records, which fail a
// test logger.
func newHostWithLogger(t *testing.T, logger *log.Logger, strict bool, rom ...byte) (*Host, *bytes.Buffer) {
	t.Helper()

	m := chip8.New(chip8.Options{Seed: 1, Strict: strict, Logger: logger})
	require.NoError(t, m.LoadROM(bytes.NewReader(rom)))
	clock, err := NewClock(700, 60)
	require.NoError(t, err)

	h := NewHost(m, NewDebugger(false), clock, logger)
	out := new(bytes.Buffer)
	h.Out = out
	return h, out
}

type recordingDevice struct {
	polls, presents []uint64
	pollErr         error
}

func (d *recordingDevice) Poll(h *Host) error {
	d.polls = append(d.polls, h.Steps)
	return d.pollErr
}

func (d *recordingDevice) Present(h *Host) error {
	d.presents = append(d.presents, h.Steps)
	return nil
}

func (d *recordingDevice) Cleanup() {}

var loop = []byte{
	0x70, 0x01, // ADD V0, 1
	0x12, 0x00, // JP $200
}

func TestHost_Frame(t *testing.T) {
	assert := assert.New(t)

	h, _ := newTestHost(t, false, loop...)
	dev := new(recordingDevice)
	h.AddDevice(dev)

	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(70), h.Steps)
	assert.Equal(uint64(6), h.Ticks)
	assert.Equal([]uint64{0}, dev.polls)
	assert.Equal([]uint64{70}, dev.presents)
	assert.Equal(byte(35), h.Machine.Snapshot().Registers[0])
}

func TestHost_DeviceQuit(t *testing.T) {
	h, _ := newTestHost(t, false, loop...)
	h.AddDevice(&recordingDevice{pollErr: ErrQuit})

	assert.ErrorIs(t, h.Frame(frame), ErrQuit)
	assert.Equal(t, uint64(0), h.Steps)
}

func TestHost_Paused(t *testing.T) {
	assert := assert.New(t)

	h, _ := newTestHost(t, false, loop...)
	h.Debugger.Pause()

	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(0), h.Steps)
	assert.Equal(uint64(0), h.Ticks)

	h.Debugger.StepCycle()
	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(1), h.Steps)
	assert.Equal(uint64(0), h.Ticks)

	h.Debugger.StepFrame()
	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(71), h.Steps)
	assert.Equal(uint64(6), h.Ticks)
	assert.Equal(Paused, h.Debugger.Mode())
}

func TestHost_Breakpoint(t *testing.T) {
	assert := assert.New(t)

	h, _ := newTestHost(t, false,
		0x60, 0x01, // LD V0, 1
		0x61, 0x02, // LD V1, 2
		0x12, 0x04, // JP $204
	)
	h.Debugger.AddBreakpoint(0x202)

	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(1), h.Steps)
	assert.Equal(uint16(0x202), h.Machine.PC())
	assert.Equal(Paused, h.Debugger.Mode())

	h.Debugger.FlipMode()
	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(71), h.Steps)
	assert.Equal(byte(2), h.Machine.Snapshot().Registers[1])
	assert.Equal(Running, h.Debugger.Mode())
}

func TestHost_TapCompletesKeyWait(t *testing.T) {
	assert := assert.New(t)

	h, _ := newTestHost(t, false,
		0xF0, 0x0A, // LD V0, K
		0x12, 0x02, // JP $202
	)
	h.Tap(5)
	require.NoError(t, h.Frame(frame))
	assert.Equal(byte(5), h.Machine.Snapshot().Registers[0])
	assert.True(h.Machine.Keypad().Held[5])

	require.NoError(t, h.Frame(frame))
	assert.False(h.Machine.Keypad().Held[5])
	assert.True(h.Machine.Keypad().Released[5])

	require.NoError(t, h.Frame(frame))
	assert.False(h.Machine.Keypad().Released[5])
}

func TestHost_PressReleaseKeyWait(t *testing.T) {
	assert := assert.New(t)

	h, _ := newTestHost(t, false,
		0xF3, 0x0A, // LD V3, K
		0x12, 0x02, // JP $202
	)
	require.NoError(t, h.Frame(frame))
	assert.Equal(chip8.AwaitingPress, h.Machine.WaitState())

	h.Press(7)
	require.NoError(t, h.Frame(frame))
	assert.Equal(chip8.AwaitingRelease, h.Machine.WaitState())
	assert.Equal(uint16(0x202), h.Machine.PC())

	h.Release(7)
	require.NoError(t, h.Frame(frame))
	assert.Equal(chip8.Normal, h.Machine.WaitState())
	assert.Equal(byte(7), h.Machine.Snapshot().Registers[3])
}

func TestHost_FaultPauses(t *testing.T) {
	assert := assert.New(t)

	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	h, _ := newHostWithLogger(t, log.NewWithConfig(cfg), true, 0x00, 0xEE) // RET with an empty stack.
	require.NoError(t, h.Frame(frame))
	assert.ErrorIs(h.Machine.Err(), chip8.ErrFault)
	assert.Equal(uint64(1), h.Steps)
	assert.Equal(Paused, h.Debugger.Mode())

	// The halt is reported once; further frames stay paused.
	require.NoError(t, h.Frame(frame))
	assert.Equal(uint64(1), h.Steps)

	h.Reset()
	assert.NoError(h.Machine.Err())
}

func TestHost_Commands(t *testing.T) {
	assert := assert.New(t)

	h, out := newTestHost(t, false,
		0x60, 0x2A, // LD V0, $2A
		0xA3, 0x00, // LD I, $300
		0x12, 0x04, // JP $204
	)

	require.NoError(t, h.Command("s"))
	assert.Equal("202: a300  LD I, $300\n", out.String())
	assert.Equal(Paused, h.Debugger.Mode())

	out.Reset()
	require.NoError(t, h.Command("s"))
	require.NoError(t, h.Command("r v0 i vz"))
	assert.Equal("204: 1204  JP $204\n"+
		"V0      2a (42)\n"+
		" I    0300 (768)\t[I]  00 (0)\n"+
		"% Unknown register: vz\n", out.String())

	out.Reset()
	require.NoError(t, h.Command("m 200"))
	assert.Equal("[200] = 60 (96)\n", out.String())

	out.Reset()
	require.NoError(t, h.Command("b 204"))
	require.NoError(t, h.Command("d 206"))
	assert.Equal("Breakpoint set at PC = 204\nNo breakpoint at PC = 206\n", out.String())
	assert.Equal([]uint16{0x204}, h.Debugger.Breakpoints())

	out.Reset()
	require.NoError(t, h.Command("i 200"))
	assert.Contains(out.String(), "200: 602a  LD V0, $2A\n")
	assert.Contains(out.String(), "21e: 0000  CLS\n")

	out.Reset()
	require.NoError(t, h.Command("bogus"))
	assert.Contains(out.String(), "Unknown command 'bogus'")
	assert.Contains(out.String(), "q\t(Q)uit the emulator")

	require.NoError(t, h.Command("c"))
	assert.Equal(Running, h.Debugger.Mode())

	assert.ErrorIs(h.Command("q"), ErrQuit)
	assert.NoError(h.Command("   "))
}

func TestHost_TapCommand(t *testing.T) {
	h, out := newTestHost(t, false, loop...)
	require.NoError(t, h.Command("k b"))
	require.NoError(t, h.Command("k 10"))
	assert.Equal(t, "Tapped key B\nNo such key: 10\n", out.String())

	require.NoError(t, h.Frame(frame))
	assert.True(t, h.Machine.Keypad().Held[0xB])
}

func TestHost_DumpCommand(t *testing.T) {
	h, _ := newTestHost(t, false, loop...)
	file := filepath.Join(t.TempDir(), "mem.bin")
	require.NoError(t, h.Command("db "+file))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Len(t, data, chip8.MemorySize)
	assert.Equal(t, loop, data[chip8.ProgramBase:chip8.ProgramBase+len(loop)])
}
