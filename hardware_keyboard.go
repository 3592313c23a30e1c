package main

import (
	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

// Keyboard feeds SDL key events to the keypad. The function keys drive the
// debugger:
//
//	F1   toggle the overlay
//	F2   pause / resume
//	F3   step one instruction
//	F4   step one frame
//	Esc  quit
type Keyboard struct {
	logger *log.Logger
}

func NewKeyboard(logger *log.Logger) (*Keyboard, error) {
	if err := sdl.InitSubSystem(sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "failed to initialize events")
	}
	return &Keyboard{logger: logger}, nil
}

func (k *Keyboard) Poll(h *common.Host) error {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			return common.ErrQuit

		case *sdl.KeyboardEvent:
			if t.Repeat != 0 {
				continue
			}
			down := t.Type == sdl.KEYDOWN

			if key, ok := keyFor(rune(t.Keysym.Sym)); ok {
				if down {
					h.Press(key)
				} else {
					h.Release(key)
				}
				continue
			}
			if down {
				if err := k.fKey(h, t.Keysym.Sym); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (k *Keyboard) fKey(h *common.Host, sym sdl.Keycode) error {
	switch sym {
	case sdl.K_ESCAPE:
		return common.ErrQuit
	case sdl.K_F1:
		h.Debugger.ToggleOverlay()
	case sdl.K_F2:
		h.Debugger.FlipMode()
		k.logger.Info("Debugger", log.String("mode", h.Debugger.Mode().String()))
	case sdl.K_F3:
		h.Debugger.StepCycle()
	case sdl.K_F4:
		h.Debugger.StepFrame()
	}
	return nil
}

func (k *Keyboard) Present(h *common.Host) error {
	return nil
}

func (k *Keyboard) Cleanup() {
	sdl.QuitSubSystem(sdl.INIT_EVENTS)
}
