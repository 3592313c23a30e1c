package main

import (
	"sort"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/retroenv/retrogolib/log"
)

type deviceType func(cfg *config, logger *log.Logger) (common.Device, error)

var deviceTypes = map[string]deviceType{
	"display":  func(cfg *config, logger *log.Logger) (common.Device, error) { return NewDisplay(cfg, logger) },
	"keyboard": func(cfg *config, logger *log.Logger) (common.Device, error) { return NewKeyboard(logger) },
	"beeper":   func(cfg *config, logger *log.Logger) (common.Device, error) { return NewBeeper(cfg, logger) },
}

var deviceDescriptions = map[string]string{
	"display":  "SDL window, 64x32 scaled, with an F1 debug overlay",
	"keyboard": "SDL keyboard mapped to the hex keypad, F-keys drive the debugger",
	"beeper":   "SDL square-wave tone while the sound timer runs",
}

func deviceNames() []string {
	names := make([]string, 0, len(deviceDescriptions))
	for name := range deviceDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
