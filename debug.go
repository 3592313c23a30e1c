package main

import (
	"io"
	"strings"

	"github.com/bshepherdson/tc-chip8/common"
	"github.com/pkg/errors"
)

// debugConsole prompts for and runs one console command.
func debugConsole(h *common.Host) error {
	h.Prompt()
	in, err := common.InputReader.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(in) == "" {
		return common.ErrQuit
	}
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "reading console input")
	}
	return h.Command(in)
}
