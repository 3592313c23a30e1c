//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package main

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// enterRawTerm switches fd to non-blocking raw input and returns the state
// to restore.
func enterRawTerm(fd int) (*unix.Termios, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, errors.Wrap(err, "reading terminal state")
	}

	restore := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN | unix.ISIG
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate); err != nil {
		return nil, errors.Wrap(err, "entering raw mode")
	}
	return &restore, nil
}

func exitRawTerm(fd int, restore *unix.Termios) error {
	return errors.Wrap(unix.IoctlSetTermios(fd, ioctlSetTermios, restore), "restoring terminal")
}
