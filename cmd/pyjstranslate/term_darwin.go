//go:build darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// isTerminal reports whether file is attached to a TTY, used to decide
// whether diagnostic output gets ANSI color, grounded on esbuild's
// internal/logger.GetTerminalInfo, which makes the same call for its own
// CLI output.
func isTerminal(file *os.File) bool {
	_, err := unix.IoctlGetTermios(int(file.Fd()), unix.TIOCGETA)
	return err == nil
}
