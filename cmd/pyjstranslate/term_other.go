//go:build !linux && !darwin

package main

import "os"

// isTerminal always reports false on platforms with no ioctl-based TTY
// check wired up (see term_darwin.go/term_linux.go).
func isTerminal(file *os.File) bool {
	return false
}
