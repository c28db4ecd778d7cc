// Package io provides output channels for the lemurs emulator.
// A machine's only output is a byte stream; channels decide where it goes:
// a counting pass-through to any writer (Tape), a fixed capacity capture
// (Buffer), or the standard input of an external process (Pipe).
package io

import (
	"io"
)

// Channel defines the interface for all output channels.
type Channel interface {
	io.Writer
	// Rewind resets the channel to its initial state.
	Rewind()
}
