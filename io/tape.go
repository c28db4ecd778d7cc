package io

import (
	"io"
)

// Tape provides sequential output to an io.Writer, counting the bytes
// written. A Tape with no Output discards what it is sent.
type Tape struct {
	Output io.Writer

	Written int // Bytes written since the last rewind.
}

var _ Channel = (*Tape)(nil)

// Rewind resets the written byte count. The output itself cannot be rewound.
func (tc *Tape) Rewind() {
	tc.Written = 0
}

// Write forwards data to the output.
func (tc *Tape) Write(data []byte) (n int, err error) {
	if tc.Output == nil {
		n = len(data)
	} else {
		n, err = tc.Output.Write(data)
	}

	tc.Written += n

	return
}
