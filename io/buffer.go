package io

import (
	"io"
)

const (
	// BUFFER_DEFAULT_CAPACITY is the default capacity in bytes for a new buffer.
	BUFFER_DEFAULT_CAPACITY = 65536
)

// Buffer captures output up to a fixed capacity.
type Buffer struct {
	Capacity int

	Data []byte
}

var _ Channel = (*Buffer)(nil)

// Rewind empties the buffer. Initializes the data buffer if not already
// allocated.
func (buf *Buffer) Rewind() {
	if buf.Data == nil {
		if buf.Capacity == 0 {
			buf.Capacity = BUFFER_DEFAULT_CAPACITY
		}
		buf.Data = make([]byte, 0, buf.Capacity)
	}

	buf.Data = buf.Data[:0]
}

// Full returns true once the buffer holds Capacity bytes.
func (buf *Buffer) Full() bool {
	return len(buf.Data) >= buf.Capacity
}

// Write appends data to the buffer. Data past the capacity is dropped, and
// ErrChannelFull is returned.
func (buf *Buffer) Write(data []byte) (n int, err error) {
	if buf.Data == nil {
		buf.Rewind()
	}

	room := buf.Capacity - len(buf.Data)
	if len(data) > room {
		data = data[:room]
		err = ErrChannelFull
	}

	buf.Data = append(buf.Data, data...)
	n = len(data)

	return
}

// Marshal writes the captured data to a writer.
func (buf *Buffer) Marshal(file io.Writer) (err error) {
	_, err = file.Write(buf.Data)

	return
}
