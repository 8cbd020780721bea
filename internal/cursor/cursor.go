package cursor

import (
	"bufio"
	"errors"
	"io"
)

// DefaultBufferSize is the read buffer used when none is given.
const DefaultBufferSize = 1 << 20

// ErrShortRead means the source ended before a full read completed.
var ErrShortRead = errors.New("short read")

// Cursor reads tags and fixed-length payloads from a byte source.
// It is not safe for concurrent use.
type Cursor struct {
	r      *bufio.Reader
	buf    []byte
	offset int64
}

// New creates a Cursor over r with the given buffer size.
func New(r io.Reader, bufferSize int) *Cursor {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Cursor{
		r:   bufio.NewReaderSize(r, bufferSize),
		buf: make([]byte, 64),
	}
}

// ReadTag returns the next byte. It returns io.EOF at the end of the source
// and ErrShortRead when the source reports it was cut off, as a truncated
// gzip stream does.
func (c *Cursor) ReadTag() (byte, error) {
	b, err := c.r.ReadByte()
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, ErrShortRead
	}
	if err != nil {
		return 0, err
	}
	c.offset++
	return b, nil
}

// Next returns the next n bytes. The slice is only valid until the next
// call on the Cursor. It returns io.EOF if no bytes remain and
// ErrShortRead if fewer than n bytes remain.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n > len(c.buf) {
		c.buf = make([]byte, n)
	}
	buf := c.buf[:n]

	read, err := io.ReadFull(c.r, buf)
	c.offset += int64(read)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, ErrShortRead
	default:
		return nil, err
	}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int64 {
	return c.offset
}
