package bio

import (
	"errors"
	"io"
)

// Buffer is an in-memory byte stream that can be read, written and
// repositioned. Writes past the end grow the buffer; writes before the
// end overwrite in place, which is how length fields are backpatched.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer returns a Buffer positioned at the start of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// Write writes p at the current offset.
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.off + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, len(b.buf), 2*end)
			copy(grown, b.buf)
			b.buf = grown
		}
		b.buf = b.buf[:end]
	}
	copy(b.buf[b.off:], p)
	b.off = end
	return len(p), nil
}

// Read reads from the current offset.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.off >= len(b.buf) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.off:])
	b.off += n
	return n, nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.off) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("bio: invalid whence")
	}
	if abs < 0 || abs > int64(len(b.buf)) {
		return 0, errors.New("bio: seek out of range")
	}
	b.off = int(abs)
	return abs, nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the total number of bytes held.
func (b *Buffer) Len() int {
	return len(b.buf)
}
