// Package bio provides bit-level I/O for MPEG-G bitstreams.
//
// Fields are packed most significant bit first. Both directions keep a
// running bit counter so that writers can backpatch length fields and
// parsers can verify that a structure consumed exactly its declared size.
package bio

import (
	"errors"
	"fmt"
	"io"
)

// ErrNotSeekable is returned by Seek and Tell when the underlying stream
// does not implement io.Seeker.
var ErrNotSeekable = errors.New("bio: stream is not seekable")

// maxU7Length is the longest U7 encoding of a 64-bit value.
const maxU7Length = 10

func checkBitCount(n uint) {
	if n < 1 || n > 64 {
		panic(fmt.Sprintf("bio: invalid bit count %d", n))
	}
}

// Reader provides bit-level reading from a byte stream.
type Reader struct {
	r    io.Reader
	buf  byte   // Current byte buffer
	cnt  uint8  // Number of unread bits in buf (0-7 between calls)
	bits uint64 // Total bits consumed
}

// NewReader creates a new bit reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) fill() error {
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return err
	}
	r.buf = b[0]
	r.cnt = 8
	return nil
}

// ReadBit reads a single bit (0 or 1).
func (r *Reader) ReadBit() (int, error) {
	v, err := r.ReadBits(1)
	return int(v), err
}

// ReadBits reads n bits (1-64) and returns them right-aligned.
// It panics if n is outside that range.
func (r *Reader) ReadBits(n uint) (uint64, error) {
	checkBitCount(n)
	var result uint64
	started := false
	for n > 0 {
		if r.cnt == 0 {
			if err := r.fill(); err != nil {
				if err == io.EOF && started {
					err = io.ErrUnexpectedEOF
				}
				return 0, err
			}
		}
		started = true
		take := uint(r.cnt)
		if take > n {
			take = n
		}
		r.cnt -= uint8(take)
		result = result<<take | uint64(r.buf>>r.cnt)&(1<<take-1)
		n -= take
		r.bits += uint64(take)
	}
	return result, nil
}

// ReadFlag reads one bit as a boolean.
func (r *Reader) ReadFlag() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadBytes fills p. When the reader is byte aligned the bytes are read
// straight from the stream.
func (r *Reader) ReadBytes(p []byte) error {
	if r.cnt == 0 {
		n, err := io.ReadFull(r.r, p)
		r.bits += uint64(n) * 8
		if err == io.EOF && len(p) > 0 {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	for i := range p {
		v, err := r.ReadBits(8)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		p[i] = byte(v)
	}
	return nil
}

// ReadString reads a NUL-terminated string. The terminator is consumed
// but not returned.
func (r *Reader) ReadString() (string, error) {
	var s []byte
	for {
		v, err := r.ReadBits(8)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if v == 0 {
			return string(s), nil
		}
		s = append(s, byte(v))
	}
}

// ReadU7 reads a big-endian base-128 integer where every byte but the
// last has its high bit set.
func (r *Reader) ReadU7() (uint64, error) {
	var result uint64
	for i := 0; ; i++ {
		if i == maxU7Length {
			return 0, errors.New("bio: U7 value out of range")
		}
		b, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		result = result<<7 | b&0x7F
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// Align discards any remaining bits in the current byte.
func (r *Reader) Align() {
	r.bits += uint64(r.cnt)
	r.cnt = 0
}

// IsByteAligned reports whether no bits of a partially read byte are held.
func (r *Reader) IsByteAligned() bool {
	return r.cnt == 0
}

// BitsRead returns the number of bits consumed so far.
func (r *Reader) BitsRead() uint64 {
	return r.bits
}

// Seek repositions the underlying stream. The reader must be byte aligned.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.cnt != 0 {
		panic("bio: seek on unaligned reader")
	}
	s, ok := r.r.(io.Seeker)
	if !ok {
		return 0, ErrNotSeekable
	}
	return s.Seek(offset, whence)
}

// Tell returns the byte position of the underlying stream.
func (r *Reader) Tell() (int64, error) {
	return r.Seek(0, io.SeekCurrent)
}

// Writer provides bit-level writing to a byte stream.
type Writer struct {
	w    io.Writer
	buf  byte   // Current byte buffer
	cnt  uint8  // Number of valid bits in buf (0-7)
	bits uint64 // Total bits produced
}

// NewWriter creates a new bit writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(bit int) error {
	return w.WriteBits(uint64(bit&1), 1)
}

// WriteFlag writes a boolean as one bit.
func (w *Writer) WriteFlag(f bool) error {
	if f {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// WriteBits writes the lowest n bits (1-64) of val.
// It panics if n is outside that range.
func (w *Writer) WriteBits(val uint64, n uint) error {
	checkBitCount(n)
	for n > 0 {
		take := 8 - uint(w.cnt)
		if take > n {
			take = n
		}
		n -= take
		w.buf = w.buf<<take | byte((val>>n)&(1<<take-1))
		w.cnt += uint8(take)
		w.bits += uint64(take)
		if w.cnt == 8 {
			if err := w.flushByte(); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteBytes writes p as whole bytes.
func (w *Writer) WriteBytes(p []byte) error {
	if w.cnt == 0 {
		n, err := w.w.Write(p)
		w.bits += uint64(n) * 8
		return err
	}
	for _, b := range p {
		if err := w.WriteBits(uint64(b), 8); err != nil {
			return err
		}
	}
	return nil
}

// WriteString writes s followed by a NUL terminator.
func (w *Writer) WriteString(s string) error {
	if err := w.WriteBytes([]byte(s)); err != nil {
		return err
	}
	return w.WriteBits(0, 8)
}

// WriteU7 writes v in the encoding read by Reader.ReadU7.
func (w *Writer) WriteU7(v uint64) error {
	var bytes [maxU7Length]byte
	n := 0
	for {
		bytes[maxU7Length-1-n] = byte(v & 0x7F)
		if n > 0 {
			bytes[maxU7Length-1-n] |= 0x80 // Set continuation bit
		}
		v >>= 7
		n++
		if v == 0 {
			break
		}
	}
	return w.WriteBytes(bytes[maxU7Length-n:])
}

// flushByte writes the current byte buffer.
func (w *Writer) flushByte() error {
	b := [1]byte{w.buf}
	_, err := w.w.Write(b[:])
	w.buf = 0
	w.cnt = 0
	return err
}

// Flush writes any remaining bits, padding with zeros.
func (w *Writer) Flush() error {
	if w.cnt > 0 {
		pad := 8 - w.cnt
		w.buf <<= pad
		w.bits += uint64(pad)
		return w.flushByte()
	}
	return nil
}

// IsByteAligned reports whether no bits are waiting for a full byte.
func (w *Writer) IsByteAligned() bool {
	return w.cnt == 0
}

// BitsWritten returns the number of bits produced so far, padding included.
func (w *Writer) BitsWritten() uint64 {
	return w.bits
}

// Seek repositions the underlying stream. The writer must be byte aligned.
func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	if w.cnt != 0 {
		panic("bio: seek on unaligned writer")
	}
	s, ok := w.w.(io.Seeker)
	if !ok {
		return 0, ErrNotSeekable
	}
	return s.Seek(offset, whence)
}

// Tell returns the byte position of the underlying stream.
func (w *Writer) Tell() (int64, error) {
	return w.Seek(0, io.SeekCurrent)
}
