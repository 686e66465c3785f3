// Package box implements MPEG-G container box parsing and generation.
//
// A container is a sequence of boxes, where each box has:
// - 4-byte key
// - 8-byte big-endian length covering the whole box
// - Box body
package box

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size of a box header.
const HeaderSize = 12

// maxBodySize bounds the body of a box read into memory.
const maxBodySize = 1 << 30

var (
	// ErrInvalidBoxLength is returned when a box length is smaller than
	// its header or larger than the reader accepts.
	ErrInvalidBoxLength = errors.New("box: invalid box length")

	// ErrOutOfOrder is returned when boxes appear in an order the
	// container does not allow.
	ErrOutOfOrder = errors.New("box: box out of order")

	// ErrInvalidKey is returned for a key that is not four bytes.
	ErrInvalidKey = errors.New("box: invalid key")
)

// Box keys
const (
	KeyFileHeader    Key = 0x666C6864 // "flhd" - File header
	KeyDatasetHeader Key = 0x64746864 // "dthd" - Dataset header
	KeyParameterSet  Key = 0x70617273 // "pars" - Parameter set
	KeyAUContainer   Key = 0x6175636E // "aucn" - Access unit container
	KeyAUHeader      Key = 0x61756864 // "auhd" - Access unit header
)

// Key represents a 4-byte box key.
type Key uint32

// ParseKey converts a four character string to a Key.
func ParseKey(s string) (Key, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return Key(binary.BigEndian.Uint32([]byte(s))), nil
}

// String returns the 4-character key.
func (k Key) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(k))
	return string(b)
}

// Box represents a container box.
type Box struct {
	Key  Key
	Body []byte
}

// Len returns the total box length including the header.
func (b *Box) Len() uint64 {
	return HeaderSize + uint64(len(b.Body))
}

// Header returns the box header bytes.
func (b *Box) Header() []byte {
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(b.Key))
	binary.BigEndian.PutUint64(header[4:12], b.Len())
	return header
}

// Bytes returns the complete box as bytes.
func (b *Box) Bytes() []byte {
	result := make([]byte, 0, b.Len())
	result = append(result, b.Header()...)
	return append(result, b.Body...)
}

// Reader reads boxes from a stream.
type Reader struct {
	r      io.Reader
	offset int64
}

// NewReader creates a new box reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadBox reads the next box from the stream. It returns io.EOF when the
// stream ends on a box boundary.
func (r *Reader) ReadBox() (*Box, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r.r, header)
	if err != nil {
		if err == io.EOF && n == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading box header: %w", err)
	}

	key := Key(binary.BigEndian.Uint32(header[0:4]))
	length := binary.BigEndian.Uint64(header[4:12])
	if length < HeaderSize {
		return nil, fmt.Errorf("%w: %q box of %d bytes at offset %d", ErrInvalidBoxLength, key, length, r.offset)
	}
	bodyLen := length - HeaderSize
	if bodyLen > maxBodySize {
		return nil, fmt.Errorf("%w: %q box of %d bytes at offset %d", ErrInvalidBoxLength, key, length, r.offset)
	}

	body, err := io.ReadAll(io.LimitReader(r.r, int64(bodyLen)))
	if err != nil {
		return nil, fmt.Errorf("reading box body: %w", err)
	}
	if uint64(len(body)) != bodyLen {
		return nil, fmt.Errorf("reading box body: %w", io.ErrUnexpectedEOF)
	}
	r.offset += int64(length)

	return &Box{Key: key, Body: body}, nil
}

// Offset returns the current stream offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Writer writes boxes to a stream.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new box writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBox writes a box to the stream.
func (w *Writer) WriteBox(b *Box) error {
	if _, err := w.w.Write(b.Header()); err != nil {
		return err
	}
	_, err := w.w.Write(b.Body)
	return err
}
